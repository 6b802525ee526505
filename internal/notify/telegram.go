package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram mirrors trade alerts to a Telegram chat for people who do not
// use Discord. The payload renders as a plain text message with a link.
type Telegram struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewTelegram creates a new Telegram notifier.
func NewTelegram(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Telegram{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// Send delivers one payload with retry.
func (t *Telegram) Send(p Payload) error {
	msg := tgbotapi.NewMessage(t.chatID, formatTelegramMessage(p))
	msg.DisableWebPagePreview = true

	var lastErr error

	for i := 0; i < t.maxRetries; i++ {
		_, err := t.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(t.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", t.maxRetries, lastErr)
}

// formatTelegramMessage flattens an embed-shaped payload into plain text.
func formatTelegramMessage(p Payload) string {
	var b strings.Builder

	if p.AuthorName != "" {
		b.WriteString(p.AuthorName)
		b.WriteString("\n\n")
	}
	b.WriteString(p.Title)
	if p.Description != "" {
		b.WriteString("\n")
		b.WriteString(p.Description)
	}
	if p.FooterText != "" {
		b.WriteString("\n\n")
		b.WriteString(p.FooterText)
	}
	if p.AuthorLinkURL != "" {
		b.WriteString("\n")
		b.WriteString(p.AuthorLinkURL)
	}

	return b.String()
}
