package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Discord delivers payloads to a Discord webhook.
type Discord struct {
	webhookURL string
	username   string
	httpClient *http.Client
	maxRetries int
}

// NewDiscord creates a Discord webhook notifier posting as username.
func NewDiscord(webhookURL, username string, maxRetries int) *Discord {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Discord{
		webhookURL: webhookURL,
		username:   username,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		maxRetries: maxRetries,
	}
}

type discordEmbed struct {
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Color       int64             `json:"color,omitempty"`
	Author      *discordAuthor    `json:"author,omitempty"`
	Thumbnail   *discordImageLink `json:"thumbnail,omitempty"`
	Image       *discordImageLink `json:"image,omitempty"`
	Footer      *discordFooter    `json:"footer,omitempty"`
}

type discordAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
	URL     string `json:"url,omitempty"`
}

type discordImageLink struct {
	URL string `json:"url"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordMessage struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

// Send posts one payload as a single-embed webhook message, retrying on
// rate limits and server errors.
func (d *Discord) Send(ctx context.Context, p Payload) error {
	message := discordMessage{
		Username: d.username,
		Embeds:   []discordEmbed{d.buildEmbed(p)},
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to encode webhook message: %w", err)
	}

	var lastErr error

	for i := 0; i < d.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, "POST", d.webhookURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(resp)
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limited, retry after %s", retryAfter)
			time.Sleep(retryAfter)
			continue

		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			time.Sleep(time.Duration(i+1) * time.Second)
			continue

		case resp.StatusCode >= 400:
			resp.Body.Close()
			return fmt.Errorf("webhook rejected: %d", resp.StatusCode)

		default:
			resp.Body.Close()
			return nil
		}
	}

	return fmt.Errorf("failed to deliver webhook after %d retries: %w", d.maxRetries, lastErr)
}

func (d *Discord) buildEmbed(p Payload) discordEmbed {
	embed := discordEmbed{
		Title:       p.Title,
		Description: p.Description,
	}

	if p.Color != "" {
		if color, err := strconv.ParseInt(p.Color, 16, 64); err == nil {
			embed.Color = color
		}
	}
	if p.AuthorName != "" {
		embed.Author = &discordAuthor{
			Name:    p.AuthorName,
			IconURL: p.AuthorIconURL,
			URL:     p.AuthorLinkURL,
		}
	}
	if p.ThumbnailURL != "" {
		embed.Thumbnail = &discordImageLink{URL: p.ThumbnailURL}
	}
	if p.ImageURL != "" {
		embed.Image = &discordImageLink{URL: p.ImageURL}
	}
	if p.FooterText != "" {
		embed.Footer = &discordFooter{Text: p.FooterText}
	}

	return embed
}

// parseRetryAfter reads Discord's rate limit hint, defaulting to one second.
func parseRetryAfter(resp *http.Response) time.Duration {
	var body struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.RetryAfter <= 0 {
		return time.Second
	}
	return time.Duration(body.RetryAfter * float64(time.Second))
}
