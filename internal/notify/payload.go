// Package notify turns classified trades and trending symbols into
// notification payloads and delivers them. Delivery targets are Discord
// webhooks and, optionally, a Telegram chat; both render the same Payload.
package notify

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/thetawatch/thetawatch/internal/trade"
)

// stockLogoURL serves a company logo for a lowercased ticker symbol.
const stockLogoURL = "https://static.stocktitan.net/company-logo/%s.webp"

// trendColor is the accent color for trending ticker alerts.
const trendColor = "AFE1AF"

// Payload is one rendered notification, independent of the delivery target.
type Payload struct {
	ID            string
	Title         string
	Description   string
	Color         string // hex RGB, empty for the target's default
	AuthorName    string
	AuthorIconURL string
	AuthorLinkURL string
	FooterText    string
	ThumbnailURL  string
	ImageURL      string
}

// PayloadBuilder renders trades and trends into payloads.
type PayloadBuilder struct {
	OpeningIconURL string
	ClosingIconURL string
	ColorWinner    string
	ColorLoser     string
	ColorAssigned  string
	// TransparentPNG is a wide transparent image that keeps every embed the
	// same width.
	TransparentPNG string
}

// Trade renders the payload for one classified trade. Opening alerts lead
// with the strategy title; closing alerts lead with the result line and
// carry a result color.
func (b *PayloadBuilder) Trade(t *trade.Trade) Payload {
	p := Payload{
		ID:            uuid.NewString(),
		AuthorName:    fmt.Sprintf("%s %s a trade", t.Data.User.Username, t.Status),
		AuthorIconURL: b.actionIcon(t),
		AuthorLinkURL: t.URL(),
		FooterText:    t.Note,
		ThumbnailURL:  fmt.Sprintf(stockLogoURL, strings.ToLower(t.Data.Symbol)),
		ImageURL:      b.TransparentPNG,
	}

	if t.IsOpen {
		p.Title = t.NotificationTitle()
		p.Description = t.OpeningDescription()
		return p
	}

	p.Title = t.ClosingDescription()
	p.Description = t.NotificationTitle()
	switch {
	case t.IsAssigned:
		p.Color = b.ColorAssigned
	case t.IsWinner:
		p.Color = b.ColorWinner
	default:
		p.Color = b.ColorLoser
	}
	return p
}

// Trend renders the payload for a newly trending ticker symbol.
func (b *PayloadBuilder) Trend(symbol string) Payload {
	return Payload{
		ID:           uuid.NewString(),
		Title:        fmt.Sprintf("New trending ticker: %s", symbol),
		Color:        trendColor,
		ThumbnailURL: fmt.Sprintf(stockLogoURL, strings.ToLower(symbol)),
		ImageURL:     b.TransparentPNG,
	}
}

// actionIcon prefers the trader's avatar, falling back to a rocket or a
// checkered flag depending on the trade state.
func (b *PayloadBuilder) actionIcon(t *trade.Trade) string {
	if t.Data.User.AvatarURL != "" {
		return t.Data.User.AvatarURL
	}
	if t.IsOpen {
		return b.OpeningIconURL
	}
	return b.ClosingIconURL
}
