// Package models defines the wire-level entities received from thetagang.com.
// The trades API is loose about optional values: unused strike fields arrive
// as empty strings, booleans and notes may be null, and timestamps are ISO
// strings. The types here absorb those quirks so the rest of the application
// works with clean values.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// StrikeFields is the full vocabulary of strike field names a trade can carry.
var StrikeFields = []string{"short_put", "long_put", "short_call", "long_call", "long_call2"}

// Trade statuses as stored in the state store.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// ValidationError reports a required trade field that is missing or malformed.
type ValidationError struct {
	GUID  string
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid trade %q: missing or malformed field %q", e.GUID, e.Field)
}

// Strike is an optional strike price. The API sends a number, a numeric
// string, an empty string, or null; only the first two mark the strike as set.
type Strike struct {
	Value float64
	Set   bool
}

// UnmarshalJSON accepts null, "", numeric strings, and plain numbers.
func (s *Strike) UnmarshalJSON(data []byte) error {
	s.Value = 0
	s.Set = false

	if string(data) == "null" {
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case float64:
		s.Value = v
		s.Set = true
	case string:
		if v == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			// Unparseable strike strings are treated as absent rather than
			// failing the whole record.
			return nil
		}
		s.Value = parsed
		s.Set = true
	}
	return nil
}

// User identifies the trader who placed a trade.
type User struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	AvatarURL string `json:"pfp"`
}

// Trade is one raw trade record from the thetagang.com API.
type Trade struct {
	GUID        string   `json:"guid"`
	Type        string   `json:"type"`
	Symbol      string   `json:"symbol"`
	Quantity    int      `json:"quantity"`
	PriceFilled float64  `json:"price_filled"`
	PriceClosed *float64 `json:"price_closed"`
	ExpiryDate  string   `json:"expiry_date"`
	CloseDate   string   `json:"close_date"`
	UpdatedAt   string   `json:"updatedAt"`

	ShortPut  Strike `json:"short_put"`
	LongPut   Strike `json:"long_put"`
	ShortCall Strike `json:"short_call"`
	LongCall  Strike `json:"long_call"`
	LongCall2 Strike `json:"long_call2"`

	Assigned    bool     `json:"assigned"`
	Win         bool     `json:"win"`
	Note        string   `json:"note"`
	ClosingNote string   `json:"closing_note"`
	ProfitLoss  *float64 `json:"profitLoss"`
	Mistake     bool     `json:"mistake"`

	User User `json:"User"`
}

// Validate checks that the fields every downstream consumer relies on are present.
func (t *Trade) Validate() error {
	if t.GUID == "" {
		return &ValidationError{GUID: t.GUID, Field: "guid"}
	}
	if t.Type == "" {
		return &ValidationError{GUID: t.GUID, Field: "type"}
	}
	if t.Symbol == "" {
		return &ValidationError{GUID: t.GUID, Field: "symbol"}
	}
	if t.Quantity <= 0 {
		return &ValidationError{GUID: t.GUID, Field: "quantity"}
	}
	if t.User.Username == "" {
		return &ValidationError{GUID: t.GUID, Field: "User.username"}
	}
	return nil
}

// IsOpen reports whether the trade has no close date.
func (t *Trade) IsOpen() bool {
	return t.CloseDate == ""
}

// Status returns the state-store status for the trade.
func (t *Trade) Status() string {
	if t.IsOpen() {
		return StatusOpen
	}
	return StatusClosed
}

// StrikeValue resolves a strike field name to its value.
// The second return is false when the field is absent from this trade.
func (t *Trade) StrikeValue(field string) (float64, bool) {
	var s Strike
	switch field {
	case "short_put":
		s = t.ShortPut
	case "long_put":
		s = t.LongPut
	case "short_call":
		s = t.ShortCall
	case "long_call":
		s = t.LongCall
	case "long_call2":
		s = t.LongCall2
	default:
		return 0, false
	}
	return s.Value, s.Set
}

// ParseTimestamp parses an upstream ISO timestamp such as
// "2023-01-10T00:00:00.000Z". The timezone is discarded: the site reports
// naive timestamps and the day-count math must match its convention.
func ParseTimestamp(value string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05.000Z07:00",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	var lastErr error
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			// Strip the zone but keep the literal clock reading.
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(),
				parsed.Hour(), parsed.Minute(), parsed.Second(), parsed.Nanosecond(), time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, lastErr)
}
