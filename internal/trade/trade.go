// Package trade turns raw upstream records into classified trades: each one
// carries its spec, the calculation and notification strategies chosen for
// its type, and every derived value notification rendering needs. Classified
// trades are built per event and discarded after formatting; they hold no
// long-lived state.
package trade

import (
	"errors"
	"fmt"
	"math"

	"github.com/thetawatch/thetawatch/internal/models"
	"github.com/thetawatch/thetawatch/internal/strategy"
	"github.com/thetawatch/thetawatch/internal/trademath"
	"github.com/thetawatch/thetawatch/internal/tradespec"
)

// Result emojis used in closing descriptions.
const (
	emojiWinner   = "✅"
	emojiLoser    = "❌"
	emojiAssigned = "🚚"
)

// Classifier resolves raw trades against the spec registry and strategy
// factory. One classifier serves the whole process; it is read-only after
// construction.
type Classifier struct {
	registry *tradespec.Registry
	factory  *strategy.Factory
}

// NewClassifier builds a classifier over a spec registry and strategy factory.
func NewClassifier(registry *tradespec.Registry, factory *strategy.Factory) *Classifier {
	return &Classifier{registry: registry, factory: factory}
}

// Classify validates a raw trade and wraps it with its spec, strategies, and
// derived values. It fails with models.ValidationError for malformed records
// and tradespec.UnknownTypeError for unknown trade types; both are fatal to
// the record only, never to the batch.
func (c *Classifier) Classify(raw models.Trade) (*Trade, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	spec, err := c.registry.Lookup(raw.Type)
	if err != nil {
		return nil, err
	}

	t := &Trade{
		Data:    raw,
		Spec:    spec,
		Strikes: strategy.ExtractStrikes(&raw, spec),

		calc:  c.factory.Calculation(spec),
		notif: c.factory.Notification(spec),
	}

	t.PrimaryStrike = strategy.PrimaryStrike(&t.Data, spec)

	t.IsOpen = raw.IsOpen()
	t.IsClosed = !t.IsOpen
	t.IsAssigned = raw.Assigned
	t.IsWinner = raw.Win
	t.IsLoser = !raw.Win
	t.Status = "closed"
	if t.IsOpen {
		t.Status = "opened"
	}

	// Percentage profit only makes sense once an option trade has closed at
	// a known price.
	if t.IsClosed && spec.OptionTrade && raw.PriceClosed != nil {
		t.PercentageProfit = trademath.PercentageProfit(t.IsWinner, raw.PriceFilled, *raw.PriceClosed)
	}

	// The note follows the real trade state, even when the status below gets
	// overridden for stocks.
	t.Note = raw.Note
	if t.IsClosed {
		t.Note = raw.ClosingNote
	}

	// The site marks stock entries as immediately closed, which is not a
	// meaningful "closed" state for alerts. Force them to report as opened.
	if spec.IsStockTrade() {
		t.Status = "opened"
		t.IsOpen = true
		t.IsClosed = false
	}

	return t, nil
}

// Trade is one classified trade, ready for notification rendering.
type Trade struct {
	Data    models.Trade
	Spec    tradespec.Spec
	Strikes strategy.Strikes

	PrimaryStrike    float64
	IsOpen           bool
	IsClosed         bool
	IsAssigned       bool
	IsWinner         bool
	IsLoser          bool
	Status           string // "opened" or "closed"
	PercentageProfit int
	Note             string // opening note while open, closing note after

	calc  strategy.Calculation
	notif strategy.Notification
}

// BreakEven returns the formatted break-even price, or a
// strategy.ErrBreakEvenUnavailable-wrapped error where none is defined.
func (t *Trade) BreakEven() (string, error) {
	return t.calc.BreakEven(&t.Data, t.Spec, t.Strikes)
}

// PotentialReturn returns the potential return percentage for short
// single-leg trades.
func (t *Trade) PotentialReturn() (float64, error) {
	return t.calc.PotentialReturn(&t.Data, t.Spec, t.Strikes)
}

// AnnualizedReturn returns the annualized return percentage for short
// single-leg trades with a known expiration.
func (t *Trade) AnnualizedReturn() (float64, error) {
	return t.calc.AnnualizedReturn(&t.Data, t.Spec, t.Strikes)
}

// NotificationTitle renders the one-line (plus leg line) trade summary.
func (t *Trade) NotificationTitle() string {
	return t.notif.FormatTitle(&t.Data, t.Spec, t.Strikes)
}

// OpeningDescription renders the opening stats block. Calculations that are
// not applicable for this trade type are substituted with empty/zero values,
// so most variants produce an empty description.
func (t *Trade) OpeningDescription() string {
	breakEven, err := t.BreakEven()
	if err != nil {
		if !errors.Is(err, strategy.ErrBreakEvenUnavailable) {
			return ""
		}
		breakEven = ""
	}

	potential, err := t.PotentialReturn()
	if err != nil {
		potential = 0.0
	}

	annualized, err := t.AnnualizedReturn()
	if err != nil {
		annualized = 0.0
	}

	return t.notif.FormatOpeningDescription(&t.Data, t.Spec, t.Strikes, breakEven, potential, annualized)
}

// ClosingDescription renders the result line for closed option trades, e.g.
// "✅ Won $150 (12%)". Stock trades and open trades have none.
func (t *Trade) ClosingDescription() string {
	if t.Spec.IsStockTrade() || t.IsOpen {
		return ""
	}

	desc := fmt.Sprintf("%s %s ", t.resultEmoji(), t.Result())
	if !t.IsAssigned {
		desc += fmt.Sprintf("%s (%d%%)", trademath.PrettyStrike(t.Profit()), t.PercentageProfit)
	}
	return desc
}

// Result names the outcome of a closed trade.
func (t *Trade) Result() string {
	if t.IsAssigned {
		return "Assigned"
	}
	if t.IsWinner {
		return "Won"
	}
	return "Lost"
}

// Profit returns the absolute profit/loss amount reported upstream.
func (t *Trade) Profit() float64 {
	if t.Data.ProfitLoss == nil {
		return 0.0
	}
	return math.Abs(*t.Data.ProfitLoss)
}

// URL links to the trade on thetagang.com.
func (t *Trade) URL() string {
	return fmt.Sprintf("https://thetagang.com/%s/%s", t.Data.User.Username, t.Data.GUID)
}

func (t *Trade) resultEmoji() string {
	if t.IsAssigned {
		return emojiAssigned
	}
	if t.IsWinner {
		return emojiWinner
	}
	return emojiLoser
}
