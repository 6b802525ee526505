package strategy

import (
	"time"

	"github.com/thetawatch/thetawatch/internal/tradespec"
)

// complexOptionTypes are the multi-leg trades whose titles need
// strike-by-strike rendering instead of the generic spread format.
var complexOptionTypes = map[string]bool{
	"JADE LIZARD":                 true,
	"SHORT IRON CONDOR":           true,
	"SHORT IRON BUTTERFLY":        true,
	"BUTTERFLY CALL DEBIT SPREAD": true,
}

// Factory selects calculation and notification strategies from a trade spec.
// Selection is a pure function of the spec's shape booleans plus membership
// in the complex-option set.
type Factory struct {
	// Now is passed through to strategies that format expiration dates or
	// count days; nil means time.Now.
	Now func() time.Time
}

// NewFactory returns a factory using the real clock.
func NewFactory() *Factory {
	return &Factory{}
}

// Calculation picks the calculation strategy for a spec.
// Break-even and returns are only implemented for single-leg options; stock
// trades and multi-leg options get the default "not applicable" strategy.
func (f *Factory) Calculation(spec tradespec.Spec) Calculation {
	if spec.OptionTrade && spec.SingleLeg {
		return &SingleLegCalculation{Now: f.Now}
	}
	return DefaultCalculation{}
}

// Notification picks the notification strategy for a spec, in priority
// order: stock, single-leg, complex multi-leg, generic spread.
func (f *Factory) Notification(spec tradespec.Spec) Notification {
	switch {
	case spec.IsStockTrade():
		return StockNotification{}
	case spec.SingleLeg:
		return &SingleLegNotification{Now: f.Now}
	case complexOptionTypes[spec.Type]:
		return &ComplexOptionNotification{Now: f.Now}
	default:
		return &SpreadNotification{Now: f.Now}
	}
}
