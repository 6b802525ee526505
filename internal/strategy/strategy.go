// Package strategy implements the per-trade-type behavior selected during
// classification. Two concerns are dispatched independently: calculations
// (break-even, potential return, annualized return) and notification text
// (titles, opening descriptions). The Factory picks one implementation of
// each from the trade's spec.
package strategy

import (
	"errors"

	"github.com/thetawatch/thetawatch/internal/models"
	"github.com/thetawatch/thetawatch/internal/tradespec"
)

// Sentinel "not applicable" signals. These are expected conditions, not
// failures: callers check them with errors.Is and substitute empty or zero
// values in notification text.
var (
	ErrBreakEvenUnavailable        = errors.New("break even not implemented for this trade type")
	ErrPotentialReturnUnavailable  = errors.New("potential return not implemented for this trade type")
	ErrAnnualizedReturnUnavailable = errors.New("annualized return not implemented for this trade type")
)

// Strikes maps a strike field name to its resolved price for one trade.
type Strikes map[string]float64

// Calculation computes derived financial values for a trade.
type Calculation interface {
	BreakEven(t *models.Trade, spec tradespec.Spec, strikes Strikes) (string, error)
	PotentialReturn(t *models.Trade, spec tradespec.Spec, strikes Strikes) (float64, error)
	AnnualizedReturn(t *models.Trade, spec tradespec.Spec, strikes Strikes) (float64, error)
}

// Notification renders the human-readable pieces of a trade alert.
type Notification interface {
	FormatTitle(t *models.Trade, spec tradespec.Spec, strikes Strikes) string
	FormatOpeningDescription(t *models.Trade, spec tradespec.Spec, strikes Strikes,
		breakEven string, potentialReturn, annualizedReturn float64) string
}

// ExtractStrikes resolves the spec's strike fields against a raw trade.
// Fields absent from the trade are omitted from the result.
func ExtractStrikes(t *models.Trade, spec tradespec.Spec) Strikes {
	strikes := make(Strikes, len(spec.Strikes))
	for _, field := range spec.Strikes {
		if value, ok := t.StrikeValue(field); ok {
			strikes[field] = value
		}
	}
	return strikes
}

// PrimaryStrike returns the first spec strike resolved against the trade,
// or zero when the spec declares no strikes (stock trades).
func PrimaryStrike(t *models.Trade, spec tradespec.Spec) float64 {
	if len(spec.Strikes) == 0 {
		return 0.0
	}
	value, _ := t.StrikeValue(spec.Strikes[0])
	return value
}
