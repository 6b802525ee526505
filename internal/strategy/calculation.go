package strategy

import (
	"fmt"
	"strings"
	"time"

	"github.com/thetawatch/thetawatch/internal/models"
	"github.com/thetawatch/thetawatch/internal/trademath"
	"github.com/thetawatch/thetawatch/internal/tradespec"
)

// SingleLegCalculation computes break-even and returns for single-leg options.
// Now is injectable for deterministic day-count tests; nil means time.Now.
type SingleLegCalculation struct {
	Now func() time.Time
}

func (c *SingleLegCalculation) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// BreakEven returns strike minus premium for puts and strike plus premium
// for calls, formatted as a currency string.
func (c *SingleLegCalculation) BreakEven(t *models.Trade, spec tradespec.Spec, strikes Strikes) (string, error) {
	primary := PrimaryStrike(t, spec)
	if strings.Contains(t.Type, "PUT") {
		return trademath.PutBreakEven(primary, t.PriceFilled), nil
	}
	return trademath.CallBreakEven(primary, t.PriceFilled), nil
}

// PotentialReturn is only defined for short single-leg options.
func (c *SingleLegCalculation) PotentialReturn(t *models.Trade, spec tradespec.Spec, strikes Strikes) (float64, error) {
	if !spec.Short {
		return 0, fmt.Errorf("%w: %s", ErrPotentialReturnUnavailable, t.Type)
	}
	primary := PrimaryStrike(t, spec)
	return trademath.ShortOptionPotentialReturn(primary, t.PriceFilled), nil
}

// AnnualizedReturn is only defined for short single-leg options with a known
// expiration date.
func (c *SingleLegCalculation) AnnualizedReturn(t *models.Trade, spec tradespec.Spec, strikes Strikes) (float64, error) {
	if !spec.Short || t.ExpiryDate == "" {
		return 0, fmt.Errorf("%w: %s", ErrAnnualizedReturnUnavailable, t.Type)
	}
	expiry, err := trademath.ParseExpiration(t.ExpiryDate)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrAnnualizedReturnUnavailable, err)
	}
	primary := PrimaryStrike(t, spec)
	dte := trademath.DaysToExpiration(expiry, c.now())
	return trademath.ShortAnnualizedReturn(primary, t.PriceFilled, dte), nil
}

// DefaultCalculation is used where no calculation is defined: stock trades
// and multi-leg options. Every method reports "not applicable".
type DefaultCalculation struct{}

func (DefaultCalculation) BreakEven(t *models.Trade, spec tradespec.Spec, strikes Strikes) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrBreakEvenUnavailable, t.Type)
}

func (DefaultCalculation) PotentialReturn(t *models.Trade, spec tradespec.Spec, strikes Strikes) (float64, error) {
	return 0, fmt.Errorf("%w: %s", ErrPotentialReturnUnavailable, t.Type)
}

func (DefaultCalculation) AnnualizedReturn(t *models.Trade, spec tradespec.Spec, strikes Strikes) (float64, error) {
	return 0, fmt.Errorf("%w: %s", ErrAnnualizedReturnUnavailable, t.Type)
}
