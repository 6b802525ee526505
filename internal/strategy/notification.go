package strategy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/thetawatch/thetawatch/internal/models"
	"github.com/thetawatch/thetawatch/internal/trademath"
	"github.com/thetawatch/thetawatch/internal/tradespec"
)

// SingleLegNotification renders titles for single-leg option trades, e.g.
//
//	SPY: CASH SECURED PUT
//	1 x 2/18 $440p for $1.40
type SingleLegNotification struct {
	Now func() time.Time
}

func (n *SingleLegNotification) FormatTitle(t *models.Trade, spec tradespec.Spec, strikes Strikes) string {
	strikeType := "p"
	if strings.Contains(t.Type, "CALL") {
		strikeType = "c"
	}
	primary := PrimaryStrike(t, spec)

	leg := fmt.Sprintf("%s%s for %s", trademath.PrettyStrike(primary), strikeType, trademath.PrettyPremium(t.PriceFilled))
	return titleWithHeader(t, legLine(t, n.Now, leg))
}

// FormatOpeningDescription emits break-even and return stats for short
// single-leg trades; long options carry no opening stats.
func (n *SingleLegNotification) FormatOpeningDescription(t *models.Trade, spec tradespec.Spec, strikes Strikes,
	breakEven string, potentialReturn, annualizedReturn float64) string {
	if !spec.Short {
		return ""
	}
	return fmt.Sprintf("Break even: %s\nReturn: %s%% (%s%% ann.)",
		breakEven, formatPercent(potentialReturn), formatPercent(annualizedReturn))
}

// SpreadNotification renders generic multi-leg titles with the strikes
// joined by slashes.
type SpreadNotification struct {
	Now func() time.Time
}

func (n *SpreadNotification) FormatTitle(t *models.Trade, spec tradespec.Spec, strikes Strikes) string {
	parts := make([]string, 0, len(spec.Strikes))
	for _, field := range spec.Strikes {
		parts = append(parts, rawStrike(strikes[field]))
	}

	leg := fmt.Sprintf("%s for %s", strings.Join(parts, "/"), trademath.PrettyPremium(t.PriceFilled))
	return titleWithHeader(t, legLine(t, n.Now, leg))
}

func (n *SpreadNotification) FormatOpeningDescription(t *models.Trade, spec tradespec.Spec, strikes Strikes,
	breakEven string, potentialReturn, annualizedReturn float64) string {
	return ""
}

// ComplexOptionNotification renders strike-by-strike titles for combination
// trades like iron condors and jade lizards, tagging each leg with p or c
// from its strike field name.
type ComplexOptionNotification struct {
	Now func() time.Time
}

func (n *ComplexOptionNotification) FormatTitle(t *models.Trade, spec tradespec.Spec, strikes Strikes) string {
	parts := make([]string, 0, len(spec.Strikes))
	for _, field := range spec.Strikes {
		optionType := "p"
		if strings.Contains(field, "call") {
			optionType = "c"
		}
		parts = append(parts, trademath.PrettyStrike(strikes[field])+optionType)
	}

	leg := fmt.Sprintf("%s for %s", strings.Join(parts, "/"), trademath.PrettyPremium(t.PriceFilled))
	return titleWithHeader(t, legLine(t, n.Now, leg))
}

func (n *ComplexOptionNotification) FormatOpeningDescription(t *models.Trade, spec tradespec.Spec, strikes Strikes,
	breakEven string, potentialReturn, annualizedReturn float64) string {
	return ""
}

// StockNotification renders stock buys and sells.
type StockNotification struct{}

func (StockNotification) FormatTitle(t *models.Trade, spec tradespec.Spec, strikes Strikes) string {
	action := "Sold"
	if strings.Contains(t.Type, "BUY") {
		action = "Bought"
	}
	unit := "shares"
	if t.Quantity == 1 {
		unit = "share"
	}
	return fmt.Sprintf("%s %d %s of %s @ %s",
		action, t.Quantity, unit, t.Symbol, trademath.PrettyStrike(t.PriceFilled))
}

func (StockNotification) FormatOpeningDescription(t *models.Trade, spec tradespec.Spec, strikes Strikes,
	breakEven string, potentialReturn, annualizedReturn float64) string {
	return ""
}

// legLine prefixes the quantity and, when known, the pretty expiration date.
func legLine(t *models.Trade, nowFn func() time.Time, leg string) string {
	if t.ExpiryDate == "" {
		return fmt.Sprintf("%d x %s", t.Quantity, leg)
	}
	expiry, err := trademath.ParseExpiration(t.ExpiryDate)
	if err != nil {
		return fmt.Sprintf("%d x %s", t.Quantity, leg)
	}
	now := time.Now()
	if nowFn != nil {
		now = nowFn()
	}
	return fmt.Sprintf("%d x %s %s", t.Quantity, trademath.PrettyExpiration(expiry, now), leg)
}

func titleWithHeader(t *models.Trade, line string) string {
	return fmt.Sprintf("%s: %s\n%s", t.Symbol, t.Type, line)
}

// rawStrike renders a strike as a bare decimal, keeping ".0" on whole numbers,
// matching how the site prints spread legs: 440.0/430.0.
func rawStrike(value float64) string {
	s := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatPercent trims trailing zeros so 1.01 renders as "1.01" and 12.5 as "12.5".
func formatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
