// Package trademath holds the pure calculation and formatting helpers used
// when classifying trades: break-evens, potential/annualized returns, day
// counts, and the currency formats used in notification text.
package trademath

import (
	"fmt"
	"math"
	"time"

	"github.com/thetawatch/thetawatch/internal/models"
)

// extraExpirationDay matches thetagang.com's own day counting, which includes
// the current day in the total. Do not "fix" this: notification output must
// agree with the numbers shown on the site, and the extra day also keeps
// same-day expiries away from zero when used as a divisor.
const extraExpirationDay = 1

// ParseExpiration parses an option expiration timestamp from the API.
func ParseExpiration(value string) (time.Time, error) {
	return models.ParseTimestamp(value)
}

// DaysToExpiration returns the whole days between now and the expiration,
// plus one (site convention, see extraExpirationDay).
func DaysToExpiration(expiry, now time.Time) int {
	days := int(math.Floor(expiry.Sub(now).Hours() / 24))
	return days + extraExpirationDay
}

// PrettyExpiration formats an expiration date as M/DD for expirations within
// a year and M/DD/YY beyond that.
func PrettyExpiration(expiry, now time.Time) string {
	if DaysToExpiration(expiry, now) <= 365 {
		return expiry.Format("1/02")
	}
	return expiry.Format("1/02/06")
}

// PrettyStrike formats a strike price without decimals when it's a whole
// number, like $388, and with two decimals otherwise, like $388.50.
func PrettyStrike(strike float64) string {
	if strike == math.Trunc(strike) {
		return fmt.Sprintf("$%.0f", strike)
	}
	return fmt.Sprintf("$%.2f", strike)
}

// PrettyPremium formats a premium with two decimals always, even for whole
// dollar amounts.
func PrettyPremium(premium float64) string {
	return fmt.Sprintf("$%.2f", premium)
}

// CallBreakEven returns the break-even price on a call: strike plus premium.
func CallBreakEven(strike, premium float64) string {
	return PrettyStrike(strike + premium)
}

// PutBreakEven returns the break-even price on a put: strike minus premium.
func PutBreakEven(strike, premium float64) string {
	return PrettyStrike(strike - premium)
}

// ShortOptionPotentialReturn returns the potential return percentage on a
// short option: premium over collateral at risk.
func ShortOptionPotentialReturn(strike, premium float64) float64 {
	return round2((premium / (strike - premium)) * 100)
}

// ShortAnnualizedReturn annualizes a short option's potential return over the
// days left to expiration. Same-day trades divide by one, not zero.
func ShortAnnualizedReturn(strike, premium float64, daysLeft int) float64 {
	potential := ShortOptionPotentialReturn(strike, premium)
	dte := daysLeft
	if dte < 1 {
		dte = 1
	}
	return round2((potential / float64(dte)) * 365)
}

// PercentageProfit returns the percentage gained or lost on a closed trade,
// always as a positive magnitude. Whether the trade counts as long is derived
// structurally from wager > result rather than from the trade's own
// short/long flag; that mirrors the site's behavior and is kept as-is pending
// product confirmation.
func PercentageProfit(winner bool, wager, result float64) int {
	if wager == 0 {
		return 0
	}
	longTrade := wager > result
	switch {
	case winner && longTrade:
		// Winning long option trade.
		return int(((wager - result) / wager) * 100)
	case winner && !longTrade:
		// Winning short option trade.
		return int(((result - wager) / wager) * 100)
	case !winner && longTrade:
		// Losing long option trade.
		return int(((wager - result) / wager) * 100)
	default:
		// Losing short option trade.
		return int(((result - wager) / wager) * 100)
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
