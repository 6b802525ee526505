package strategy

import (
	"errors"
	"testing"
	"time"

	"github.com/thetawatch/thetawatch/internal/models"
	"github.com/thetawatch/thetawatch/internal/tradespec"
)

func fixedNow() time.Time {
	return time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
}

func mustSpec(t *testing.T, typeName string) tradespec.Spec {
	t.Helper()
	registry, err := tradespec.NewRegistry()
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	spec, err := registry.Lookup(typeName)
	if err != nil {
		t.Fatalf("failed to look up %s: %v", typeName, err)
	}
	return spec
}

func TestFactorySelection(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		typeName  string
		wantCalc  string
		wantNotif string
	}{
		{"CASH SECURED PUT", "*strategy.SingleLegCalculation", "*strategy.SingleLegNotification"},
		{"LONG CALL", "*strategy.SingleLegCalculation", "*strategy.SingleLegNotification"},
		{"PUT CREDIT SPREAD", "strategy.DefaultCalculation", "*strategy.SpreadNotification"},
		{"SHORT IRON CONDOR", "strategy.DefaultCalculation", "*strategy.ComplexOptionNotification"},
		{"JADE LIZARD", "strategy.DefaultCalculation", "*strategy.ComplexOptionNotification"},
		{"BUTTERFLY CALL DEBIT SPREAD", "strategy.DefaultCalculation", "*strategy.ComplexOptionNotification"},
		{"BUY COMMON STOCK", "strategy.DefaultCalculation", "strategy.StockNotification"},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			spec := mustSpec(t, tt.typeName)

			if got := typeName(factory.Calculation(spec)); got != tt.wantCalc {
				t.Errorf("Calculation = %s, want %s", got, tt.wantCalc)
			}
			if got := typeName(factory.Notification(spec)); got != tt.wantNotif {
				t.Errorf("Notification = %s, want %s", got, tt.wantNotif)
			}
		})
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *SingleLegCalculation:
		return "*strategy.SingleLegCalculation"
	case DefaultCalculation:
		return "strategy.DefaultCalculation"
	case *SingleLegNotification:
		return "*strategy.SingleLegNotification"
	case *SpreadNotification:
		return "*strategy.SpreadNotification"
	case *ComplexOptionNotification:
		return "*strategy.ComplexOptionNotification"
	case StockNotification:
		return "strategy.StockNotification"
	default:
		return "unknown"
	}
}

func TestSingleLegTitle(t *testing.T) {
	spec := mustSpec(t, "CASH SECURED PUT")
	trade := &models.Trade{
		Type:        "CASH SECURED PUT",
		Symbol:      "SPY",
		Quantity:    1,
		PriceFilled: 1.40,
		ExpiryDate:  "2023-02-18T00:00:00.000Z",
		ShortPut:    models.Strike{Value: 440, Set: true},
	}

	n := &SingleLegNotification{Now: fixedNow}
	got := n.FormatTitle(trade, spec, ExtractStrikes(trade, spec))
	want := "SPY: CASH SECURED PUT\n1 x 2/18 $440p for $1.40"
	if got != want {
		t.Errorf("FormatTitle = %q, want %q", got, want)
	}
}

func TestSingleLegTitleCallSuffix(t *testing.T) {
	spec := mustSpec(t, "COVERED CALL")
	trade := &models.Trade{
		Type:        "COVERED CALL",
		Symbol:      "AAPL",
		Quantity:    2,
		PriceFilled: 2.05,
		ExpiryDate:  "2023-03-17T00:00:00.000Z",
		ShortCall:   models.Strike{Value: 155.5, Set: true},
	}

	n := &SingleLegNotification{Now: fixedNow}
	got := n.FormatTitle(trade, spec, ExtractStrikes(trade, spec))
	want := "AAPL: COVERED CALL\n2 x 3/17 $155.50c for $2.05"
	if got != want {
		t.Errorf("FormatTitle = %q, want %q", got, want)
	}
}

func TestSingleLegTitleWithoutExpiration(t *testing.T) {
	spec := mustSpec(t, "CASH SECURED PUT")
	trade := &models.Trade{
		Type:        "CASH SECURED PUT",
		Symbol:      "SPY",
		Quantity:    1,
		PriceFilled: 1.40,
		ShortPut:    models.Strike{Value: 440, Set: true},
	}

	n := &SingleLegNotification{Now: fixedNow}
	got := n.FormatTitle(trade, spec, ExtractStrikes(trade, spec))
	want := "SPY: CASH SECURED PUT\n1 x $440p for $1.40"
	if got != want {
		t.Errorf("FormatTitle = %q, want %q", got, want)
	}
}

func TestSingleLegOpeningDescription(t *testing.T) {
	spec := mustSpec(t, "CASH SECURED PUT")
	trade := &models.Trade{
		Type:        "CASH SECURED PUT",
		Symbol:      "SPY",
		Quantity:    1,
		PriceFilled: 1.40,
		ExpiryDate:  "2023-02-18T00:00:00.000Z",
		ShortPut:    models.Strike{Value: 440, Set: true},
	}
	strikes := ExtractStrikes(trade, spec)

	calc := &SingleLegCalculation{Now: fixedNow}
	breakEven, err := calc.BreakEven(trade, spec, strikes)
	if err != nil {
		t.Fatalf("BreakEven failed: %v", err)
	}
	if breakEven != "$438.60" {
		t.Errorf("BreakEven = %q, want $438.60", breakEven)
	}

	potential, err := calc.PotentialReturn(trade, spec, strikes)
	if err != nil {
		t.Fatalf("PotentialReturn failed: %v", err)
	}
	annualized, err := calc.AnnualizedReturn(trade, spec, strikes)
	if err != nil {
		t.Fatalf("AnnualizedReturn failed: %v", err)
	}

	n := &SingleLegNotification{Now: fixedNow}
	got := n.FormatOpeningDescription(trade, spec, strikes, breakEven, potential, annualized)
	want := "Break even: $438.60\nReturn: 0.32% (6.49% ann.)"
	if got != want {
		t.Errorf("FormatOpeningDescription = %q, want %q", got, want)
	}
}

func TestLongSingleLegHasNoOpeningStats(t *testing.T) {
	spec := mustSpec(t, "LONG CALL")
	trade := &models.Trade{
		Type:        "LONG CALL",
		Symbol:      "TSLA",
		Quantity:    1,
		PriceFilled: 5.00,
		ExpiryDate:  "2023-03-17T00:00:00.000Z",
		LongCall:    models.Strike{Value: 200, Set: true},
	}
	strikes := ExtractStrikes(trade, spec)

	calc := &SingleLegCalculation{Now: fixedNow}
	if _, err := calc.PotentialReturn(trade, spec, strikes); !errors.Is(err, ErrPotentialReturnUnavailable) {
		t.Errorf("Expected ErrPotentialReturnUnavailable, got %v", err)
	}
	if _, err := calc.AnnualizedReturn(trade, spec, strikes); !errors.Is(err, ErrAnnualizedReturnUnavailable) {
		t.Errorf("Expected ErrAnnualizedReturnUnavailable, got %v", err)
	}

	n := &SingleLegNotification{Now: fixedNow}
	if got := n.FormatOpeningDescription(trade, spec, strikes, "", 0, 0); got != "" {
		t.Errorf("Expected empty description for long option, got %q", got)
	}
}

func TestDefaultCalculation(t *testing.T) {
	spec := mustSpec(t, "PUT CREDIT SPREAD")
	trade := &models.Trade{Type: "PUT CREDIT SPREAD"}

	calc := DefaultCalculation{}
	if _, err := calc.BreakEven(trade, spec, nil); !errors.Is(err, ErrBreakEvenUnavailable) {
		t.Errorf("Expected ErrBreakEvenUnavailable, got %v", err)
	}
	if _, err := calc.PotentialReturn(trade, spec, nil); !errors.Is(err, ErrPotentialReturnUnavailable) {
		t.Errorf("Expected ErrPotentialReturnUnavailable, got %v", err)
	}
	if _, err := calc.AnnualizedReturn(trade, spec, nil); !errors.Is(err, ErrAnnualizedReturnUnavailable) {
		t.Errorf("Expected ErrAnnualizedReturnUnavailable, got %v", err)
	}
}

func TestSpreadTitle(t *testing.T) {
	spec := mustSpec(t, "PUT CREDIT SPREAD")
	trade := &models.Trade{
		Type:        "PUT CREDIT SPREAD",
		Symbol:      "SPY",
		Quantity:    1,
		PriceFilled: 1.40,
		ExpiryDate:  "2023-02-18T00:00:00.000Z",
		ShortPut:    models.Strike{Value: 440, Set: true},
		LongPut:     models.Strike{Value: 430, Set: true},
	}

	n := &SpreadNotification{Now: fixedNow}
	got := n.FormatTitle(trade, spec, ExtractStrikes(trade, spec))
	want := "SPY: PUT CREDIT SPREAD\n1 x 2/18 440.0/430.0 for $1.40"
	if got != want {
		t.Errorf("FormatTitle = %q, want %q", got, want)
	}

	// Fractional strikes keep their own decimals.
	trade.ShortPut = models.Strike{Value: 440.5, Set: true}
	got = n.FormatTitle(trade, spec, ExtractStrikes(trade, spec))
	want = "SPY: PUT CREDIT SPREAD\n1 x 2/18 440.5/430.0 for $1.40"
	if got != want {
		t.Errorf("FormatTitle = %q, want %q", got, want)
	}
}

func TestComplexOptionTitle(t *testing.T) {
	spec := mustSpec(t, "SHORT IRON CONDOR")
	trade := &models.Trade{
		Type:        "SHORT IRON CONDOR",
		Symbol:      "AMD",
		Quantity:    1,
		PriceFilled: 2.50,
		ExpiryDate:  "2023-02-18T00:00:00.000Z",
		LongPut:     models.Strike{Value: 420, Set: true},
		ShortPut:    models.Strike{Value: 430, Set: true},
		ShortCall:   models.Strike{Value: 460, Set: true},
		LongCall:    models.Strike{Value: 470, Set: true},
	}

	n := &ComplexOptionNotification{Now: fixedNow}
	got := n.FormatTitle(trade, spec, ExtractStrikes(trade, spec))
	want := "AMD: SHORT IRON CONDOR\n1 x 2/18 $420p/$430p/$460c/$470c for $2.50"
	if got != want {
		t.Errorf("FormatTitle = %q, want %q", got, want)
	}
}

func TestStockTitle(t *testing.T) {
	buySpec := mustSpec(t, "BUY COMMON STOCK")
	sellSpec := mustSpec(t, "SELL COMMON STOCK")

	tests := []struct {
		name  string
		trade models.Trade
		spec  tradespec.Spec
		want  string
	}{
		{
			"buy many",
			models.Trade{Type: "BUY COMMON STOCK", Symbol: "WKHS", Quantity: 100, PriceFilled: 24.50},
			buySpec,
			"Bought 100 shares of WKHS @ $24.50",
		},
		{
			"buy one",
			models.Trade{Type: "BUY COMMON STOCK", Symbol: "WKHS", Quantity: 1, PriceFilled: 24},
			buySpec,
			"Bought 1 share of WKHS @ $24",
		},
		{
			"sell",
			models.Trade{Type: "SELL COMMON STOCK", Symbol: "WKHS", Quantity: 50, PriceFilled: 31.07},
			sellSpec,
			"Sold 50 shares of WKHS @ $31.07",
		},
	}

	n := StockNotification{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.FormatTitle(&tt.trade, tt.spec, nil)
			if got != tt.want {
				t.Errorf("FormatTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractStrikes(t *testing.T) {
	spec := mustSpec(t, "PUT CREDIT SPREAD")
	trade := &models.Trade{
		Type:     "PUT CREDIT SPREAD",
		ShortPut: models.Strike{Value: 440, Set: true},
		// long_put absent
	}

	strikes := ExtractStrikes(trade, spec)
	if len(strikes) != 1 {
		t.Fatalf("Expected 1 strike, got %d", len(strikes))
	}
	if strikes["short_put"] != 440 {
		t.Errorf("short_put = %v, want 440", strikes["short_put"])
	}

	if got := PrimaryStrike(trade, spec); got != 440 {
		t.Errorf("PrimaryStrike = %v, want 440", got)
	}

	stockSpec := mustSpec(t, "BUY COMMON STOCK")
	if got := PrimaryStrike(trade, stockSpec); got != 0 {
		t.Errorf("PrimaryStrike for stock = %v, want 0", got)
	}
}
