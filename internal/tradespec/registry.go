// Package tradespec defines the static taxonomy of thetagang.com trade types.
// Each known strategy type maps to a Spec describing its shape: option vs.
// stock, leg count, which strike fields apply, short vs. long, and sentiment.
// The table is compiled in, validated once, and read-only afterward.
package tradespec

import (
	"fmt"

	"github.com/thetawatch/thetawatch/internal/models"
)

// Trade sentiments.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// UnknownTypeError reports a trade type with no spec in the registry.
// A trade carrying an unknown type is a classification failure for that one
// record; it must never be silently defaulted.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown trade type %q", e.Type)
}

// Spec is the shape metadata for one trade type.
type Spec struct {
	Type        string
	OptionTrade bool
	SingleLeg   bool
	Strikes     []string
	Short       bool
	Sentiment   string
	ExampleGUID string
}

// IsStockTrade reports whether the spec describes a stock transaction.
func (s Spec) IsStockTrade() bool {
	return !s.OptionTrade
}

// IsMultiLeg reports whether the spec describes a multi-leg option trade.
func (s Spec) IsMultiLeg() bool {
	return s.OptionTrade && !s.SingleLeg
}

// IsLong reports whether the spec describes a net long (debit) trade.
func (s Spec) IsLong() bool {
	return !s.Short
}

// builtinSpecs is the full thetagang.com strategy taxonomy.
// Strike field order matters: the first entry is the primary strike and the
// multi-leg notification strategies render legs in this order.
var builtinSpecs = []Spec{
	{
		Type:        "CASH SECURED PUT",
		OptionTrade: true,
		SingleLeg:   true,
		Strikes:     []string{"short_put"},
		Short:       true,
		Sentiment:   SentimentBullish,
		ExampleGUID: "2093163a-8704-4941-b3c8-6cd02d91a6f6",
	},
	{
		Type:        "COVERED CALL",
		OptionTrade: true,
		SingleLeg:   true,
		Strikes:     []string{"short_call"},
		Short:       true,
		Sentiment:   SentimentNeutral,
		ExampleGUID: "b6d0e145-3e06-40f9-b25c-4c149bd7ae5b",
	},
	{
		Type:        "SHORT NAKED CALL",
		OptionTrade: true,
		SingleLeg:   true,
		Strikes:     []string{"short_call"},
		Short:       true,
		Sentiment:   SentimentBearish,
		ExampleGUID: "64dd2f9a-f4cc-471f-b003-fd215591bb66",
	},
	{
		Type:        "LONG CALL",
		OptionTrade: true,
		SingleLeg:   true,
		Strikes:     []string{"long_call"},
		Short:       false,
		Sentiment:   SentimentBullish,
		ExampleGUID: "26a9ca93-ddea-4d57-b124-1a2e5e4cc748",
	},
	{
		Type:        "LONG PUT",
		OptionTrade: true,
		SingleLeg:   true,
		Strikes:     []string{"long_put"},
		Short:       false,
		Sentiment:   SentimentBearish,
		ExampleGUID: "5d9a8f6b-3f2f-48c6-9287-bd31b1a44c5e",
	},
	{
		Type:        "PUT CREDIT SPREAD",
		OptionTrade: true,
		SingleLeg:   false,
		Strikes:     []string{"short_put", "long_put"},
		Short:       true,
		Sentiment:   SentimentBullish,
		ExampleGUID: "8b53b1a0-4b2d-4f4a-9c6e-2f58a7f5d033",
	},
	{
		Type:        "CALL CREDIT SPREAD",
		OptionTrade: true,
		SingleLeg:   false,
		Strikes:     []string{"short_call", "long_call"},
		Short:       true,
		Sentiment:   SentimentBearish,
		ExampleGUID: "f0a9e2d5-1d92-4a8f-bd3e-6e3ab0a58c17",
	},
	{
		Type:        "PUT DEBIT SPREAD",
		OptionTrade: true,
		SingleLeg:   false,
		Strikes:     []string{"long_put", "short_put"},
		Short:       false,
		Sentiment:   SentimentBearish,
		ExampleGUID: "93c7f5de-88f1-4f6a-8c5c-3e0d1a94be42",
	},
	{
		Type:        "CALL DEBIT SPREAD",
		OptionTrade: true,
		SingleLeg:   false,
		Strikes:     []string{"long_call", "short_call"},
		Short:       false,
		Sentiment:   SentimentBullish,
		ExampleGUID: "a3e86c4f-01da-4f3a-97e2-bb2d5bfa0d11",
	},
	{
		Type:        "LONG STRANGLE",
		OptionTrade: true,
		SingleLeg:   false,
		Strikes:     []string{"long_put", "long_call"},
		Short:       false,
		Sentiment:   SentimentNeutral,
		ExampleGUID: "e2c3a6b0-9ad9-4af5-bc51-7ab2cc8f45d8",
	},
	{
		Type:        "SHORT STRANGLE",
		OptionTrade: true,
		SingleLeg:   false,
		Strikes:     []string{"short_put", "short_call"},
		Short:       true,
		Sentiment:   SentimentNeutral,
		ExampleGUID: "44ef1c52-6f3b-4df1-8e4e-56b6c3097a9d",
	},
	{
		Type:        "LONG STRADDLE",
		OptionTrade: true,
		SingleLeg:   false,
		Strikes:     []string{"long_put", "long_call"},
		Short:       false,
		Sentiment:   SentimentNeutral,
		ExampleGUID: "1b2a96ea-75c7-4d9c-b0b8-9ce1a02f5ed4",
	},
	{
		Type:        "SHORT STRADDLE",
		OptionTrade: true,
		SingleLeg:   false,
		Strikes:     []string{"short_put", "short_call"},
		Short:       true,
		Sentiment:   SentimentNeutral,
		ExampleGUID: "7c5c8f0d-2b53-4c0e-a8a1-4de2f7c3ba69",
	},
	{
		Type:        "JADE LIZARD",
		OptionTrade: true,
		SingleLeg:   false,
		Strikes:     []string{"short_put", "short_call", "long_call"},
		Short:       true,
		Sentiment:   SentimentBullish,
		ExampleGUID: "6a07dd1c-a4b9-4f39-8ba4-12f3c4e25d80",
	},
	{
		Type:        "BUTTERFLY CALL DEBIT SPREAD",
		OptionTrade: true,
		SingleLeg:   false,
		Strikes:     []string{"long_call", "short_call", "long_call2"},
		Short:       false,
		Sentiment:   SentimentNeutral,
		ExampleGUID: "0d4f5a88-9b8c-4e0b-a0cf-62c77b30ad14",
	},
	{
		Type:        "SHORT IRON CONDOR",
		OptionTrade: true,
		SingleLeg:   false,
		Strikes:     []string{"long_put", "short_put", "short_call", "long_call"},
		Short:       true,
		Sentiment:   SentimentNeutral,
		ExampleGUID: "fd21f679-c33e-44b6-9c7f-7e4c2a13df5b",
	},
	{
		Type:        "SHORT IRON BUTTERFLY",
		OptionTrade: true,
		SingleLeg:   false,
		Strikes:     []string{"long_put", "short_put", "short_call", "long_call"},
		Short:       true,
		Sentiment:   SentimentNeutral,
		ExampleGUID: "3a9d4b71-5cf8-4f5e-8d2a-91b0e6c4af27",
	},
	{
		Type:        "BUY COMMON STOCK",
		OptionTrade: false,
		SingleLeg:   false,
		Strikes:     []string{},
		Short:       false,
		Sentiment:   SentimentBullish,
		ExampleGUID: "c8e01f3b-7a64-4f02-9d35-250dbe6a471c",
	},
	{
		Type:        "SELL COMMON STOCK",
		OptionTrade: false,
		SingleLeg:   false,
		Strikes:     []string{},
		Short:       false,
		Sentiment:   SentimentBearish,
		ExampleGUID: "52b4d8ef-10c9-4e4f-bf6a-8a5f3de07c91",
	},
}

// Registry resolves trade type names to their specs.
type Registry struct {
	specs map[string]Spec
}

// NewRegistry builds the registry from the compiled-in spec table.
// The table is validated: duplicate types, unknown strike fields, and
// unknown sentiments all fail construction.
func NewRegistry() (*Registry, error) {
	return newRegistry(builtinSpecs)
}

func newRegistry(specs []Spec) (*Registry, error) {
	knownStrikes := make(map[string]bool, len(models.StrikeFields))
	for _, field := range models.StrikeFields {
		knownStrikes[field] = true
	}
	knownSentiments := map[string]bool{
		SentimentBullish: true,
		SentimentBearish: true,
		SentimentNeutral: true,
	}

	table := make(map[string]Spec, len(specs))
	for _, spec := range specs {
		if spec.Type == "" {
			return nil, fmt.Errorf("spec with empty type")
		}
		if _, exists := table[spec.Type]; exists {
			return nil, fmt.Errorf("duplicate spec for type %q", spec.Type)
		}
		for _, field := range spec.Strikes {
			if !knownStrikes[field] {
				return nil, fmt.Errorf("spec %q references unknown strike field %q", spec.Type, field)
			}
		}
		if !knownSentiments[spec.Sentiment] {
			return nil, fmt.Errorf("spec %q has unknown sentiment %q", spec.Type, spec.Sentiment)
		}
		if !spec.OptionTrade && len(spec.Strikes) > 0 {
			return nil, fmt.Errorf("stock spec %q must not declare strikes", spec.Type)
		}
		table[spec.Type] = spec
	}
	return &Registry{specs: table}, nil
}

// Lookup returns the spec for a trade type name.
func (r *Registry) Lookup(typeName string) (Spec, error) {
	spec, ok := r.specs[typeName]
	if !ok {
		return Spec{}, &UnknownTypeError{Type: typeName}
	}
	return spec, nil
}

// Types returns all registered type names. Useful for diagnostics and tests.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	return names
}
