// Package pricing computes line-item totals. Each product name may carry its own
// strategy; names without one use the registry's fallback.
package pricing

import (
	"github.com/shopspring/decimal"
)

// SubscriberWithdrawal is the cash-department service billed by threshold rate.
const SubscriberWithdrawal = "SUBSCRIBER WITHDRAWAL"

// Line carries every input a strategy may need. Stock sales use UnitPrice,
// Quantity and Discount; cash sales use Amount and Rate.
type Line struct {
	ItemName  string
	UnitPrice decimal.Decimal
	Quantity  int
	Discount  decimal.Decimal
	Amount    decimal.Decimal
	Rate      decimal.Decimal
}

// Quote is the priced result of a line
type Quote struct {
	Rate  decimal.Decimal
	Total decimal.Decimal
	Rule  string
}

// Strategy prices a single line
type Strategy interface {
	Name() string
	Price(line Line) Quote
}

// UnitQuantity prices unit_price * quantity - discount
type UnitQuantity struct{}

func (UnitQuantity) Name() string { return "unit_quantity" }

func (s UnitQuantity) Price(line Line) Quote {
	gross := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	return Quote{
		Rate:  line.UnitPrice,
		Total: gross.Sub(line.Discount).Round(2),
		Rule:  s.Name(),
	}
}

// FlatRate prices amount * rate using the line's own rate
type FlatRate struct{}

func (FlatRate) Name() string { return "flat_rate" }

func (s FlatRate) Price(line Line) Quote {
	return Quote{
		Rate:  line.Rate,
		Total: line.Amount.Mul(line.Rate).Round(2),
		Rule:  s.Name(),
	}
}

// ThresholdRate charges amount * Rate once amount reaches Threshold. Below it
// both the applied rate and the total are zero.
type ThresholdRate struct {
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}

func (ThresholdRate) Name() string { return "threshold_rate" }

func (s ThresholdRate) Price(line Line) Quote {
	if line.Amount.LessThan(s.Threshold) {
		return Quote{Rate: decimal.Zero, Total: decimal.Zero, Rule: s.Name()}
	}
	return Quote{Rate: s.Rate, Total: line.Amount.Mul(s.Rate).Round(2), Rule: s.Name()}
}

// Registry maps product names to strategies
type Registry struct {
	fallback Strategy
	byName   map[string]Strategy
}

func NewRegistry(fallback Strategy) *Registry {
	return &Registry{fallback: fallback, byName: make(map[string]Strategy)}
}

// Register binds name to s. Names match exactly, like line items match products.
func (r *Registry) Register(name string, s Strategy) *Registry {
	r.byName[name] = s
	return r
}

func (r *Registry) For(name string) Strategy {
	if s, ok := r.byName[name]; ok {
		return s
	}
	return r.fallback
}

// HasOverride reports whether name has its own strategy
func (r *Registry) HasOverride(name string) bool {
	_, ok := r.byName[name]
	return ok
}

func (r *Registry) Price(line Line) Quote {
	return r.For(line.ItemName).Price(line)
}

// SalesRegistry prices stock sales
func SalesRegistry() *Registry {
	return NewRegistry(UnitQuantity{})
}

// CashRegistry prices cash-department sales
func CashRegistry() *Registry {
	return NewRegistry(FlatRate{}).Register(SubscriberWithdrawal, ThresholdRate{
		Threshold: decimal.NewFromInt(6000),
		Rate:      decimal.RequireFromString("0.001"),
	})
}
