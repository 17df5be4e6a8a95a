package enums

import "fmt"

// StockPolicy controls whether a successful checkout touches catalog stock.
type StockPolicy string

const (
	// StockPolicyRetain leaves stock untouched; the debit is the only mutation.
	StockPolicyRetain StockPolicy = "retain"
	// StockPolicyDecrement reduces each purchased item's stock after the debit.
	StockPolicyDecrement StockPolicy = "decrement"
)

var validStockPolicies = []StockPolicy{
	StockPolicyRetain,
	StockPolicyDecrement,
}

// String implements fmt.Stringer.
func (s StockPolicy) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockPolicy.
func (s StockPolicy) IsValid() bool {
	for _, candidate := range validStockPolicies {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockPolicy converts raw input into a StockPolicy.
func ParseStockPolicy(value string) (StockPolicy, error) {
	for _, candidate := range validStockPolicies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock policy %q", value)
}
