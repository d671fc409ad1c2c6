package rules

import "github.com/shopspring/decimal"

// velocityScore computes V = sales_30d / active_listings when data is
// present and the denominator is positive; otherwise V = 1.0, per
// SPEC_FULL.md §4.B step 5 / original_source/src/engine/velocity.py
// (adapted: the original scores a pre-given daily_sales figure directly,
// this computes the ratio the spec actually calls for).
func velocityScore(input VelocityInput) decimal.Decimal {
	if !input.Present || !input.ActiveListings.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return input.Sales30d.Div(input.ActiveListings)
}

// velocityTier classifies V into tier 1 (V > tier1Floor), tier 2
// (V > tier2Floor), else tier 3. Boundaries are strict; equality falls
// to the lower tier.
func velocityTier(v, tier1Floor, tier2Floor decimal.Decimal) int {
	switch {
	case v.GreaterThan(tier1Floor):
		return 1
	case v.GreaterThan(tier2Floor):
		return 2
	default:
		return 3
	}
}
