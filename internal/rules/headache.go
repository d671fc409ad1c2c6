package rules

import "github.com/shopspring/decimal"

// headacheScore computes H = net_profit / num_transactions and its tier,
// per SPEC_FULL.md §4.B step 9, grounded on
// original_source/src/engine/headache.py. num_transactions must be
// strictly positive.
func headacheScore(netProfit decimal.Decimal, numTransactions int, tier1Floor, tier2Floor decimal.Decimal) (score decimal.Decimal, tier int, ok bool) {
	if numTransactions <= 0 {
		return decimal.Zero, 0, false
	}
	h := netProfit.Div(decimal.NewFromInt(int64(numTransactions)))

	switch {
	case h.GreaterThan(tier1Floor):
		tier = 1
	case h.GreaterThan(tier2Floor):
		tier = 2
	default:
		tier = 3
	}
	return h, tier, true
}
