// Package money is the exact-decimal financial kernel described in
// SPEC_FULL.md §4.A: pessimistic forex conversion, condition mapping,
// platform fees, customs regimes, and net-profit composition. Every
// function here is pure and side-effect free; nothing in this file
// touches a clock, a network socket, or a global. Grounded on the
// original Python `src/utils/forex.py` / `src/engine/profit.py` pair,
// reimplemented with github.com/shopspring/decimal instead of Python's
// decimal.Decimal — this repo never computes a price in float64.
package money

import (
	"github.com/shopspring/decimal"
)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
	one     = decimal.NewFromInt(1)
)

func quantize2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func quantize6(d decimal.Decimal) decimal.Decimal {
	return d.Round(6)
}

// ConvertEURToUSD applies the pessimistic forex conversion from
// SPEC_FULL.md §4.A:
//
//	USD = round(EUR * spotRate * (1 + buffer), 2, half-up)
//
// spotRate must be strictly positive; amount must be non-negative.
func ConvertEURToUSD(amountEUR, spotRate, buffer decimal.Decimal) (decimal.Decimal, error) {
	if amountEUR.IsNegative() {
		return zero, New(KindInvalidArgument, "amount must be non-negative")
	}
	if !spotRate.IsPositive() {
		return zero, New(KindInvalidArgument, "spot rate must be positive")
	}
	factor := spotRate.Mul(one.Add(buffer))
	return quantize2(amountEUR.Mul(factor)), nil
}

// ConvertUSDToEUR applies the symmetric inverse of ConvertEURToUSD:
//
//	EUR = round(USD / (spotRate * (1 + buffer)), 2, half-up)
//
// Using the same (1+buffer) factor on both sides is what keeps a round
// trip symmetric: converting EUR->USD->EUR returns the original amount
// within one cent, because both legs divide/multiply by the identical
// factor rather than applying the buffer twice in the same direction.
func ConvertUSDToEUR(amountUSD, spotRate, buffer decimal.Decimal) (decimal.Decimal, error) {
	if amountUSD.IsNegative() {
		return zero, New(KindInvalidArgument, "amount must be non-negative")
	}
	if !spotRate.IsPositive() {
		return zero, New(KindInvalidArgument, "spot rate must be positive")
	}
	factor := spotRate.Mul(one.Add(buffer))
	return quantize2(amountUSD.Div(factor)), nil
}
