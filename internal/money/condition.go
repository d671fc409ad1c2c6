package money

import "github.com/shopspring/decimal"

// CardmarketGrade is one of the seven contractual Cardmarket condition
// codes (SPEC_FULL.md §9 — only these seven are contractual; alias
// normalization tables are informational and live at the ingestion
// boundary, not here).
type CardmarketGrade string

const (
	GradeMint        CardmarketGrade = "MT"
	GradeNearMint    CardmarketGrade = "NM"
	GradeExcellent   CardmarketGrade = "EXC"
	GradeGood        CardmarketGrade = "GD"
	GradeLightPlayed CardmarketGrade = "LP"
	GradePlayed      CardmarketGrade = "PL"
	GradePoor        CardmarketGrade = "PO"
)

// TCGPlayerGrade is the TCGPlayer-side condition a Cardmarket grade maps
// onto.
type TCGPlayerGrade string

const (
	TCGNearMint     TCGPlayerGrade = "NM"
	TCGLightPlayed  TCGPlayerGrade = "LP"
	TCGModeratePlayed TCGPlayerGrade = "MP"
	TCGHeavilyPlayed TCGPlayerGrade = "HP"
)

// ConditionMapping is the result of mapping a Cardmarket grade onto its
// pessimistic TCGPlayer equivalent and price multiplier.
type ConditionMapping struct {
	TCGPlayerGrade  TCGPlayerGrade
	PriceMultiplier decimal.Decimal
}

var conditionTable = map[CardmarketGrade]ConditionMapping{
	GradeMint:        {TCGNearMint, decimal.RequireFromString("1.00")},
	GradeNearMint:    {TCGNearMint, decimal.RequireFromString("1.00")},
	GradeExcellent:   {TCGLightPlayed, decimal.RequireFromString("0.85")},
	GradeGood:        {TCGModeratePlayed, decimal.RequireFromString("0.75")},
	GradeLightPlayed: {TCGModeratePlayed, decimal.RequireFromString("0.75")},
	GradePlayed:      {TCGHeavilyPlayed, decimal.RequireFromString("0.60")},
	// GradePoor intentionally absent: MapCondition returns
	// ConditionSuppressed for it, per SPEC_FULL.md §4.A.
}

// MapCondition maps a Cardmarket grade to its TCGPlayer equivalent and
// pessimistic price multiplier. Returns ConditionSuppressed for PO, the
// one grade with no viable TCGPlayer equivalent.
func MapCondition(grade CardmarketGrade) (ConditionMapping, error) {
	if grade == GradePoor {
		return ConditionMapping{}, New(KindConditionSuppressed, "condition PO has no viable TCGPlayer equivalent")
	}
	m, ok := conditionTable[grade]
	if !ok {
		return ConditionMapping{}, New(KindInvalidArgument, "unknown cardmarket grade: "+string(grade))
	}
	return m, nil
}

// ConditionAdjustedSellPrice applies a condition multiplier to a
// TCGPlayer Near-Mint sell price, returning the adjusted price quantized
// to 2dp.
func ConditionAdjustedSellPrice(tcgPriceUSD decimal.Decimal, grade CardmarketGrade) (decimal.Decimal, decimal.Decimal, error) {
	if tcgPriceUSD.IsNegative() {
		return zero, zero, New(KindInvalidArgument, "tcg_price_usd must be non-negative")
	}
	mapping, err := MapCondition(grade)
	if err != nil {
		return zero, zero, err
	}
	adjusted := quantize2(tcgPriceUSD.Mul(mapping.PriceMultiplier))
	return adjusted, mapping.PriceMultiplier, nil
}
