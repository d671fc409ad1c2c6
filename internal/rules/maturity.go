package rules

import (
	"time"

	"github.com/shopspring/decimal"
)

// maturityDecay computes the hype-decay multiplier from set age, per
// SPEC_FULL.md §4.B step 7, grounded on
// original_source/src/engine/maturity.py
// (calculate_maturity_decay + apply_maturity_penalty_with_reprint_rumor,
// merged into one call since the pipeline always wants the final
// multiplier).
func maturityDecay(setReleaseDate, referenceDate time.Time, reprintRumored bool, decay30, decay60, decay90, decayOld, reprintPenalty decimal.Decimal) decimal.Decimal {
	ageDays := int(referenceDate.Sub(setReleaseDate).Hours() / 24)

	if ageDays < 0 {
		return decimal.NewFromInt(1)
	}

	var base decimal.Decimal
	switch {
	case ageDays < 30:
		base = decay30
	case ageDays < 60:
		base = decay60
	case ageDays < 90:
		base = decay90
	default:
		base = decayOld
	}

	if reprintRumored && ageDays > 60 {
		return base.Mul(reprintPenalty)
	}
	return base
}
