package trend

import "github.com/shopspring/decimal"

// Classification is the four-cell velocity x price-trend matrix from
// SPEC_FULL.md §4.B step 6 / original src/engine/trend.py.
type Classification string

const (
	ClassificationMomentum    Classification = "momentum"
	ClassificationLiquidation Classification = "liquidation"
	ClassificationStable      Classification = "stable"
	ClassificationDeclining   Classification = "declining"
)

// Classify applies the velocity x trend matrix. Only Liquidation
// (high velocity, falling price) is a suppression signal; the caller is
// responsible for turning suppress=true into a CandidateRejected at the
// rules-engine stage.
func Classify(velocityScore, dailyChangeFraction, velocityTier1Floor, fallingKnifeThreshold decimal.Decimal) (classification Classification, suppress bool) {
	highVelocity := velocityScore.GreaterThanOrEqual(velocityTier1Floor)
	fallingPrice := dailyChangeFraction.LessThanOrEqual(fallingKnifeThreshold)

	switch {
	case highVelocity && fallingPrice:
		return ClassificationLiquidation, true
	case highVelocity:
		return ClassificationMomentum, false
	case fallingPrice:
		return ClassificationDeclining, false
	default:
		return ClassificationStable, false
	}
}
