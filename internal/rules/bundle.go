package rules

import "github.com/shopspring/decimal"

// BundleTier is the Seller-Density Score classification from
// SPEC_FULL.md §4.B step 10.
type BundleTier string

const (
	BundleTierAlert   BundleTier = "bundle_alert"
	BundleTierPartial BundleTier = "partial_bundle"
	BundleTierSingle  BundleTier = "single_card"
)

// bundleResult is the outcome of the Seller-Density Score evaluation.
type bundleResult struct {
	SDS      int
	Tier     BundleTier
	Suppress bool
}

// evaluateBundle is stage 10, grounded on
// original_source/src/engine/bundle.py. When bundle logic is globally
// disabled the SDS is taken as single whatever sellerCardCount is, and
// this never suppresses. When enabled, SDS == single alone is not
// sufficient; the sub-threshold-price and non-positive-profit
// conditions must also hold.
func evaluateBundle(sellerCardCount int, cardPriceUSD, netProfit decimal.Decimal, alertFloor, partialMin, single int, singleCardThreshold decimal.Decimal, bundleLogicEnabled bool) bundleResult {
	sds := sellerCardCount
	if !bundleLogicEnabled {
		sds = single
	}

	var tier BundleTier
	switch {
	case sds >= alertFloor:
		tier = BundleTierAlert
	case sds >= partialMin:
		tier = BundleTierPartial
	default:
		tier = BundleTierSingle
	}

	suppress := bundleLogicEnabled &&
		sds == single &&
		cardPriceUSD.LessThan(singleCardThreshold) &&
		netProfit.LessThanOrEqual(decimal.Zero)

	return bundleResult{SDS: sds, Tier: tier, Suppress: suppress}
}
