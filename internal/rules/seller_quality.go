package rules

import "github.com/shopspring/decimal"

// checkSellerQuality is stage 2: both thresholds must pass. Grounded on
// original_source/src/engine/seller_quality.py.
func checkSellerQuality(rating decimal.Decimal, sales int, minRating decimal.Decimal, minSales int) bool {
	if rating.LessThan(minRating) {
		return false
	}
	if sales < minSales {
		return false
	}
	return true
}
