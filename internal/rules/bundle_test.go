package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateBundle_Tiers(t *testing.T) {
	price := decimal.RequireFromString("100.00")
	profit := decimal.RequireFromString("10.00")
	threshold := decimal.RequireFromString("25.00")

	r := evaluateBundle(5, price, profit, 5, 2, 1, threshold, true)
	assert.Equal(t, BundleTierAlert, r.Tier)

	r = evaluateBundle(3, price, profit, 5, 2, 1, threshold, true)
	assert.Equal(t, BundleTierPartial, r.Tier)

	r = evaluateBundle(1, price, profit, 5, 2, 1, threshold, true)
	assert.Equal(t, BundleTierSingle, r.Tier)
}

func TestEvaluateBundle_SuppressesOnlyWhenAllThreeConditionsHold(t *testing.T) {
	threshold := decimal.RequireFromString("25.00")

	r := evaluateBundle(1, decimal.RequireFromString("10.00"), decimal.RequireFromString("-5.00"), 5, 2, 1, threshold, true)
	assert.True(t, r.Suppress)

	r = evaluateBundle(1, decimal.RequireFromString("30.00"), decimal.RequireFromString("-5.00"), 5, 2, 1, threshold, true)
	assert.False(t, r.Suppress, "price above threshold should not suppress")

	r = evaluateBundle(1, decimal.RequireFromString("10.00"), decimal.RequireFromString("5.00"), 5, 2, 1, threshold, true)
	assert.False(t, r.Suppress, "profitable single card should not suppress")

	r = evaluateBundle(2, decimal.RequireFromString("10.00"), decimal.RequireFromString("-5.00"), 5, 2, 1, threshold, true)
	assert.False(t, r.Suppress, "SDS > 1 should not suppress")
}

func TestEvaluateBundle_DisabledNeverSuppresses(t *testing.T) {
	threshold := decimal.RequireFromString("25.00")
	r := evaluateBundle(1, decimal.RequireFromString("5.00"), decimal.RequireFromString("-5.00"), 5, 2, 1, threshold, false)
	assert.False(t, r.Suppress)
	assert.Equal(t, 1, r.SDS)
}
