package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestVelocityScore_UsesRatioWhenPresent(t *testing.T) {
	v := velocityScore(VelocityInput{Present: true, Sales30d: decimal.NewFromInt(60), ActiveListings: decimal.NewFromInt(20)})
	assert.True(t, v.Equal(decimal.NewFromInt(3)))
}

func TestVelocityScore_DefaultsToOneWhenAbsent(t *testing.T) {
	v := velocityScore(VelocityInput{Present: false})
	assert.True(t, v.Equal(decimal.NewFromInt(1)))
}

func TestVelocityScore_DefaultsToOneWhenDenominatorZero(t *testing.T) {
	v := velocityScore(VelocityInput{Present: true, Sales30d: decimal.NewFromInt(10), ActiveListings: decimal.Zero})
	assert.True(t, v.Equal(decimal.NewFromInt(1)))
}

func TestVelocityTier_StrictBoundaries(t *testing.T) {
	tier1, tier2 := decimal.RequireFromString("1.5"), decimal.RequireFromString("0.5")

	assert.Equal(t, 3, velocityTier(decimal.RequireFromString("0.5"), tier1, tier2), "equality falls to lower tier")
	assert.Equal(t, 2, velocityTier(decimal.RequireFromString("0.51"), tier1, tier2))
	assert.Equal(t, 2, velocityTier(decimal.RequireFromString("1.5"), tier1, tier2), "equality falls to lower tier")
	assert.Equal(t, 1, velocityTier(decimal.RequireFromString("1.51"), tier1, tier2))
}
