package cascade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTier_RemapsLegacyLabels(t *testing.T) {
	assert.Equal(t, TierPro, NormalizeTier("premium"))
	assert.Equal(t, TierTrader, NormalizeTier("standard"))
	assert.Equal(t, TierShop, NormalizeTier("shop"))
	assert.Equal(t, TierFree, NormalizeTier("unknown-label"))
}

func TestCategoryMatches_EmptyListMatchesEverything(t *testing.T) {
	sub := Subscriber{Categories: nil}
	assert.True(t, CategoryMatches(sub, "holo-rares"))

	sub = Subscriber{Categories: []string{"holo-rares"}}
	assert.True(t, CategoryMatches(sub, "holo-rares"))
	assert.False(t, CategoryMatches(sub, "vintage"))
}

func TestPriorityOrder_TierRankDominates(t *testing.T) {
	candidates := []Subscriber{
		{UserID: "free-high-engagement", Tier: TierFree, EngagementScore: 99},
		{UserID: "shop-low-engagement", Tier: TierShop, EngagementScore: 1},
	}
	ordered := PriorityOrder(candidates, "holo-rares")
	assert.Equal(t, "shop-low-engagement", ordered[0].UserID, "tier rank must dominate engagement score")
}

func TestPriorityOrder_EngagementBreaksTierTie(t *testing.T) {
	candidates := []Subscriber{
		{UserID: "pro-low", Tier: TierPro, EngagementScore: 1},
		{UserID: "pro-high", Tier: TierPro, EngagementScore: 10},
	}
	ordered := PriorityOrder(candidates, "holo-rares")
	assert.Equal(t, "pro-high", ordered[0].UserID)
}

func TestPriorityOrder_CategoryMatchBreaksRemainingTie(t *testing.T) {
	candidates := []Subscriber{
		{UserID: "wildcard", Tier: TierTrader, EngagementScore: 5, Categories: nil},
		{UserID: "matched", Tier: TierTrader, EngagementScore: 5, Categories: []string{"holo-rares"}},
	}
	ordered := PriorityOrder(candidates, "holo-rares")
	assert.Equal(t, "matched", ordered[0].UserID, "explicit category match outranks a wildcard subscriber")
}

func TestPriorityOrder_FullRankOrdering(t *testing.T) {
	candidates := []Subscriber{
		{UserID: "trader", Tier: TierTrader, EngagementScore: 50},
		{UserID: "shop", Tier: TierShop, EngagementScore: 1},
		{UserID: "pro", Tier: TierPro, EngagementScore: 1},
		{UserID: "free", Tier: TierFree, EngagementScore: 1000},
	}
	ordered := PriorityOrder(candidates, "holo-rares")
	got := []string{ordered[0].UserID, ordered[1].UserID, ordered[2].UserID, ordered[3].UserID}
	assert.Equal(t, []string{"shop", "pro", "trader", "free"}, got)
}
