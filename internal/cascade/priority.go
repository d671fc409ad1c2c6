package cascade

import "sort"

// Tier is a subscription tier used for cascade routing priority. It is a
// routing concept, not the subscriber's stored subscription — a
// cascade-exhausted signal is demoted to TierFree for further routing
// only, never by mutating UserProfile.SubscriptionTier.
type Tier string

const (
	TierShop   Tier = "shop"
	TierPro    Tier = "pro"
	TierTrader Tier = "trader"
	TierFree   Tier = "free"
)

var tierRank = map[Tier]int{
	TierShop:   3,
	TierPro:    2,
	TierTrader: 1,
	TierFree:   0,
}

// legacyTierLabels maps pre-rename subscription labels onto the current
// tier names, so a profile written before the rename still routes
// correctly without a data migration.
var legacyTierLabels = map[string]Tier{
	"premium":  TierPro,
	"standard": TierTrader,
}

// NormalizeTier maps a raw stored label to a routing Tier, remapping
// legacy labels and defaulting anything unrecognized to free.
func NormalizeTier(raw string) Tier {
	switch Tier(raw) {
	case TierShop, TierPro, TierTrader, TierFree:
		return Tier(raw)
	}
	if t, ok := legacyTierLabels[raw]; ok {
		return t
	}
	return TierFree
}

// Subscriber is one candidate recipient for a signal's delivery queue.
type Subscriber struct {
	UserID          string
	Tier            Tier
	EngagementScore float64
	Categories      []string // empty/absent matches every category
}

// CategoryMatches reports whether sub is eligible to receive a signal in
// category: an empty/absent category list matches everything.
func CategoryMatches(sub Subscriber, category string) bool {
	if len(sub.Categories) == 0 {
		return true
	}
	for _, c := range sub.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// categoryMatchBonus gives a matched subscriber priority over a
// wildcard (empty-list) subscriber when both are otherwise tied,
// reflecting that an explicit category match is a stronger routing
// signal than a default catch-all.
func categoryMatchBonus(sub Subscriber, category string) int {
	if len(sub.Categories) > 0 && CategoryMatches(sub, category) {
		return 1
	}
	return 0
}

// PriorityOrder sorts candidates (already filtered to those matching
// category) by subscription tier rank desc, engagement score desc,
// category match bonus desc. The sort is stable so ties preserve the
// caller's input order.
func PriorityOrder(candidates []Subscriber, category string) []Subscriber {
	out := make([]Subscriber, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := tierRank[out[i].Tier], tierRank[out[j].Tier]
		if ri != rj {
			return ri > rj
		}
		if out[i].EngagementScore != out[j].EngagementScore {
			return out[i].EngagementScore > out[j].EngagementScore
		}
		return categoryMatchBonus(out[i], category) > categoryMatchBonus(out[j], category)
	})
	return out
}
