package generator

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tcgradar/signal-engine/internal/config"
	"github.com/tcgradar/signal-engine/internal/money"
	"github.com/tcgradar/signal-engine/internal/rules"
	"github.com/tcgradar/signal-engine/internal/store"
)

// pickRows selects the buy-side (EUR), sell-side (USD), and velocity rows
// for a card out of every source's market_prices row. "tcgplayer" and
// "cardmarket" are preferred by name when present (they are the
// contractual sell/buy sources per SPEC_FULL.md §6); any other row
// carrying the needed field is an acceptable fallback so a differently
// named source still participates in a scan.
func pickRows(rows []store.MarketPrice) (buy, sell, velocity *store.MarketPrice) {
	for i := range rows {
		r := &rows[i]
		if r.PriceEUR != nil && (buy == nil || r.Source == "cardmarket") {
			buy = r
		}
		if r.PriceUSD != nil && (sell == nil || r.Source == "tcgplayer") {
			sell = r
		}
		if r.Sales30d != nil && r.ActiveListings != nil && (velocity == nil || r.Source == "poketrace") {
			velocity = r
		}
	}
	return buy, sell, velocity
}

// buildCandidate assembles a rules.Candidate from one card's store rows.
// buy and sell are guaranteed non-nil by the caller (ListScannableCardIDs
// already restricted the card set to cards with both currencies present).
func buildCandidate(cardID string, meta *store.CardMetadata, buy, sell, velocity *store.MarketPrice, history []rules.HistoryPoint, forexRate decimal.Decimal, cfg *config.Config, now time.Time) rules.Candidate {
	condition := money.GradeNearMint
	if buy.ConditionGrade != nil {
		condition = money.CardmarketGrade(strings.ToUpper(strings.TrimSpace(*buy.ConditionGrade)))
	}

	seller := rules.SellerInfo{}
	sellerRow := buy
	if sellerRow.SellerRating == nil && sell.SellerRating != nil {
		sellerRow = sell
	}
	if sellerRow.SellerRating != nil && sellerRow.SellerSales != nil {
		seller = rules.SellerInfo{Present: true, Rating: *sellerRow.SellerRating, Sales: *sellerRow.SellerSales}
	}

	vel := rules.VelocityInput{}
	if velocity != nil {
		vel = rules.VelocityInput{
			Present:        true,
			Sales30d:       decimal.NewFromInt(int64(*velocity.Sales30d)),
			ActiveListings: decimal.NewFromInt(int64(*velocity.ActiveListings)),
		}
	}

	var rmeta *rules.Metadata
	if meta != nil {
		rmeta = &rules.Metadata{
			CanonicalID:       meta.CardID,
			Name:              meta.Name,
			SetName:           meta.SetName,
			RegulationMark:    meta.RegulationMark,
			HasSetReleaseDate: meta.SetReleaseDate != nil,
			LegalityStandard:  meta.LegalityStandard,
			TCGPlayerURL:      meta.DeepLinkURLs["tcgplayer"],
			CardmarketURL:     meta.DeepLinkURLs["cardmarket"],
		}
		if meta.SetReleaseDate != nil {
			rmeta.SetReleaseDate = *meta.SetReleaseDate
		}
	}

	return rules.Candidate{
		ListingCanonicalID:    cardID,
		Metadata:              rmeta,
		CMPriceEUR:            *buy.PriceEUR,
		TCGPriceUSD:           *sell.PriceUSD,
		Condition:             condition,
		Seller:                seller,
		Velocity:              vel,
		SellerCardCount:       1,
		PriceHistory:          history,
		MinProfitThresholdUSD: cfg.DefaultMinProfitThreshold,
		ForexRate:             forexRate,
		ReferenceTime:         now,
	}
}

func toRulesHistory(rows []store.PriceHistoryRow) []rules.HistoryPoint {
	points := make([]rules.HistoryPoint, len(rows))
	for i, r := range rows {
		points[i] = rules.HistoryPoint{RecordedAt: r.RecordedAt, PriceUSD: toFloatPtr(r.PriceUSD), PriceEUR: toFloatPtr(r.PriceEUR)}
	}
	return points
}

func toFloatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}
