package rules

import (
	"github.com/shopspring/decimal"

	"github.com/tcgradar/signal-engine/internal/config"
	"github.com/tcgradar/signal-engine/internal/metrics"
	"github.com/tcgradar/signal-engine/internal/money"
	"github.com/tcgradar/signal-engine/internal/rotation"
	"github.com/tcgradar/signal-engine/internal/trend"
)

// defaultSellerRating/defaultSellerSales are the SellerQualityDefaultPair
// fallback values documented in SPEC_FULL.md §4.B step 2 and
// original_source/src/signals/generator.py's PHASE_2_STUB
// Decimal("98.5")/100 pair.
var defaultSellerRating = decimal.RequireFromString("98.5")

const defaultSellerSales = 100

// Pipeline executes the ten ordered stages from SPEC_FULL.md §4.B in
// strict sequence, stopping on the first rejection, grounded on the
// original src/signals/generator.py orchestration.
type Pipeline struct {
	cfg      *config.Config
	calendar *rotation.Calendar
	fees     money.FeeSchedule
	customs  money.CustomsSchedule
}

// NewPipeline builds a Pipeline from the engine configuration and the
// loaded rotation calendar.
func NewPipeline(cfg *config.Config, calendar *rotation.Calendar) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		calendar: calendar,
		fees: money.FeeSchedule{
			TCGPlayerRate:  cfg.TCGPlayerFeeRate,
			TCGPlayerCap:   cfg.TCGPlayerFeeCap,
			TCGPlayerFixed: cfg.TCGPlayerFixedFee,
			EBayRate:       cfg.EBayFeeRate,
			CardmarketRate: cfg.CardmarketFeeRate,
		},
		customs: money.CustomsSchedule{
			USDeMinimisUSD:        cfg.USDeMinimisUSD,
			USCustomsStandardRate: cfg.USCustomsStandardRate,
			EUVATRate:             cfg.EUVATRate,
			EUCustomsFlatDutyEUR:  cfg.EUCustomsFlatDutyEUR,
			UKLowValueThresholdUS: cfg.UKLowValueThresholdUS,
			UKVATRate:             cfg.UKVATRate,
			ForexBuffer:           cfg.DefaultForexBuffer,
		},
	}
}

// Run executes all ten stages against c. On rejection it returns a nil
// Signal and the Rejection describing which stage and why; metrics.StageRejections
// is incremented with the stage name either way the caller's audit layer
// wants it.
func (p *Pipeline) Run(c Candidate) (*Signal, *Rejection) {
	canonicalID := c.ListingCanonicalID
	metaID := canonicalID
	if c.Metadata != nil {
		metaID = c.Metadata.CanonicalID
	}

	// 1. Variant check.
	if validateVariant(c.ListingCanonicalID, metaID) != VariantMatchOK {
		return p.rejected(reject("variant", "canonical id mismatch or missing"))
	}

	// 2. Seller quality floor. When Layer 3 scraping produced no reading,
	// SellerQualityMode decides whether to fall back to the documented
	// default pair or skip the stage outright.
	if c.Seller.Present {
		if !checkSellerQuality(c.Seller.Rating, c.Seller.Sales, p.cfg.MinSellerRating, p.cfg.MinSellerSales) {
			return p.rejected(reject("seller_quality", "rating or lifetime sales below floor"))
		}
	} else if p.cfg.SellerQualityMode == config.SellerQualityDefaultPair {
		if !checkSellerQuality(defaultSellerRating, defaultSellerSales, p.cfg.MinSellerRating, p.cfg.MinSellerSales) {
			return p.rejected(reject("seller_quality", "rating or lifetime sales below floor"))
		}
	}

	// 3 + 4. Condition mapping and net profit (Money Kernel).
	regime := money.Regime(p.cfg.DefaultCustomsRegime)
	profit, err := money.CalculateNetProfit(money.ProfitInputs{
		CMPriceEUR:    c.CMPriceEUR,
		TCGPriceUSD:   c.TCGPriceUSD,
		ForexRate:     c.ForexRate,
		ForexBuffer:   p.cfg.DefaultForexBuffer,
		Condition:     c.Condition,
		CustomsRegime: regime,
		ShippingUSD:   p.cfg.ShippingCostUSD,
		Fees:          p.fees,
		Customs:       p.customs,
	})
	if err != nil {
		if money.IsKind(err, money.KindConditionSuppressed) {
			return p.rejected(reject("condition", "PO condition has no viable TCGPlayer equivalent"))
		}
		return p.rejected(reject("condition", err.Error()))
	}
	if profit.NetProfit.LessThan(c.MinProfitThresholdUSD) {
		return p.rejected(reject("net_profit", "net profit below profile threshold"))
	}

	// 5. Velocity score.
	vScore := velocityScore(c.Velocity)
	vTier := velocityTier(vScore, p.cfg.VelocityTier1Floor, p.cfg.VelocityTier2Floor)

	// 6. Trend classification.
	points := trend.UsablePoints(toHistoryRows(c.PriceHistory), c.ReferenceTime)
	dailyChange := trend.DailyChangeFraction(points)
	classification, suppress := trend.Classify(vScore, dailyChange, p.cfg.VelocityTier1Floor, p.cfg.FallingKnifeThreshold)
	if suppress {
		return p.rejected(reject("trend", "liquidation: high velocity with falling price"))
	}

	// 7. Maturity decay.
	decay := decimal.NewFromInt(1)
	if c.Metadata != nil && c.Metadata.HasSetReleaseDate {
		decay = maturityDecay(
			c.Metadata.SetReleaseDate, c.ReferenceTime, c.Metadata.ReprintRumored,
			p.cfg.MaturityDecay30D, p.cfg.MaturityDecay60D, p.cfg.MaturityDecay90D, p.cfg.MaturityDecayOld,
			p.cfg.MaturityReprintRumorPenalty,
		)
	}

	// 8. Rotation risk.
	var regMark, legality string
	if c.Metadata != nil {
		regMark, legality = c.Metadata.RegulationMark, c.Metadata.LegalityStandard
	}
	risk := p.calendar.Classify(regMark, legality, c.ReferenceTime)
	if risk.AtRisk() {
		return p.rejected(reject("rotation", "rotation risk "+string(risk)))
	}

	// 9. Headache score.
	headache, hTier, ok := headacheScore(profit.NetProfit, 1, p.cfg.HeadacheTier1Floor, p.cfg.HeadacheTier2Floor)
	if !ok {
		return p.rejected(reject("headache", "non-positive transaction count"))
	}

	// 10. Bundle logic.
	sellerCardCount := c.SellerCardCount
	if sellerCardCount < 1 {
		sellerCardCount = 1
	}
	bundle := evaluateBundle(
		sellerCardCount, c.TCGPriceUSD, profit.NetProfit,
		p.cfg.SDSBundleAlertFloor, p.cfg.SDSPartialMin, p.cfg.SDSSingle,
		p.cfg.BundleSingleCardThreshold, p.cfg.EnableBundleLogic,
	)
	if bundle.Suppress {
		return p.rejected(reject("bundle", "single card under shipping-amortization threshold at non-positive profit"))
	}

	name, setName, tcgURL, cmURL := "", "", "", ""
	if c.Metadata != nil {
		name, setName = c.Metadata.Name, c.Metadata.SetName
		tcgURL, cmURL = c.Metadata.TCGPlayerURL, c.Metadata.CardmarketURL
	}

	return &Signal{
		CardID:               canonicalID,
		CardName:             name,
		SetName:              setName,
		Condition:            c.Condition,
		Profit:               profit,
		VelocityScore:        vScore,
		VelocityTier:         vTier,
		TrendClassification:  string(classification),
		MaturityDecay:        decay,
		RotationRisk:         risk,
		HeadacheScore:        headache,
		HeadacheTier:         hTier,
		BundleSDS:            bundle.SDS,
		BundleTier:           bundle.Tier,
		TCGPlayerURL:         tcgURL,
		CardmarketURL:        cmURL,
		CreatedAt:            c.ReferenceTime,
	}, nil
}

func (p *Pipeline) rejected(r *Rejection) (*Signal, *Rejection) {
	metrics.StageRejections.WithLabelValues(r.Stage).Inc()
	return nil, r
}

func toHistoryRows(points []HistoryPoint) []trend.HistoryRow {
	rows := make([]trend.HistoryRow, len(points))
	for i, p := range points {
		rows[i] = trend.HistoryRow{RecordedAt: p.RecordedAt, PriceUSD: p.PriceUSD, PriceEUR: p.PriceEUR}
	}
	return rows
}
