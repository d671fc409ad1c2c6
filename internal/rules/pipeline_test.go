package rules

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcgradar/signal-engine/internal/config"
	"github.com/tcgradar/signal-engine/internal/money"
	"github.com/tcgradar/signal-engine/internal/rotation"
)

func testPipeline(t *testing.T) (*Pipeline, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cal := rotation.MustLoad()
	return NewPipeline(cfg, cal), cfg
}

func baseCandidate(ref time.Time) Candidate {
	return Candidate{
		ListingCanonicalID:    "sv1-25",
		Metadata:              &Metadata{CanonicalID: "sv1-25", Name: "Charizard", SetName: "Scarlet & Violet"},
		CMPriceEUR:            decimal.RequireFromString("40.00"),
		TCGPriceUSD:           decimal.RequireFromString("100.00"),
		Condition:             money.GradeNearMint,
		ForexRate:             decimal.RequireFromString("1.08"),
		MinProfitThresholdUSD: decimal.RequireFromString("5.00"),
		ReferenceTime:         ref,
		SellerCardCount:       1,
	}
}

// Scenario 1: happy path.
func TestPipeline_HappyPath(t *testing.T) {
	p, _ := testPipeline(t)
	ref := time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)

	sig, rej := p.Run(baseCandidate(ref))
	require.Nil(t, rej, "unexpected rejection: %+v", rej)
	require.NotNil(t, sig)

	assert.True(t, sig.Profit.NetProfit.IsPositive())
	assert.Equal(t, "stable", sig.TrendClassification)
	assert.Equal(t, BundleTierSingle, sig.BundleTier)
}

// Scenario 2: suppressed bundle — shipping drives net profit <= 0 at SDS=1.
func TestPipeline_SuppressedBundle(t *testing.T) {
	p, _ := testPipeline(t)
	ref := time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)

	c := baseCandidate(ref)
	c.CMPriceEUR = decimal.RequireFromString("15.00")
	c.TCGPriceUSD = decimal.RequireFromString("20.00")
	c.MinProfitThresholdUSD = decimal.RequireFromString("-1000.00") // let it clear stage 4

	sig, rej := p.Run(c)
	assert.Nil(t, sig)
	require.NotNil(t, rej)
	assert.Equal(t, "bundle", rej.Stage)
}

// Scenario 3: rotation danger, 47 days before the G rotation date.
func TestPipeline_RotationDanger(t *testing.T) {
	p, _ := testPipeline(t)
	ref := time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC) // calendar.yaml: G rotates 2026-04-10

	c := baseCandidate(ref)
	c.Metadata.RegulationMark = "G"
	c.Metadata.LegalityStandard = "Standard"

	sig, rej := p.Run(c)
	assert.Nil(t, sig)
	require.NotNil(t, rej)
	assert.Equal(t, "rotation", rej.Stage)
}

// Scenario 6: 7-day declining price history combined with high velocity
// rejects as Liquidation at the trend stage.
func TestPipeline_LiquidationViaTrendRegression(t *testing.T) {
	p, _ := testPipeline(t)
	ref := time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)

	prices := []float64{50, 42, 34, 26, 18, 10, 2}
	history := make([]HistoryPoint, len(prices))
	for i, price := range prices {
		px := price
		history[i] = HistoryPoint{
			RecordedAt: ref.AddDate(0, 0, -(len(prices) - 1 - i)),
			PriceUSD:   &px,
		}
	}

	c := baseCandidate(ref)
	c.TCGPriceUSD = decimal.RequireFromString("50.00")
	c.CMPriceEUR = decimal.RequireFromString("15.00")
	c.PriceHistory = history
	c.Velocity = VelocityInput{Present: true, Sales30d: decimal.NewFromInt(3), ActiveListings: decimal.NewFromInt(1)} // V = 3 >= 1.5

	sig, rej := p.Run(c)
	assert.Nil(t, sig)
	require.NotNil(t, rej)
	assert.Equal(t, "trend", rej.Stage)
}

func TestPipeline_VariantMismatchRejectsFirst(t *testing.T) {
	p, _ := testPipeline(t)
	ref := time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)

	c := baseCandidate(ref)
	c.Metadata.CanonicalID = "sv1-26" // mismatches ListingCanonicalID

	sig, rej := p.Run(c)
	assert.Nil(t, sig)
	require.NotNil(t, rej)
	assert.Equal(t, "variant", rej.Stage)
}

func TestPipeline_ConditionPoorSuppressed(t *testing.T) {
	p, _ := testPipeline(t)
	ref := time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)

	c := baseCandidate(ref)
	c.Condition = money.GradePoor

	sig, rej := p.Run(c)
	assert.Nil(t, sig)
	require.NotNil(t, rej)
	assert.Equal(t, "condition", rej.Stage)
}

func TestPipeline_SellerQualityRejectsWhenScrapedDataFails(t *testing.T) {
	p, _ := testPipeline(t)
	ref := time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)

	c := baseCandidate(ref)
	c.Seller = SellerInfo{Present: true, Rating: decimal.RequireFromString("90.0"), Sales: 500}

	sig, rej := p.Run(c)
	assert.Nil(t, sig)
	require.NotNil(t, rej)
	assert.Equal(t, "seller_quality", rej.Stage)
}
