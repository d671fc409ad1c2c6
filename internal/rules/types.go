// Package rules implements the ten ordered stages of the rules engine
// described in SPEC_FULL.md §4.B, grounded on the original
// src/signals/generator.py orchestration and its per-stage
// src/engine/*.py modules. Each stage is a small pure function; Pipeline
// composes them in the contractual order and stops on first rejection.
package rules

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tcgradar/signal-engine/internal/money"
	"github.com/tcgradar/signal-engine/internal/rotation"
)

// Metadata is the subset of card_metadata the rules engine consults.
type Metadata struct {
	CanonicalID       string
	Name              string
	SetName           string
	SetReleaseDate    time.Time
	HasSetReleaseDate bool
	ReprintRumored    bool
	RegulationMark    string
	LegalityStandard  string
	TCGPlayerURL      string
	CardmarketURL     string
}

// SellerInfo is scraped seller-quality data (stage 2). Present reports
// whether Layer 3 scraping actually produced a reading for this listing;
// when false, the pipeline falls back to the configured
// SellerQualityMode.
type SellerInfo struct {
	Present bool
	Rating  decimal.Decimal
	Sales   int
}

// VelocityInput carries the raw sales/listing counts used to derive the
// velocity score (stage 5). Present mirrors SellerInfo.Present.
type VelocityInput struct {
	Present         bool
	Sales30d        decimal.Decimal
	ActiveListings  decimal.Decimal
}

// Candidate is one cross-marketplace listing/metadata pair entering the
// pipeline.
type Candidate struct {
	ListingCanonicalID string
	Metadata           *Metadata

	CMPriceEUR  decimal.Decimal
	TCGPriceUSD decimal.Decimal
	Condition   money.CardmarketGrade

	Seller   SellerInfo
	Velocity VelocityInput

	// SellerCardCount is the Seller-Density Score input: how many other
	// profitable cards this scan found from the same seller. Defaults to
	// 1 (single-card path) when bundle logic has nothing else to go on.
	SellerCardCount int

	PriceHistory []HistoryPoint

	MinProfitThresholdUSD decimal.Decimal
	ForexRate             decimal.Decimal
	ReferenceTime         time.Time
}

// HistoryPoint is a (timestamp, USD-or-EUR price) sample fed to the
// trend analyzer.
type HistoryPoint struct {
	RecordedAt time.Time
	PriceUSD   *float64
	PriceEUR   *float64
}

// Signal is the accepted output of a full pipeline run: every
// annotation produced by the ten stages, ready to be persisted and
// delivered.
type Signal struct {
	CardID      string
	CardName    string
	SetName     string
	Condition   money.CardmarketGrade

	Profit money.ProfitBreakdown

	VelocityScore decimal.Decimal
	VelocityTier  int

	TrendClassification string

	MaturityDecay decimal.Decimal

	RotationRisk rotation.Risk

	HeadacheScore decimal.Decimal
	HeadacheTier  int

	BundleSDS     int
	BundleTier    BundleTier

	TCGPlayerURL  string
	CardmarketURL string

	CreatedAt time.Time
}

// Rejection records which stage rejected a candidate and why, for the
// audit trail and for Prometheus stage-rejection counters.
type Rejection struct {
	Stage  string
	Reason string
}

func (r *Rejection) Error() string { return r.Stage + ": " + r.Reason }

func reject(stage, reason string) *Rejection {
	return &Rejection{Stage: stage, Reason: reason}
}
