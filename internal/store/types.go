package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is the identity root. Users and profiles are admin-created.
type User struct {
	ID        uuid.UUID
	Email     *string
	Active    bool
	CreatedAt time.Time
}

// UserProfile is 1:1 with User, keyed by the same id.
type UserProfile struct {
	UserID                    uuid.UUID
	Country                   string
	SellerLevel               string
	Marketplaces              []string
	SubscriptionTier          string
	MinProfitThreshold        decimal.Decimal
	MinHeadacheTier           int
	CategoryFilter            []string
	DisplayCurrency           string
	CustomsDutyOverride       *string
	ForwarderReceivingFee     decimal.Decimal
	ForwarderConsolidationFee decimal.Decimal
	ForwarderInsuranceRate    decimal.Decimal
	ForwarderEnabled          bool
	ChatChannelIDs            []string
}

// CardMetadata identifies a printing and its rotation/legality facts.
// CardID is of the form "{set_code}-{card_number}" and is the single
// source of truth for variant identity.
type CardMetadata struct {
	CardID           string
	Name             string
	SetName          string
	RegulationMark   string
	SetReleaseDate   *time.Time
	LegalityStandard string
	DeepLinkURLs     map[string]string
}

// MarketPrice is keyed by (CardID, Source) and upserted in place.
type MarketPrice struct {
	CardID         string
	Source         string
	PriceUSD       *decimal.Decimal
	PriceEUR       *decimal.Decimal
	ConditionGrade *string
	SellerID       *string
	SellerRating   *decimal.Decimal
	SellerSales    *int
	Sales30d       *int
	ActiveListings *int
	UpdatedAt      time.Time
}

// PriceHistoryRow is one append-only observation used for trend regression.
type PriceHistoryRow struct {
	ID         uuid.UUID
	CardID     string
	Source     string
	PriceUSD   *decimal.Decimal
	PriceEUR   *decimal.Decimal
	RecordedAt time.Time
}

// Signal is a scan result scoped to a single tenant (User.id).
type Signal struct {
	ID                 uuid.UUID
	TenantID           uuid.UUID
	CardID             string
	CardName           string
	BuyPriceEUR        decimal.Decimal
	SellPriceUSD       decimal.Decimal
	NetProfit          decimal.Decimal
	MarginPercent      decimal.Decimal
	VelocityScore      decimal.Decimal
	VelocityTier       int
	HeadacheScore      decimal.Decimal
	HeadacheTier       int
	MaturityMultiplier decimal.Decimal
	ConditionCode      string
	RegulationMark     string
	RotationRisk       string
	TrendLabel         string
	BundleTier         string
	BuyDeepLink        string
	SellDeepLink       string
	CascadeCount       int
	ActedOn            bool
	ExpiresAt          time.Time
	CreatedAt          time.Time
}

// SignalAuditRow is an append-only, no-tenant-predicate detail record
// tied to exactly one Signal by FK (cascade delete).
type SignalAuditRow struct {
	ID                 uuid.UUID
	SignalID           uuid.UUID
	SourcePrices       []byte // jsonb
	FeeCalc            []byte // jsonb
	SnapshotData       []byte // jsonb
	CalculationVersion string
	CreatedAt          time.Time
}
