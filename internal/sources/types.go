// Package sources defines the capability surface the orchestrator and
// signal generator poll through: price/metadata/velocity sources, the
// optional scraper chain, and the notifier chain. Concrete
// implementations live in per-provider packages; this package only
// carries the shapes and interfaces that core code depends on, the way
// the teacher's esi/zkillboard clients expose typed results behind a
// single Client without leaking wire-format detail upstream.
package sources

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceRow is one source's quote for one card. USD and EUR are both
// optional; a source may populate either or both.
type PriceRow struct {
	CardID         string
	Source         string
	PriceUSD       *decimal.Decimal
	PriceEUR       *decimal.Decimal
	Condition      *string
	SellerID       *string
	SellerRating   *decimal.Decimal
	SellerSales    *int
	Sales30d       *int
	ActiveListings *int
	FetchedAt      time.Time
}

// SetInfo is slower-cadence set-level metadata (release date). Legality is
// a per-card fact, not a set-level one — pokemontcg.io's set payload
// carries no legalities block, only a card's own does — so it lives on
// CardMetadata instead.
type SetInfo struct {
	SetCode     string
	SetName     string
	ReleaseDate time.Time
}

// CardMetadata is the metadata-source's per-card result. LegalityStandard
// carries the raw Standard-format legality string the source reports
// (e.g. "Legal", "Banned"), empty when the source has no opinion —
// rotation.Calendar.Classify's banned check depends on this exact value
// surviving unmodified to stage 8 of the rules pipeline.
type CardMetadata struct {
	CardID           string
	Name             string
	SetCode          string
	RegulationMark   string
	LegalityStandard string
	DeepLinkURLs     map[string]string
}

// VelocityReading is the velocity-source's per-card result, stored under
// source key "poketrace".
type VelocityReading struct {
	CardID         string
	Sales30d       decimal.Decimal
	ActiveListings decimal.Decimal
}

// ScrapeMethod tags how a ScrapeResult was obtained. Only css_fallback is
// implemented in this repo; network_intercept and vision are named for
// the capability enum but have no wired implementation.
type ScrapeMethod string

const (
	MethodNetworkIntercept ScrapeMethod = "network_intercept"
	MethodCSSFallback      ScrapeMethod = "css_fallback"
	MethodVision           ScrapeMethod = "vision"
)

// ScrapeResult is the scraper capability's output. It must never carry
// free-text HTML or seller descriptions — only the typed fields below,
// plus (for the vision method, unused here) raw screenshot bytes.
type ScrapeResult struct {
	Method       ScrapeMethod
	PriceEUR     *decimal.Decimal
	SellerID     *string
	SellerRating *decimal.Decimal
	SellerSales  *int
	Condition    *string
	ShippingEUR  *decimal.Decimal
}

// PriceSource is the authenticated per-provider price capability.
type PriceSource interface {
	// Name identifies the source for MarketPrice's composite key.
	Name() string
	FetchSet(ctx context.Context, setCode string) ([]PriceRow, error)
	FetchCard(ctx context.Context, cardID string) (*PriceRow, error)
}

// MetadataSource is the slower-cadence card/set metadata capability.
type MetadataSource interface {
	FetchCard(ctx context.Context, cardID string) (*CardMetadata, error)
	FetchSet(ctx context.Context, setCode string) ([]CardMetadata, error)
	FetchSetInfo(ctx context.Context, setCode string) (*SetInfo, error)
}

// VelocitySource is the poketrace sales-velocity capability.
type VelocitySource interface {
	FetchVelocity(ctx context.Context, cardID string) (*VelocityReading, error)
}

// Scraper is the optional Layer-3 capability chain, gated behind
// ENABLE_LAYER_3_SCRAPING in config.
type Scraper interface {
	Scrape(ctx context.Context, cardID, listingURL string) (*ScrapeResult, error)
}

// Notifier is a chat-channel delivery capability. Implementations must
// not panic or otherwise throw on delivery failure — failures report
// through the bool/error return so the caller can isolate them per user.
type Notifier interface {
	SendOne(ctx context.Context, channelID string, signal any) (bool, error)
	SendBatch(ctx context.Context, channelID string, signals []any) (bool, error)
	SendDigest(ctx context.Context, channelID string, signals []any) (bool, error)
}
