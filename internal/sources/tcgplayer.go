package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TCGPlayerSource is the USD sell-side PriceSource. It is the
// authenticated HTTP client spec.md §6 describes: FetchSet/FetchCard
// return PriceRow values, Store is the caller's job (the store package
// owns persistence, not the source).
type TCGPlayerSource struct {
	client  *HTTPClient
	apiKey  string
	baseURL string
}

// NewTCGPlayerSource builds a source bound to apiKey. baseURL defaults to
// the public TCGPlayer API host when empty, so tests can point it at a
// local fixture server.
func NewTCGPlayerSource(apiKey, baseURL string) *TCGPlayerSource {
	if baseURL == "" {
		baseURL = "https://api.tcgplayer.com"
	}
	return &TCGPlayerSource{client: NewHTTPClient("TCGPLAYER"), apiKey: apiKey, baseURL: baseURL}
}

func (s *TCGPlayerSource) Name() string { return "tcgplayer" }

type tcgplayerProductPrice struct {
	ProductID  string  `json:"productId"`
	MarketPrice float64 `json:"marketPrice"`
	LowPrice    float64 `json:"lowPrice"`
}

type tcgplayerSetResponse struct {
	Results []tcgplayerProductPrice `json:"results"`
}

// FetchSet retrieves every card's current price for one set.
func (s *TCGPlayerSource) FetchSet(ctx context.Context, setCode string) ([]PriceRow, error) {
	var resp tcgplayerSetResponse
	url := fmt.Sprintf("%s/pricing/group/%s", s.baseURL, setCode)
	if err := s.client.GetJSON(ctx, url, s.authHeaders(), &resp); err != nil {
		return nil, fmt.Errorf("fetch tcgplayer set %s: %w", setCode, err)
	}
	now := time.Now().UTC()
	rows := make([]PriceRow, 0, len(resp.Results))
	for _, r := range resp.Results {
		price := decimal.NewFromFloat(r.MarketPrice).Round(2)
		rows = append(rows, PriceRow{
			CardID: r.ProductID, Source: s.Name(), PriceUSD: &price, FetchedAt: now,
		})
	}
	return rows, nil
}

// FetchCard retrieves one card's current price. A card TCGPlayer does
// not list (a 404) comes back as an error, not as a nil row.
func (s *TCGPlayerSource) FetchCard(ctx context.Context, cardID string) (*PriceRow, error) {
	var resp tcgplayerProductPrice
	url := fmt.Sprintf("%s/pricing/product/%s", s.baseURL, cardID)
	if err := s.client.GetJSON(ctx, url, s.authHeaders(), &resp); err != nil {
		return nil, fmt.Errorf("fetch tcgplayer card %s: %w", cardID, err)
	}
	price := decimal.NewFromFloat(resp.MarketPrice).Round(2)
	return &PriceRow{CardID: cardID, Source: s.Name(), PriceUSD: &price, FetchedAt: time.Now().UTC()}, nil
}

func (s *TCGPlayerSource) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.apiKey}
}
