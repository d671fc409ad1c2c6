package sources

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// PoketraceSource is the velocity capability, stored under source key
// "poketrace" per spec.md §6.
type PoketraceSource struct {
	client  *HTTPClient
	apiKey  string
	baseURL string
}

func NewPoketraceSource(apiKey, baseURL string) *PoketraceSource {
	if baseURL == "" {
		baseURL = "https://api.poketrace.example/v1"
	}
	return &PoketraceSource{client: NewHTTPClient("POKETRACE"), apiKey: apiKey, baseURL: baseURL}
}

func (s *PoketraceSource) Name() string { return "poketrace" }

type poketraceVelocity struct {
	Sales30d       float64 `json:"sales_30d"`
	ActiveListings float64 `json:"active_listings"`
}

func (s *PoketraceSource) FetchVelocity(ctx context.Context, cardID string) (*VelocityReading, error) {
	var v poketraceVelocity
	url := fmt.Sprintf("%s/velocity/%s", s.baseURL, cardID)
	if err := s.client.GetJSON(ctx, url, map[string]string{"X-Api-Key": s.apiKey}, &v); err != nil {
		return nil, fmt.Errorf("fetch poketrace velocity %s: %w", cardID, err)
	}
	return &VelocityReading{
		CardID:         cardID,
		Sales30d:       decimal.NewFromFloat(v.Sales30d),
		ActiveListings: decimal.NewFromFloat(v.ActiveListings),
	}, nil
}
