package sources

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ForexSource fetches a live EUR->USD spot rate, implementing
// money.RateFetcher without internal/money importing internal/sources
// (money stays a dependency-free kernel per SPEC_FULL.md §4.A).
type ForexSource struct {
	client  *HTTPClient
	apiKey  string
	baseURL string
}

// NewForexSource builds a source bound to apiKey. baseURL defaults to the
// public exchangerate.host-style host when empty.
func NewForexSource(apiKey, baseURL string) *ForexSource {
	if baseURL == "" {
		baseURL = "https://api.exchangerate.host"
	}
	return &ForexSource{client: NewHTTPClient("FOREX"), apiKey: apiKey, baseURL: baseURL}
}

type forexRateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// FetchSpotRate retrieves the current EUR->USD rate. With no API key
// configured it returns an error without making a request.
func (s *ForexSource) FetchSpotRate(ctx context.Context) (decimal.Decimal, error) {
	if s.apiKey == "" {
		return decimal.Zero, fmt.Errorf("fetch forex spot rate: no API key configured")
	}
	var resp forexRateResponse
	url := fmt.Sprintf("%s/latest?base=EUR&symbols=USD", s.baseURL)
	headers := map[string]string{}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}
	if err := s.client.GetJSON(ctx, url, headers, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("fetch forex spot rate: %w", err)
	}
	rate, ok := resp.Rates["USD"]
	if !ok {
		return decimal.Zero, fmt.Errorf("fetch forex spot rate: response missing USD rate")
	}
	return decimal.NewFromFloat(rate), nil
}
