package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CardmarketSource is the EUR buy-side PriceSource. Condition and seller
// fields come through when Cardmarket's own listing payload carries
// them; a nil seller block means Layer 3 scraping is needed to fill it.
type CardmarketSource struct {
	client  *HTTPClient
	apiKey  string
	baseURL string
}

func NewCardmarketSource(apiKey, baseURL string) *CardmarketSource {
	if baseURL == "" {
		baseURL = "https://api.cardmarket.com/ws/v2.0"
	}
	return &CardmarketSource{client: NewHTTPClient("CARDMARKET"), apiKey: apiKey, baseURL: baseURL}
}

func (s *CardmarketSource) Name() string { return "cardmarket" }

type cardmarketArticle struct {
	ProductID string  `json:"idProduct"`
	PriceEUR  float64 `json:"price"`
	Condition string  `json:"condition"`
	SellerID  string  `json:"sellerId"`
	SellerSat float64 `json:"sellerReputation"`
	SellerCnt int     `json:"sellerSalesCount"`
}

type cardmarketSetResponse struct {
	Article []cardmarketArticle `json:"article"`
}

func (s *CardmarketSource) FetchSet(ctx context.Context, setCode string) ([]PriceRow, error) {
	var resp cardmarketSetResponse
	url := fmt.Sprintf("%s/expansions/%s/singles", s.baseURL, setCode)
	if err := s.client.GetJSON(ctx, url, s.authHeaders(), &resp); err != nil {
		return nil, fmt.Errorf("fetch cardmarket set %s: %w", setCode, err)
	}
	now := time.Now().UTC()
	rows := make([]PriceRow, 0, len(resp.Article))
	for _, a := range resp.Article {
		rows = append(rows, rowFromArticle(a, now))
	}
	return rows, nil
}

func (s *CardmarketSource) FetchCard(ctx context.Context, cardID string) (*PriceRow, error) {
	var a cardmarketArticle
	url := fmt.Sprintf("%s/articles/%s", s.baseURL, cardID)
	if err := s.client.GetJSON(ctx, url, s.authHeaders(), &a); err != nil {
		return nil, fmt.Errorf("fetch cardmarket card %s: %w", cardID, err)
	}
	row := rowFromArticle(a, time.Now().UTC())
	return &row, nil
}

func rowFromArticle(a cardmarketArticle, now time.Time) PriceRow {
	price := decimal.NewFromFloat(a.PriceEUR).Round(2)
	row := PriceRow{CardID: a.ProductID, Source: "cardmarket", PriceEUR: &price, FetchedAt: now}
	if a.Condition != "" {
		row.Condition = &a.Condition
	}
	if a.SellerID != "" {
		row.SellerID = &a.SellerID
		rating := decimal.NewFromFloat(a.SellerSat).Round(2)
		row.SellerRating = &rating
		sales := a.SellerCnt
		row.SellerSales = &sales
	}
	return row
}

func (s *CardmarketSource) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.apiKey}
}
