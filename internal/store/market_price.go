package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetMarketPrice fetches the current price row for one (cardID, source).
func (s *Store) GetMarketPrice(ctx context.Context, cardID, source string) (*MarketPrice, error) {
	var p MarketPrice
	p.CardID, p.Source = cardID, source
	err := s.pool.QueryRow(ctx, `
		SELECT price_usd, price_eur, condition_grade, seller_id, seller_rating,
		       seller_sales, sales_30d, active_listings, updated_at
		  FROM market_prices WHERE card_id = $1 AND source = $2
	`, cardID, source).Scan(
		&p.PriceUSD, &p.PriceEUR, &p.ConditionGrade, &p.SellerID, &p.SellerRating,
		&p.SellerSales, &p.Sales30d, &p.ActiveListings, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get market price: %w", err)
	}
	return &p, nil
}

// ListMarketPricesForCard returns every source's price row for a card, the
// shape the Rules Engine needs when it picks dual-currency quotes.
func (s *Store) ListMarketPricesForCard(ctx context.Context, cardID string) ([]MarketPrice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT source, price_usd, price_eur, condition_grade, seller_id,
		       seller_rating, seller_sales, sales_30d, active_listings, updated_at
		  FROM market_prices WHERE card_id = $1
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("list market prices: %w", err)
	}
	defer rows.Close()

	var out []MarketPrice
	for rows.Next() {
		p := MarketPrice{CardID: cardID}
		if err := rows.Scan(&p.Source, &p.PriceUSD, &p.PriceEUR, &p.ConditionGrade,
			&p.SellerID, &p.SellerRating, &p.SellerSales, &p.Sales30d,
			&p.ActiveListings, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan market price row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListScannableCardIDs returns every card_id that has at least one source
// row with a USD price and at least one (possibly the same, possibly a
// different source) row with a EUR price — the join the generator needs
// to find dual-currency candidates across per-source rows, the
// composite-key equivalent of the original single-row
// "price_usd isnot None and price_eur isnot None" predicate.
func (s *Store) ListScannableCardIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT p1.card_id
		  FROM market_prices p1
		  JOIN market_prices p2 ON p1.card_id = p2.card_id
		 WHERE p1.price_usd IS NOT NULL AND p2.price_eur IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("list scannable card ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan scannable card id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// UpsertMarketPrice replaces a (card_id, source) quote and appends exactly
// one PriceHistory row for it, inside a single transaction — every
// successful price upsert must produce one history row.
func (s *Store) UpsertMarketPrice(ctx context.Context, p MarketPrice) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert market price: %w", err)
	}
	defer tx.Rollback(ctx)

	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO market_prices (card_id, source, price_usd, price_eur,
			condition_grade, seller_id, seller_rating, seller_sales,
			sales_30d, active_listings, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (card_id, source) DO UPDATE SET
			price_usd = EXCLUDED.price_usd,
			price_eur = EXCLUDED.price_eur,
			condition_grade = EXCLUDED.condition_grade,
			seller_id = EXCLUDED.seller_id,
			seller_rating = EXCLUDED.seller_rating,
			seller_sales = EXCLUDED.seller_sales,
			sales_30d = EXCLUDED.sales_30d,
			active_listings = EXCLUDED.active_listings,
			updated_at = EXCLUDED.updated_at
	`, p.CardID, p.Source, p.PriceUSD, p.PriceEUR, p.ConditionGrade,
		p.SellerID, p.SellerRating, p.SellerSales, p.Sales30d,
		p.ActiveListings, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert market price: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO price_history (id, card_id, source, price_usd, price_eur, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, uuid.New(), p.CardID, p.Source, p.PriceUSD, p.PriceEUR, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("append price history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert market price: %w", err)
	}
	return nil
}
