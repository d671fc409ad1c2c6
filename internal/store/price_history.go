package store

import (
	"context"
	"fmt"
	"time"
)

// PriceHistoryWindow returns every history row for (cardID, source) recorded
// at or after since, ordered oldest-first — the shape the trend regression
// consumes. Rows are never updated, only appended.
func (s *Store) PriceHistoryWindow(ctx context.Context, cardID, source string, since time.Time) ([]PriceHistoryRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, card_id, source, price_usd, price_eur, recorded_at
		  FROM price_history
		 WHERE card_id = $1 AND source = $2 AND recorded_at >= $3
		 ORDER BY recorded_at ASC
	`, cardID, source, since)
	if err != nil {
		return nil, fmt.Errorf("price history window: %w", err)
	}
	defer rows.Close()

	var out []PriceHistoryRow
	for rows.Next() {
		var r PriceHistoryRow
		if err := rows.Scan(&r.ID, &r.CardID, &r.Source, &r.PriceUSD, &r.PriceEUR, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
