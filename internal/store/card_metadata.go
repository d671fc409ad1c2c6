package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetCardMetadata fetches one card's metadata by its canonical id.
func (s *Store) GetCardMetadata(ctx context.Context, cardID string) (*CardMetadata, error) {
	var m CardMetadata
	var links []byte
	err := s.pool.QueryRow(ctx, `
		SELECT card_id, name, set_name, regulation_mark, set_release_date,
		       legality_standard, deep_link_urls
		  FROM card_metadata WHERE card_id = $1
	`, cardID).Scan(&m.CardID, &m.Name, &m.SetName, &m.RegulationMark,
		&m.SetReleaseDate, &m.LegalityStandard, &links)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get card metadata: %w", err)
	}
	if err := json.Unmarshal(links, &m.DeepLinkURLs); err != nil {
		return nil, fmt.Errorf("decode deep_link_urls: %w", err)
	}
	return &m, nil
}

// UpsertCardMetadata refreshes a card's slower-cadence metadata.
// CardID is the variant-identity join key; two records may only be
// treated as the same printing if CardID is byte-equal.
func (s *Store) UpsertCardMetadata(ctx context.Context, m CardMetadata) error {
	links, err := json.Marshal(m.DeepLinkURLs)
	if err != nil {
		return fmt.Errorf("encode deep_link_urls: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO card_metadata (card_id, name, set_name, regulation_mark,
			set_release_date, legality_standard, deep_link_urls)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (card_id) DO UPDATE SET
			name = EXCLUDED.name,
			set_name = EXCLUDED.set_name,
			regulation_mark = EXCLUDED.regulation_mark,
			set_release_date = EXCLUDED.set_release_date,
			legality_standard = EXCLUDED.legality_standard,
			deep_link_urls = EXCLUDED.deep_link_urls
	`, m.CardID, m.Name, m.SetName, m.RegulationMark, m.SetReleaseDate,
		m.LegalityStandard, links)
	if err != nil {
		return fmt.Errorf("upsert card metadata: %w", err)
	}
	return nil
}

// ListCardIDsForSet returns every known card_id whose set_code prefix
// (the part of "{set_code}-{card_number}" before the dash) matches
// setCode. Jobs that only fetch per-card, never per-set (velocity,
// buy-side boost re-polls), use this to turn a tracked set code into the
// concrete card ids to iterate.
func (s *Store) ListCardIDsForSet(ctx context.Context, setCode string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT card_id FROM card_metadata WHERE card_id LIKE $1
	`, setCode+"-%")
	if err != nil {
		return nil, fmt.Errorf("list card ids for set: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan card id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
