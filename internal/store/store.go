// Package store is the PostgreSQL persistence layer. It keeps the
// teacher's hand-written-SQL-per-file idiom (one file per aggregate,
// plain query methods) rather than adopting an ORM, but swaps the
// driver for pgx/v5 + pgxpool since the data model needs jsonb and
// array columns SQLite cannot give it.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tcgradar/signal-engine/internal/logger"
)

// Store wraps a pgx connection pool and exposes one method set per
// aggregate (User, MarketPrice, PriceHistory, Signal). SignalAudit is
// deliberately NOT exposed here — see Audit in audit.go.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL and runs migrations.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("STORE", "connected and migrated")
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Audit returns the append-only, tenant-blind audit accessor bound to
// the same pool.
func (s *Store) Audit() *Audit {
	return &Audit{pool: s.pool}
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("schema_version table: %w", err)
	}
	var version int
	s.pool.QueryRow(ctx, `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`).Scan(&version)

	if version < 1 {
		if _, err := s.pool.Exec(ctx, migrationV1); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("STORE", "applied migration v1")
	}
	return nil
}

const migrationV1 = `
CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	email      TEXT,
	active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_profiles (
	user_id             UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	country             TEXT NOT NULL DEFAULT '',
	seller_level        TEXT NOT NULL DEFAULT '',
	marketplaces        TEXT[] NOT NULL DEFAULT '{}',
	subscription_tier   TEXT NOT NULL DEFAULT 'free',
	min_profit_threshold NUMERIC(12,2) NOT NULL DEFAULT 0,
	min_headache_tier   INTEGER NOT NULL DEFAULT 3,
	category_filter     TEXT[] NOT NULL DEFAULT '{}',
	display_currency    TEXT NOT NULL DEFAULT 'USD',
	customs_duty_override TEXT,
	forwarder_receiving_fee     NUMERIC(12,2) NOT NULL DEFAULT 0,
	forwarder_consolidation_fee NUMERIC(12,2) NOT NULL DEFAULT 0,
	forwarder_insurance_rate    NUMERIC(6,4) NOT NULL DEFAULT 0,
	forwarder_enabled   BOOLEAN NOT NULL DEFAULT FALSE,
	chat_channel_ids    TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS card_metadata (
	card_id           TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	set_name          TEXT NOT NULL,
	regulation_mark   TEXT NOT NULL DEFAULT '',
	set_release_date  DATE,
	legality_standard TEXT NOT NULL DEFAULT '',
	deep_link_urls    JSONB NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS market_prices (
	card_id          TEXT NOT NULL REFERENCES card_metadata(card_id) ON DELETE CASCADE,
	source           TEXT NOT NULL,
	price_usd        NUMERIC(12,2),
	price_eur        NUMERIC(12,2),
	condition_grade  TEXT,
	seller_id        TEXT,
	seller_rating    NUMERIC(5,2),
	seller_sales     INTEGER,
	sales_30d        INTEGER,
	active_listings  INTEGER,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (card_id, source)
);

CREATE TABLE IF NOT EXISTS price_history (
	id          UUID PRIMARY KEY,
	card_id     TEXT NOT NULL,
	source      TEXT NOT NULL,
	price_usd   NUMERIC(12,2),
	price_eur   NUMERIC(12,2),
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_price_history_card_source_time
	ON price_history (card_id, source, recorded_at);

CREATE TABLE IF NOT EXISTS signals (
	id                   UUID PRIMARY KEY,
	tenant_id            UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	card_id              TEXT NOT NULL,
	card_name            TEXT NOT NULL,
	buy_price_eur        NUMERIC(12,2) NOT NULL,
	sell_price_usd       NUMERIC(12,2) NOT NULL,
	net_profit           NUMERIC(12,2) NOT NULL,
	margin_percent       NUMERIC(8,4) NOT NULL,
	velocity_score       NUMERIC(10,4) NOT NULL,
	velocity_tier        INTEGER NOT NULL,
	headache_score       NUMERIC(12,4) NOT NULL,
	headache_tier        INTEGER NOT NULL,
	maturity_multiplier  NUMERIC(4,2) NOT NULL,
	condition_code       TEXT NOT NULL,
	regulation_mark      TEXT NOT NULL,
	rotation_risk        TEXT NOT NULL,
	trend_label          TEXT NOT NULL,
	bundle_tier          TEXT NOT NULL,
	buy_deep_link        TEXT NOT NULL,
	sell_deep_link       TEXT NOT NULL,
	cascade_count        INTEGER NOT NULL DEFAULT 0,
	acted_on             BOOLEAN NOT NULL DEFAULT FALSE,
	expires_at           TIMESTAMPTZ NOT NULL,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_signals_tenant_created ON signals (tenant_id, created_at);

CREATE TABLE IF NOT EXISTS signal_audits (
	id                 UUID PRIMARY KEY,
	signal_id          UUID NOT NULL REFERENCES signals(id) ON DELETE CASCADE,
	source_prices      JSONB NOT NULL,
	fee_calc           JSONB NOT NULL,
	snapshot_data      JSONB NOT NULL,
	calculation_version TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_signal_audits_signal ON signal_audits (signal_id);

INSERT INTO schema_version (version) VALUES (1) ON CONFLICT DO NOTHING;
`
