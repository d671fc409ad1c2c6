package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InsertSignal writes a newly generated signal. Signal Generator is the
// only ordinary writer; it always writes into the tenant it scanned for.
func (s *Store) InsertSignal(ctx context.Context, sig Signal) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO signals (
			id, tenant_id, card_id, card_name, buy_price_eur, sell_price_usd,
			net_profit, margin_percent, velocity_score, velocity_tier,
			headache_score, headache_tier, maturity_multiplier, condition_code,
			regulation_mark, rotation_risk, trend_label, bundle_tier,
			buy_deep_link, sell_deep_link, cascade_count, acted_on,
			expires_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
	`,
		sig.ID, sig.TenantID, sig.CardID, sig.CardName, sig.BuyPriceEUR, sig.SellPriceUSD,
		sig.NetProfit, sig.MarginPercent, sig.VelocityScore, sig.VelocityTier,
		sig.HeadacheScore, sig.HeadacheTier, sig.MaturityMultiplier, sig.ConditionCode,
		sig.RegulationMark, sig.RotationRisk, sig.TrendLabel, sig.BundleTier,
		sig.BuyDeepLink, sig.SellDeepLink, sig.CascadeCount, sig.ActedOn,
		sig.ExpiresAt, sig.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

// ListSignalsForTenant is the ordinary read path: every query carries the
// caller's tenantID and the SQL always includes WHERE tenant_id = $1. A
// query that reaches the store without this predicate is a defect, which
// is why there is no variant of this method that omits tenantID.
func (s *Store) ListSignalsForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]Signal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, card_id, card_name, buy_price_eur, sell_price_usd,
		       net_profit, margin_percent, velocity_score, velocity_tier,
		       headache_score, headache_tier, maturity_multiplier, condition_code,
		       regulation_mark, rotation_risk, trend_label, bundle_tier,
		       buy_deep_link, sell_deep_link, cascade_count, acted_on,
		       expires_at, created_at
		  FROM signals
		 WHERE tenant_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list signals for tenant: %w", err)
	}
	defer rows.Close()
	return scanSignals(rows)
}

// GetSignalForTenant fetches exactly one signal, scoped to tenantID so a
// caller can never resolve another tenant's id by guessing.
func (s *Store) GetSignalForTenant(ctx context.Context, tenantID, signalID uuid.UUID) (*Signal, error) {
	sigs, err := s.queryTenantScoped(ctx, `
		SELECT id, tenant_id, card_id, card_name, buy_price_eur, sell_price_usd,
		       net_profit, margin_percent, velocity_score, velocity_tier,
		       headache_score, headache_tier, maturity_multiplier, condition_code,
		       regulation_mark, rotation_risk, trend_label, bundle_tier,
		       buy_deep_link, sell_deep_link, cascade_count, acted_on,
		       expires_at, created_at
		  FROM signals
		 WHERE tenant_id = $1 AND id = $2
	`, tenantID, signalID)
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, nil
	}
	return &sigs[0], nil
}

// IncrementCascadeCount advances a signal's cascade counter by one,
// scoped to the owning tenant. Cascade count is monotonically
// non-decreasing; the only other writer of the column is ReissueSignal,
// which stores a count the caller has already advanced.
func (s *Store) IncrementCascadeCount(ctx context.Context, tenantID, signalID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE signals SET cascade_count = cascade_count + 1
		 WHERE tenant_id = $1 AND id = $2
	`, tenantID, signalID)
	if err != nil {
		return fmt.Errorf("increment cascade count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("increment cascade count: no signal %s for tenant %s", signalID, tenantID)
	}
	return nil
}

// GetLatestSignalForTenantAndCard fetches the most recently created
// signal a tenant already has for cardID, the row the Signal Generator
// consults before deciding whether a fresh scan result should cascade
// an existing signal (internal/cascade.ShouldCascade) rather than insert
// a duplicate.
func (s *Store) GetLatestSignalForTenantAndCard(ctx context.Context, tenantID uuid.UUID, cardID string) (*Signal, error) {
	sigs, err := s.queryTenantScoped(ctx, `
		SELECT id, tenant_id, card_id, card_name, buy_price_eur, sell_price_usd,
		       net_profit, margin_percent, velocity_score, velocity_tier,
		       headache_score, headache_tier, maturity_multiplier, condition_code,
		       regulation_mark, rotation_risk, trend_label, bundle_tier,
		       buy_deep_link, sell_deep_link, cascade_count, acted_on,
		       expires_at, created_at
		  FROM signals
		 WHERE tenant_id = $1 AND card_id = $2
		 ORDER BY created_at DESC
		 LIMIT 1
	`, tenantID, cardID)
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, nil
	}
	return &sigs[0], nil
}

// ReissueSignal cascades an existing signal in place: the row's content
// columns are refreshed to sig's latest scan values, cascade_count takes
// sig.CascadeCount (the caller has already run
// internal/cascade.IncrementCascadeCount), and expires_at is pushed out
// to sig.ExpiresAt. sig.ID and sig.TenantID select the row to update.
func (s *Store) ReissueSignal(ctx context.Context, sig Signal) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE signals SET
			card_name = $3, buy_price_eur = $4, sell_price_usd = $5,
			net_profit = $6, margin_percent = $7, velocity_score = $8,
			velocity_tier = $9, headache_score = $10, headache_tier = $11,
			maturity_multiplier = $12, condition_code = $13, regulation_mark = $14,
			rotation_risk = $15, trend_label = $16, bundle_tier = $17,
			buy_deep_link = $18, sell_deep_link = $19, cascade_count = $20,
			expires_at = $21
		 WHERE tenant_id = $1 AND id = $2
	`,
		sig.TenantID, sig.ID, sig.CardName, sig.BuyPriceEUR, sig.SellPriceUSD,
		sig.NetProfit, sig.MarginPercent, sig.VelocityScore, sig.VelocityTier,
		sig.HeadacheScore, sig.HeadacheTier, sig.MaturityMultiplier, sig.ConditionCode,
		sig.RegulationMark, sig.RotationRisk, sig.TrendLabel, sig.BundleTier,
		sig.BuyDeepLink, sig.SellDeepLink, sig.CascadeCount, sig.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("reissue signal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reissue signal: no signal %s for tenant %s", sig.ID, sig.TenantID)
	}
	return nil
}

// MarkActedOn flags a signal as acted-on, scoped to the owning tenant.
func (s *Store) MarkActedOn(ctx context.Context, tenantID, signalID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE signals SET acted_on = TRUE WHERE tenant_id = $1 AND id = $2
	`, tenantID, signalID)
	if err != nil {
		return fmt.Errorf("mark acted on: %w", err)
	}
	return nil
}

// AdminListSignals is the sole cross-tenant read path. It is not gated
// here — the caller (internal/authbypass) must have already validated a
// signed bypass session before this method is reachable at all; the
// method itself carries no tenant predicate by design.
func (s *Store) AdminListSignals(ctx context.Context, limit int) ([]Signal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, card_id, card_name, buy_price_eur, sell_price_usd,
		       net_profit, margin_percent, velocity_score, velocity_tier,
		       headache_score, headache_tier, maturity_multiplier, condition_code,
		       regulation_mark, rotation_risk, trend_label, bundle_tier,
		       buy_deep_link, sell_deep_link, cascade_count, acted_on,
		       expires_at, created_at
		  FROM signals
		 ORDER BY created_at DESC
		 LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("admin list signals: %w", err)
	}
	defer rows.Close()
	return scanSignals(rows)
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSignals(rows rowsScanner) ([]Signal, error) {
	var out []Signal
	for rows.Next() {
		var sig Signal
		if err := rows.Scan(
			&sig.ID, &sig.TenantID, &sig.CardID, &sig.CardName, &sig.BuyPriceEUR, &sig.SellPriceUSD,
			&sig.NetProfit, &sig.MarginPercent, &sig.VelocityScore, &sig.VelocityTier,
			&sig.HeadacheScore, &sig.HeadacheTier, &sig.MaturityMultiplier, &sig.ConditionCode,
			&sig.RegulationMark, &sig.RotationRisk, &sig.TrendLabel, &sig.BundleTier,
			&sig.BuyDeepLink, &sig.SellDeepLink, &sig.CascadeCount, &sig.ActedOn,
			&sig.ExpiresAt, &sig.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (s *Store) queryTenantScoped(ctx context.Context, sql string, args ...any) ([]Signal, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("tenant-scoped query: %w", err)
	}
	defer rows.Close()
	return scanSignals(rows)
}
