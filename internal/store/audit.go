package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Audit is the append-only, tenant-blind accessor for SignalAudit rows.
// It is deliberately a distinct type from Store rather than another
// method set on Store: the only legitimate callers are the Signal
// Generator writing the audit row for the signal it just created, and
// the privileged bypass path reading across tenants, so keeping it
// separate means a reviewer sees every cross-tenant-capable call site
// by grepping for store.Audit rather than scrolling past a Store method.
type Audit struct {
	pool *pgxpool.Pool
}

// Insert writes one audit row for signalID. Audit rows are never mutated.
func (a *Audit) Insert(ctx context.Context, row SignalAuditRow) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO signal_audits (id, signal_id, source_prices, fee_calc,
			snapshot_data, calculation_version, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, row.ID, row.SignalID, row.SourcePrices, row.FeeCalc, row.SnapshotData,
		row.CalculationVersion, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert signal audit: %w", err)
	}
	return nil
}

// Get fetches one audit row by signal id, with no tenant check — callers
// reaching this method must already have authorized the read (the
// generator reading its own just-written row, or a bypass session).
func (a *Audit) Get(ctx context.Context, signalID uuid.UUID) (*SignalAuditRow, error) {
	var row SignalAuditRow
	err := a.pool.QueryRow(ctx, `
		SELECT id, signal_id, source_prices, fee_calc, snapshot_data,
		       calculation_version, created_at
		  FROM signal_audits WHERE signal_id = $1
	`, signalID).Scan(&row.ID, &row.SignalID, &row.SourcePrices, &row.FeeCalc,
		&row.SnapshotData, &row.CalculationVersion, &row.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get signal audit: %w", err)
	}
	return &row, nil
}
