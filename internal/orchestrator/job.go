package orchestrator

import (
	"context"
	"time"
)

// Job is one independently-cadenced polling unit: a price source's
// per-set fetch, a metadata refresh, a velocity refresh. IsBuySide marks
// jobs eligible for the boost-map cadence override (buy-side Cardmarket
// polling, never the USD sell side or metadata).
type Job struct {
	Name      string
	CardID    string // empty for set-wide jobs; BoostCard has no effect on those
	Cadence   time.Duration
	IsBuySide bool
	Run       func(ctx context.Context) error
}
