// Package orchestrator runs the periodic polling loop: one ticker drives
// per-source jobs at their own cadence, plus a signal scan on its own
// slower cadence, the way the teacher's wiki-RAG background refresher
// (internal/api/station_ai_wiki_rag.go) runs a single ticker loop, but
// generalized to many independently-cadenced jobs with isolated failures.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tcgradar/signal-engine/internal/config"
	"github.com/tcgradar/signal-engine/internal/logger"
	"github.com/tcgradar/signal-engine/internal/metrics"
)

// SignalScanner is implemented by the Signal Generator. The orchestrator
// depends on this narrow interface rather than the concrete generator
// package so it can be tested without wiring a full pipeline.
type SignalScanner interface {
	ScanAndDeliver(ctx context.Context) error
}

// Orchestrator owns the tick loop, per-job last-poll bookkeeping, and the
// cadence-override (boost) map.
type Orchestrator struct {
	cfg     *config.Config
	jobs    []Job
	scanner SignalScanner

	// lastPollMu guards lastPoll: runJob is invoked from per-job errgroup
	// goroutines within one tick, and due() reads it from the tick
	// goroutine while those job goroutines may still be writing.
	lastPollMu sync.Mutex
	lastPoll   map[string]time.Time
	lastScan   time.Time
	boost      *boostMap
}

// New builds an Orchestrator over jobs, each polled at its own cadence,
// plus scanner, polled at cfg.SignalScanCadence.
func New(cfg *config.Config, jobs []Job, scanner SignalScanner) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		jobs:     jobs,
		scanner:  scanner,
		lastPoll: make(map[string]time.Time, len(jobs)),
		boost:    newBoostMap(),
	}
}

// BoostCard reduces the buy-side cadence for cardID to
// cfg.BoostedBuySideCadence until cfg.CadenceOverrideTTL elapses. Safe
// for concurrent calls from the CLI boost subcommand or external hint
// producers.
func (o *Orchestrator) BoostCard(cardID string) {
	o.boost.set(cardID, time.Now().Add(o.cfg.CadenceOverrideTTL))
	logger.Info("ORCHESTRATOR", "card boosted", logger.F("card_id", cardID))
}

// Run drives the tick loop until ctx is canceled, at which point it
// returns nil once the in-flight tick (if any) finishes — a graceful
// shutdown, not an abrupt one.
func (o *Orchestrator) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.cfg.OrchestratorTick)
	defer ticker.Stop()

	logger.Info("ORCHESTRATOR", "started", logger.F("tick", o.cfg.OrchestratorTick.String()))
	for {
		select {
		case <-ctx.Done():
			logger.Info("ORCHESTRATOR", "shutting down")
			return nil
		case now := <-ticker.C:
			o.boost.prune(now)
			o.tick(ctx, now)
		}
	}
}

func (o *Orchestrator) tick(ctx context.Context, now time.Time) {
	g, gctx := errgroup.WithContext(ctx)
	for _, job := range o.jobs {
		job := job
		if !o.due(job, now) {
			continue
		}
		g.Go(func() error {
			o.runJob(gctx, job, now)
			return nil
		})
	}
	// Errors are already logged and isolated per-job inside runJob; Wait
	// only blocks until every due job for this tick has finished.
	_ = g.Wait()

	if o.scanner != nil && now.Sub(o.lastScan) >= o.cfg.SignalScanCadence {
		o.lastScan = now
		if err := o.scanner.ScanAndDeliver(ctx); err != nil {
			logger.Error("ORCHESTRATOR", "signal scan failed", logger.F("err", err.Error()))
			metrics.PollOutcomes.WithLabelValues("signal_scan", "error").Inc()
		} else {
			metrics.PollOutcomes.WithLabelValues("signal_scan", "ok").Inc()
		}
	}
}

func (o *Orchestrator) due(job Job, now time.Time) bool {
	o.lastPollMu.Lock()
	last, ok := o.lastPoll[job.Name]
	o.lastPollMu.Unlock()
	if !ok {
		return true
	}
	return now.Sub(last) >= o.effectiveCadence(job)
}

func (o *Orchestrator) effectiveCadence(job Job) time.Duration {
	if job.IsBuySide && o.boost.active(job.CardID) {
		return o.cfg.BoostedBuySideCadence
	}
	return job.Cadence
}

// runJob executes one job, advancing last_poll even on failure — a
// failing source must not be retried every tick forever, and must not
// block the jobs around it.
func (o *Orchestrator) runJob(ctx context.Context, job Job, now time.Time) {
	o.lastPollMu.Lock()
	o.lastPoll[job.Name] = now
	o.lastPollMu.Unlock()

	start := time.Now()
	err := job.Run(ctx)
	metrics.PollDuration.WithLabelValues(job.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error("ORCHESTRATOR", "job failed", logger.F("job", job.Name), logger.F("err", err.Error()))
		metrics.PollOutcomes.WithLabelValues(job.Name, "error").Inc()
		return
	}
	metrics.PollOutcomes.WithLabelValues(job.Name, "ok").Inc()
}
