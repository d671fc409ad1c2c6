// Package generator implements the Signal Generator (SPEC_FULL.md §4.G):
// one scan loads every dual-currency candidate, runs the rules pipeline
// over each, persists accepted signals per subscriber, and delivers them
// in bounded-rate batches. Grounded on
// original_source/src/signals/generator.py's SignalGenerator class, with
// the single global scan_for_signals()/run_and_notify() split adapted to
// this repo's per-tenant Signal storage model.
package generator

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tcgradar/signal-engine/internal/cascade"
	"github.com/tcgradar/signal-engine/internal/config"
	"github.com/tcgradar/signal-engine/internal/logger"
	"github.com/tcgradar/signal-engine/internal/metrics"
	"github.com/tcgradar/signal-engine/internal/money"
	"github.com/tcgradar/signal-engine/internal/rules"
	"github.com/tcgradar/signal-engine/internal/sources"
	"github.com/tcgradar/signal-engine/internal/store"
)

// historyLookback bounds how much price_history the trend analyzer is
// handed; trend.UsablePoints further trims to its own trailing window.
const historyLookback = 14 * 24 * time.Hour

// Generator implements orchestrator.SignalScanner.
type Generator struct {
	cfg      *config.Config
	db       *store.Store
	pipeline *rules.Pipeline
	forex    *money.RateCache
	notifier sources.Notifier
}

// New builds a Generator. pipeline and forex are injected rather than
// constructed here so tests can swap in deterministic fakes.
func New(cfg *config.Config, db *store.Store, pipeline *rules.Pipeline, forex *money.RateCache, notifier sources.Notifier) *Generator {
	return &Generator{cfg: cfg, db: db, pipeline: pipeline, forex: forex, notifier: notifier}
}

// candidateResult is one accepted candidate, kept alongside the raw
// inputs needed to persist a per-tenant Signal and its audit snapshot.
type candidateResult struct {
	cardID         string
	regulationMark string
	buyPriceEUR    decimal.Decimal
	sellPriceUSD   decimal.Decimal
	tcgplayerURL   string
	cardmarketURL  string
	signal         *rules.Signal
}

// ScanAndDeliver runs one full scan-and-deliver pass: it satisfies
// orchestrator.SignalScanner.
func (g *Generator) ScanAndDeliver(ctx context.Context) error {
	results, err := g.scan(ctx)
	if err != nil {
		return err
	}
	return g.deliver(ctx, results)
}

// scan loads every dual-currency card, runs the ten-stage pipeline over
// each, and returns accepted candidates sorted by net profit descending
// and truncated to the configured cap.
func (g *Generator) scan(ctx context.Context) ([]candidateResult, error) {
	cardIDs, err := g.db.ListScannableCardIDs(ctx)
	if err != nil {
		return nil, err
	}

	forexRate := g.forex.Rate(ctx)
	now := time.Now().UTC()

	logger.Info("GENERATOR", "scan started", logger.F("candidates", len(cardIDs)))

	var accepted []candidateResult
	for _, cardID := range cardIDs {
		rows, err := g.db.ListMarketPricesForCard(ctx, cardID)
		if err != nil {
			logger.Warn("GENERATOR", "list market prices failed", logger.F("card_id", cardID), logger.F("err", err.Error()))
			continue
		}
		buy, sell, velocity := pickRows(rows)
		if buy == nil || sell == nil {
			continue
		}

		meta, err := g.db.GetCardMetadata(ctx, cardID)
		if err != nil {
			logger.Warn("GENERATOR", "get card metadata failed", logger.F("card_id", cardID), logger.F("err", err.Error()))
			continue
		}

		historyRows, err := g.db.PriceHistoryWindow(ctx, cardID, sell.Source, now.Add(-historyLookback))
		if err != nil {
			logger.Warn("GENERATOR", "price history window failed", logger.F("card_id", cardID), logger.F("err", err.Error()))
			continue
		}

		candidate := buildCandidate(cardID, meta, buy, sell, velocity, toRulesHistory(historyRows), forexRate, g.cfg, now)

		sig, rejection := g.pipeline.Run(candidate)
		if rejection != nil {
			logger.Debug("GENERATOR", "candidate rejected",
				logger.F("card_id", cardID), logger.F("stage", rejection.Stage), logger.F("reason", rejection.Reason))
			continue
		}

		regulationMark := ""
		if meta != nil {
			regulationMark = meta.RegulationMark
		}
		tcgURL, cmURL := buildSignalURLs(sig.CardName, sig.SetName, sig.TCGPlayerURL, sig.CardmarketURL)
		accepted = append(accepted, candidateResult{
			cardID:         cardID,
			regulationMark: regulationMark,
			buyPriceEUR:    candidate.CMPriceEUR,
			sellPriceUSD:   candidate.TCGPriceUSD,
			tcgplayerURL:   tcgURL,
			cardmarketURL:  cmURL,
			signal:         sig,
		})
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].signal.Profit.NetProfit.GreaterThan(accepted[j].signal.Profit.NetProfit)
	})
	if len(accepted) > g.cfg.MaxSignalsPerScan {
		logger.Info("GENERATOR", "truncating scan results to cap",
			logger.F("accepted", len(accepted)), logger.F("cap", g.cfg.MaxSignalsPerScan))
		accepted = accepted[:g.cfg.MaxSignalsPerScan]
	}

	logger.Success("GENERATOR", "scan completed", logger.F("accepted", len(accepted)))
	return accepted, nil
}

// deliver persists a tenant-scoped Signal + SignalAudit for every user
// whose min_profit_threshold the candidate clears, then batches delivery
// to each of that user's chat channels. One user's failure never aborts
// delivery to the rest, matching run_and_notify()'s per-user isolation.
func (g *Generator) deliver(ctx context.Context, results []candidateResult) error {
	if len(results) == 0 {
		return nil
	}

	users, err := g.db.ListActiveUsers(ctx)
	if err != nil {
		return err
	}

	audit := g.db.Audit()
	now := time.Now().UTC()

	for _, user := range users {
		profile, err := g.db.GetUserProfile(ctx, user.ID)
		if err != nil {
			logger.Warn("GENERATOR", "get user profile failed", logger.F("user_id", user.ID.String()), logger.F("err", err.Error()))
			continue
		}
		if profile == nil {
			continue
		}

		var toDeliver []*store.Signal
		for _, r := range results {
			if r.signal.Profit.NetProfit.LessThan(profile.MinProfitThreshold) {
				continue
			}

			sig, deliverable, err := g.resolveSignal(ctx, user.ID, r, now)
			if err != nil {
				logger.Warn("GENERATOR", "resolve signal failed", logger.F("card_id", r.cardID), logger.F("err", err.Error()))
				continue
			}
			if !deliverable {
				continue
			}
			if err := audit.Insert(ctx, buildAuditRow(sig.ID, r, now)); err != nil {
				logger.Warn("GENERATOR", "insert signal audit failed", logger.F("signal_id", sig.ID.String()), logger.F("err", err.Error()))
			}
			metrics.SignalsEmitted.Inc()
			toDeliver = append(toDeliver, sig)
		}

		if len(toDeliver) == 0 || len(profile.ChatChannelIDs) == 0 {
			continue
		}

		payload := make([]any, len(toDeliver))
		for i, s := range toDeliver {
			payload[i] = s
		}
		for _, channelID := range profile.ChatChannelIDs {
			ok, err := g.notifier.SendBatch(ctx, channelID, payload)
			outcome := "ok"
			if err != nil || !ok {
				outcome = "failed"
				logger.Warn("GENERATOR", "delivery failed",
					logger.F("user_id", user.ID.String()), logger.F("channel_id", channelID))
			}
			metrics.DeliveryOutcomes.WithLabelValues(outcome).Inc()
		}
	}

	return nil
}

// resolveSignal decides whether the candidate becomes a fresh Signal row,
// a cascaded re-issue of an existing one, or no delivery at all. A
// tenant that already has a live (unexpired) signal for the card is
// never re-notified; one that has an expired signal defers to
// cascade.ShouldCascade to decide whether cooldown has elapsed and the
// cascade count has room left. original_source/src/signals/generator.py
// has no such re-issue check (it builds a fresh list every run); this
// step is what makes the persisted cascade_count/expires_at columns act.
func (g *Generator) resolveSignal(ctx context.Context, tenantID uuid.UUID, r candidateResult, now time.Time) (*store.Signal, bool, error) {
	fresh := store.Signal{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		CardID:             r.cardID,
		CardName:           r.signal.CardName,
		BuyPriceEUR:        r.buyPriceEUR,
		SellPriceUSD:       r.sellPriceUSD,
		NetProfit:          r.signal.Profit.NetProfit,
		MarginPercent:      r.signal.Profit.MarginPct,
		VelocityScore:      r.signal.VelocityScore,
		VelocityTier:       r.signal.VelocityTier,
		HeadacheScore:      r.signal.HeadacheScore,
		HeadacheTier:       r.signal.HeadacheTier,
		MaturityMultiplier: r.signal.MaturityDecay,
		ConditionCode:      string(r.signal.Condition),
		RegulationMark:     r.regulationMark,
		RotationRisk:       string(r.signal.RotationRisk),
		TrendLabel:         r.signal.TrendClassification,
		BundleTier:         string(r.signal.BundleTier),
		BuyDeepLink:        r.cardmarketURL,
		SellDeepLink:       r.tcgplayerURL,
		CascadeCount:       0,
		ActedOn:            false,
		ExpiresAt:          now.Add(g.cfg.SignalTTL),
		CreatedAt:          now,
	}

	existing, err := g.db.GetLatestSignalForTenantAndCard(ctx, tenantID, r.cardID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		if err := g.db.InsertSignal(ctx, fresh); err != nil {
			return nil, false, err
		}
		return &fresh, true, nil
	}

	if now.Before(existing.ExpiresAt) {
		// Still live — the subscriber already has this signal, re-notifying
		// would just be noise.
		return nil, false, nil
	}

	ready, reason := cascade.ShouldCascade(existing.ExpiresAt, existing.ActedOn, existing.CascadeCount, g.cfg.CascadeMaxCount, now, g.cfg.CascadeCooldown)
	if !ready {
		logger.Debug("GENERATOR", "cascade not ready",
			logger.F("card_id", r.cardID), logger.F("tenant_id", tenantID.String()), logger.F("reason", reason))
		metrics.CascadeEvents.WithLabelValues("skipped").Inc()
		return nil, false, nil
	}

	newCount, limitReached := cascade.IncrementCascadeCount(existing.CascadeCount, g.cfg.CascadeMaxCount)
	reissued := fresh
	reissued.ID = existing.ID
	reissued.CascadeCount = newCount
	if err := g.db.ReissueSignal(ctx, reissued); err != nil {
		return nil, false, err
	}
	if limitReached {
		logger.Info("GENERATOR", "cascade limit reached, signal will not reissue again",
			logger.F("card_id", r.cardID), logger.F("tenant_id", tenantID.String()))
		metrics.CascadeEvents.WithLabelValues("demoted").Inc()
	}
	metrics.CascadeEvents.WithLabelValues("reissued").Inc()
	return &reissued, true, nil
}

func buildAuditRow(signalID uuid.UUID, r candidateResult, now time.Time) store.SignalAuditRow {
	prices, _ := json.Marshal(map[string]string{
		"cm_eur":  r.buyPriceEUR.String(),
		"tcg_usd": r.sellPriceUSD.String(),
	})
	fees, _ := json.Marshal(map[string]string{
		"revenue":   r.signal.Profit.Revenue.String(),
		"tcg_fees":  r.signal.Profit.TCGFees.String(),
		"customs":   r.signal.Profit.Customs.String(),
		"shipping":  r.signal.Profit.Shipping.String(),
		"forwarder": r.signal.Profit.ForwarderCosts.String(),
	})
	snapshot, _ := json.Marshal(map[string]string{
		"velocity":  r.signal.VelocityScore.String(),
		"maturity":  r.signal.MaturityDecay.String(),
		"headache":  r.signal.HeadacheScore.String(),
		"trend":     r.signal.TrendClassification,
		"bundle_sds": decimal.NewFromInt(int64(r.signal.BundleSDS)).String(),
	})
	return store.SignalAuditRow{
		ID:                 uuid.New(),
		SignalID:           signalID,
		SourcePrices:       prices,
		FeeCalc:            fees,
		SnapshotData:       snapshot,
		CalculationVersion: "v1",
		CreatedAt:          now,
	}
}
