// Package notifier implements sources.Notifier over outbound chat
// webhooks (Discord/Telegram-style "POST a JSON payload to a URL"),
// generalizing the teacher's sendDiscordAlert/sendTelegramAlert pair in
// internal/api/server.go into the batched, paced, per-channel-failure-
// isolated delivery capability spec.md §6 describes.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tcgradar/signal-engine/internal/config"
	"github.com/tcgradar/signal-engine/internal/logger"
	"github.com/tcgradar/signal-engine/internal/store"
)

// WebhookNotifier delivers signals to chat channels identified by a
// webhook URL, one request per message, paced so a burst of signals
// never exceeds the provider's rate limit.
type WebhookNotifier struct {
	client     *http.Client
	limiter    *rate.Limiter
	batchDelay time.Duration
}

// New builds a WebhookNotifier from cfg. The limiter allows one send per
// DeliveryBatchDelay with a burst of 1, matching the "paced delivery"
// requirement from SPEC_FULL.md §5 rather than a bucket that would let
// an entire batch through at once.
func New(cfg *config.Config) *WebhookNotifier {
	interval := cfg.DeliveryBatchDelay
	if interval <= 0 {
		interval = time.Second
	}
	return &WebhookNotifier{
		client:     &http.Client{Timeout: 8 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		batchDelay: interval,
	}
}

// SendOne posts a single signal to channelID (a webhook URL). It never
// panics; any failure is reported through the bool/error return so the
// caller can isolate it per user, per the Notifier capability contract.
func (n *WebhookNotifier) SendOne(ctx context.Context, channelID string, signal any) (bool, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return false, err
	}
	return n.post(ctx, channelID, formatSignal(signal))
}

// SendBatch delivers each signal as its own paced message, stopping (but
// not panicking) on the first context cancellation. One channel's
// failure does not prevent the remaining messages in the batch from
// being attempted.
func (n *WebhookNotifier) SendBatch(ctx context.Context, channelID string, signals []any) (bool, error) {
	allOK := true
	for _, sig := range signals {
		ok, err := n.SendOne(ctx, channelID, sig)
		if err != nil {
			return allOK, err
		}
		if !ok {
			allOK = false
		}
	}
	return allOK, nil
}

// SendDigest collapses every signal into a single message and sends it
// once, unpaced beyond the limiter's own floor, for callers that prefer
// one notification over many.
func (n *WebhookNotifier) SendDigest(ctx context.Context, channelID string, signals []any) (bool, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return false, err
	}
	lines := make([]string, 0, len(signals))
	for _, sig := range signals {
		lines = append(lines, formatSignal(sig))
	}
	return n.post(ctx, channelID, strings.Join(lines, "\n---\n"))
}

func (n *WebhookNotifier) post(ctx context.Context, webhookURL, message string) (bool, error) {
	body, err := json.Marshal(map[string]any{"content": message})
	if err != nil {
		logger.Warn("NOTIFIER", "failed to marshal payload", logger.F("err", err.Error()))
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSpace(webhookURL), bytes.NewReader(body))
	if err != nil {
		logger.Warn("NOTIFIER", "failed to build request", logger.F("err", err.Error()))
		return false, nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		logger.Warn("NOTIFIER", "delivery request failed", logger.F("channel", webhookURL), logger.F("err", err.Error()))
		return false, nil
	}
	defer resp.Body.Close()

	// Discord-style webhooks return 204 No Content on success.
	if resp.StatusCode != http.StatusNoContent && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Warn("NOTIFIER", "delivery rejected",
			logger.F("channel", webhookURL), logger.F("status", resp.StatusCode), logger.F("body", strings.TrimSpace(string(b))))
		return false, nil
	}
	return true, nil
}

// formatSignal renders a human-readable line for a delivered signal:
// card name, buy/sell prices, profit, margin, and deep links, per
// SPEC_FULL.md §7's user-visible-behavior requirement. Any shape other
// than *store.Signal degrades to a plain string rather than panicking.
func formatSignal(signal any) string {
	sig, ok := signal.(*store.Signal)
	if !ok {
		return fmt.Sprintf("%v", signal)
	}
	return fmt.Sprintf(
		"%s | buy €%s -> sell $%s | profit $%s (%s%%) | condition=%s trend=%s bundle=%s | %s | %s",
		sig.CardName, sig.BuyPriceEUR.StringFixed(2), sig.SellPriceUSD.StringFixed(2),
		sig.NetProfit.StringFixed(2), sig.MarginPercent.StringFixed(1),
		sig.ConditionCode, sig.TrendLabel, sig.BundleTier,
		sig.BuyDeepLink, sig.SellDeepLink,
	)
}
