package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcgradar/signal-engine/internal/config"
	"github.com/tcgradar/signal-engine/internal/store"
)

func testSignal(cardID string) *store.Signal {
	return &store.Signal{
		CardID:        cardID,
		CardName:      "Charizard ex",
		BuyPriceEUR:   decimal.RequireFromString("15.00"),
		SellPriceUSD:  decimal.RequireFromString("45.00"),
		NetProfit:     decimal.RequireFromString("8.34"),
		MarginPercent: decimal.RequireFromString("18.5"),
		ConditionCode: "NM",
		TrendLabel:    "rising",
		BundleTier:    "B2",
		BuyDeepLink:   "https://cardmarket.example/search?q=charizard",
		SellDeepLink:  "https://tcgplayer.example/search?q=charizard",
	}
}

func TestWebhookNotifier_SendOne_SucceedsOn204(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := json.NewDecoder(r.Body)
		require.NoError(t, body.Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := New(&config.Config{DeliveryBatchDelay: time.Millisecond})
	ok, err := n.SendOne(context.Background(), srv.URL, testSignal("sv1-25"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, received["content"], "Charizard ex")
}

func TestWebhookNotifier_SendOne_FailsOnNon2xxWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := New(&config.Config{DeliveryBatchDelay: time.Millisecond})
	ok, err := n.SendOne(context.Background(), srv.URL, testSignal("sv1-25"))
	require.NoError(t, err, "delivery rejection must surface as ok=false, never as an error")
	assert.False(t, ok)
}

func TestWebhookNotifier_SendBatch_IsolatesEachMessage(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(&config.Config{DeliveryBatchDelay: time.Millisecond})
	signals := []any{testSignal("sv1-25"), testSignal("sv1-26")}
	ok, err := n.SendBatch(context.Background(), srv.URL, signals)
	require.NoError(t, err)
	assert.False(t, ok, "a single failed message marks the batch as partially failed")
	assert.Equal(t, 2, hits, "the second message must still be attempted after the first fails")
}

func TestWebhookNotifier_SendDigest_CollapsesIntoOneRequest(t *testing.T) {
	var hits int
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		buf := make([]byte, 4096)
		n, _ := r.Body.Read(buf)
		body = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(&config.Config{DeliveryBatchDelay: time.Millisecond})
	ok, err := n.SendDigest(context.Background(), srv.URL, []any{testSignal("sv1-25"), testSignal("sv1-26")})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, hits, "digest delivery is a single request regardless of signal count")
	assert.Contains(t, body, "---", "digest messages are joined with a separator")
}

func TestFormatSignal_FallsBackToPlainStringForUnknownShape(t *testing.T) {
	line := formatSignal("not a signal")
	assert.Equal(t, "not a signal", line)
}
