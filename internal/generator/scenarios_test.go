package generator_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tcgradar/signal-engine/internal/config"
	"github.com/tcgradar/signal-engine/internal/generator"
	"github.com/tcgradar/signal-engine/internal/money"
	"github.com/tcgradar/signal-engine/internal/rotation"
	"github.com/tcgradar/signal-engine/internal/rules"
	"github.com/tcgradar/signal-engine/internal/store"
)

// TestGenerator wires the Ginkgo suite. It skips outright, the same way
// internal/store's plain-testing helper does, when no throwaway Postgres
// is configured — Postgres has no in-process mode to fake one with.
func TestGenerator(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping generator end-to-end scenarios")
	}
	RegisterFailHandler(Fail)
	RunSpecs(t, "signal generator seed scenarios")
}

// recordingNotifier implements sources.Notifier, recording every batch it
// receives so a spec can assert on what was delivered without an actual
// chat provider.
type recordingNotifier struct {
	batches map[string][]any
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{batches: map[string][]any{}}
}

func (n *recordingNotifier) SendOne(ctx context.Context, channelID string, signal any) (bool, error) {
	n.batches[channelID] = append(n.batches[channelID], signal)
	return true, nil
}

func (n *recordingNotifier) SendBatch(ctx context.Context, channelID string, signals []any) (bool, error) {
	n.batches[channelID] = append(n.batches[channelID], signals...)
	return true, nil
}

func (n *recordingNotifier) SendDigest(ctx context.Context, channelID string, signals []any) (bool, error) {
	return n.SendBatch(ctx, channelID, signals)
}

type staticRateFetcher struct{ rate decimal.Decimal }

func (s staticRateFetcher) FetchSpotRate(ctx context.Context) (decimal.Decimal, error) {
	return s.rate, nil
}

var _ = Describe("Signal Generator: per-user threshold (seed scenario 4)", func() {
	var (
		db     *store.Store
		ctx    context.Context
		userA  store.User
		userB  store.User
		lowID  string
		highID string
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = store.Open(ctx, os.Getenv("TEST_DATABASE_URL"))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		lowID = "sv-scn4-" + uuid.NewString()[:8]
		highID = "sv-scn4-" + uuid.NewString()[:8]

		// market_prices.card_id references card_metadata, so each card
		// needs a metadata row before its price can be stored.
		for _, id := range []string{lowID, highID} {
			Expect(db.UpsertCardMetadata(ctx, store.CardMetadata{
				CardID: id, Name: "Scenario 4 card", SetName: "Scenario 4 set",
				DeepLinkURLs: map[string]string{},
			})).To(Succeed())
		}

		// Priced so net profit lands in the $5-15 band (this candidate
		// clears the $5 threshold but not the $15 one).
		Expect(db.UpsertMarketPrice(ctx, store.MarketPrice{
			CardID: lowID, Source: "justtcg",
			PriceUSD: decP("45.00"), PriceEUR: decP("15.00"),
		})).To(Succeed())
		// Priced so net profit clears both a $5 and a $15 threshold.
		Expect(db.UpsertMarketPrice(ctx, store.MarketPrice{
			CardID: highID, Source: "justtcg",
			PriceUSD: decP("60.00"), PriceEUR: decP("10.00"),
		})).To(Succeed())

		userA = store.User{ID: uuid.New(), Active: true, CreatedAt: time.Now().UTC()}
		userB = store.User{ID: uuid.New(), Active: true, CreatedAt: time.Now().UTC()}
		Expect(db.CreateUser(ctx, userA)).To(Succeed())
		Expect(db.CreateUser(ctx, userB)).To(Succeed())
		Expect(db.UpsertUserProfile(ctx, store.UserProfile{
			UserID: userA.ID, MinProfitThreshold: decimal.RequireFromString("5.00"),
			Marketplaces: []string{}, CategoryFilter: []string{},
			ChatChannelIDs: []string{"chan-a"}, DisplayCurrency: "USD",
		})).To(Succeed())
		Expect(db.UpsertUserProfile(ctx, store.UserProfile{
			UserID: userB.ID, MinProfitThreshold: decimal.RequireFromString("15.00"),
			Marketplaces: []string{}, CategoryFilter: []string{},
			ChatChannelIDs: []string{"chan-b"}, DisplayCurrency: "USD",
		})).To(Succeed())
	})

	It("delivers both candidates to the low-threshold user and only the high-profit one to the high-threshold user", func() {
		cfg := config.Default()
		cal := rotation.MustLoad()
		pipeline := rules.NewPipeline(cfg, cal)
		forex := money.NewRateCache(staticRateFetcher{rate: decimal.RequireFromString("1.08")}, cfg.StaticForexFallbackRate, cfg.ForexCacheTTL)
		notifier := newRecordingNotifier()

		gen := generator.New(cfg, db, pipeline, forex, notifier)
		Expect(gen.ScanAndDeliver(ctx)).To(Succeed())

		sigsA, err := db.ListSignalsForTenant(ctx, userA.ID, 10)
		Expect(err).NotTo(HaveOccurred())
		sigsB, err := db.ListSignalsForTenant(ctx, userB.ID, 10)
		Expect(err).NotTo(HaveOccurred())

		Expect(sigsA).To(HaveLen(2), "the $5-threshold user should receive both candidates")
		Expect(sigsB).To(HaveLen(1), "the $15-threshold user should receive only the higher-profit candidate")
		Expect(sigsB[0].CardID).To(Equal(highID))
	})
})

func decP(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
