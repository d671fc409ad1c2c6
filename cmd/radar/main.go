// Command radar is the TCG Radar signal-engine daemon: it polls the
// configured price/metadata/velocity sources on their own cadences,
// runs the rules pipeline over every dual-currency candidate, and
// delivers accepted signals to subscribers' chat channels. Grounded on
// the teacher's main.go (flag parsing, .env loading, logger.Banner,
// graceful shutdown via signal.NotifyContext, and the Go 1.22
// method+path ServeMux idiom from internal/api/server.go's Handler),
// translated from a single embedded-frontend HTTP server into a
// cobra-driven polling daemon with Prometheus and operator-boost
// endpoints, per SPEC_FULL.md §4.L.
package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tcgradar/signal-engine/internal/authbypass"
	"github.com/tcgradar/signal-engine/internal/config"
	"github.com/tcgradar/signal-engine/internal/generator"
	"github.com/tcgradar/signal-engine/internal/logger"
	"github.com/tcgradar/signal-engine/internal/metrics"
	"github.com/tcgradar/signal-engine/internal/money"
	"github.com/tcgradar/signal-engine/internal/notifier"
	"github.com/tcgradar/signal-engine/internal/orchestrator"
	"github.com/tcgradar/signal-engine/internal/rotation"
	"github.com/tcgradar/signal-engine/internal/rules"
	"github.com/tcgradar/signal-engine/internal/sources"
	"github.com/tcgradar/signal-engine/internal/store"
)

var version = "dev"

var (
	metricsAddr string
	adminAddr   string
)

func main() {
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "override the Prometheus scrape address")
	rootCmd.PersistentFlags().StringVar(&adminAddr, "admin-addr", "", "override the operator boost-endpoint address")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(boostCmd)
	rootCmd.AddCommand(issueBypassTokenCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "radar polls card-game marketplaces and delivers dual-currency arbitrage signals.",
	Long:  "radar polls card-game marketplaces and delivers dual-currency arbitrage signals.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the orchestrator loop until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var boostCmd = &cobra.Command{
	Use:   "boost <card_id>",
	Short: "Shorten the buy-side poll cadence for one card on a running radar serve process",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoost(cmd.Context(), args[0])
	},
}

var bypassOperator string

var issueBypassTokenCmd = &cobra.Command{
	Use:   "issue-bypass-token",
	Short: "Mint a signed admin-bypass session token for cross-tenant reads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if bypassOperator == "" {
			return fmt.Errorf("--operator is required")
		}
		token, err := authbypass.Issue(cfg, bypassOperator)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, token)
		return nil
	},
}

func init() {
	issueBypassTokenCmd.Flags().StringVar(&bypassOperator, "operator", "", "operator identity to record in the token's subject claim")
}

func loadConfig() *config.Config {
	config.LoadDotEnv()
	cfg := config.FromEnv()
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if adminAddr != "" {
		cfg.AdminAddr = adminAddr
	}
	return cfg
}

// runServe wires every SPEC_FULL.md §4 component together and drives
// the orchestrator tick loop until the process receives SIGINT/SIGTERM.
func runServe(parent context.Context) error {
	logger.Banner(version)
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	calendar := rotation.MustLoad()
	pipeline := rules.NewPipeline(cfg, calendar)

	forexSource := sources.NewForexSource(cfg.ForexAPIKey, cfg.ForexBaseURL)
	forexCache := money.NewRateCache(forexSource, cfg.StaticForexFallbackRate, cfg.ForexCacheTTL)

	notif := notifier.New(cfg)
	gen := generator.New(cfg, db, pipeline, forexCache, notif)

	jobs, err := buildJobs(ctx, cfg, db)
	if err != nil {
		return fmt.Errorf("build orchestrator jobs: %w", err)
	}
	orch := orchestrator.New(cfg, jobs, gen)

	reg := metrics.Registry()
	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	go func() {
		logger.Info("METRICS", "serving", logger.F("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("METRICS", "server failed", logger.F("err", err.Error()))
		}
	}()

	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminHandler(orch),
	}
	go func() {
		logger.Info("ADMIN", "serving", logger.F("addr", cfg.AdminAddr))
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ADMIN", "server failed", logger.F("err", err.Error()))
		}
	}()

	orchErr := make(chan error, 1)
	go func() { orchErr <- orch.Run(ctx) }()

	select {
	case <-ctx.Done():
	case err := <-orchErr:
		stop()
		if err != nil {
			logger.Error("ORCHESTRATOR", "exited with error", logger.F("err", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("METRICS", "shutdown error", logger.F("err", err.Error()))
	}
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("ADMIN", "shutdown error", logger.F("err", err.Error()))
	}
	logger.Info("RADAR", "stopped")
	return nil
}

// adminHandler exposes the operator boost endpoint over loopback HTTP,
// the same ServeMux method+path pattern the teacher's API server uses.
func adminHandler(orch *orchestrator.Orchestrator) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/boost/{card_id}", func(w http.ResponseWriter, r *http.Request) {
		cardID := r.PathValue("card_id")
		if cardID == "" {
			http.Error(w, "card_id is required", http.StatusBadRequest)
			return
		}
		orch.BoostCard(cardID)
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// runBoost asks a running radar serve process (reachable at cfg.AdminAddr)
// to boost cardID.
func runBoost(ctx context.Context, cardID string) error {
	cfg := loadConfig()
	url := fmt.Sprintf("http://%s/admin/boost/%s", cfg.AdminAddr, cardID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(nil))
	if err != nil {
		return fmt.Errorf("build boost request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("reach radar admin endpoint at %s: %w", cfg.AdminAddr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("boost request rejected: %s", resp.Status)
	}
	fmt.Fprintf(os.Stdout, "boosted %s\n", cardID)
	return nil
}

// buildJobs constructs the per-set bulk jobs (metadata, sell-side,
// velocity) that cover every tracked set, plus one per-card buy-side
// job for each card already known to the store. Cadence-override
// boosting (§4.F) only ever targets a Job whose CardID is set, which is
// why buy-side polling also runs per-card rather than only in bulk: the
// bulk cardmarket job stays as a backstop that eventually refreshes
// every card regardless of boost state, while the per-card jobs are
// what BoostCard actually speeds up. Cards discovered by a metadata
// poll after this process started only gain a per-card job on the next
// restart — the job list is fixed for the life of one orchestrator.
func buildJobs(ctx context.Context, cfg *config.Config, db *store.Store) ([]orchestrator.Job, error) {
	tcgplayer := sources.NewTCGPlayerSource(cfg.TCGPlayerAPIKey, cfg.TCGPlayerBaseURL)
	cardmarket := sources.NewCardmarketSource(cfg.CardmarketAPIKey, cfg.CardmarketBaseURL)
	poketrace := sources.NewPoketraceSource(cfg.PoketraceAPIKey, cfg.PoketraceBaseURL)
	metadataSrc := sources.NewPokemonTCGMetadataSource(cfg.MetadataAPIKey, cfg.MetadataBaseURL)

	var jobs []orchestrator.Job
	for _, setCode := range cfg.TrackedSetCodes {
		setCode := setCode

		jobs = append(jobs, orchestrator.Job{
			Name:      "metadata:" + setCode,
			Cadence:   cfg.SignalScanCadence,
			IsBuySide: false,
			Run: func(ctx context.Context) error {
				return pollMetadataSet(ctx, db, metadataSrc, setCode)
			},
		})

		jobs = append(jobs, orchestrator.Job{
			Name:      "tcgplayer:" + setCode,
			Cadence:   cfg.SignalScanCadence,
			IsBuySide: false,
			Run: func(ctx context.Context) error {
				return pollPriceSet(ctx, db, tcgplayer, setCode)
			},
		})

		jobs = append(jobs, orchestrator.Job{
			Name:      "cardmarket:" + setCode,
			Cadence:   cfg.SignalScanCadence,
			IsBuySide: false,
			Run: func(ctx context.Context) error {
				return pollPriceSet(ctx, db, cardmarket, setCode)
			},
		})

		jobs = append(jobs, orchestrator.Job{
			Name:      "poketrace:" + setCode,
			Cadence:   cfg.SignalScanCadence,
			IsBuySide: false,
			Run: func(ctx context.Context) error {
				return pollVelocitySet(ctx, db, poketrace, setCode)
			},
		})

		cardIDs, err := db.ListCardIDsForSet(ctx, setCode)
		if err != nil {
			return nil, fmt.Errorf("list known cards for set %s: %w", setCode, err)
		}
		for _, cardID := range cardIDs {
			cardID := cardID
			jobs = append(jobs, orchestrator.Job{
				Name:      "cardmarket-card:" + cardID,
				CardID:    cardID,
				Cadence:   cfg.SignalScanCadence,
				IsBuySide: true,
				Run: func(ctx context.Context) error {
					return pollPriceCard(ctx, db, cardmarket, cardID)
				},
			})
		}
	}
	return jobs, nil
}

func pollPriceCard(ctx context.Context, db *store.Store, src sources.PriceSource, cardID string) error {
	row, err := src.FetchCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("fetch %s price for %s: %w", src.Name(), cardID, err)
	}
	if row == nil {
		return nil
	}
	return db.UpsertMarketPrice(ctx, store.MarketPrice{
		CardID:         row.CardID,
		Source:         row.Source,
		PriceUSD:       row.PriceUSD,
		PriceEUR:       row.PriceEUR,
		ConditionGrade: row.Condition,
		SellerID:       row.SellerID,
		SellerRating:   row.SellerRating,
		SellerSales:    row.SellerSales,
		Sales30d:       row.Sales30d,
		ActiveListings: row.ActiveListings,
		UpdatedAt:      row.FetchedAt,
	})
}

func pollMetadataSet(ctx context.Context, db *store.Store, src sources.MetadataSource, setCode string) error {
	setInfo, err := src.FetchSetInfo(ctx, setCode)
	if err != nil {
		return fmt.Errorf("fetch set info %s: %w", setCode, err)
	}
	setName := setCode
	var releaseDate *time.Time
	if setInfo != nil {
		if setInfo.SetName != "" {
			setName = setInfo.SetName
		}
		rd := setInfo.ReleaseDate
		releaseDate = &rd
	}

	rows, err := src.FetchSet(ctx, setCode)
	if err != nil {
		return fmt.Errorf("fetch metadata set %s: %w", setCode, err)
	}
	for _, m := range rows {
		if err := db.UpsertCardMetadata(ctx, store.CardMetadata{
			CardID:           m.CardID,
			Name:             m.Name,
			SetName:          setName,
			RegulationMark:   m.RegulationMark,
			SetReleaseDate:   releaseDate,
			LegalityStandard: m.LegalityStandard,
			DeepLinkURLs:     m.DeepLinkURLs,
		}); err != nil {
			logger.Warn("METADATA", "upsert failed", logger.F("card_id", m.CardID), logger.F("err", err.Error()))
		}
	}
	return nil
}

func pollPriceSet(ctx context.Context, db *store.Store, src sources.PriceSource, setCode string) error {
	rows, err := src.FetchSet(ctx, setCode)
	if err != nil {
		return fmt.Errorf("fetch %s price set %s: %w", src.Name(), setCode, err)
	}
	for _, r := range rows {
		if err := db.UpsertMarketPrice(ctx, store.MarketPrice{
			CardID:         r.CardID,
			Source:         r.Source,
			PriceUSD:       r.PriceUSD,
			PriceEUR:       r.PriceEUR,
			ConditionGrade: r.Condition,
			SellerID:       r.SellerID,
			SellerRating:   r.SellerRating,
			SellerSales:    r.SellerSales,
			Sales30d:       r.Sales30d,
			ActiveListings: r.ActiveListings,
			UpdatedAt:      r.FetchedAt,
		}); err != nil {
			logger.Warn("PRICE", "upsert failed", logger.F("card_id", r.CardID), logger.F("source", r.Source), logger.F("err", err.Error()))
		}
	}
	return nil
}

func pollVelocitySet(ctx context.Context, db *store.Store, src sources.VelocitySource, setCode string) error {
	cardIDs, err := db.ListCardIDsForSet(ctx, setCode)
	if err != nil {
		return fmt.Errorf("list card ids for set %s: %w", setCode, err)
	}
	for _, cardID := range cardIDs {
		reading, err := src.FetchVelocity(ctx, cardID)
		if err != nil {
			logger.Warn("VELOCITY", "fetch failed", logger.F("card_id", cardID), logger.F("err", err.Error()))
			continue
		}
		if reading == nil {
			continue
		}
		sales30d := int(reading.Sales30d.IntPart())
		active := int(reading.ActiveListings.IntPart())
		if err := db.UpsertMarketPrice(ctx, store.MarketPrice{
			CardID:         reading.CardID,
			Source:         "poketrace",
			Sales30d:       &sales30d,
			ActiveListings: &active,
			UpdatedAt:      time.Now().UTC(),
		}); err != nil {
			logger.Warn("VELOCITY", "upsert failed", logger.F("card_id", cardID), logger.F("err", err.Error()))
		}
	}
	return nil
}
