// Package config loads the environment-driven settings surface described
// in SPEC_FULL.md §6. Every money constant, cadence, and feature flag the
// rest of the engine consumes is read here, once, at startup.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// CustomsRegime enumerates the recognized customs regimes from §4.A.
type CustomsRegime string

const (
	CustomsDeMinimis    CustomsRegime = "de_minimis"
	CustomsPreJuly2026  CustomsRegime = "pre_july_2026"
	CustomsIOSSEU       CustomsRegime = "ioss_eu"
	CustomsPostJuly2026 CustomsRegime = "post_july_2026"
	CustomsUKLowValue   CustomsRegime = "uk_low_value"
)

// SellerQualityMode decides how stage 2 behaves when no scraped seller
// data is present (the Open Question from spec.md §9).
type SellerQualityMode string

const (
	// SellerQualityDefaultPair uses a fixed (rating=98.5, sales=100) pair
	// when no scraped data is present.
	SellerQualityDefaultPair SellerQualityMode = "default_pair"
	// SellerQualitySkipStage skips stage 2 entirely when no scraped data
	// is present.
	SellerQualitySkipStage SellerQualityMode = "skip_stage"
)

// Config is the full recognized environment surface.
type Config struct {
	DatabaseURL string

	// Money kernel constants (§4.A).
	DefaultForexBuffer      decimal.Decimal
	ForexCacheTTL           time.Duration
	StaticForexFallbackRate decimal.Decimal

	TCGPlayerFeeRate  decimal.Decimal
	TCGPlayerFeeCap   decimal.Decimal
	TCGPlayerFixedFee decimal.Decimal
	EBayFeeRate       decimal.Decimal
	CardmarketFeeRate decimal.Decimal

	USDeMinimisUSD        decimal.Decimal
	USCustomsStandardRate decimal.Decimal
	EUVATRate             decimal.Decimal
	EUCustomsFlatDutyEUR  decimal.Decimal
	UKLowValueThresholdUS decimal.Decimal
	UKVATRate             decimal.Decimal

	ShippingCostUSD           decimal.Decimal
	ForwarderReceivingFee     decimal.Decimal
	ForwarderConsolidationFee decimal.Decimal
	ForwarderInsuranceRate    decimal.Decimal
	DefaultCustomsRegime      CustomsRegime

	// DefaultMinProfitThreshold is the scan-level floor applied inside
	// the rules pipeline's net-profit stage, independent of any one
	// user's profile. Per-user min_profit_threshold filtering happens
	// again at delivery time (§4.G step 5), so this floor only needs to
	// be low enough not to reject a candidate any active user would want.
	DefaultMinProfitThreshold decimal.Decimal

	// Rules engine constants (§4.B).
	MinSellerRating       decimal.Decimal
	MinSellerSales        int
	SellerQualityMode     SellerQualityMode
	VelocityTier1Floor    decimal.Decimal // V > this -> tier 1
	VelocityTier2Floor    decimal.Decimal // V > this -> tier 2
	FallingKnifeThreshold decimal.Decimal // t <= this -> falling

	MaturityDecay30D            decimal.Decimal
	MaturityDecay60D            decimal.Decimal
	MaturityDecay90D            decimal.Decimal
	MaturityDecayOld            decimal.Decimal
	MaturityReprintRumorPenalty decimal.Decimal

	HeadacheTier1Floor decimal.Decimal // H > this -> tier 1
	HeadacheTier2Floor decimal.Decimal // H > this -> tier 2

	SDSBundleAlertFloor       int
	SDSPartialMin             int
	SDSSingle                 int
	BundleSingleCardThreshold decimal.Decimal
	EnableBundleLogic         bool

	// Orchestrator cadences (§4.F).
	OrchestratorTick      time.Duration
	SignalScanCadence     time.Duration
	CadenceOverrideTTL    time.Duration // "boost_duration", default 4h
	BoostedBuySideCadence time.Duration // default 30 min

	// Cascade controller (§4.H).
	CascadeCooldown time.Duration
	CascadeMaxCount int

	// SignalTTL is how long a freshly generated signal stays live before
	// it becomes cascade-eligible; cascade availability is then
	// ExpiresAt + CascadeCooldown per internal/cascade.
	SignalTTL time.Duration

	// HTTP / retry (§5).
	HTTPTimeout      time.Duration
	RetryMaxAttempts int
	RetryBaseBackoff time.Duration

	// Feature flags.
	EnableLayer3Scraping bool
	EnableLayer35Social  bool

	// Notifier pacing.
	DeliveryBatchDelay time.Duration

	// Signal generation cap.
	MaxSignalsPerScan int

	// Privileged bypass (§4.M).
	BypassSigningKey []byte
	BypassSessionTTL time.Duration

	// Provider credentials (§6). BaseURL fields are empty by default,
	// which each source's constructor takes to mean "use its built-in
	// default host" (for Poketrace a placeholder .example host) — tests
	// override them to point at an httptest fixture.
	TCGPlayerAPIKey  string
	TCGPlayerBaseURL string
	CardmarketAPIKey  string
	CardmarketBaseURL string
	PoketraceAPIKey  string
	PoketraceBaseURL string
	MetadataAPIKey  string
	MetadataBaseURL string
	ForexAPIKey     string
	ForexBaseURL    string
	ChromePath      string

	// TrackedSetCodes is the set of card-game set codes the orchestrator's
	// per-source jobs poll. Empty means "poll nothing", which is a valid
	// (if useless) configuration rather than an error — a fresh deployment
	// with no sets configured yet should start cleanly.
	TrackedSetCodes []string

	// MetricsAddr and AdminAddr are the listen addresses for the
	// Prometheus scrape endpoint and the operator boost endpoint,
	// respectively (§4.L/§4.K). Bound to loopback by default.
	MetricsAddr string
	AdminAddr   string
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("config: invalid decimal literal " + s + ": " + err.Error())
	}
	return d
}

// Default returns a Config populated with the constants named throughout
// SPEC_FULL.md §4. It is the baseline before env overrides are applied.
func Default() *Config {
	return &Config{
		DatabaseURL: "postgres://localhost:5432/tcgradar?sslmode=disable",

		DefaultForexBuffer:      mustDecimal("0.02"),
		ForexCacheTTL:           15 * time.Minute,
		StaticForexFallbackRate: mustDecimal("1.08"),

		TCGPlayerFeeRate:  mustDecimal("0.1075"),
		TCGPlayerFeeCap:   mustDecimal("75.00"),
		TCGPlayerFixedFee: mustDecimal("0.30"),
		EBayFeeRate:       mustDecimal("0.1325"),
		CardmarketFeeRate: mustDecimal("0.05"),

		USDeMinimisUSD:        mustDecimal("800"),
		USCustomsStandardRate: mustDecimal("0.025"),
		EUVATRate:             mustDecimal("0.21"),
		EUCustomsFlatDutyEUR:  mustDecimal("3.00"),
		UKLowValueThresholdUS: mustDecimal("135"),
		UKVATRate:             mustDecimal("0.20"),

		ShippingCostUSD:           mustDecimal("15.00"),
		ForwarderReceivingFee:     mustDecimal("3.50"),
		ForwarderConsolidationFee: mustDecimal("7.50"),
		ForwarderInsuranceRate:    mustDecimal("0.025"),
		DefaultCustomsRegime:      CustomsDeMinimis,
		DefaultMinProfitThreshold: mustDecimal("1.00"),

		MinSellerRating:       mustDecimal("97.0"),
		MinSellerSales:        100,
		SellerQualityMode:     SellerQualityDefaultPair,
		VelocityTier1Floor:    mustDecimal("1.5"),
		VelocityTier2Floor:    mustDecimal("0.5"),
		FallingKnifeThreshold: mustDecimal("-0.10"),

		MaturityDecay30D:            mustDecimal("1.0"),
		MaturityDecay60D:            mustDecimal("0.9"),
		MaturityDecay90D:            mustDecimal("0.8"),
		MaturityDecayOld:            mustDecimal("0.7"),
		MaturityReprintRumorPenalty: mustDecimal("0.8"),

		HeadacheTier1Floor: mustDecimal("15"),
		HeadacheTier2Floor: mustDecimal("5"),

		SDSBundleAlertFloor:       5,
		SDSPartialMin:             2,
		SDSSingle:                 1,
		BundleSingleCardThreshold: mustDecimal("25.00"),
		EnableBundleLogic:         true,

		OrchestratorTick:      5 * time.Second,
		SignalScanCadence:     30 * time.Minute,
		CadenceOverrideTTL:    4 * time.Hour,
		BoostedBuySideCadence: 30 * time.Minute,

		CascadeCooldown: 10 * time.Second,
		CascadeMaxCount: 5,
		SignalTTL:       15 * time.Minute,

		HTTPTimeout:      30 * time.Second,
		RetryMaxAttempts: 3,
		RetryBaseBackoff: 500 * time.Millisecond,

		EnableLayer3Scraping: false,
		EnableLayer35Social:  false,

		DeliveryBatchDelay: 1 * time.Second,
		MaxSignalsPerScan:  200,

		BypassSigningKey: []byte("dev-only-bypass-signing-key-change-me"),
		BypassSessionTTL: 15 * time.Minute,

		TrackedSetCodes: []string{"sv1", "sv2"},

		MetricsAddr: "127.0.0.1:9090",
		AdminAddr:   "127.0.0.1:9091",
	}
}

// LoadDotEnv loads a local .env file the way godotenv does, without
// overriding variables already present in the OS environment. Absence of
// the file is not an error.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	_ = godotenv.Load(paths...)
}

// FromEnv overlays OS environment variables onto Default(), using the
// naming scheme documented in SPEC_FULL.md §6.
func FromEnv() *Config {
	cfg := Default()

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := getDecimal("FOREX_BUFFER"); v != nil {
		cfg.DefaultForexBuffer = *v
	}
	if v := getDuration("FOREX_CACHE_TTL"); v != nil {
		cfg.ForexCacheTTL = *v
	}
	if v := getDecimal("STATIC_FOREX_FALLBACK_RATE"); v != nil {
		cfg.StaticForexFallbackRate = *v
	}
	if v := getDecimal("DEFAULT_MIN_PROFIT_THRESHOLD"); v != nil {
		cfg.DefaultMinProfitThreshold = *v
	}
	if v := os.Getenv("DEFAULT_CUSTOMS_REGIME"); v != "" {
		cfg.DefaultCustomsRegime = CustomsRegime(strings.ToLower(v))
	}
	if v := os.Getenv("SELLER_QUALITY_MODE"); v != "" {
		cfg.SellerQualityMode = SellerQualityMode(v)
	}
	if v := getBool("ENABLE_BUNDLE_LOGIC"); v != nil {
		cfg.EnableBundleLogic = *v
	}
	if v := getBool("ENABLE_LAYER_3_SCRAPING"); v != nil {
		cfg.EnableLayer3Scraping = *v
	}
	if v := getBool("ENABLE_LAYER_35_SOCIAL"); v != nil {
		cfg.EnableLayer35Social = *v
	}
	if v := getDuration("ORCHESTRATOR_TICK"); v != nil {
		cfg.OrchestratorTick = *v
	}
	if v := getDuration("SIGNAL_SCAN_CADENCE"); v != nil {
		cfg.SignalScanCadence = *v
	}
	if v := getDuration("CASCADE_COOLDOWN"); v != nil {
		cfg.CascadeCooldown = *v
	}
	if v := getInt("MAX_SIGNALS_PER_SCAN"); v != nil {
		cfg.MaxSignalsPerScan = *v
	}
	if v := os.Getenv("BYPASS_SIGNING_KEY"); v != "" {
		cfg.BypassSigningKey = []byte(v)
	}
	if v := getDuration("SIGNAL_TTL"); v != nil {
		cfg.SignalTTL = *v
	}

	cfg.TCGPlayerAPIKey = os.Getenv("TCGPLAYER_API_KEY")
	cfg.TCGPlayerBaseURL = os.Getenv("TCGPLAYER_BASE_URL")
	cfg.CardmarketAPIKey = os.Getenv("CARDMARKET_API_KEY")
	cfg.CardmarketBaseURL = os.Getenv("CARDMARKET_BASE_URL")
	cfg.PoketraceAPIKey = os.Getenv("POKETRACE_API_KEY")
	cfg.PoketraceBaseURL = os.Getenv("POKETRACE_BASE_URL")
	cfg.MetadataAPIKey = os.Getenv("METADATA_API_KEY")
	cfg.MetadataBaseURL = os.Getenv("METADATA_BASE_URL")
	cfg.ForexAPIKey = os.Getenv("FOREX_API_KEY")
	cfg.ForexBaseURL = os.Getenv("FOREX_BASE_URL")
	cfg.ChromePath = os.Getenv("CHROME_PATH")

	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("ADMIN_ADDR"); v != "" {
		cfg.AdminAddr = v
	}
	if v := os.Getenv("TRACKED_SET_CODES"); v != "" {
		var codes []string
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				codes = append(codes, c)
			}
		}
		cfg.TrackedSetCodes = codes
	}

	return cfg
}

func getDecimal(key string) *decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil
	}
	return &d
}

func getDuration(key string) *time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return nil
	}
	return &d
}

func getBool(key string) *bool {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

func getInt(key string) *int {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
