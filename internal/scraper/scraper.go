// Package scraper implements sources.Scraper's css_fallback method: a
// headless-Chrome, CSS-selector-driven backup for when a marketplace has
// no intercept-able API response to read. Grounded on
// original_source/src/scraper/css_fallback.py, translated from
// Playwright's query_selector/text_content pair to chromedp's
// allocator+context+Evaluate idiom the way
// NimbleMarkets-dbn-go/cmd/dbn-go-slurp-docs/main.go drives a headless
// session.
package scraper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"

	"github.com/tcgradar/signal-engine/internal/logger"
	"github.com/tcgradar/signal-engine/internal/sources"
)

// fields extracted from the page by a single Evaluate call, one field
// per CSS-selector group the original's scrape_via_css tries in turn.
type extractedFields struct {
	PriceText        string `json:"priceText"`
	SellerRatingText string `json:"sellerRatingText"`
	SellerSalesText  string `json:"sellerSalesText"`
	SellerName       string `json:"sellerName"`
	ConditionText    string `json:"conditionText"`
	ShippingText     string `json:"shippingText"`
}

const extractScript = `
(function() {
	function pick(selectors) {
		for (const sel of selectors) {
			try {
				const el = document.querySelector(sel);
				if (el) return (el.textContent || "").trim();
			} catch (e) {}
		}
		return "";
	}
	return {
		priceText: pick(["[class*='price']"]),
		sellerRatingText: pick(["[class*='seller-rating']"]),
		sellerSalesText: pick(["[class*='seller-sales']", "[class*='sale-count']"]),
		sellerName: pick(["[class*='seller-name'] a", "[class*='seller-name']"]),
		conditionText: pick(["[class*='condition']", "[class*='product-condition']"]),
		shippingText: pick(["[class*='shipping-cost']", "[class*='delivery-cost']"]),
	};
})()
`

// CSSFallbackScraper implements sources.Scraper's css_fallback method.
type CSSFallbackScraper struct {
	chromePath string
	navTimeout time.Duration
}

// New builds a CSSFallbackScraper. chromePath overrides auto-detection
// (CHROME_PATH env var, then PATH lookup for common binary names) when
// non-empty.
func New(chromePath string) *CSSFallbackScraper {
	if chromePath == "" {
		chromePath = findChrome()
	}
	return &CSSFallbackScraper{chromePath: chromePath, navTimeout: 30 * time.Second}
}

// Scrape navigates to listingURL in a fresh headless-Chrome tab and
// extracts price/seller/condition/shipping via CSS selectors. It returns
// a nil result (not an error) when no price could be read, mirroring the
// original's "return None" on missing data; it returns an error only
// when the browser itself could not be driven at all.
func (s *CSSFallbackScraper) Scrape(ctx context.Context, cardID, listingURL string) (*sources.ScrapeResult, error) {
	if s.chromePath == "" {
		return nil, fmt.Errorf("css fallback scraper: no chrome binary found, set CHROME_PATH")
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(s.chromePath),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	navCtx, navCancel := context.WithTimeout(browserCtx, s.navTimeout)
	defer navCancel()

	var fields extractedFields
	err := chromedp.Run(navCtx,
		chromedp.Navigate(listingURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(extractScript, &fields),
	)
	if err != nil {
		logger.Warn("SCRAPER", "css fallback navigation failed",
			logger.F("card_id", cardID), logger.F("url", listingURL), logger.F("err", err.Error()))
		return nil, fmt.Errorf("css fallback scraper: %w", err)
	}

	priceEUR := parsePrice(fields.PriceText)
	if priceEUR == nil {
		logger.Warn("SCRAPER", "css fallback found no price",
			logger.F("card_id", cardID), logger.F("url", listingURL))
		return nil, nil
	}

	result := &sources.ScrapeResult{
		Method:       sources.MethodCSSFallback,
		PriceEUR:     priceEUR,
		SellerRating: parseDecimal(fields.SellerRatingText),
		SellerSales:  parseInt(fields.SellerSalesText),
		ShippingEUR:  parsePrice(fields.ShippingText),
	}
	if fields.SellerName != "" {
		result.SellerID = &fields.SellerName
	}
	if fields.ConditionText != "" {
		result.Condition = &fields.ConditionText
	}
	return result, nil
}

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// parsePrice strips currency symbols ("€12.50", "12,50 €") and parses
// the first number-like substring, same as the original's _parse_price.
func parsePrice(text string) *decimal.Decimal {
	if text == "" {
		return nil
	}
	cleaned := strings.NewReplacer("€", "", "$", "", ",", ".").Replace(text)
	match := numberPattern.FindString(cleaned)
	if match == "" {
		return nil
	}
	d, err := decimal.NewFromString(match)
	if err != nil {
		return nil
	}
	return &d
}

func parseDecimal(text string) *decimal.Decimal {
	if text == "" {
		return nil
	}
	match := numberPattern.FindString(text)
	if match == "" {
		return nil
	}
	d, err := decimal.NewFromString(match)
	if err != nil {
		return nil
	}
	return &d
}

var digitsPattern = regexp.MustCompile(`\d+`)

func parseInt(text string) *int {
	if text == "" {
		return nil
	}
	cleaned := strings.NewReplacer(",", "", ".", "").Replace(text)
	match := digitsPattern.FindString(cleaned)
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &n
}

// findChrome mirrors the teacher's findChrome in
// cmd/dbn-go-slurp-docs/main.go: env override first, then a PATH lookup
// over the common binary names per platform.
func findChrome() string {
	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}
	candidates := []string{
		"google-chrome", "google-chrome-stable", "chromium", "chromium-browser",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}
