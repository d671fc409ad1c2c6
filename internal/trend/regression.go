// Package trend implements the 7-day price-trend regression and
// velocity/price trend classification described in SPEC_FULL.md §4.C,
// grounded on the original src/engine/price_trend.py and
// src/engine/trend.py.
package trend

import (
	"time"

	"github.com/shopspring/decimal"
)

// Window is the lookback horizon for the regression.
const Window = 7 * 24 * time.Hour

// PricePoint is one usable (timestamp, price) observation drawn from
// price_history. Source selection (USD preferred, EUR fallback, rows
// with both null excluded) happens before a PricePoint is constructed.
type PricePoint struct {
	RecordedAt time.Time
	Price      float64
}

// leastSquaresSlope computes the ordinary least-squares slope (dy/dx)
// of n points. Returns 0 when the denominator n*Σx² − (Σx)² is zero,
// which cannot happen with distinct timestamps but is guarded anyway.
func leastSquaresSlope(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumX2 float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// DailyChangeFraction computes the 7-day daily fractional price change
// over points, per SPEC_FULL.md §4.C:
//
//	xs = days since the first usable point, ys = selected price
//	m  = least-squares slope of (xs, ys)
//	returns round(m / mean(ys), 6), or 0 when fewer than 2 usable points
//	exist, the regression is degenerate, or the mean price is zero.
//
// points must already be sorted by RecordedAt ascending and restricted
// to the trailing Window; this function does no filtering of its own.
// It is linear in len(points) and never materializes a float in the
// returned value — only the final quantized ratio is.
func DailyChangeFraction(points []PricePoint) decimal.Decimal {
	if len(points) < 2 {
		return decimal.Zero
	}

	origin := points[0].RecordedAt
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	var sumY float64
	for i, p := range points {
		xs[i] = p.RecordedAt.Sub(origin).Hours() / 24.0
		ys[i] = p.Price
		sumY += p.Price
	}

	meanY := sumY / float64(len(ys))
	if meanY == 0 {
		return decimal.Zero
	}

	slope := leastSquaresSlope(xs, ys)
	fraction := slope / meanY
	return decimal.NewFromFloat(fraction).Round(6)
}
