package trend

import "time"

// HistoryRow is one raw price_history observation as read from storage,
// before USD/EUR source selection is applied.
type HistoryRow struct {
	RecordedAt time.Time
	PriceUSD   *float64
	PriceEUR   *float64
}

// SelectPrice prefers PriceUSD, falling back to PriceEUR. ok is false
// when both are null, in which case the row must be excluded from the
// regression.
func (r HistoryRow) SelectPrice() (price float64, ok bool) {
	if r.PriceUSD != nil {
		return *r.PriceUSD, true
	}
	if r.PriceEUR != nil {
		return *r.PriceEUR, true
	}
	return 0, false
}

// UsablePoints filters rows to the trailing Window from now and converts
// each surviving row to a PricePoint via SelectPrice. rows must already
// be ordered by RecordedAt ascending; rows older than the window are
// dropped, matching the store-level query in SPEC_FULL.md §4.C which
// only ever fetches the trailing 7 days to begin with — this second
// filter guards callers that hand in a wider slice.
func UsablePoints(rows []HistoryRow, now time.Time) []PricePoint {
	cutoff := now.Add(-Window)
	points := make([]PricePoint, 0, len(rows))
	for _, r := range rows {
		if r.RecordedAt.Before(cutoff) {
			continue
		}
		price, ok := r.SelectPrice()
		if !ok {
			continue
		}
		points = append(points, PricePoint{RecordedAt: r.RecordedAt, Price: price})
	}
	return points
}
