package rotation

import "time"

// Risk is the five-level rotation risk classification from
// SPEC_FULL.md §4.D.
type Risk string

const (
	RiskSafe    Risk = "SAFE"
	RiskWatch   Risk = "WATCH"
	RiskDanger  Risk = "DANGER"
	RiskRotated Risk = "ROTATED"
	RiskUnknown Risk = "UNKNOWN"
)

// AtRisk reports whether r is one of the risk levels that rejects a
// candidate at the rules-engine stage (SPEC_FULL.md §4.B step 8): DANGER
// and ROTATED. WATCH and SAFE pass; UNKNOWN passes (no data is not
// treated as a reason to suppress).
func (r Risk) AtRisk() bool {
	return r == RiskDanger || r == RiskRotated
}

// Entry is one regulation mark's calendar record.
type Entry struct {
	Status       string
	RotationDate string // "YYYY-MM-DD", empty when no rotation is announced
}

// Calendar is the parsed, immutable rotation calendar.
type Calendar struct {
	currentMark string
	order       []string // oldest to newest
	entries     map[string]Entry
}

// Classify assesses rotation risk for a card given its regulation mark
// and Standard-format legality, per SPEC_FULL.md §4.D:
//
//   - legality "Banned" -> ROTATED
//   - mark missing from the calendar -> UNKNOWN
//   - mark present, no rotation date -> SAFE
//   - mark present, rotation date already past `today` -> ROTATED
//   - days until rotation > 180 -> SAFE; 91-180 -> WATCH; 90 or fewer -> DANGER
func (c *Calendar) Classify(regulationMark, legalityStandard string, today time.Time) Risk {
	if legalityStandard == "Banned" {
		return RiskRotated
	}
	if regulationMark == "" {
		return RiskUnknown
	}

	entry, ok := c.entries[regulationMark]
	if !ok {
		return RiskUnknown
	}
	if entry.RotationDate == "" {
		return RiskSafe
	}

	rotationDate, err := time.Parse("2006-01-02", entry.RotationDate)
	if err != nil {
		return RiskUnknown
	}

	daysUntil := int(rotationDate.Sub(today.Truncate(24*time.Hour)).Hours() / 24)
	switch {
	case daysUntil < 0:
		return RiskRotated
	case daysUntil > 180:
		return RiskSafe
	case daysUntil > 90:
		return RiskWatch
	default:
		return RiskDanger
	}
}

// Distance returns how many marks behind the current one regulationMark
// is: 0 for the current or any future mark, 1 for one mark behind, and
// so on. Returns -1 when the mark is not in the calendar's ordered
// sequence. Never returns a negative distance for a known mark.
func (c *Calendar) Distance(regulationMark string) int {
	currentIdx := indexOf(c.order, c.currentMark)
	markIdx := indexOf(c.order, regulationMark)
	if markIdx < 0 || currentIdx < 0 {
		return -1
	}

	distance := currentIdx - markIdx
	if distance < 0 {
		return 0
	}
	return distance
}

func indexOf(order []string, mark string) int {
	for i, m := range order {
		if m == mark {
			return i
		}
	}
	return -1
}
