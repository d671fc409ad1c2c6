package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCalendar(t *testing.T) *Calendar {
	t.Helper()
	c := MustLoad()
	require.NotNil(t, c)
	return c
}

func TestClassify_Banned(t *testing.T) {
	c := testCalendar(t)
	risk := c.Classify("G", "Banned", time.Now())
	assert.Equal(t, RiskRotated, risk)
	assert.True(t, risk.AtRisk())
}

func TestClassify_MarkMissingIsUnknown(t *testing.T) {
	c := testCalendar(t)
	risk := c.Classify("Z", "Standard", time.Now())
	assert.Equal(t, RiskUnknown, risk)
	assert.False(t, risk.AtRisk())
}

func TestClassify_CurrentMarkIsSafe(t *testing.T) {
	c := testCalendar(t)
	risk := c.Classify("H", "Standard", time.Now())
	assert.Equal(t, RiskSafe, risk)
}

func TestClassify_RotationWindows(t *testing.T) {
	c := testCalendar(t)
	rotationDate := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	safe := c.Classify("G", "Standard", rotationDate.AddDate(0, 0, -200))
	assert.Equal(t, RiskSafe, safe)

	watch := c.Classify("G", "Standard", rotationDate.AddDate(0, 0, -120))
	assert.Equal(t, RiskWatch, watch)
	assert.True(t, watch.AtRisk())

	danger := c.Classify("G", "Standard", rotationDate.AddDate(0, 0, -30))
	assert.Equal(t, RiskDanger, danger)
	assert.True(t, danger.AtRisk())

	rotated := c.Classify("G", "Standard", rotationDate.AddDate(0, 0, 1))
	assert.Equal(t, RiskRotated, rotated)
	assert.True(t, rotated.AtRisk())
}

func TestDistance_OrderedSequence(t *testing.T) {
	c := testCalendar(t)

	assert.Equal(t, 0, c.Distance("H"))
	assert.Equal(t, 0, c.Distance("I"))
	assert.Equal(t, 1, c.Distance("G"))
	assert.Equal(t, 2, c.Distance("F"))
	assert.Equal(t, 4, c.Distance("D"))
	assert.Equal(t, -1, c.Distance("unknown"))
}

func TestDistance_NeverNegativeForKnownMarks(t *testing.T) {
	c := testCalendar(t)
	for _, mark := range []string{"D", "E", "F", "G", "H", "I"} {
		assert.GreaterOrEqual(t, c.Distance(mark), 0)
	}
}
