package cascade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)

const defaultCooldown = 10 * time.Second
const defaultMaxCascades = 5

func TestAvailableAt_DefaultCooldown(t *testing.T) {
	got := AvailableAt(testNow, defaultCooldown)
	assert.Equal(t, testNow.Add(10*time.Second), got)
}

func TestShouldCascade_ReadyAfterCooldown(t *testing.T) {
	expires := testNow.Add(-15 * time.Second)
	ok, reason := ShouldCascade(expires, false, 0, defaultMaxCascades, testNow, defaultCooldown)
	assert.True(t, ok)
	assert.Equal(t, "cascade_ready", reason)
}

func TestShouldCascade_WithinCooldownWindow(t *testing.T) {
	expires := testNow.Add(-5 * time.Second)
	ok, reason := ShouldCascade(expires, false, 0, defaultMaxCascades, testNow, defaultCooldown)
	assert.False(t, ok)
	assert.Contains(t, reason, "cooldown_pending")
}

func TestShouldCascade_ExactCooldownBoundaryCascades(t *testing.T) {
	expires := testNow.Add(-10 * time.Second)
	ok, _ := ShouldCascade(expires, false, 0, defaultMaxCascades, testNow, defaultCooldown)
	assert.True(t, ok, "exactly at the cooldown boundary must cascade (>= check)")
}

func TestShouldCascade_ActedOnBlocksRegardlessOfTiming(t *testing.T) {
	expires := testNow.Add(-60 * time.Second)
	ok, reason := ShouldCascade(expires, true, 0, defaultMaxCascades, testNow, defaultCooldown)
	assert.False(t, ok)
	assert.Equal(t, "signal_acted_on", reason)
}

func TestShouldCascade_LimitReached(t *testing.T) {
	expires := testNow.Add(-60 * time.Second)
	ok, reason := ShouldCascade(expires, false, 5, defaultMaxCascades, testNow, defaultCooldown)
	assert.False(t, ok)
	assert.Contains(t, reason, "cascade_limit_reached")
}

func TestShouldCascade_CountFourStillAllowed(t *testing.T) {
	expires := testNow.Add(-60 * time.Second)
	ok, _ := ShouldCascade(expires, false, 4, defaultMaxCascades, testNow, defaultCooldown)
	assert.True(t, ok)
}

func TestShouldCascade_NotYetExpired(t *testing.T) {
	expires := testNow.Add(30 * time.Second)
	ok, reason := ShouldCascade(expires, false, 0, defaultMaxCascades, testNow, defaultCooldown)
	assert.False(t, ok)
	assert.Contains(t, reason, "cooldown_pending")
}

func TestShouldCascade_CustomMaxCascades(t *testing.T) {
	expires := testNow.Add(-60 * time.Second)
	ok, reason := ShouldCascade(expires, false, 2, 2, testNow, defaultCooldown)
	assert.False(t, ok)
	assert.Contains(t, reason, "cascade_limit_reached")
}

func TestIncrementCascadeCount_FromZero(t *testing.T) {
	newCount, limit := IncrementCascadeCount(0, defaultMaxCascades)
	assert.Equal(t, 1, newCount)
	assert.False(t, limit)
}

func TestIncrementCascadeCount_ToLimit(t *testing.T) {
	newCount, limit := IncrementCascadeCount(4, defaultMaxCascades)
	assert.Equal(t, 5, newCount)
	assert.True(t, limit)
}

func TestIncrementCascadeCount_CustomMax(t *testing.T) {
	newCount, limit := IncrementCascadeCount(2, 3)
	assert.Equal(t, 3, newCount)
	assert.True(t, limit)
}
