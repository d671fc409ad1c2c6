// Package cascade implements signal re-issue timing and subscriber
// priority ordering, grounded on the original system's
// src/signals/cascade.py sibling module.
package cascade

import (
	"fmt"
	"time"
)

// AvailableAt returns when a signal becomes eligible for cascade:
// expires_at + cooldown. The cooldown exists so an in-flight delivery to
// one subscriber cannot race a re-issue to the next.
func AvailableAt(expiresAt time.Time, cooldown time.Duration) time.Time {
	return expiresAt.Add(cooldown)
}

// ShouldCascade returns true iff the signal was not acted on, its
// cascade count is below maxCascades, and now is at or past
// AvailableAt(expiresAt, cooldown). Acting on a signal blocks cascade
// permanently; reaching maxCascades blocks cascade and the caller must
// demote the signal's effective routing tier to free.
func ShouldCascade(expiresAt time.Time, actedOn bool, cascadeCount, maxCascades int, now time.Time, cooldown time.Duration) (bool, string) {
	if actedOn {
		return false, "signal_acted_on"
	}
	if cascadeCount >= maxCascades {
		return false, fmt.Sprintf("cascade_limit_reached (%d/%d)", cascadeCount, maxCascades)
	}
	availableAt := AvailableAt(expiresAt, cooldown)
	if now.Before(availableAt) {
		return false, fmt.Sprintf("cooldown_pending (%.1fs remaining)", availableAt.Sub(now).Seconds())
	}
	return true, "cascade_ready"
}

// IncrementCascadeCount returns the next cascade count and whether the
// max has now been reached. limitReached=true tells the caller to demote
// the signal's effective tier to free for further routing — the
// subscriber's actual subscription is never mutated.
func IncrementCascadeCount(currentCount, maxCascades int) (newCount int, limitReached bool) {
	newCount = currentCount + 1
	return newCount, newCount >= maxCascades
}
