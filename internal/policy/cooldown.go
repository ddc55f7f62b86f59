// Package policy implements the per-user action cooldown rules for character
// creation and voting. The predicates here are pure; enforcement against
// concurrent requests happens at the storage layer via conditional updates.
package policy

import (
	"time"
)

// CanPerformAction reports whether an action is permitted given the persisted
// time of the user's last action. A nil last time means the user has never
// performed the action and is always allowed. The boundary is inclusive:
// exactly at the cooldown the action is permitted.
//
// The last-action time must come from server-side state, never from the
// client; a client-supplied timestamp would let callers bypass the window.
func CanPerformAction(last *time.Time, cooldown time.Duration, now time.Time) bool {
	if last == nil {
		return true
	}
	return now.Sub(*last) >= cooldown
}

// RetryAfter returns how long the user must still wait before the action is
// permitted. Zero when the action is already allowed.
func RetryAfter(last *time.Time, cooldown time.Duration, now time.Time) time.Duration {
	if last == nil {
		return 0
	}
	remaining := cooldown - now.Sub(*last)
	if remaining < 0 {
		return 0
	}
	return remaining
}
