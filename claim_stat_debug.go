//go:build debug

package taskfarm

import (
	"sync/atomic"
)

var (
	claimAttempts atomic.Int64
	claimMisses   atomic.Int64
	wakeups       atomic.Int64
	idleReturns   atomic.Int64
)

// ClaimStats counts slot claim activity across all worker agents.
// It is only available in builds with the debug tag.
type ClaimStats struct {
	Attempts    int64
	Misses      int64
	Wakeups     int64
	IdleReturns int64
}

func statClaimAttempt() { claimAttempts.Add(1) }
func statClaimMiss()    { claimMisses.Add(1) }
func statWakeup()       { wakeups.Add(1) }
func statIdleReturn()   { idleReturns.Add(1) }

// SnapshotClaimStats returns the current claim counters.
func SnapshotClaimStats() ClaimStats {
	return ClaimStats{
		Attempts:    claimAttempts.Load(),
		Misses:      claimMisses.Load(),
		Wakeups:     wakeups.Load(),
		IdleReturns: idleReturns.Load(),
	}
}

// PrintClaimStats writes the claim counters to stderr.
func PrintClaimStats() {
	println(
		"claim attempts / misses / wakeups / idle returns :",
		claimAttempts.Load(),
		claimMisses.Load(),
		wakeups.Load(),
		idleReturns.Load(),
	)
}
