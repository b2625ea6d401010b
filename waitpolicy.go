package taskfarm

import (
	"time"
)

const (
	defaultWaitAttempts = 4
	defaultWaitInitial  = 5 * time.Millisecond
	defaultWaitMax      = 5 * time.Millisecond
)

// WaitPolicy bounds how long a worker tick waits for an assignment.
//
// A tick that finds nothing to claim waits on its slot up to Attempts
// times. Each wait lasts a backoff delay between Initial and Max. With
// Initial == Max every wait has the same length. Zero values are
// replaced by defaults.
type WaitPolicy struct {
	// Attempts is the number of waits before the tick gives up.
	Attempts int

	// Initial is the first wait timeout.
	Initial time.Duration

	// Max caps the wait timeout.
	Max time.Duration
}

// GetDefaultWP returns the default wait policy: four 5ms waits.
func GetDefaultWP() *WaitPolicy {
	wp := WaitPolicy{
		Attempts: defaultWaitAttempts,
		Initial:  defaultWaitInitial,
		Max:      defaultWaitMax,
	}
	return &wp
}

func (w *WaitPolicy) fillDefaults() {
	if w.Attempts <= 0 {
		w.Attempts = defaultWaitAttempts
	}
	if w.Initial <= 0 {
		w.Initial = defaultWaitInitial
	}
	if w.Max <= 0 {
		w.Max = defaultWaitMax
	}
	if w.Max < w.Initial {
		w.Max = w.Initial
	}
}
