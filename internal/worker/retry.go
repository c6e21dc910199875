package worker

import (
	"math"
	"time"
)

// RetryPolicy controls how the journal worker spaces repeated append
// attempts: geometric growth from InitialDelay, capped at MaxDelay.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay returns the wait before the given 1-based attempt. Out-of-range
// inputs are normalized so a zero-value policy still yields sane delays.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	initial := r.InitialDelay
	if initial <= 0 {
		initial = time.Second
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	delay := time.Duration(float64(initial) * math.Pow(factor, float64(attempt-1)))
	if r.MaxDelay > 0 && delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	if delay <= 0 {
		delay = time.Second
	}
	return delay
}
