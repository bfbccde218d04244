// Package upload prepares listing images for upload and reports upload
// progress to the browser.
package upload

import (
	"context"
	"sync"
	"time"
)

// Simulated progress never reaches this value; only Done does.
const simulatedCeiling = 99

// Simulate emits a rising progress percentage every interval, each step a
// random amount below 10 drawn from rnd (which returns values in [0, 1)).
// The backend gives no real progress for multipart uploads. The channel is
// closed when ctx ends or progress would pass 99.
func Simulate(ctx context.Context, interval time.Duration, rnd func() float64) <-chan float64 {
	out := make(chan float64)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		progress := 0.0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			progress += rnd() * 10
			if progress > simulatedCeiling {
				return
			}
			select {
			case out <- progress:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Tracker holds the latest upload progress of a browsing session.
type Tracker struct {
	mu     sync.Mutex
	value  float64
	active bool
}

type Progress struct {
	Active  bool    `json:"active"`
	Percent float64 `json:"percent"`
}

// Run follows Simulate until it ends or Finish is called.
func (t *Tracker) Run(ctx context.Context, interval time.Duration, rnd func() float64) {
	t.mu.Lock()
	t.value = 0
	t.active = true
	t.mu.Unlock()

	for p := range Simulate(ctx, interval, rnd) {
		t.mu.Lock()
		if t.active {
			t.value = p
		}
		t.mu.Unlock()
	}
}

// Finish records the outcome: 100 on success, 0 on failure.
func (t *Tracker) Finish(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = false
	if ok {
		t.value = 100
	} else {
		t.value = 0
	}
}

func (t *Tracker) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Progress{Active: t.active, Percent: t.value}
}
