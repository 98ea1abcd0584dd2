// Package retry provides blocking resource acquisition with fixed-interval
// retry.
//
// Both agents use the same pattern at startup and after a device fault:
// repeatedly attempt to construct a resource until it succeeds, waiting a
// fixed interval between attempts. Acquisition failures are never surfaced
// to the caller while attempts remain; the loop simply does not make
// progress until the resource comes back.
//
// Example usage:
//
//	cam, err := retry.Acquire(ctx, "camera", retry.Policy{Interval: time.Second},
//	    func() (camera.Device, error) {
//	        return camera.OpenWebcam(0, 640, 480)
//	    })
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/edgewire/framecast/internal/log"
)

// DefaultInterval is used when a Policy does not set one.
const DefaultInterval = time.Second

// Policy controls how Acquire waits between attempts.
type Policy struct {
	// Interval is the fixed wait between attempts.
	// Defaults to DefaultInterval when zero.
	Interval time.Duration

	// MaxAttempts bounds the number of attempts. Zero means unbounded,
	// which is the normal mode for agent startup gates.
	MaxAttempts int

	// Jitter, when positive, adds up to this much random extra wait to
	// each interval so restarted fleets don't hammer a resource in sync.
	Jitter time.Duration
}

// Acquire repeatedly calls build until it returns a value without error.
//
// It waits p.Interval between attempts and returns early only when ctx is
// cancelled or p.MaxAttempts is exhausted. The name appears in retry logs.
func Acquire[T any](ctx context.Context, name string, p Policy, build func() (T, error)) (T, error) {
	var zero T
	if p.Interval <= 0 {
		p.Interval = DefaultInterval
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := build()
		if err == nil {
			if attempt > 1 {
				log.Info("resource acquired", "resource", name, "attempts", attempt)
			}
			return v, nil
		}

		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return zero, fmt.Errorf("retry: acquire %s: %d attempts: %w", name, attempt, err)
		}

		log.Warn("resource acquisition failed, retrying",
			"resource", name, "attempt", attempt, "interval", p.Interval, "error", err)

		wait := p.Interval
		if p.Jitter > 0 {
			wait += time.Duration(rand.Int63n(int64(p.Jitter)))
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
