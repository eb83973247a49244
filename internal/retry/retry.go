package retry

import (
	"context"
	"errors"
	"iter"
	"time"

	ai "github.com/spetersoncode/assistant"
)

func retryAfterFromError(err error) time.Duration {
	var ce ai.CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}

// effectiveDelay returns the delay to use, honoring the server's Retry-After if larger.
func effectiveDelay(configured time.Duration, err error) time.Duration {
	if server := retryAfterFromError(err); server > configured {
		return server
	}
	return configured
}

// wait sleeps for the backoff before the next attempt, or returns the
// context error if the context ends first.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Seq wraps a lazy stream so that a transient failure reported before the
// first element reopens the stream with backoff. Once an element has been
// yielded, errors pass through unchanged and no further attempt is made.
func Seq[E any](ctx context.Context, cfg Config, observe Observer, open func() iter.Seq2[E, error]) iter.Seq2[E, error] {
	return func(yield func(E, error) bool) {
		var zero E
		max := cfg.attempts()

		for attempt := range max {
			started := false
			var failure error

			for ev, err := range open() {
				if err != nil {
					if started {
						yield(zero, err)
						return
					}
					failure = err
					break
				}
				started = true
				if !yield(ev, nil) {
					return
				}
			}
			if failure == nil {
				return
			}

			retryable := IsTransient(failure)
			observe.notify(Event{Type: EventAttemptFailed, Attempt: attempt + 1, MaxAttempts: max, Err: failure, Retryable: retryable})
			if !retryable || attempt == max-1 {
				if retryable {
					observe.notify(Event{Type: EventExhausted, Attempt: max, MaxAttempts: max, Err: failure})
				}
				yield(zero, failure)
				return
			}

			delay := effectiveDelay(cfg.Delay(attempt), failure)
			observe.notify(Event{Type: EventRetrying, Attempt: attempt + 1, MaxAttempts: max, Delay: delay, Retryable: true})
			if err := wait(ctx, delay); err != nil {
				yield(zero, err)
				return
			}
		}
	}
}
