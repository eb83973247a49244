package retry

import "time"

// EventType identifies the kind of event occurring during retry execution.
type EventType string

const (
	// EventAttemptFailed fires after a failed attempt.
	EventAttemptFailed EventType = "attempt_failed"

	// EventRetrying fires before sleeping between attempts.
	EventRetrying EventType = "retrying"

	// EventExhausted fires when every attempt has failed.
	EventExhausted EventType = "exhausted"
)

// Event describes one step of a retried request.
type Event struct {
	Type        EventType
	Attempt     int // 1-indexed
	MaxAttempts int
	Err         error
	Delay       time.Duration // set for EventRetrying
	Retryable   bool
}

// Observer receives retry events. A nil Observer is ignored.
type Observer func(Event)

func (o Observer) notify(ev Event) {
	if o != nil {
		o(ev)
	}
}
