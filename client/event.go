package client

import (
	"time"

	ai "github.com/spetersoncode/assistant"
	"github.com/spetersoncode/assistant/internal/retry"
)

// EventType identifies the kind of event occurring during client operations.
type EventType string

const (
	// EventRequestStart fires before a model request is opened.
	EventRequestStart EventType = "request_start"

	// EventRequestComplete fires after the model turn completes.
	EventRequestComplete EventType = "request_complete"

	// EventRequestError fires when the stream ends with an error.
	EventRequestError EventType = "request_error"

	// EventRetry fires for each retry step (forwarded from the retry package).
	EventRetry EventType = "retry"
)

// Event represents an observable occurrence during client operations.
type Event struct {
	Type     EventType
	Provider ai.Provider
	Model    string

	// Duration is the elapsed time for completed or failed requests.
	Duration time.Duration

	// Usage is set for EventRequestComplete.
	Usage *ai.Usage

	Error error

	// RetryEvent is set for EventRetry.
	RetryEvent *retry.Event

	Timestamp time.Time
}

// Observer receives client events.
type Observer func(Event)

func (o Observer) emit(ev Event) {
	if o == nil {
		return
	}
	ev.Timestamp = time.Now()
	o(ev)
}
