package assistant

import (
	"context"
	"errors"
	"iter"
)

// ChatProvider defines the interface for streaming chat models.
type ChatProvider interface {
	// ChatStream sends a conversation and returns a lazy sequence of model
	// events. The sequence performs the request when ranged over, ends after a
	// StreamTurnComplete event, and yields a non-nil error as its last element
	// if the transport fails. It is not restartable.
	ChatStream(ctx context.Context, messages []Message, opts ...Option) iter.Seq2[StreamEvent, error]
}

// ErrIncompleteStream is returned when a model stream ends without a
// StreamTurnComplete event and without reporting an error.
var ErrIncompleteStream = errors.New("model stream ended before turn completed")

// Collect drains a model stream and returns the final response.
func Collect(seq iter.Seq2[StreamEvent, error]) (*Response, error) {
	for ev, err := range seq {
		if err != nil {
			return nil, err
		}
		if ev.Type == StreamTurnComplete {
			return ev.Response, nil
		}
	}
	return nil, ErrIncompleteStream
}
