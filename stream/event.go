package stream

import "encoding/json"

// Kind names an outbound event. It is used as the SSE event name.
type Kind string

const (
	KindToken Kind = "token"
	KindDone  Kind = "done"
	KindError Kind = "error"
)

// Event is one outbound stream event.
type Event struct {
	Kind Kind
	// Content is the newly produced text of a token event.
	Content string
	// Message is the error text of an error event.
	Message string
}

// Token creates a token event carrying one text fragment.
func Token(content string) Event { return Event{Kind: KindToken, Content: content} }

// Done creates the successful terminal event.
func Done() Event { return Event{Kind: KindDone} }

// Error creates the failed terminal event.
func Error(message string) Event { return Event{Kind: KindError, Message: message} }

// Terminal reports whether e closes the stream.
func (e Event) Terminal() bool { return e.Kind == KindDone || e.Kind == KindError }

type tokenPayload struct {
	Content string `json:"content"`
}

type donePayload struct {
	Status string `json:"status"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// MarshalJSON encodes the event's data line.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindToken:
		return json.Marshal(tokenPayload{Content: e.Content})
	case KindDone:
		return json.Marshal(donePayload{Status: "complete"})
	default:
		return json.Marshal(errorPayload{Error: e.Message})
	}
}
