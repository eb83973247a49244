package assistant

import "fmt"

// StreamEventType identifies the kind of event produced by a model stream.
type StreamEventType string

const (
	// StreamTextDelta carries a newly generated fragment of assistant text.
	StreamTextDelta StreamEventType = "text_delta"

	// StreamToolCallDelta carries a fragment of a tool call's arguments.
	// ToolCall.ID and ToolCall.Name are set once known; Delta holds the fragment.
	StreamToolCallDelta StreamEventType = "tool_call_delta"

	// StreamToolCallComplete carries a fully assembled tool call.
	StreamToolCallComplete StreamEventType = "tool_call_complete"

	// StreamTurnComplete is the last event of a successful stream. Response
	// holds the accumulated content and every completed tool call.
	StreamTurnComplete StreamEventType = "turn_complete"
)

// StreamEvent is one element of the lazy sequence returned by
// [ChatProvider.ChatStream].
type StreamEvent struct {
	Type StreamEventType

	// Delta holds the text fragment for StreamTextDelta, or the argument
	// fragment for StreamToolCallDelta.
	Delta string

	// ToolCall is set for StreamToolCallDelta and StreamToolCallComplete.
	ToolCall *ToolCall

	// Response is set for StreamTurnComplete.
	Response *Response
}

// TextDelta creates a StreamTextDelta event.
func TextDelta(text string) StreamEvent {
	return StreamEvent{Type: StreamTextDelta, Delta: text}
}

// ToolCallDelta creates a StreamToolCallDelta event.
func ToolCallDelta(id, name, fragment string) StreamEvent {
	return StreamEvent{
		Type:     StreamToolCallDelta,
		Delta:    fragment,
		ToolCall: &ToolCall{ID: id, Name: name},
	}
}

// ToolCallComplete creates a StreamToolCallComplete event.
func ToolCallComplete(call ToolCall) StreamEvent {
	return StreamEvent{Type: StreamToolCallComplete, ToolCall: &call}
}

// TurnComplete creates a StreamTurnComplete event.
func TurnComplete(resp *Response) StreamEvent {
	return StreamEvent{Type: StreamTurnComplete, Response: resp}
}

// String returns a compact description used in logs.
func (e StreamEvent) String() string {
	switch e.Type {
	case StreamTextDelta:
		return fmt.Sprintf("text_delta(%q)", e.Delta)
	case StreamToolCallDelta, StreamToolCallComplete:
		if e.ToolCall != nil {
			return fmt.Sprintf("%s(%s %s)", e.Type, e.ToolCall.ID, e.ToolCall.Name)
		}
	}
	return string(e.Type)
}
