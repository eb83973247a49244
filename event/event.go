// Package event defines the events an agent turn produces. Outbound
// adapters (the SSE stream and the AG-UI mapper) consume the same sequence.
package event

import (
	"context"
	"time"

	ai "github.com/spetersoncode/assistant"
)

// Type identifies the kind of event.
type Type string

// Run lifecycle events
const (
	// RunStart fires when the turn begins.
	RunStart Type = "run_start"

	// RunEnd fires when the turn completes successfully. It is terminal.
	RunEnd Type = "run_end"

	// RunError fires when an unrecoverable error ends the turn. It is terminal.
	RunError Type = "run_error"
)

// Step lifecycle events. A step is one model request.
const (
	StepStart Type = "step_start"
	StepEnd   Type = "step_end"
)

// Message lifecycle events
const (
	// MessageStart fires before the first forwarded text of an assistant message.
	MessageStart Type = "message_start"

	// MessageDelta carries one newly produced text fragment.
	MessageDelta Type = "message_delta"

	// MessageEnd fires when an assistant message that had forwarded text completes.
	MessageEnd Type = "message_end"
)

// Tool call lifecycle events
const (
	// ToolCallStart fires when the model starts a tool call (contains tool name).
	ToolCallStart Type = "tool_call_start"

	// ToolCallArgs carries an argument fragment.
	ToolCallArgs Type = "tool_call_args"

	// ToolCallEnd fires when the call's arguments are complete.
	ToolCallEnd Type = "tool_call_end"

	// ToolCallExecuting fires before the tool handler runs.
	ToolCallExecuting Type = "tool_call_executing"

	// ToolCallResult fires with the tool execution result.
	ToolCallResult Type = "tool_call_result"
)

// Event represents an observable occurrence during an agent turn.
type Event struct {
	Type Type

	// RunID identifies the turn.
	RunID string

	// MessageID correlates Message Start/Delta/End events.
	MessageID string

	// Delta is the text fragment for MessageDelta and ToolCallArgs.
	Delta string

	// Response is the model response for StepEnd, MessageEnd and RunEnd.
	// On RunEnd its Usage is the total across all steps.
	Response *ai.Response

	ToolCall   *ai.ToolCall
	ToolResult *ai.ToolResult

	// Step is the 1-indexed model request number.
	Step int

	// Error is set for RunError.
	Error error

	Timestamp time.Time
}

// Terminal reports whether e ends the turn.
func (e Event) Terminal() bool {
	return e.Type == RunEnd || e.Type == RunError
}

// Send delivers e on ch, blocking until it is received or ctx is done.
// It reports whether the event was delivered.
func Send(ctx context.Context, ch chan<- Event, e Event) bool {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case ch <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

// NewChannel creates a buffered event channel with standard capacity.
func NewChannel() chan Event {
	return make(chan Event, 100)
}
