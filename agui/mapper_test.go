package agui

import (
	"errors"
	"strings"
	"testing"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/spetersoncode/assistant"
	"github.com/spetersoncode/assistant/event"
)

func TestNewMapper(t *testing.T) {
	t.Run("with provided IDs", func(t *testing.T) {
		m := NewMapper("thread-123", "run-456")
		if m.ThreadID() != "thread-123" {
			t.Errorf("expected thread ID 'thread-123', got %q", m.ThreadID())
		}
		if m.RunID() != "run-456" {
			t.Errorf("expected run ID 'run-456', got %q", m.RunID())
		}
	})

	t.Run("generates IDs when empty", func(t *testing.T) {
		m := NewMapper("", "")
		if m.ThreadID() == "" {
			t.Error("expected generated thread ID, got empty")
		}
		if m.RunID() == "" {
			t.Error("expected generated run ID, got empty")
		}
	})
}

func TestMapper_MapEvent(t *testing.T) {
	call := &ai.ToolCall{ID: "call-1", Name: "calculator", Arguments: `{"expression":"1+1"}`}

	tests := []struct {
		name string
		in   event.Event
		want events.EventType
	}{
		{"RunStart", event.Event{Type: event.RunStart}, events.EventTypeRunStarted},
		{"StepStart", event.Event{Type: event.StepStart, Step: 1}, events.EventTypeStepStarted},
		{"StepEnd", event.Event{Type: event.StepEnd, Step: 1}, events.EventTypeStepFinished},
		{"MessageStart", event.Event{Type: event.MessageStart, MessageID: "m1"}, events.EventTypeTextMessageStart},
		{"MessageDelta", event.Event{Type: event.MessageDelta, MessageID: "m1", Delta: "Hi"}, events.EventTypeTextMessageContent},
		{"MessageEnd", event.Event{Type: event.MessageEnd, MessageID: "m1"}, events.EventTypeTextMessageEnd},
		{"ToolCallStart", event.Event{Type: event.ToolCallStart, ToolCall: call}, events.EventTypeToolCallStart},
		{"ToolCallArgs", event.Event{Type: event.ToolCallArgs, ToolCall: call, Delta: call.Arguments}, events.EventTypeToolCallArgs},
		{"ToolCallEnd", event.Event{Type: event.ToolCallEnd, ToolCall: call}, events.EventTypeToolCallEnd},
		{
			"ToolCallResult",
			event.Event{Type: event.ToolCallResult, ToolCall: call, ToolResult: &ai.ToolResult{ToolCallID: "call-1", Content: "Result: 1+1 = 2"}},
			events.EventTypeToolCallResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMapper("thread-1", "run-1")
			got := m.MapEvent(tt.in)
			if got == nil {
				t.Fatal("expected event, got nil")
			}
			if got.Type() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Type())
			}
		})
	}
}

func TestMapper_MapEvent_Skipped(t *testing.T) {
	m := NewMapper("thread-1", "run-1")

	skipped := []event.Event{
		{Type: event.ToolCallExecuting, ToolCall: &ai.ToolCall{ID: "c"}},
		{Type: event.ToolCallStart},
		{Type: event.ToolCallArgs, ToolCall: &ai.ToolCall{ID: "c"}},
		{Type: event.MessageDelta, MessageID: "m1"},
		{Type: event.ToolCallResult, ToolCall: &ai.ToolCall{ID: "c"}},
	}
	for _, e := range skipped {
		if got := m.MapEvent(e); got != nil {
			t.Errorf("%s: expected nil, got %s", e.Type, got.Type())
		}
	}
}

func TestMapper_RunError(t *testing.T) {
	m := NewMapper("thread-1", "run-1")
	got := m.MapEvent(event.Event{Type: event.RunError, Error: errors.New("boom")})
	if got == nil || got.Type() != events.EventTypeRunError {
		t.Fatalf("expected RUN_ERROR, got %v", got)
	}
	data, err := got.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !strings.Contains(string(data), "boom") {
		t.Errorf("expected error message in payload, got %s", data)
	}

	if after := m.MapEvent(event.Event{Type: event.RunEnd}); after != nil {
		t.Errorf("expected nothing after terminal event, got %s", after.Type())
	}
}

func TestMapper_MapStream(t *testing.T) {
	t.Run("maps a complete run", func(t *testing.T) {
		m := NewMapper("thread-1", "run-1")

		input := make(chan event.Event, 10)
		input <- event.Event{Type: event.RunStart}
		input <- event.Event{Type: event.MessageStart, MessageID: "msg-1"}
		input <- event.Event{Type: event.MessageDelta, MessageID: "msg-1", Delta: "Hi"}
		input <- event.Event{Type: event.MessageEnd, MessageID: "msg-1"}
		input <- event.Event{Type: event.RunEnd}
		close(input)

		var received []events.EventType
		for ev := range m.MapStream(input) {
			received = append(received, ev.Type())
		}

		expected := []events.EventType{
			events.EventTypeRunStarted,
			events.EventTypeTextMessageStart,
			events.EventTypeTextMessageContent,
			events.EventTypeTextMessageEnd,
			events.EventTypeRunFinished,
		}
		if len(received) != len(expected) {
			t.Fatalf("expected %d events, got %d: %v", len(expected), len(received), received)
		}
		for i, e := range expected {
			if received[i] != e {
				t.Errorf("event %d: expected %s, got %s", i, e, received[i])
			}
		}
	})

	t.Run("closes an interrupted run with RUN_ERROR", func(t *testing.T) {
		m := NewMapper("thread-1", "run-1")

		input := make(chan event.Event, 2)
		input <- event.Event{Type: event.RunStart}
		close(input)

		var received []events.EventType
		for ev := range m.MapStream(input) {
			received = append(received, ev.Type())
		}
		if len(received) != 2 || received[1] != events.EventTypeRunError {
			t.Errorf("expected RUN_STARTED then RUN_ERROR, got %v", received)
		}
	})
}
