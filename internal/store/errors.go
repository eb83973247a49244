package store

import (
	"errors"
	"fmt"
)

// ErrPendingToolCalls is returned when a user or assistant message is appended
// while tool calls from the previous assistant message are still unanswered.
var ErrPendingToolCalls = errors.New("store: tool calls awaiting results")

// UnmatchedToolResultError reports a tool result whose ID does not correspond
// to an outstanding tool call.
type UnmatchedToolResultError struct {
	ToolCallID string
}

func (e *UnmatchedToolResultError) Error() string {
	return fmt.Sprintf("store: tool result %q does not match a pending tool call", e.ToolCallID)
}

// Is reports whether target is ErrUnmatchedToolResult.
func (e *UnmatchedToolResultError) Is(target error) bool {
	return target == ErrUnmatchedToolResult
}

// ErrUnmatchedToolResult matches any [UnmatchedToolResultError] via errors.Is.
var ErrUnmatchedToolResult = errors.New("store: unmatched tool result")
