package agent

import (
	ai "github.com/spetersoncode/assistant"
)

// TerminationReason indicates why the agent stopped execution.
type TerminationReason string

const (
	// TerminationComplete indicates normal completion (no more tool calls).
	TerminationComplete TerminationReason = "complete"

	// TerminationMaxSteps indicates the step limit was reached.
	TerminationMaxSteps TerminationReason = "max_steps"

	// TerminationTimeout indicates the turn deadline was exceeded.
	TerminationTimeout TerminationReason = "timeout"

	// TerminationError indicates an unrecoverable error occurred.
	TerminationError TerminationReason = "error"

	// TerminationCancelled indicates context cancellation.
	TerminationCancelled TerminationReason = "cancelled"
)

// Result represents the final outcome of a turn run with Run.
type Result struct {
	// Response is the final model response. Its Usage is the turn total.
	Response *ai.Response

	// Steps is the number of model requests made.
	Steps int

	Termination TerminationReason

	// ToolResults lists every tool result in the order they were appended.
	ToolResults []ai.ToolResult

	// Error contains the error that ended the turn, if any.
	Error error
}

// Text returns the final answer text, or "" if the turn failed.
func (r *Result) Text() string {
	if r == nil || r.Response == nil {
		return ""
	}
	return r.Response.Content
}
