package tool

import (
	"context"

	ai "github.com/spetersoncode/assistant"
)

// Handler executes a tool call and returns the result content.
// The context carries the per-call timeout and turn cancellation.
type Handler func(ctx context.Context, call ai.ToolCall) (string, error)

// TypedHandler is a Handler whose arguments have been decoded into T.
type TypedHandler[T any] func(ctx context.Context, args T) (string, error)
