package agent

import (
	"time"

	ai "github.com/spetersoncode/assistant"
)

// Options contains configuration for one agent turn.
type Options struct {
	// SystemPrompt seeds the conversation ahead of the user message.
	SystemPrompt string

	// MaxSteps limits the number of model requests per turn. Default is 10.
	// Set to 0 for unlimited (not recommended).
	MaxSteps int

	// Timeout bounds the whole turn. Default is 2 minutes; 0 disables it.
	Timeout time.Duration

	// HandlerTimeout bounds each tool handler. Default is 30 seconds.
	HandlerTimeout time.Duration

	// ParallelToolCalls runs the tool calls of one model response concurrently.
	// Results are always appended in request order. Default is true.
	ParallelToolCalls bool

	// MaxParallelTools caps concurrent handlers when ParallelToolCalls is set.
	// Default is 4.
	MaxParallelTools int

	// ChatOptions are passed through to the ChatProvider on every request.
	ChatOptions []ai.Option
}

// Option is a functional option for configuring agent execution.
type Option func(*Options)

// WithSystemPrompt sets the system prompt for the turn.
func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

// WithMaxSteps sets the maximum number of model requests per turn.
func WithMaxSteps(n int) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

// WithTimeout sets a deadline for the entire turn.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithHandlerTimeout sets the timeout for each individual tool handler.
func WithHandlerTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HandlerTimeout = d
	}
}

// WithParallelToolCalls enables or disables concurrent tool execution.
func WithParallelToolCalls(enabled bool) Option {
	return func(o *Options) {
		o.ParallelToolCalls = enabled
	}
}

// WithMaxParallelTools caps how many tool handlers run at once.
func WithMaxParallelTools(n int) Option {
	return func(o *Options) {
		o.MaxParallelTools = n
	}
}

// WithChatOptions passes options through to the ChatProvider.
func WithChatOptions(opts ...ai.Option) Option {
	return func(o *Options) {
		o.ChatOptions = append(o.ChatOptions, opts...)
	}
}

// ApplyOptions applies functional options to an Options struct with defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		MaxSteps:          10,
		Timeout:           2 * time.Minute,
		HandlerTimeout:    30 * time.Second,
		ParallelToolCalls: true,
		MaxParallelTools:  4,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Options) toolLimit() int {
	if !o.ParallelToolCalls || o.MaxParallelTools < 1 {
		return 1
	}
	return o.MaxParallelTools
}
