// Package openai adapts the OpenAI chat completions API to ai.ChatProvider.
package openai

import (
	"context"
	"errors"
	"iter"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	ai "github.com/spetersoncode/assistant"
)

var errNoChoices = errors.New("openai: stream returned no choices")

// Client wraps the OpenAI SDK to implement ai.ChatProvider.
type Client struct {
	client *openai.Client
	model  string
}

// ClientOption configures the OpenAI client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	model   string
	reqOpts []option.RequestOption
}

// WithModel sets the default model for requests.
func WithModel(model string) ClientOption {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.reqOpts = append(c.reqOpts, option.WithBaseURL(url))
	}
}

// New creates a new OpenAI client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	cfg := &clientConfig{model: ai.ProviderOpenAI.DefaultModel()}
	for _, opt := range opts {
		opt(cfg)
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, cfg.reqOpts...)
	client := openai.NewClient(reqOpts...)
	return &Client{client: &client, model: cfg.model}
}

func (c *Client) params(messages []ai.Message, options *ai.Options) openai.ChatCompletionNewParams {
	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: convertMessages(messages),
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(options.MaxTokens))
	}
	if options.Temperature != nil {
		params.Temperature = openai.Float(*options.Temperature)
	}
	if len(options.Tools) > 0 {
		params.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			params.ToolChoice = convertToolChoice(options.ToolChoice)
		}
	}
	return params
}

// ChatStream streams a chat completion as model events.
//
// Text deltas are forwarded as they arrive. Tool call fragments are tagged
// with the call's ID and name (which OpenAI only sends on the first fragment
// of each call), and every assembled call is emitted once before the final
// TurnComplete.
func (c *Client) ChatStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) iter.Seq2[ai.StreamEvent, error] {
	return func(yield func(ai.StreamEvent, error) bool) {
		stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(messages, ai.ApplyOptions(opts...)))
		defer stream.Close()

		var acc openai.ChatCompletionAccumulator
		calls := newCallTracker()

		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if tc, ok := acc.JustFinishedToolCall(); ok {
				if call, first := calls.finish(tc.ID, tc.Name, tc.Arguments); first {
					if !yield(ai.ToolCallComplete(call), nil) {
						return
					}
				}
			}

			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta
			if delta.Content != "" {
				if !yield(ai.TextDelta(delta.Content), nil) {
					return
				}
			}
			for _, tc := range delta.ToolCalls {
				id, name := calls.observe(tc.Index, tc.ID, tc.Function.Name)
				if tc.Function.Arguments == "" && tc.ID == "" {
					continue
				}
				if !yield(ai.ToolCallDelta(id, name, tc.Function.Arguments), nil) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			yield(ai.StreamEvent{}, wrapError(err))
			return
		}
		if len(acc.Choices) == 0 {
			yield(ai.StreamEvent{}, errNoChoices)
			return
		}

		completion := acc.Choices[0]
		if completion.FinishReason == "" {
			yield(ai.StreamEvent{}, ai.ErrIncompleteStream)
			return
		}
		toolCalls := extractToolCalls(completion.Message.ToolCalls)
		for _, call := range toolCalls {
			if call, first := calls.finish(call.ID, call.Name, call.Arguments); first {
				if !yield(ai.ToolCallComplete(call), nil) {
					return
				}
			}
		}

		yield(ai.TurnComplete(&ai.Response{
			Content:      completion.Message.Content,
			FinishReason: string(completion.FinishReason),
			Usage: ai.Usage{
				InputTokens:  int(acc.Usage.PromptTokens),
				OutputTokens: int(acc.Usage.CompletionTokens),
			},
			ToolCalls: toolCalls,
		}), nil)
	}
}

var _ ai.ChatProvider = (*Client)(nil)
