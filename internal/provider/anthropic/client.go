package anthropic

import (
	"context"
	"iter"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	ai "github.com/spetersoncode/assistant"
)

// defaultMaxTokens is used when the request does not set one; the API requires it.
const defaultMaxTokens = 4096

// Client wraps the Anthropic SDK to implement ai.ChatProvider.
type Client struct {
	client *anthropic.Client
	model  string
}

// ClientOption configures the Anthropic client.
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

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.reqOpts = append(c.reqOpts, option.WithBaseURL(url))
	}
}

// New creates a new Anthropic client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	cfg := &clientConfig{model: ai.ProviderAnthropic.DefaultModel()}
	for _, opt := range opts {
		opt(cfg)
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, cfg.reqOpts...)
	client := anthropic.NewClient(reqOpts...)
	return &Client{client: &client, model: cfg.model}
}

func (c *Client) params(messages []ai.Message, options *ai.Options) anthropic.MessageNewParams {
	model := c.model
	if options.Model != "" {
		model = options.Model
	}
	maxTokens := int64(defaultMaxTokens)
	if options.MaxTokens > 0 {
		maxTokens = int64(options.MaxTokens)
	}

	msgs, system := convertMessages(messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if options.Temperature != nil {
		params.Temperature = anthropic.Float(*options.Temperature)
	}
	if len(options.Tools) > 0 {
		params.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" && options.ToolChoice != ai.ToolChoiceNone {
			params.ToolChoice = convertToolChoice(options.ToolChoice)
		}
	}
	return params
}

type toolBlock struct {
	id   string
	name string
	args strings.Builder
}

// ChatStream streams a message as model events.
func (c *Client) ChatStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) iter.Seq2[ai.StreamEvent, error] {
	return func(yield func(ai.StreamEvent, error) bool) {
		stream := c.client.Messages.NewStreaming(ctx, c.params(messages, ai.ApplyOptions(opts...)))
		defer stream.Close()

		var acc anthropic.Message
		blocks := make(map[int64]*toolBlock)
		var toolCalls []ai.ToolCall
		var stopped bool

		for stream.Next() {
			event := stream.Current()
			if err := acc.Accumulate(event); err != nil {
				yield(ai.StreamEvent{}, err)
				return
			}

			switch event.Type {
			case "message_stop":
				stopped = true
			case "content_block_start":
				start := event.AsContentBlockStart()
				if start.ContentBlock.Type == "tool_use" {
					blocks[start.Index] = &toolBlock{id: start.ContentBlock.ID, name: start.ContentBlock.Name}
				}
			case "content_block_delta":
				delta := event.AsContentBlockDelta()
				switch delta.Delta.Type {
				case "text_delta":
					if delta.Delta.Text == "" {
						continue
					}
					if !yield(ai.TextDelta(delta.Delta.Text), nil) {
						return
					}
				case "input_json_delta":
					tb, ok := blocks[delta.Index]
					if !ok {
						continue
					}
					tb.args.WriteString(delta.Delta.PartialJSON)
					if !yield(ai.ToolCallDelta(tb.id, tb.name, delta.Delta.PartialJSON), nil) {
						return
					}
				}
			case "content_block_stop":
				stop := event.AsContentBlockStop()
				tb, ok := blocks[stop.Index]
				if !ok {
					continue
				}
				args := tb.args.String()
				if strings.TrimSpace(args) == "" {
					args = "{}"
				}
				call := ai.ToolCall{ID: tb.id, Name: tb.name, Arguments: args}
				toolCalls = append(toolCalls, call)
				if !yield(ai.ToolCallComplete(call), nil) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			yield(ai.StreamEvent{}, wrapError(err))
			return
		}
		if !stopped && acc.StopReason == "" {
			yield(ai.StreamEvent{}, ai.ErrIncompleteStream)
			return
		}

		var content strings.Builder
		for _, block := range acc.Content {
			if block.Type == "text" {
				content.WriteString(block.Text)
			}
		}

		yield(ai.TurnComplete(&ai.Response{
			Content:      content.String(),
			FinishReason: string(acc.StopReason),
			Usage: ai.Usage{
				InputTokens:  int(acc.Usage.InputTokens),
				OutputTokens: int(acc.Usage.OutputTokens),
			},
			ToolCalls: toolCalls,
		}), nil)
	}
}

var _ ai.ChatProvider = (*Client)(nil)
