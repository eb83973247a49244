// Package google adapts the Gemini API to ai.ChatProvider.
package google

import (
	"context"
	"encoding/json"
	"iter"
	"strings"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/assistant"
	"google.golang.org/genai"
)

// Client wraps the Google GenAI SDK to implement ai.ChatProvider.
type Client struct {
	client *genai.Client
	model  string
}

// ClientOption configures the Google client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	model   string
	baseURL string
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
		c.baseURL = url
	}
}

// New creates a new Google GenAI client with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{model: ai.ProviderGoogle.DefaultModel()}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.baseURL},
	})
	if err != nil {
		return nil, err
	}
	return &Client{client: client, model: cfg.model}, nil
}

func (c *Client) config(system string, options *ai.Options) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.Temperature != nil {
		temp := float32(*options.Temperature)
		config.Temperature = &temp
	}
	if len(options.Tools) > 0 {
		config.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			config.ToolConfig = convertToolChoice(options.ToolChoice)
		}
	}
	return config
}

// ChatStream streams a Gemini response as model events.
//
// Gemini delivers function calls whole, so each one is reported as a single
// ToolCallComplete without preceding fragments. Calls without a server ID
// are given a generated one.
func (c *Client) ChatStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) iter.Seq2[ai.StreamEvent, error] {
	return func(yield func(ai.StreamEvent, error) bool) {
		options := ai.ApplyOptions(opts...)
		model := c.model
		if options.Model != "" {
			model = options.Model
		}
		contents, system := convertMessages(messages)
		config := c.config(system, options)

		relay(c.client.Models.GenerateContentStream(ctx, model, contents, config), yield)
	}
}

// relay converts Gemini response chunks into model events. A stream that
// ends before any candidate reports a finish reason was cut off upstream
// and ends with ai.ErrIncompleteStream.
func relay(responses iter.Seq2[*genai.GenerateContentResponse, error], yield func(ai.StreamEvent, error) bool) {
	var (
		content      strings.Builder
		finishReason string
		usage        ai.Usage
		toolCalls    []ai.ToolCall
	)

	for resp, err := range responses {
		if err != nil {
			yield(ai.StreamEvent{}, wrapError(err))
			return
		}

		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			yield(ai.StreamEvent{}, &BlockedError{Reason: string(resp.PromptFeedback.BlockReason)})
			return
		}
		if resp.UsageMetadata != nil {
			usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
			usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		}
		if len(resp.Candidates) == 0 {
			continue
		}
		candidate := resp.Candidates[0]
		if candidate.FinishReason != "" {
			finishReason = string(candidate.FinishReason)
		}
		if candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			switch {
			case part.FunctionCall != nil:
				call := toolCallFromPart(part.FunctionCall)
				toolCalls = append(toolCalls, call)
				if !yield(ai.ToolCallComplete(call), nil) {
					return
				}
			case part.Text != "" && !part.Thought:
				content.WriteString(part.Text)
				if !yield(ai.TextDelta(part.Text), nil) {
					return
				}
			}
		}
	}

	if finishReason == "" {
		yield(ai.StreamEvent{}, ai.ErrIncompleteStream)
		return
	}

	yield(ai.TurnComplete(&ai.Response{
		Content:      content.String(),
		FinishReason: finishReason,
		Usage:        usage,
		ToolCalls:    toolCalls,
	}), nil)
}

func toolCallFromPart(fc *genai.FunctionCall) ai.ToolCall {
	id := fc.ID
	if id == "" {
		id = "call_" + uuid.NewString()
	}
	args := "{}"
	if len(fc.Args) > 0 {
		if b, err := json.Marshal(fc.Args); err == nil {
			args = string(b)
		}
	}
	return ai.ToolCall{ID: id, Name: fc.Name, Arguments: args}
}

var _ ai.ChatProvider = (*Client)(nil)
