package client

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	ai "github.com/spetersoncode/assistant"
	"github.com/spetersoncode/assistant/internal/provider/anthropic"
	"github.com/spetersoncode/assistant/internal/provider/google"
	"github.com/spetersoncode/assistant/internal/provider/openai"
	"github.com/spetersoncode/assistant/internal/retry"
)

// APIKeys holds API keys for the model providers.
// Only the key for the configured provider is required.
type APIKeys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

func (k APIKeys) forProvider(p ai.Provider) string {
	switch p {
	case ai.ProviderAnthropic:
		return k.Anthropic
	case ai.ProviderGoogle:
		return k.Google
	default:
		return k.OpenAI
	}
}

// Config holds configuration for creating a Client.
type Config struct {
	// Provider selects the backend. Empty means OpenAI.
	Provider ai.Provider

	APIKeys APIKeys

	// Model is the default model. Empty means the provider's default.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Retry configures stream establishment retries. The zero value disables them.
	Retry retry.Config

	// Observer receives request lifecycle events. May be nil.
	Observer Observer
}

// ErrMissingAPIKey is returned when no API key is configured for the
// selected provider.
type ErrMissingAPIKey struct {
	Provider string
}

func (e *ErrMissingAPIKey) Error() string {
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDefaultTemperature sets the default temperature for chat requests.
// Per-request options override this default.
func WithDefaultTemperature(t float64) ClientOption {
	return func(c *Client) {
		c.defaultChatOpts = append(c.defaultChatOpts, ai.WithTemperature(t))
	}
}

// WithDefaultMaxTokens sets the default max tokens for chat requests.
// Non-positive values leave the provider default in place.
func WithDefaultMaxTokens(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.defaultChatOpts = append(c.defaultChatOpts, ai.WithMaxTokens(n))
		}
	}
}

// WithDefaultChatOptions sets default options for all chat requests.
// Per-request options override these defaults.
func WithDefaultChatOptions(opts ...ai.Option) ClientOption {
	return func(c *Client) {
		c.defaultChatOpts = append(c.defaultChatOpts, opts...)
	}
}

// WithChatProvider replaces the configured backend with p.
// Used to run the client against a scripted or self-hosted model.
func WithChatProvider(p ai.ChatProvider) ClientOption {
	return func(c *Client) {
		c.backend = p
	}
}

// Client is the model client shared by every agent turn.
// The backend is initialized on first use; Client is safe for concurrent use.
type Client struct {
	provider        ai.Provider
	apiKey          string
	model           string
	baseURL         string
	retryConfig     retry.Config
	observer        Observer
	defaultChatOpts []ai.Option

	mu      sync.RWMutex
	backend ai.ChatProvider
	initErr error
}

// New creates a client with the given configuration.
func New(cfg Config, opts ...ClientOption) *Client {
	provider := cfg.Provider
	if provider == "" {
		provider = ai.ProviderOpenAI
	}
	model := cfg.Model
	if model == "" {
		model = provider.DefaultModel()
	}
	c := &Client{
		provider:    provider,
		apiKey:      cfg.APIKeys.forProvider(provider),
		model:       model,
		baseURL:     cfg.BaseURL,
		retryConfig: cfg.Retry,
		observer:    cfg.Observer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the selected provider.
func (c *Client) Provider() ai.Provider { return c.provider }

// Model returns the default model.
func (c *Client) Model() string { return c.model }

// chatProvider returns the backend, initializing it if needed.
func (c *Client) chatProvider(ctx context.Context) (ai.ChatProvider, error) {
	c.mu.RLock()
	if c.backend != nil || c.initErr != nil {
		defer c.mu.RUnlock()
		return c.backend, c.initErr
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.backend != nil || c.initErr != nil {
		return c.backend, c.initErr
	}

	c.backend, c.initErr = c.newBackend(ctx)
	return c.backend, c.initErr
}

func (c *Client) newBackend(ctx context.Context) (ai.ChatProvider, error) {
	if c.apiKey == "" {
		return nil, &ErrMissingAPIKey{Provider: c.provider.String()}
	}

	switch c.provider {
	case ai.ProviderAnthropic:
		opts := []anthropic.ClientOption{anthropic.WithModel(c.model)}
		if c.baseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(c.baseURL))
		}
		return anthropic.New(c.apiKey, opts...), nil
	case ai.ProviderGoogle:
		opts := []google.ClientOption{google.WithModel(c.model)}
		if c.baseURL != "" {
			opts = append(opts, google.WithBaseURL(c.baseURL))
		}
		client, err := google.New(ctx, c.apiKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google client: %w", err)
		}
		return client, nil
	case ai.ProviderOpenAI:
		opts := []openai.ClientOption{openai.WithModel(c.model)}
		if c.baseURL != "" {
			opts = append(opts, openai.WithBaseURL(c.baseURL))
		}
		return openai.New(c.apiKey, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", c.provider)
	}
}

// ChatStream streams one model turn. Default options are applied first so
// per-request options override them. Transient failures before the first
// event are retried according to Config.Retry.
func (c *Client) ChatStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) iter.Seq2[ai.StreamEvent, error] {
	opts = append(slices.Clone(c.defaultChatOpts), opts...)
	if ai.ApplyOptions(opts...).Model == "" {
		opts = append([]ai.Option{ai.WithModel(c.model)}, opts...)
	}
	model := ai.ApplyOptions(opts...).Model

	return func(yield func(ai.StreamEvent, error) bool) {
		backend, err := c.chatProvider(ctx)
		if err != nil {
			yield(ai.StreamEvent{}, err)
			return
		}

		start := time.Now()
		c.observer.emit(Event{Type: EventRequestStart, Provider: c.provider, Model: model})

		onRetry := func(ev retry.Event) {
			c.observer.emit(Event{Type: EventRetry, Provider: c.provider, Model: model, RetryEvent: &ev})
		}
		seq := retry.Seq(ctx, c.retryConfig, onRetry, func() iter.Seq2[ai.StreamEvent, error] {
			return backend.ChatStream(ctx, messages, opts...)
		})

		for ev, err := range seq {
			if err != nil {
				c.observer.emit(Event{
					Type:     EventRequestError,
					Provider: c.provider,
					Model:    model,
					Duration: time.Since(start),
					Error:    err,
				})
				yield(ev, err)
				return
			}
			if ev.Type == ai.StreamTurnComplete && ev.Response != nil {
				usage := ev.Response.Usage
				c.observer.emit(Event{
					Type:     EventRequestComplete,
					Provider: c.provider,
					Model:    model,
					Duration: time.Since(start),
					Usage:    &usage,
				})
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

var _ ai.ChatProvider = (*Client)(nil)
