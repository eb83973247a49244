package main

import (
	"log/slog"
	"os"

	ai "github.com/spetersoncode/assistant"
	"github.com/spetersoncode/assistant/agent"
	"github.com/spetersoncode/assistant/client"
	"github.com/spetersoncode/assistant/internal/openweather"
	"github.com/spetersoncode/assistant/internal/retry"
	"github.com/spetersoncode/assistant/internal/tavily"
	"github.com/spetersoncode/assistant/model"
	"github.com/spetersoncode/assistant/tool"
	"github.com/spf13/cobra"
)

// runtime holds what every subcommand shares. It is built once in the root
// command's PersistentPreRunE.
type runtime struct {
	cfg *Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:           "assistant",
		Short:         "AI research assistant with web search, weather and math tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			level, err := parseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.log = newLogger(os.Stderr, level)
			slog.SetDefault(rt.log)
			return nil
		},
	}

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.AddCommand(newServeCmd(rt))
	rootCmd.AddCommand(newAskCmd(rt))
	rootCmd.AddCommand(newMCPCmd(rt))
	rootCmd.AddCommand(newToolsCmd(rt))
	rootCmd.AddCommand(newModelsCmd())

	return rootCmd
}

// registry builds the immutable tool registry shared by all turns.
func (rt *runtime) registry() *tool.Registry {
	return tool.MustNewRegistry(tool.ResearchTools(
		tavily.New(rt.cfg.TavilyKey),
		openweather.New(rt.cfg.OpenWeatherKey),
	)...)
}

// agent builds the model client and agent. The configuration must be valid.
func (rt *runtime) newAgent() (*agent.Agent, error) {
	if err := rt.cfg.Validate(); err != nil {
		return nil, err
	}
	provider, err := ai.ParseProvider(rt.cfg.Provider)
	if err != nil {
		return nil, err
	}

	c := client.New(client.Config{
		Provider: provider,
		APIKeys: client.APIKeys{
			Anthropic: rt.cfg.AnthropicKey,
			OpenAI:    rt.cfg.OpenAIKey,
			Google:    rt.cfg.GoogleKey,
		},
		Model:    rt.cfg.Model,
		Retry:    retry.WithAttempts(rt.cfg.ModelRetries + 1),
		Observer: rt.observeClient,
	},
		client.WithDefaultTemperature(rt.cfg.Temperature),
		client.WithDefaultMaxTokens(rt.cfg.MaxTokens),
	)
	rt.log.Info("model client ready", "provider", c.Provider(), "model", c.Model())

	return agent.New(c, rt.registry(),
		agent.WithSystemPrompt(rt.cfg.SystemPrompt),
		agent.WithMaxSteps(rt.cfg.MaxSteps),
		agent.WithTimeout(rt.cfg.Timeout),
		agent.WithHandlerTimeout(rt.cfg.ToolTimeout),
	), nil
}

func (rt *runtime) observeClient(ev client.Event) {
	switch ev.Type {
	case client.EventRequestComplete:
		attrs := []any{"provider", ev.Provider, "model", ev.Model, "duration_ms", ev.Duration.Milliseconds()}
		if ev.Usage != nil {
			attrs = append(attrs, "input_tokens", ev.Usage.InputTokens, "output_tokens", ev.Usage.OutputTokens)
			if cost, ok := model.EstimateCost(ev.Model, *ev.Usage); ok {
				attrs = append(attrs, "cost_usd", cost)
			}
		}
		rt.log.Debug("model request completed", attrs...)
	case client.EventRequestError:
		rt.log.Warn("model request failed",
			"provider", ev.Provider,
			"model", ev.Model,
			"duration_ms", ev.Duration.Milliseconds(),
			"error", ev.Error,
		)
	case client.EventRetry:
		if ev.RetryEvent != nil && ev.RetryEvent.Type == retry.EventRetrying {
			rt.log.Warn("retrying model request",
				"attempt", ev.RetryEvent.Attempt,
				"max_attempts", ev.RetryEvent.MaxAttempts,
				"delay", ev.RetryEvent.Delay,
				"error", ev.RetryEvent.Err,
			)
		}
	}
}
