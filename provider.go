package assistant

import "fmt"

// Provider identifies an AI provider.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// ParseProvider validates a provider name.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(name); p {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider: %s (must be anthropic, openai, or google)", name)
	}
}

// DefaultModel returns the model used when none is configured.
func (p Provider) DefaultModel() string {
	switch p {
	case ProviderAnthropic:
		return "claude-sonnet-4-5"
	case ProviderGoogle:
		return "gemini-2.5-flash"
	default:
		return "gpt-4o-mini"
	}
}
