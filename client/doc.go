// Package client provides the model client used by the agent.
//
// A Client is built once from a Config. It picks one provider backend
// (Anthropic, OpenAI or Google), prepends default request options and exposes
// a single ai.ChatProvider:
//
//	c := client.New(client.Config{
//	    Provider: ai.ProviderOpenAI,
//	    APIKeys:  client.APIKeys{OpenAI: os.Getenv("OPENAI_API_KEY")},
//	}, client.WithDefaultTemperature(0.7))
//
//	for ev, err := range c.ChatStream(ctx, messages) {
//	    ...
//	}
//
// # Retries
//
// Transient failures that happen before the stream yields its first event are
// retried with exponential backoff. Retries are off unless Config.Retry allows
// more than one attempt; once an event has been delivered the stream is never
// reopened.
//
// # Events
//
// Config.Observer receives request lifecycle events (start, complete, error,
// retry). Observers are called synchronously from the streaming goroutine.
package client
