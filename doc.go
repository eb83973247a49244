// Package assistant holds the shared vocabulary of the research assistant:
// conversation messages, tool definitions and calls, the model streaming
// contract, request options, and the error taxonomy.
//
// The packages built on top of it are:
//
//   - [github.com/spetersoncode/assistant/tool]: the immutable tool registry and
//     the built-in research tools (web search, weather, calculator)
//   - [github.com/spetersoncode/assistant/client]: the model client that talks to
//     Anthropic, OpenAI, or Google and streams model events
//   - [github.com/spetersoncode/assistant/agent]: the single-turn tool-calling loop
//   - [github.com/spetersoncode/assistant/stream]: the adapter that turns agent
//     events into token, done, and error Server-Sent Events
//
// # Streaming Contract
//
// A [ChatProvider] returns a lazy, finite sequence of [StreamEvent] values for
// one request/response exchange with the model:
//
//	for ev, err := range provider.ChatStream(ctx, messages, assistant.WithTools(tools)) {
//	    if err != nil {
//	        return err
//	    }
//	    switch ev.Type {
//	    case assistant.StreamTextDelta:
//	        fmt.Print(ev.Delta)
//	    case assistant.StreamTurnComplete:
//	        fmt.Println(len(ev.Response.ToolCalls), "tool calls")
//	    }
//	}
//
// Breaking out of the loop abandons the upstream request. The sequence cannot
// be restarted; issue a new ChatStream call instead.
package assistant
