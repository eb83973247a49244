// Package agent runs one conversational turn as an explicit state machine.
//
// A turn starts in AwaitingModel with a conversation holding the system
// prompt and the user's message. Each model request streams text and tool
// calls; when the response requests tools the turn moves to
// AwaitingToolResults, runs every call through the tool registry, appends the
// results in request order and asks the model again. A response without tool
// calls finishes the turn.
//
//	a := agent.New(client, registry, agent.WithMaxSteps(10))
//
//	for e := range a.RunStream(ctx, "What's 25 * 4 + 10?") {
//	    switch e.Type {
//	    case event.MessageDelta:
//	        fmt.Print(e.Delta)
//	    case event.ToolCallStart:
//	        fmt.Printf("[Tool: %s]\n", e.ToolCall.Name)
//	    case event.RunError:
//	        log.Print(e.Error)
//	    }
//	}
//
// # Failures
//
// Handler failures are reported to the model as error results and the turn
// continues. Everything else ends the turn with a single event.RunError:
//
//   - a transport error from the model client (no retries inside the loop)
//   - a tool name the registry does not know (*tool.ErrToolNotFound)
//   - arguments that are not a JSON object (*tool.ErrInvalidArguments)
//   - more than MaxSteps model requests (ErrMaxStepsReached)
//   - the turn timeout (ErrAgentTimeout) or cancellation
//
// # Configuration Options
//
//   - WithSystemPrompt(s): seed the conversation
//   - WithMaxSteps(n): cap model requests per turn (default: 10)
//   - WithTimeout(d): bound the whole turn (default: 2m)
//   - WithHandlerTimeout(d): bound each tool handler (default: 30s)
//   - WithParallelToolCalls(bool): run one response's tools concurrently (default: true)
//   - WithMaxParallelTools(n): concurrency cap (default: 4)
//   - WithChatOptions(opts...): pass options to the ChatProvider
package agent
