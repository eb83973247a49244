// Package anthropic adapts the Anthropic Messages API to ai.ChatProvider.
//
// Streaming responses are translated block by block: text deltas become
// TextDelta events, input_json_delta fragments become ToolCallDelta events
// tagged with the tool_use block's ID and name, and each tool_use block is
// reported as a ToolCallComplete when its content_block_stop arrives.
//
//	client := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"))
//	for ev, err := range client.ChatStream(ctx, messages) {
//	    ...
//	}
package anthropic
