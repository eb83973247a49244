// Package store holds the conversation state for a single agent turn.
//
// A [Conversation] is seeded with an optional system prompt and the user's
// message, then grows append-only as the model answers and tools report back.
// Append enforces the tool-call pairing rule: every tool call requested by an
// assistant message must receive exactly one matching result before the next
// assistant message is added.
//
//	conv := store.NewConversation(systemPrompt, "What's 2+2?")
//	if err := conv.Append(ai.NewAssistantMessage(resp)); err != nil {
//	    return err
//	}
//	pending := conv.Pending() // tool calls still awaiting results
package store
