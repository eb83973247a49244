package store

import (
	"fmt"
	"sync"

	ai "github.com/spetersoncode/assistant"
)

// Conversation is the ordered message history of one turn.
type Conversation struct {
	mu       sync.RWMutex
	messages []ai.Message
	pending  []ai.ToolCall
}

// NewConversation creates a conversation seeded with the system prompt (if
// non-empty) followed by the user message.
func NewConversation(systemPrompt, userMessage string) *Conversation {
	c := &Conversation{messages: make([]ai.Message, 0, 4)}
	if systemPrompt != "" {
		c.messages = append(c.messages, ai.NewSystemMessage(systemPrompt))
	}
	c.messages = append(c.messages, ai.NewUserMessage(userMessage))
	return c
}

// Append adds messages in order. It stops at the first message that would
// break the tool-call pairing rule and returns an error; earlier messages in
// the same call remain appended.
func (c *Conversation) Append(msgs ...ai.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, msg := range msgs {
		if err := c.accept(msg); err != nil {
			return fmt.Errorf("append message %d (%s): %w", i, msg.Role, err)
		}
		c.messages = append(c.messages, msg)
	}
	return nil
}

func (c *Conversation) accept(msg ai.Message) error {
	switch msg.Role {
	case ai.RoleTool:
		remaining := c.pending
		for _, res := range msg.ToolResults {
			idx := indexOfCall(remaining, res.ToolCallID)
			if idx < 0 {
				return &UnmatchedToolResultError{ToolCallID: res.ToolCallID}
			}
			remaining = append(remaining[:idx:idx], remaining[idx+1:]...)
		}
		c.pending = remaining
		return nil
	case ai.RoleAssistant:
		if len(c.pending) > 0 {
			return ErrPendingToolCalls
		}
		c.pending = append([]ai.ToolCall(nil), msg.ToolCalls...)
		return nil
	default:
		if len(c.pending) > 0 {
			return ErrPendingToolCalls
		}
		return nil
	}
}

func indexOfCall(calls []ai.ToolCall, id string) int {
	for i, call := range calls {
		if call.ID == id {
			return i
		}
	}
	return -1
}

// Messages returns a copy of all messages.
func (c *Conversation) Messages() []ai.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]ai.Message, len(c.messages))
	copy(result, c.messages)
	return result
}

// Pending returns the tool calls that have not yet received a result.
func (c *Conversation) Pending() []ai.ToolCall {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ai.ToolCall(nil), c.pending...)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the last n messages. If n > Len(), returns all messages.
func (c *Conversation) Last(n int) []ai.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	start := max(len(c.messages)-n, 0)
	result := make([]ai.Message, len(c.messages)-start)
	copy(result, c.messages[start:])
	return result
}
