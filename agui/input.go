package agui

import (
	"errors"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	ai "github.com/spetersoncode/assistant"
)

// RunAgentInput represents the AG-UI protocol request for running an agent.
type RunAgentInput struct {
	ThreadID       string           `json:"threadId"`
	RunID          string           `json:"runId"`
	Messages       []events.Message `json:"messages"`
	Tools          []any            `json:"tools,omitempty"`
	Context        []any            `json:"context,omitempty"`
	State          any              `json:"state,omitempty"`
	ForwardedProps any              `json:"forwardedProps,omitempty"`
}

// PreparedInput contains validated input ready for an agent turn.
type PreparedInput struct {
	ThreadID string
	RunID    string
	// Message is the text of the last user message.
	Message string
}

var (
	// ErrNoMessages is returned when the input contains no messages.
	ErrNoMessages = errors.New("no messages provided")

	// ErrNoUserMessage is returned when no message has the user role and content.
	ErrNoUserMessage = errors.New("no user message provided")
)

// Prepare validates the input and extracts the turn's user message. Earlier
// history is not carried into the turn. Frontend tools are not supported and
// are ignored.
func (r *RunAgentInput) Prepare() (*PreparedInput, error) {
	if len(r.Messages) == 0 {
		return nil, ErrNoMessages
	}

	messages := ToMessages(r.Messages)
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role == ai.RoleUser && msg.Content != "" {
			return &PreparedInput{
				ThreadID: r.ThreadID,
				RunID:    r.RunID,
				Message:  msg.Content,
			}, nil
		}
	}
	return nil, ErrNoUserMessage
}
