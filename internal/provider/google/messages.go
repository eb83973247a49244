package google

import (
	"encoding/json"
	"strings"

	ai "github.com/spetersoncode/assistant"
	"google.golang.org/genai"
)

// convertMessages maps the conversation to Gemini contents. System messages
// are joined and returned separately for GenerateContentConfig.SystemInstruction.
//
// Gemini matches function responses by function name rather than call ID,
// so each tool result is resolved against the assistant call that produced it.
func convertMessages(messages []ai.Message) ([]*genai.Content, string) {
	var (
		contents []*genai.Content
		system   []string
	)
	callNames := make(map[string]string)

	for _, msg := range messages {
		var parts []*genai.Part
		role := genai.RoleUser

		switch msg.Role {
		case ai.RoleSystem:
			if msg.Content != "" {
				system = append(system, msg.Content)
			}
			continue
		case ai.RoleAssistant:
			role = genai.RoleModel
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				callNames[tc.ID] = tc.Name
				args, err := tc.ParseArguments()
				if err != nil {
					args = map[string]any{}
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args},
				})
			}
		case ai.RoleTool:
			for _, tr := range msg.ToolResults {
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       tr.ToolCallID,
						Name:     functionName(callNames, tr.ToolCallID),
						Response: responsePayload(tr),
					},
				})
			}
		default:
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
		}

		if len(parts) > 0 {
			contents = append(contents, &genai.Content{Role: string(role), Parts: parts})
		}
	}

	return contents, strings.Join(system, "\n\n")
}

func functionName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

// responsePayload wraps a tool result in the object form Gemini expects.
// JSON object results pass through; anything else is carried as text.
func responsePayload(tr ai.ToolResult) map[string]any {
	key := "output"
	if tr.IsError {
		key = "error"
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(tr.Content), &obj); err == nil && obj != nil && !tr.IsError {
		return obj
	}
	return map[string]any{key: tr.Content}
}
