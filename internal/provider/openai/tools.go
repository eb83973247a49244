package openai

import (
	"encoding/json"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	ai "github.com/spetersoncode/assistant"
)

func convertTools(tools []ai.Tool) []openai.ChatCompletionToolParam {
	if len(tools) == 0 {
		return nil
	}
	result := make([]openai.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		var params shared.FunctionParameters
		if len(t.Parameters) > 0 {
			_ = json.Unmarshal(t.Parameters, &params)
		}
		result[i] = openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  params,
			},
		}
	}
	return result
}

func convertToolChoice(choice ai.ToolChoice) openai.ChatCompletionToolChoiceOptionUnionParam {
	switch choice {
	case ai.ToolChoiceNone:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("none")}
	case ai.ToolChoiceRequired:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("required")}
	default:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("auto")}
	}
}

func extractToolCalls(toolCalls []openai.ChatCompletionMessageToolCall) []ai.ToolCall {
	if len(toolCalls) == 0 {
		return nil
	}
	result := make([]ai.ToolCall, len(toolCalls))
	for i, tc := range toolCalls {
		result[i] = ai.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
	}
	return result
}

// callTracker remembers the ID and name of each streamed tool call by index,
// and which calls have already been reported complete.
type callTracker struct {
	byIndex  map[int64][2]string
	finished map[string]bool
}

func newCallTracker() *callTracker {
	return &callTracker{
		byIndex:  make(map[int64][2]string),
		finished: make(map[string]bool),
	}
}

// observe records any ID or name carried by a fragment and returns the
// values known so far for that index.
func (t *callTracker) observe(index int64, id, name string) (string, string) {
	known := t.byIndex[index]
	if id != "" {
		known[0] = id
	}
	if name != "" {
		known[1] = name
	}
	t.byIndex[index] = known
	return known[0], known[1]
}

// finish returns the assembled call and whether this is the first time it
// has been reported.
func (t *callTracker) finish(id, name, args string) (ai.ToolCall, bool) {
	call := ai.ToolCall{ID: id, Name: name, Arguments: args}
	if t.finished[id] {
		return call, false
	}
	t.finished[id] = true
	return call, true
}
