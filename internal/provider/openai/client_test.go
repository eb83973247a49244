package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ai "github.com/spetersoncode/assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, chunks ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", c)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func chunk(delta, finish string) string {
	fr := "null"
	if finish != "" {
		fr = `"` + finish + `"`
	}
	return `{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":` + delta + `,"finish_reason":` + fr + `}]}`
}

const usageChunk = `{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[],"usage":{"prompt_tokens":12,"completion_tokens":5,"total_tokens":17}}`

func collect(t *testing.T, c *Client) ([]ai.StreamEvent, error) {
	t.Helper()
	var events []ai.StreamEvent
	for ev, err := range c.ChatStream(context.Background(), []ai.Message{ai.NewUserMessage("hi")}) {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func TestChatStreamText(t *testing.T) {
	srv := sseServer(t,
		chunk(`{"role":"assistant","content":""}`, ""),
		chunk(`{"content":"Hel"}`, ""),
		chunk(`{"content":"lo"}`, ""),
		chunk(`{}`, "stop"),
		usageChunk,
	)
	defer srv.Close()

	events, err := collect(t, New("sk-test", WithBaseURL(srv.URL+"/v1/")))
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, ai.TextDelta("Hel"), events[0])
	assert.Equal(t, ai.TextDelta("lo"), events[1])

	last := events[2]
	require.Equal(t, ai.StreamTurnComplete, last.Type)
	assert.Equal(t, "Hello", last.Response.Content)
	assert.Equal(t, "stop", last.Response.FinishReason)
	assert.Equal(t, ai.Usage{InputTokens: 12, OutputTokens: 5}, last.Response.Usage)
	assert.False(t, last.Response.HasToolCalls())
}

func TestChatStreamTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: %s\n\n", chunk(`{"role":"assistant","content":"The answer is 1"}`, ""))
	}))
	defer srv.Close()

	events, err := collect(t, New("sk-test", WithBaseURL(srv.URL+"/v1/")))
	require.ErrorIs(t, err, ai.ErrIncompleteStream)

	require.Len(t, events, 1)
	assert.Equal(t, ai.TextDelta("The answer is 1"), events[0])
}

func TestChatStreamToolCall(t *testing.T) {
	srv := sseServer(t,
		chunk(`{"role":"assistant","tool_calls":[{"index":0,"id":"call_abc","type":"function","function":{"name":"calculator","arguments":""}}]}`, ""),
		chunk(`{"tool_calls":[{"index":0,"function":{"arguments":"{\"expression\":"}}]}`, ""),
		chunk(`{"tool_calls":[{"index":0,"function":{"arguments":"\"2+2\"}"}}]}`, ""),
		chunk(`{}`, "tool_calls"),
		usageChunk,
	)
	defer srv.Close()

	events, err := collect(t, New("sk-test", WithBaseURL(srv.URL+"/v1/")))
	require.NoError(t, err)

	var fragments strings.Builder
	var completes []ai.ToolCall
	for _, ev := range events {
		switch ev.Type {
		case ai.StreamTextDelta:
			t.Fatalf("unexpected text delta %q", ev.Delta)
		case ai.StreamToolCallDelta:
			assert.Equal(t, "call_abc", ev.ToolCall.ID)
			assert.Equal(t, "calculator", ev.ToolCall.Name)
			fragments.WriteString(ev.Delta)
		case ai.StreamToolCallComplete:
			completes = append(completes, *ev.ToolCall)
		}
	}

	assert.Equal(t, `{"expression":"2+2"}`, fragments.String())
	require.Len(t, completes, 1)
	assert.Equal(t, ai.ToolCall{ID: "call_abc", Name: "calculator", Arguments: `{"expression":"2+2"}`}, completes[0])

	last := events[len(events)-1]
	require.Equal(t, ai.StreamTurnComplete, last.Type)
	require.Len(t, last.Response.ToolCalls, 1)
	assert.Equal(t, "tool_calls", last.Response.FinishReason)
}

func TestChatStreamAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer srv.Close()

	events, err := collect(t, New("bad", WithBaseURL(srv.URL+"/v1/")))
	assert.Empty(t, events)
	require.Error(t, err)
	assert.True(t, ai.IsPermanent(err))
	assert.Equal(t, http.StatusUnauthorized, ai.StatusCodeOf(err))
}

func TestCategorizeStatusCode(t *testing.T) {
	assert.Equal(t, ai.ErrorTransient, categorizeStatusCode(429))
	assert.Equal(t, ai.ErrorTransient, categorizeStatusCode(503))
	assert.Equal(t, ai.ErrorPermanent, categorizeStatusCode(401))
	assert.Equal(t, ai.ErrorUserInput, categorizeStatusCode(400))
}

func TestConvertMessages(t *testing.T) {
	msgs := convertMessages([]ai.Message{
		ai.NewSystemMessage("sys"),
		ai.NewUserMessage("q"),
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{{ID: "a", Name: "calculator", Arguments: "{}"}, {ID: "b", Name: "calculator", Arguments: "{}"}}},
		ai.NewToolResultMessage(ai.ToolResult{ToolCallID: "a", Content: "1"}, ai.ToolResult{ToolCallID: "b", Content: "2"}),
	})
	require.Len(t, msgs, 5)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	require.NotNil(t, msgs[2].OfAssistant)
	assert.Len(t, msgs[2].OfAssistant.ToolCalls, 2)
	assert.NotNil(t, msgs[3].OfTool)
	assert.NotNil(t, msgs[4].OfTool)
}
