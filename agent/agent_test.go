package agent

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	ai "github.com/spetersoncode/assistant"
	"github.com/spetersoncode/assistant/event"
	"github.com/spetersoncode/assistant/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider replays one scripted model turn per ChatStream call. A script
// step is an ai.StreamEvent to yield or an error to end the stream with.
type mockProvider struct {
	mu       sync.Mutex
	turns    [][]any
	calls    int
	requests [][]ai.Message
	blocking bool
}

func (m *mockProvider) ChatStream(ctx context.Context, messages []ai.Message, _ ...ai.Option) iter.Seq2[ai.StreamEvent, error] {
	m.mu.Lock()
	idx := min(m.calls, len(m.turns)-1)
	m.calls++
	m.requests = append(m.requests, append([]ai.Message(nil), messages...))
	script := m.turns[idx]
	blocking := m.blocking
	m.mu.Unlock()

	return func(yield func(ai.StreamEvent, error) bool) {
		for _, step := range script {
			if err := ctx.Err(); err != nil {
				yield(ai.StreamEvent{}, err)
				return
			}
			switch v := step.(type) {
			case error:
				yield(ai.StreamEvent{}, v)
				return
			case ai.StreamEvent:
				if !yield(v, nil) {
					return
				}
			}
		}
		if blocking {
			<-ctx.Done()
			yield(ai.StreamEvent{}, ctx.Err())
		}
	}
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func textTurn(chunks ...string) []any {
	var script []any
	for _, c := range chunks {
		script = append(script, ai.TextDelta(c))
	}
	return append(script, ai.TurnComplete(&ai.Response{
		Content: strings.Join(chunks, ""),
		Usage:   ai.Usage{InputTokens: 10, OutputTokens: 5},
	}))
}

func toolTurn(calls ...ai.ToolCall) []any {
	var script []any
	for _, c := range calls {
		script = append(script,
			ai.ToolCallDelta(c.ID, c.Name, c.Arguments),
			ai.ToolCallComplete(c),
		)
	}
	return append(script, ai.TurnComplete(&ai.Response{
		ToolCalls: calls,
		Usage:     ai.Usage{InputTokens: 8, OutputTokens: 2},
	}))
}

func collect(ch <-chan event.Event) []event.Event {
	var out []event.Event
	for e := range ch {
		out = append(out, e)
	}
	return out
}

func ofType(events []event.Event, t event.Type) []event.Event {
	var out []event.Event
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func terminals(events []event.Event) []event.Event {
	var out []event.Event
	for _, e := range events {
		if e.Terminal() {
			out = append(out, e)
		}
	}
	return out
}

func tokens(events []event.Event) string {
	var sb strings.Builder
	for _, e := range ofType(events, event.MessageDelta) {
		sb.WriteString(e.Delta)
	}
	return sb.String()
}

type echoArgs struct {
	Text string `json:"text"`
}

func echoTool(name string, delay time.Duration) tool.Spec {
	return tool.Func(name, "echo", func(ctx context.Context, args echoArgs) (string, error) {
		select {
		case <-time.After(delay):
			return name + ":" + args.Text, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
}

func TestRunStreamTextOnly(t *testing.T) {
	p := &mockProvider{turns: [][]any{textTurn("Hello", ", ", "world")}}
	a := New(p, tool.MustNewRegistry(tool.Calculator()))

	events := collect(a.RunStream(context.Background(), "hi"))

	assert.Equal(t, "Hello, world", tokens(events))
	require.Len(t, terminals(events), 1)
	last := events[len(events)-1]
	assert.Equal(t, event.RunEnd, last.Type)
	assert.Equal(t, "Hello, world", last.Response.Content)
	assert.Equal(t, event.RunStart, events[0].Type)
	assert.Len(t, ofType(events, event.MessageStart), 1)
	assert.Len(t, ofType(events, event.MessageEnd), 1)

	runID := events[0].RunID
	assert.NotEmpty(t, runID)
	for _, e := range events {
		assert.Equal(t, runID, e.RunID)
	}
}

func TestRunStreamSeedsConversation(t *testing.T) {
	p := &mockProvider{turns: [][]any{textTurn("ok")}}
	a := New(p, tool.MustNewRegistry(), WithSystemPrompt("You are helpful."))

	collect(a.RunStream(context.Background(), "question"))

	require.Len(t, p.requests, 1)
	msgs := p.requests[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, ai.RoleSystem, msgs[0].Role)
	assert.Equal(t, "You are helpful.", msgs[0].Content)
	assert.Equal(t, ai.RoleUser, msgs[1].Role)
	assert.Equal(t, "question", msgs[1].Content)
}

func TestRunStreamToolRoundTrip(t *testing.T) {
	call := ai.ToolCall{ID: "call_1", Name: "calculator", Arguments: `{"expression":"25 * 4 + 10"}`}
	p := &mockProvider{turns: [][]any{toolTurn(call), textTurn("The answer is 110.")}}
	a := New(p, tool.MustNewRegistry(tool.Calculator()))

	events := collect(a.RunStream(context.Background(), "What is 25 * 4 + 10?"))

	require.Len(t, terminals(events), 1)
	assert.Equal(t, event.RunEnd, events[len(events)-1].Type)
	assert.Equal(t, "The answer is 110.", tokens(events))

	results := ofType(events, event.ToolCallResult)
	require.Len(t, results, 1)
	assert.Equal(t, "call_1", results[0].ToolResult.ToolCallID)
	assert.Contains(t, results[0].ToolResult.Content, "110")

	require.Len(t, p.requests, 2)
	second := p.requests[1]
	require.Len(t, second, 3)
	assert.Equal(t, ai.RoleAssistant, second[1].Role)
	assert.Equal(t, []ai.ToolCall{call}, second[1].ToolCalls)
	assert.Equal(t, ai.RoleTool, second[2].Role)
	require.Len(t, second[2].ToolResults, 1)
	assert.Equal(t, "call_1", second[2].ToolResults[0].ToolCallID)

	end := events[len(events)-1]
	assert.Equal(t, ai.Usage{InputTokens: 18, OutputTokens: 7}, end.Response.Usage)
	assert.Equal(t, 2, end.Step)
}

func TestRunStreamToolLifecycle(t *testing.T) {
	call := ai.ToolCall{ID: "call_1", Name: "calculator", Arguments: `{"expression":"2+2"}`}
	script := []any{
		ai.ToolCallDelta("call_1", "calculator", `{"expression":`),
		ai.ToolCallDelta("call_1", "calculator", `"2+2"}`),
		ai.ToolCallComplete(call),
		ai.TurnComplete(&ai.Response{ToolCalls: []ai.ToolCall{call}}),
	}
	p := &mockProvider{turns: [][]any{script, textTurn("4")}}
	a := New(p, tool.MustNewRegistry(tool.Calculator()))

	events := collect(a.RunStream(context.Background(), "2+2?"))

	var seq []event.Type
	for _, e := range events {
		switch e.Type {
		case event.ToolCallStart, event.ToolCallArgs, event.ToolCallEnd, event.ToolCallExecuting, event.ToolCallResult:
			seq = append(seq, e.Type)
		}
	}
	assert.Equal(t, []event.Type{
		event.ToolCallStart,
		event.ToolCallArgs,
		event.ToolCallArgs,
		event.ToolCallEnd,
		event.ToolCallExecuting,
		event.ToolCallResult,
	}, seq)
	assert.Equal(t, "calculator", ofType(events, event.ToolCallStart)[0].ToolCall.Name)
}

func TestRunStreamWholeToolCalls(t *testing.T) {
	call := ai.ToolCall{ID: "call_g", Name: "calculator", Arguments: `{"expression":"1+1"}`}
	script := []any{
		ai.ToolCallComplete(call),
		ai.TurnComplete(&ai.Response{ToolCalls: []ai.ToolCall{call}}),
	}
	p := &mockProvider{turns: [][]any{script, textTurn("2")}}
	a := New(p, tool.MustNewRegistry(tool.Calculator()))

	events := collect(a.RunStream(context.Background(), "1+1?"))

	args := ofType(events, event.ToolCallArgs)
	require.Len(t, args, 1)
	assert.Equal(t, call.Arguments, args[0].Delta)
	assert.Len(t, ofType(events, event.ToolCallEnd), 1)
}

func TestRunStreamSuppressesTextInToolTurns(t *testing.T) {
	call := ai.ToolCall{ID: "call_1", Name: "calculator", Arguments: `{"expression":"3*3"}`}
	script := []any{
		ai.TextDelta("Let me calculate. "),
		ai.ToolCallDelta("call_1", "calculator", call.Arguments),
		ai.TextDelta("(hidden)"),
		ai.ToolCallComplete(call),
		ai.TurnComplete(&ai.Response{Content: "Let me calculate. (hidden)", ToolCalls: []ai.ToolCall{call}}),
	}
	p := &mockProvider{turns: [][]any{script, textTurn("It is 9.")}}
	a := New(p, tool.MustNewRegistry(tool.Calculator()))

	events := collect(a.RunStream(context.Background(), "3*3?"))

	out := tokens(events)
	assert.Equal(t, "Let me calculate. It is 9.", out)
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "expression")

	require.Len(t, p.requests, 2)
	assert.Equal(t, "Let me calculate. (hidden)", p.requests[1][1].Content)
}

func TestRunStreamParallelToolsKeepOrder(t *testing.T) {
	calls := []ai.ToolCall{
		{ID: "a", Name: "slow", Arguments: `{"text":"1"}`},
		{ID: "b", Name: "fast", Arguments: `{"text":"2"}`},
		{ID: "c", Name: "fast", Arguments: `{"text":"3"}`},
	}
	p := &mockProvider{turns: [][]any{toolTurn(calls...), textTurn("done")}}
	registry := tool.MustNewRegistry(echoTool("slow", 50*time.Millisecond), echoTool("fast", 0))
	a := New(p, registry)

	events := collect(a.RunStream(context.Background(), "go"))
	require.Equal(t, event.RunEnd, events[len(events)-1].Type)

	require.Len(t, p.requests, 2)
	results := p.requests[1][len(p.requests[1])-1].ToolResults
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ToolCallID)
	assert.Equal(t, "slow:1", results[0].Content)
	assert.Equal(t, "b", results[1].ToolCallID)
	assert.Equal(t, "c", results[2].ToolCallID)
	assert.Equal(t, "fast:3", results[2].Content)
}

func TestRunStreamHandlerErrorIsAbsorbed(t *testing.T) {
	failing := tool.Func("flaky", "fails", func(ctx context.Context, args echoArgs) (string, error) {
		return "", errors.New("upstream unavailable")
	})
	call := ai.ToolCall{ID: "call_1", Name: "flaky", Arguments: `{}`}
	p := &mockProvider{turns: [][]any{toolTurn(call), textTurn("Sorry, the tool failed.")}}
	a := New(p, tool.MustNewRegistry(failing))

	events := collect(a.RunStream(context.Background(), "try"))

	assert.Equal(t, event.RunEnd, events[len(events)-1].Type)
	results := ofType(events, event.ToolCallResult)
	require.Len(t, results, 1)
	assert.True(t, results[0].ToolResult.IsError)
	assert.Contains(t, results[0].ToolResult.Content, "upstream unavailable")
}

func TestRunStreamFatalErrors(t *testing.T) {
	tests := []struct {
		name  string
		turns [][]any
		opts  []Option
		check func(t *testing.T, err error)
		calls int
		execs int
	}{
		{
			name:  "unknown tool",
			turns: [][]any{toolTurn(ai.ToolCall{ID: "x", Name: "launch_rockets", Arguments: `{}`})},
			check: func(t *testing.T, err error) {
				var notFound *tool.ErrToolNotFound
				require.ErrorAs(t, err, &notFound)
				assert.Equal(t, "launch_rockets", notFound.Name)
			},
			calls: 1,
		},
		{
			name:  "malformed arguments",
			turns: [][]any{toolTurn(ai.ToolCall{ID: "x", Name: "calculator", Arguments: `[1,2`})},
			check: func(t *testing.T, err error) {
				var invalid *tool.ErrInvalidArguments
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, "calculator", invalid.Name)
			},
			calls: 1,
		},
		{
			name: "transport failure before text",
			turns: [][]any{{
				ai.NewTransientError("connection reset", 503, nil),
			}},
			check: func(t *testing.T, err error) {
				assert.True(t, ai.IsTransient(err))
			},
			calls: 1,
		},
		{
			name:  "round trip cap",
			turns: [][]any{toolTurn(ai.ToolCall{ID: "loop", Name: "calculator", Arguments: `{"expression":"1"}`})},
			opts:  []Option{WithMaxSteps(3)},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMaxStepsReached)
			},
			calls: 3,
			execs: 3,
		},
		{
			name:  "stream ends without turn complete",
			turns: [][]any{{ai.TextDelta("partial")}},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ai.ErrIncompleteStream)
			},
			calls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockProvider{turns: tt.turns}
			a := New(p, tool.MustNewRegistry(tool.Calculator()))

			events := collect(a.RunStream(context.Background(), "go", tt.opts...))

			term := terminals(events)
			require.Len(t, term, 1)
			assert.Equal(t, event.RunError, term[0].Type)
			assert.Equal(t, event.RunError, events[len(events)-1].Type)
			tt.check(t, term[0].Error)
			assert.Equal(t, tt.calls, p.callCount())
			assert.Len(t, ofType(events, event.ToolCallExecuting), tt.execs)
		})
	}
}

func TestRunStreamNoTokensBeforeTransportError(t *testing.T) {
	p := &mockProvider{turns: [][]any{{errors.New("dial tcp: connection refused")}}}
	a := New(p, tool.MustNewRegistry())

	events := collect(a.RunStream(context.Background(), "hi"))

	assert.Empty(t, ofType(events, event.MessageDelta))
	require.Len(t, terminals(events), 1)
	assert.EqualError(t, events[len(events)-1].Error, "dial tcp: connection refused")
}

func TestRunStreamTimeout(t *testing.T) {
	blocker := tool.Func("wait", "blocks", func(ctx context.Context, args echoArgs) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	call := ai.ToolCall{ID: "w", Name: "wait", Arguments: `{}`}
	p := &mockProvider{turns: [][]any{toolTurn(call), textTurn("never")}}
	a := New(p, tool.MustNewRegistry(blocker), WithTimeout(50*time.Millisecond))

	events := collect(a.RunStream(context.Background(), "go"))

	term := terminals(events)
	require.Len(t, term, 1)
	assert.ErrorIs(t, term[0].Error, ErrAgentTimeout)
	assert.Equal(t, 1, p.callCount())
}

func TestRunStreamCancellation(t *testing.T) {
	p := &mockProvider{turns: [][]any{{ai.TextDelta("thinking")}}, blocking: true}
	a := New(p, tool.MustNewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := a.RunStream(ctx, "hi")

	for e := range ch {
		if e.Type == event.MessageDelta {
			cancel()
			break
		}
	}

	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("agent goroutine did not stop after cancellation")
	}
}

func TestRun(t *testing.T) {
	t.Run("returns the final answer", func(t *testing.T) {
		call := ai.ToolCall{ID: "c1", Name: "calculator", Arguments: `{"expression":"6*7"}`}
		p := &mockProvider{turns: [][]any{toolTurn(call), textTurn("42")}}
		a := New(p, tool.MustNewRegistry(tool.Calculator()))

		result, err := a.Run(context.Background(), "6*7?")
		require.NoError(t, err)
		assert.Equal(t, "42", result.Text())
		assert.Equal(t, 2, result.Steps)
		assert.Equal(t, TerminationComplete, result.Termination)
		require.Len(t, result.ToolResults, 1)
		assert.Contains(t, result.ToolResults[0].Content, "42")
	})

	t.Run("reports the termination reason", func(t *testing.T) {
		loop := ai.ToolCall{ID: "l", Name: "calculator", Arguments: `{"expression":"1"}`}
		p := &mockProvider{turns: [][]any{toolTurn(loop)}}
		a := New(p, tool.MustNewRegistry(tool.Calculator()))

		result, err := a.Run(context.Background(), "loop", WithMaxSteps(2))
		require.ErrorIs(t, err, ErrMaxStepsReached)
		assert.Equal(t, TerminationMaxSteps, result.Termination)
		assert.Empty(t, result.Text())
	})
}

func TestTerminationFor(t *testing.T) {
	tests := []struct {
		err  error
		want TerminationReason
	}{
		{nil, TerminationComplete},
		{ErrMaxStepsReached, TerminationMaxSteps},
		{ErrAgentTimeout, TerminationTimeout},
		{context.DeadlineExceeded, TerminationTimeout},
		{context.Canceled, TerminationCancelled},
		{errors.New("boom"), TerminationError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, terminationFor(tt.err))
	}
}
