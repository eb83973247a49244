package agent

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/assistant"
	"github.com/spetersoncode/assistant/event"
	"github.com/spetersoncode/assistant/internal/store"
	"github.com/spetersoncode/assistant/tool"
	"golang.org/x/sync/errgroup"
)

// Agent runs tool-using conversational turns. It holds no per-turn state and
// is safe for concurrent use.
type Agent struct {
	chatClient ai.ChatProvider
	registry   *tool.Registry
	defaults   []Option
}

// New creates a new Agent with the given chat client and tool registry.
// Options given here apply to every turn and can be overridden per turn.
func New(c ai.ChatProvider, registry *tool.Registry, defaults ...Option) *Agent {
	return &Agent{
		chatClient: c,
		registry:   registry,
		defaults:   defaults,
	}
}

// Run executes one turn and returns the final result.
// This is a blocking call that runs until the turn completes.
func (a *Agent) Run(ctx context.Context, input string, opts ...Option) (*Result, error) {
	result := &Result{}
	for ev := range a.RunStream(ctx, input, opts...) {
		if ev.Step > result.Steps {
			result.Steps = ev.Step
		}
		switch ev.Type {
		case event.ToolCallResult:
			result.ToolResults = append(result.ToolResults, *ev.ToolResult)
		case event.RunEnd:
			result.Response = ev.Response
			result.Termination = TerminationComplete
		case event.RunError:
			result.Error = ev.Error
			result.Termination = terminationFor(ev.Error)
		}
	}
	if result.Response == nil && result.Error == nil {
		result.Error = context.Cause(ctx)
		if result.Error == nil {
			result.Error = ai.ErrIncompleteStream
		}
		result.Termination = terminationFor(result.Error)
	}
	return result, result.Error
}

// RunStream starts a turn for the user's input and returns its events.
//
// The channel is closed after exactly one terminal event (event.RunEnd or
// event.RunError), or without one if ctx is cancelled while the consumer has
// stopped reading. Cancelling ctx aborts the open model request and any
// running tool handlers.
func (a *Agent) RunStream(ctx context.Context, input string, opts ...Option) <-chan event.Event {
	events := event.NewChannel()
	options := ApplyOptions(append(slices.Clone(a.defaults), opts...)...)

	t := &turn{
		agent:   a,
		out:     ctx,
		events:  events,
		options: options,
		runID:   uuid.NewString(),
		conv:    store.NewConversation(options.SystemPrompt, input),
		state:   newMachine(),
	}
	go t.run(ctx)

	return events
}

// turn holds the state of one RunStream call. It is owned by the turn goroutine
// except for emit, which tool goroutines also call.
type turn struct {
	agent   *Agent
	out     context.Context // consumer lifetime; events are sent under it
	events  chan event.Event
	options *Options
	runID   string
	conv    *store.Conversation
	state   *machine
	usage   ai.Usage
}

func (t *turn) emit(e event.Event) bool {
	e.RunID = t.runID
	return event.Send(t.out, t.events, e)
}

func (t *turn) run(ctx context.Context) {
	defer close(t.events)

	if t.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, t.options.Timeout, ErrAgentTimeout)
		defer cancel()
	}

	if !t.emit(event.Event{Type: event.RunStart}) {
		return
	}

	resp, step, err := t.loop(ctx)
	if err != nil {
		t.state.fail()
		t.emit(event.Event{Type: event.RunError, Step: step, Error: err})
		return
	}

	final := *resp
	final.Usage = t.usage
	t.emit(event.Event{Type: event.RunEnd, Step: step, Response: &final})
}

func (t *turn) loop(ctx context.Context) (*ai.Response, int, error) {
	chatOpts := append([]ai.Option{ai.WithTools(t.agent.registry.Tools())}, t.options.ChatOptions...)

	for step := 1; ; step++ {
		if err := ctxErr(ctx); err != nil {
			return nil, step - 1, err
		}
		if t.options.MaxSteps > 0 && step > t.options.MaxSteps {
			return nil, step - 1, fmt.Errorf("%w (%d model requests)", ErrMaxStepsReached, t.options.MaxSteps)
		}

		if !t.emit(event.Event{Type: event.StepStart, Step: step}) {
			return nil, step, t.out.Err()
		}

		resp, err := t.step(ctx, step, chatOpts)
		if err != nil {
			return nil, step, err
		}
		t.usage = t.usage.Add(resp.Usage)
		t.emit(event.Event{Type: event.StepEnd, Step: step, Response: resp})

		if err := t.conv.Append(ai.NewAssistantMessage(resp)); err != nil {
			return nil, step, err
		}

		if !resp.HasToolCalls() {
			if err := t.state.to(Finished); err != nil {
				return nil, step, err
			}
			return resp, step, nil
		}

		if err := t.state.to(AwaitingToolResults); err != nil {
			return nil, step, err
		}
		results, err := t.executeTools(ctx, step, resp.ToolCalls)
		if err != nil {
			return nil, step, err
		}
		if err := t.conv.Append(ai.NewToolResultMessage(results...)); err != nil {
			return nil, step, err
		}
		if err := t.state.to(AwaitingModel); err != nil {
			return nil, step, err
		}
	}
}

// step performs one model request and forwards its output.
//
// Text deltas are forwarded as they arrive until the response carries tool
// call content; later text of that response is kept in the conversation only.
func (t *turn) step(ctx context.Context, step int, chatOpts []ai.Option) (*ai.Response, error) {
	var (
		response  *ai.Response
		messageID = ai.GenerateMessageID()
		started   bool
		toolTurn  bool
		calls     = newCallEvents(t, step)
	)

	for ev, err := range t.agent.chatClient.ChatStream(ctx, t.conv.Messages(), chatOpts...) {
		if err != nil {
			return nil, streamError(ctx, err)
		}

		ok := true
		switch ev.Type {
		case ai.StreamTextDelta:
			if ev.Delta == "" {
				continue
			}
			if err := t.state.to(StreamingText); err != nil {
				return nil, err
			}
			if toolTurn {
				continue
			}
			if !started {
				started = true
				ok = t.emit(event.Event{Type: event.MessageStart, Step: step, MessageID: messageID})
			}
			ok = ok && t.emit(event.Event{Type: event.MessageDelta, Step: step, MessageID: messageID, Delta: ev.Delta})

		case ai.StreamToolCallDelta:
			toolTurn = true
			ok = calls.fragment(*ev.ToolCall, ev.Delta)

		case ai.StreamToolCallComplete:
			toolTurn = true
			ok = calls.end(*ev.ToolCall)

		case ai.StreamTurnComplete:
			response = ev.Response
		}

		if !ok {
			return nil, t.out.Err()
		}
		if response != nil {
			break
		}
	}

	if response == nil {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		return nil, ai.ErrIncompleteStream
	}

	if started {
		t.emit(event.Event{Type: event.MessageEnd, Step: step, MessageID: messageID, Response: response})
	}
	for _, call := range response.ToolCalls {
		if !calls.end(call) {
			return nil, t.out.Err()
		}
	}
	return response, nil
}

// callEvents emits the Start/Args/End lifecycle of the tool calls in one
// model response, whether the provider streams argument fragments or
// delivers each call whole.
type callEvents struct {
	t        *turn
	step     int
	started  map[string]bool
	streamed map[string]bool
	ended    map[string]bool
}

func newCallEvents(t *turn, step int) *callEvents {
	return &callEvents{
		t:        t,
		step:     step,
		started:  make(map[string]bool),
		streamed: make(map[string]bool),
		ended:    make(map[string]bool),
	}
}

func (c *callEvents) start(call ai.ToolCall) bool {
	if c.started[call.ID] {
		return true
	}
	c.started[call.ID] = true
	return c.t.emit(event.Event{Type: event.ToolCallStart, Step: c.step, ToolCall: &ai.ToolCall{ID: call.ID, Name: call.Name}})
}

func (c *callEvents) fragment(call ai.ToolCall, delta string) bool {
	if !c.start(call) {
		return false
	}
	if delta == "" {
		return true
	}
	c.streamed[call.ID] = true
	call.Arguments = delta
	return c.t.emit(event.Event{Type: event.ToolCallArgs, Step: c.step, ToolCall: &call, Delta: delta})
}

func (c *callEvents) end(call ai.ToolCall) bool {
	if c.ended[call.ID] {
		return true
	}
	if !c.start(call) {
		return false
	}
	if !c.streamed[call.ID] && call.Arguments != "" {
		if !c.t.emit(event.Event{Type: event.ToolCallArgs, Step: c.step, ToolCall: &call, Delta: call.Arguments}) {
			return false
		}
	}
	c.ended[call.ID] = true
	return c.t.emit(event.Event{Type: event.ToolCallEnd, Step: c.step, ToolCall: &call})
}

// executeTools resolves every call before running any of them, then runs the
// handlers (concurrently up to the configured limit) and returns the results
// in request order. Resolution failures are fatal; handler failures are
// returned as error results.
func (t *turn) executeTools(ctx context.Context, step int, calls []ai.ToolCall) ([]ai.ToolResult, error) {
	for _, call := range calls {
		if _, ok := t.agent.registry.Lookup(call.Name); !ok {
			return nil, &tool.ErrToolNotFound{Name: call.Name}
		}
		if _, err := call.ParseArguments(); err != nil {
			return nil, &tool.ErrInvalidArguments{Name: call.Name, Err: err}
		}
	}

	results := make([]ai.ToolResult, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.options.toolLimit())

	for i, call := range calls {
		g.Go(func() error {
			if !t.emit(event.Event{Type: event.ToolCallExecuting, Step: step, ToolCall: &call}) {
				return t.out.Err()
			}

			execCtx := gctx
			if t.options.HandlerTimeout > 0 {
				var cancel context.CancelFunc
				execCtx, cancel = context.WithTimeout(gctx, t.options.HandlerTimeout)
				defer cancel()
			}

			result, err := t.agent.registry.Invoke(execCtx, call)
			if err != nil {
				return err
			}
			results[i] = result

			if !t.emit(event.Event{Type: event.ToolCallResult, Step: step, ToolCall: &call, ToolResult: &result}) {
				return t.out.Err()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

// ctxErr returns the cause of ctx ending, so a turn timeout reports
// ErrAgentTimeout rather than a bare deadline error.
func ctxErr(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	return context.Cause(ctx)
}

// streamError prefers the context cause when the model stream failed because
// the turn ended.
func streamError(ctx context.Context, err error) error {
	if cause := ctxErr(ctx); cause != nil && errors.Is(err, ctx.Err()) {
		return cause
	}
	return err
}

func terminationFor(err error) TerminationReason {
	switch {
	case err == nil:
		return TerminationComplete
	case errors.Is(err, ErrMaxStepsReached):
		return TerminationMaxSteps
	case errors.Is(err, ErrAgentTimeout), errors.Is(err, context.DeadlineExceeded):
		return TerminationTimeout
	case errors.Is(err, context.Canceled):
		return TerminationCancelled
	default:
		return TerminationError
	}
}
