package agui

import (
	"fmt"
	"iter"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/spetersoncode/assistant/event"
)

// Mapper converts agent events to AG-UI events for a single run.
type Mapper struct {
	threadID string
	runID    string
	finished bool
}

// NewMapper creates a new Mapper for a single run.
// Empty IDs are generated.
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{
		threadID: threadID,
		runID:    runID,
	}
}

// ThreadID returns the thread ID for this mapper.
func (m *Mapper) ThreadID() string {
	return m.threadID
}

// RunID returns the run ID for this mapper.
func (m *Mapper) RunID() string {
	return m.runID
}

// RunStarted returns a RUN_STARTED event.
func (m *Mapper) RunStarted() events.Event {
	return events.NewRunStartedEvent(m.threadID, m.runID)
}

// RunFinished returns a RUN_FINISHED event.
func (m *Mapper) RunFinished() events.Event {
	return events.NewRunFinishedEvent(m.threadID, m.runID)
}

// RunError returns a RUN_ERROR event.
func (m *Mapper) RunError(err error) events.Event {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return events.NewRunErrorEvent(msg)
}

func stepName(step int) string {
	return fmt.Sprintf("step-%d", step)
}

// MapEvent converts one agent event. It returns nil for events without an
// AG-UI equivalent and for anything after the run has finished.
func (m *Mapper) MapEvent(e event.Event) events.Event {
	if m.finished {
		return nil
	}

	switch e.Type {
	case event.RunStart:
		return m.RunStarted()
	case event.RunEnd:
		m.finished = true
		return m.RunFinished()
	case event.RunError:
		m.finished = true
		return m.RunError(e.Error)

	case event.StepStart:
		return events.NewStepStartedEvent(stepName(e.Step))
	case event.StepEnd:
		return events.NewStepFinishedEvent(stepName(e.Step))

	case event.MessageStart:
		return events.NewTextMessageStartEvent(
			e.MessageID,
			events.WithRole(RoleAssistant),
		)
	case event.MessageDelta:
		if e.Delta == "" {
			return nil
		}
		return events.NewTextMessageContentEvent(e.MessageID, e.Delta)
	case event.MessageEnd:
		return events.NewTextMessageEndEvent(e.MessageID)

	case event.ToolCallStart:
		if e.ToolCall == nil {
			return nil
		}
		return events.NewToolCallStartEvent(e.ToolCall.ID, e.ToolCall.Name)
	case event.ToolCallArgs:
		if e.ToolCall == nil || e.Delta == "" {
			return nil
		}
		return events.NewToolCallArgsEvent(e.ToolCall.ID, e.Delta)
	case event.ToolCallEnd:
		if e.ToolCall == nil {
			return nil
		}
		return events.NewToolCallEndEvent(e.ToolCall.ID)
	case event.ToolCallResult:
		if e.ToolCall == nil || e.ToolResult == nil {
			return nil
		}
		return events.NewToolCallResultEvent(events.GenerateMessageID(), e.ToolCall.ID, e.ToolResult.Content)

	default:
		return nil
	}
}

// MapStream maps an agent event channel. If the channel closes before a
// terminal event, a RUN_ERROR is appended so every run is closed.
func (m *Mapper) MapStream(in <-chan event.Event) iter.Seq[events.Event] {
	return func(yield func(events.Event) bool) {
		for e := range in {
			ev := m.MapEvent(e)
			if ev == nil {
				continue
			}
			if !yield(ev) {
				return
			}
			if m.finished {
				return
			}
		}
		if !m.finished {
			m.finished = true
			yield(m.RunError(fmt.Errorf("run ended without completing")))
		}
	}
}
