package agent

// State is a phase of the turn state machine.
type State int

const (
	// AwaitingModel: a model request is open and nothing has been produced yet.
	AwaitingModel State = iota
	// StreamingText: the model is producing answer text.
	StreamingText
	// AwaitingToolResults: the model requested tools and their results are pending.
	AwaitingToolResults
	// Finished is terminal, with or without an error.
	Finished
)

func (s State) String() string {
	switch s {
	case AwaitingModel:
		return "awaiting_model"
	case StreamingText:
		return "streaming_text"
	case AwaitingToolResults:
		return "awaiting_tool_results"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

var transitions = map[State][]State{
	AwaitingModel:       {StreamingText, AwaitingToolResults, Finished},
	StreamingText:       {AwaitingToolResults, Finished},
	AwaitingToolResults: {AwaitingModel, Finished},
}

// CanTransition reports whether the loop may move from s to next.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// machine tracks the current state of one turn. It is owned by the turn
// goroutine.
type machine struct {
	state State
	trace []State
}

func newMachine() *machine {
	return &machine{state: AwaitingModel, trace: []State{AwaitingModel}}
}

func (m *machine) to(next State) error {
	if m.state == next && next == StreamingText {
		return nil
	}
	if !m.state.CanTransition(next) {
		return &TransitionError{From: m.state, To: next}
	}
	m.state = next
	m.trace = append(m.trace, next)
	return nil
}

// fail moves the machine to Finished from any non-terminal state.
func (m *machine) fail() {
	if m.state != Finished {
		m.state = Finished
		m.trace = append(m.trace, Finished)
	}
}
