package stream

import (
	"iter"

	"github.com/spetersoncode/assistant/event"
)

// interruptedMessage is reported when the agent stops without a terminal event.
const interruptedMessage = "response stream was interrupted before completion"

// Adapt maps an agent event channel to the outbound sequence.
//
// Only assistant text becomes tokens; tool call and tool result events are
// dropped. The sequence ends after the first terminal event. If the channel
// closes without one, Adapt yields a synthesized error so the client always
// sees exactly one terminal event.
//
// Callers that stop ranging early must cancel the agent's context so it stops
// sending.
func Adapt(events <-chan event.Event) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for ev := range events {
			switch ev.Type {
			case event.MessageDelta:
				if ev.Delta == "" {
					continue
				}
				if !yield(Token(ev.Delta)) {
					return
				}
			case event.RunEnd:
				yield(Done())
				return
			case event.RunError:
				msg := interruptedMessage
				if ev.Error != nil {
					msg = ev.Error.Error()
				}
				yield(Error(msg))
				return
			}
		}
		yield(Error(interruptedMessage))
	}
}
