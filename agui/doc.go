// Package agui maps agent turns onto the AG-UI protocol.
//
// AG-UI (Agent-User Interface) is an event-based protocol for connecting
// agents to user-facing applications. This package converts the agent's
// event stream into AG-UI events and turns an AG-UI run request into the
// single user message an agent turn takes.
//
//	input, err := req.Prepare()
//	mapper := agui.NewMapper(input.ThreadID, input.RunID)
//	for ev := range mapper.MapStream(a.RunStream(ctx, input.Message)) {
//	    writeEvent(ev)
//	}
//
// # Event Mapping
//
//   - RunStart, RunEnd, RunError: RUN_STARTED, RUN_FINISHED, RUN_ERROR
//   - StepStart, StepEnd: STEP_STARTED, STEP_FINISHED ("step-N")
//   - MessageStart, MessageDelta, MessageEnd: TEXT_MESSAGE_START, _CONTENT, _END
//   - ToolCallStart, ToolCallArgs, ToolCallEnd: TOOL_CALL_START, _ARGS, _END
//   - ToolCallResult: TOOL_CALL_RESULT
//
// A Mapper is not safe for concurrent use; create one per run.
package agui
