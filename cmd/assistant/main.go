// Command assistant runs the research assistant: an agent that answers
// questions with web search, current weather and a calculator, streamed to
// clients over Server-Sent Events.
//
// Configuration is via environment variables (a .env file is loaded if
// present):
//
//	ASSISTANT_PORT          - HTTP port (default: 8000)
//	ASSISTANT_LOG_LEVEL     - debug, info, warn or error (default: info)
//	ASSISTANT_PROVIDER      - anthropic, openai or google (default: openai)
//	ASSISTANT_MODEL         - Model override (default: provider default)
//	ASSISTANT_TEMPERATURE   - Sampling temperature (default: 0.7)
//	ASSISTANT_MAX_TOKENS    - Output token cap, 0 for provider default
//	ASSISTANT_MODEL_RETRIES - Retries when opening a model stream (default: 0)
//	ASSISTANT_MAX_STEPS     - Model requests per turn (default: 10)
//	ASSISTANT_TIMEOUT       - Turn timeout (default: 2m)
//	ASSISTANT_TOOL_TIMEOUT  - Per-tool timeout (default: 30s)
//	ASSISTANT_HEARTBEAT     - SSE heartbeat interval (default: 15s)
//	ASSISTANT_SYSTEM_PROMPT - System prompt override
//	OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY
//	TAVILY_API_KEY, OPENWEATHER_API_KEY
//
// Usage:
//
//	assistant serve
//	assistant ask "What's the weather in Paris?"
//	assistant mcp
//	assistant tools
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
