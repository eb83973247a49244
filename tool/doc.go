// Package tool provides the research assistant's tool registry and built-in tools.
//
// A [Registry] is an immutable name-to-tool table built once at startup.
// Each entry pairs an [ai.Tool] definition (name, description, JSON schema)
// with a [Handler]. The agent resolves model tool calls by exact name and
// invokes them through [Registry.Invoke].
//
// # Defining Tools
//
// Define tool arguments as a struct and bind a typed handler with [Func].
// The JSON schema is reflected from the struct's json and jsonschema tags:
//
//	type WeatherArgs struct {
//	    City string `json:"city" jsonschema:"required" jsonschema_description:"City name"`
//	}
//
//	registry := tool.MustNewRegistry(
//	    tool.Func("get_weather", "Get current weather",
//	        func(ctx context.Context, args WeatherArgs) (string, error) {
//	            return lookup(ctx, args.City)
//	        }),
//	)
//
// # Error Handling
//
// Invoke distinguishes failures that end a turn from failures the model can
// recover from. An unknown tool name ([ErrToolNotFound]) or arguments that are
// not a JSON object ([ErrInvalidArguments]) are returned as errors. A handler
// error, or a panic inside a handler, becomes a ToolResult with IsError set.
//
// # Built-in Tools
//
//   - search_web: web search through Tavily ([SearchWeb])
//   - get_weather: current conditions through OpenWeather ([GetWeather])
//   - calculator: sandboxed arithmetic ([Calculator])
//
// [ResearchTools] returns all three.
package tool
