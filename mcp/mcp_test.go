package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	ai "github.com/spetersoncode/assistant"
	"github.com/spetersoncode/assistant/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMCPTool(t *testing.T) {
	t.Run("uses parameters as raw schema", func(t *testing.T) {
		schema := json.RawMessage(`{"type":"object","properties":{"expression":{"type":"string"}}}`)
		mcpTool := ToMCPTool(ai.Tool{
			Name:        "calculator",
			Description: "Do math",
			Parameters:  schema,
		})

		assert.Equal(t, "calculator", mcpTool.Name)
		assert.Equal(t, "Do math", mcpTool.Description)
		assert.Equal(t, schema, mcpTool.RawInputSchema)
	})

	t.Run("handles nil parameters", func(t *testing.T) {
		mcpTool := ToMCPTool(ai.Tool{Name: "simple", Description: "Simple tool"})

		assert.Equal(t, "simple", mcpTool.Name)
		assert.Equal(t, "Simple tool", mcpTool.Description)
	})
}

func TestToMCPCallToolResult(t *testing.T) {
	t.Run("success result", func(t *testing.T) {
		res := ToMCPCallToolResult(ai.ToolResult{ToolCallID: "call_1", Content: "Result: 2 + 2 = 4"})

		assert.False(t, res.IsError)
		require.Len(t, res.Content, 1)
		text, ok := res.Content[0].(mcp.TextContent)
		require.True(t, ok)
		assert.Equal(t, "Result: 2 + 2 = 4", text.Text)
	})

	t.Run("error result", func(t *testing.T) {
		res := ToMCPCallToolResult(ai.ToolResult{ToolCallID: "call_2", Content: "boom", IsError: true})
		assert.True(t, res.IsError)
	})
}

func startClient(t *testing.T, registry *tool.Registry) *client.Client {
	t.Helper()

	c, err := client.NewInProcessClient(NewServer(registry, WithName("test-server"), WithVersion("0.0.1")))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	t.Cleanup(func() { c.Close() })

	_, err = c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "test-client",
				Version: "1.0.0",
			},
		},
	})
	require.NoError(t, err)
	return c
}

func callText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestServerIntegration(t *testing.T) {
	failing := tool.Func("fail", "Always fails", func(ctx context.Context, args struct{}) (string, error) {
		return "", assert.AnError
	})
	registry := tool.MustNewRegistry(tool.Calculator(), failing)
	c := startClient(t, registry)
	ctx := context.Background()

	t.Run("lists registry tools in order", func(t *testing.T) {
		result, err := c.ListTools(ctx, mcp.ListToolsRequest{})
		require.NoError(t, err)

		names := make([]string, len(result.Tools))
		for i, tl := range result.Tools {
			names[i] = tl.Name
		}
		assert.ElementsMatch(t, []string{"calculator", "fail"}, names)
	})

	tests := []struct {
		name    string
		tool    string
		args    any
		want    string
		isError bool
	}{
		{
			name: "calculator evaluates expression",
			tool: "calculator",
			args: map[string]any{"expression": "25 * 4 + 10"},
			want: "Result: 25 * 4 + 10 = 110",
		},
		{
			name: "calculator reports bad expression as text",
			tool: "calculator",
			args: map[string]any{"expression": "import os"},
			want: "Calculation error",
		},
		{
			name:    "handler error becomes error result",
			tool:    "fail",
			args:    map[string]any{},
			want:    assert.AnError.Error(),
			isError: true,
		},
		{
			name:    "non-object arguments rejected",
			tool:    "calculator",
			args:    []any{1, 2},
			want:    "calculator",
			isError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.CallTool(ctx, mcp.CallToolRequest{
				Params: mcp.CallToolParams{Name: tt.tool, Arguments: tt.args},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.isError, res.IsError)
			assert.Contains(t, callText(t, res), tt.want)
		})
	}
}
