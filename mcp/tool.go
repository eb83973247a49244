// Package mcp exposes the assistant's tool registry as an MCP (Model Context
// Protocol) server.
//
// Desktop MCP clients can launch `assistant mcp` as a subprocess and call
// search_web, get_weather and calculator directly, without going through the
// agent loop:
//
//	registry := tool.MustNewRegistry(tool.ResearchTools(search, weather)...)
//	if err := mcp.ServeStdio(registry); err != nil {
//	    log.Fatal(err)
//	}
package mcp

import (
	ai "github.com/spetersoncode/assistant"
	"github.com/mark3labs/mcp-go/mcp"
)

// ToMCPTool converts a Tool to an MCP Tool.
// Tool.Parameters is used verbatim as the MCP tool's RawInputSchema.
func ToMCPTool(t ai.Tool) mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name, t.Description, t.Parameters)
}

// ToMCPCallToolResult converts a ToolResult to an MCP CallToolResult.
func ToMCPCallToolResult(result ai.ToolResult) *mcp.CallToolResult {
	if result.IsError {
		return mcp.NewToolResultError(result.Content)
	}
	return mcp.NewToolResultText(result.Content)
}
