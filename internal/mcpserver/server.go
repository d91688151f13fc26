// Package mcpserver exposes the fraud pipeline as MCP tools for LLMs.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all FraudWatch tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("fraudwatch", "1.0.0")
	client := NewFraudwatchClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolAssessTransaction, h.HandleAssessTransaction)
	s.AddTool(ToolGetTransaction, h.HandleGetTransaction)
	s.AddTool(ToolListHighRisk, h.HandleListHighRisk)
	s.AddTool(ToolListTransactions, h.HandleListTransactions)
	s.AddTool(ToolGetFraudStats, h.HandleGetFraudStats)

	return s
}
