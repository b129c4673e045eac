// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes featlint checks for LLM integration via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/featlint/internal/engine"
	"github.com/starford/featlint/internal/report"
)

// Server wraps the MCP server with featlint tools.
type Server struct {
	mcp  *server.MCPServer
	eng  *engine.Engine
	root string
}

// New creates a new MCP server scanning under root.
func New(eng *engine.Engine, root string) *Server {
	s := &Server{eng: eng, root: root}

	s.mcp = server.NewMCPServer(
		"Featlint",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("lint_feature",
		mcp.WithDescription("Run all hygiene rules against a feature's suite directories "+
			"and return the PASS/FAIL report."),
		mcp.WithString("feature", mcp.Required(), mcp.Description("Feature name (case-insensitive)")),
	), s.lintFeature)

	s.mcp.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List the built-in rules and the directory roles they apply to."),
	), s.listRules)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) lintFeature(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	feature, err := req.RequireString("feature")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := s.eng.Lint(s.root, feature, &report.Printer{W: &buf}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) listRules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type ruleInfo struct {
		Name  string   `json:"name"`
		Roles []string `json:"roles"`
	}
	var infos []ruleInfo
	for _, r := range s.eng.Rules().Rules() {
		roles := make([]string, 0, len(r.Roles))
		for _, role := range r.Roles {
			roles = append(roles, role.String())
		}
		infos = append(infos, ruleInfo{Name: r.Name, Roles: roles})
	}
	out, _ := json.MarshalIndent(infos, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
