// Package mcpserver exposes the gate over the Model Context Protocol.
//
// Two tools are registered: precheck_write runs the full pipeline and
// returns the verdict with its rendered report, validate_rules runs
// architecture rule validation alone. Both speak stdio, so stdout is
// protocol output and all logging stays on stderr.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/simonhull/kestrel"
	"github.com/simonhull/kestrel/pkg/config"
	"github.com/simonhull/kestrel/pkg/gate"
	"github.com/simonhull/kestrel/pkg/logger"
	"github.com/simonhull/kestrel/pkg/pysrc"
	"github.com/simonhull/kestrel/pkg/rules"
)

// Server wraps an MCP stdio server around one gate.
type Server struct {
	gate      *gate.Gate
	validator *rules.Validator
	mcp       *server.MCPServer
}

// New builds the server and registers the gate tools for the project
// rooted at root.
func New(root string, cfg *config.Config) (*Server, error) {
	g, err := gate.New(root, cfg)
	if err != nil {
		return nil, err
	}
	validator, err := rules.NewValidator(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{gate: g, validator: validator}

	mcpServer := server.NewMCPServer(
		"kestrel",
		kestrel.Version,
		server.WithToolCapabilities(false),
	)

	precheckTool := mcp.NewTool("precheck_write",
		mcp.WithDescription("Analyze a proposed Python file write: structural similarity against existing code plus architecture rule validation, reduced to a block/warn/allow verdict"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Target path of the proposed write (absolute, or relative to the project root)"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The full proposed file content"),
		),
	)
	mcpServer.AddTool(precheckTool, s.precheckWriteHandler)

	validateRulesTool := mcp.NewTool("validate_rules",
		mcp.WithDescription("Validate architecture rules only: layer dependency direction, singleton placement, and configuration access"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path the content would be written to"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The full file content"),
		),
	)
	mcpServer.AddTool(validateRulesTool, s.validateRulesHandler)

	s.mcp = mcpServer
	return s, nil
}

// WithLogger sets a custom logger
func (s *Server) WithLogger(log logger.Logger) *Server {
	s.gate.WithLogger(log)
	return s
}

// Serve runs the stdio protocol loop until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

// precheckResult is the precheck_write payload: the verdict plus its
// rendered report, so clients do not have to re-implement the formatting.
type precheckResult struct {
	*gate.Verdict
	Report string `json:"report,omitempty"`
}

func (s *Server) precheckWriteHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verdict := s.gate.Analyze(ctx, path, []byte(content))

	jsonData, err := json.Marshal(precheckResult{Verdict: verdict, Report: verdict.Report()})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal verdict: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (s *Server) validateRulesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Unlike precheck_write, this tool is an explicit validation request,
	// so a target that cannot be parsed is an error rather than a pass.
	src, err := pysrc.Parse([]byte(content))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse %s: %v", path, err)), nil
	}

	violations := s.validator.Validate(path, src)
	if violations == nil {
		violations = []rules.Violation{}
	}

	jsonData, err := json.Marshal(violations)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal violations: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}
