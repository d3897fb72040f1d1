package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/codetime/internal/output"
	"github.com/joescharf/codetime/internal/sessions"
	"github.com/joescharf/codetime/internal/source"
	"github.com/joescharf/codetime/internal/tags"
)

// Loader reads compile timestamps from a locator.
type Loader interface {
	Load(locator string, opts source.Options) (*source.Input, error)
}

// Server exposes coding-time analysis as MCP tools.
type Server struct {
	loader   Loader
	defaults sessions.Config
	version  string
}

// NewServer creates the MCP server wrapper. defaults are used for any
// session parameter a caller leaves out.
func NewServer(l Loader, defaults sessions.Config, version string) *Server {
	return &Server{loader: l, defaults: defaults, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("codetime", s.version, server.WithToolCapabilities(true))
	srv.AddTool(s.analyzeTool())
	srv.AddTool(s.parseTagTool())
	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.MCPServer())
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// codetime_analyze
func (s *Server) analyzeTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("codetime_analyze",
		mcp.WithDescription("Estimate coding time from compile-* and submission-* git tags. Returns a JSON report with total, longest, mean and median session, longest break, elapsed time, coding percentage and the session list."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Tag file path, local repository directory, or remote repository URL")),
		mcp.WithBoolean("remote", mcp.Description("Treat source as a remote and list tags with git ls-remote")),
		mcp.WithString("break_threshold", mcp.Description("Gap that starts a new session, e.g. 1h45m")),
		mcp.WithString("lead_time", mcp.Description("Assumed work before the first compile of a session, e.g. 10m")),
		mcp.WithString("lone_session", mcp.Description("Duration credited to a single-compile session, e.g. 20m")),
	)
	return tool, s.handleAnalyze
}

func (s *Server) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	locator, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source"), nil
	}

	cfg, err := s.configFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in, err := s.loader.Load(locator, source.Options{Remote: request.GetBool("remote", false)})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load tags: %v", err)), nil
	}

	report, err := sessions.Analyze(cfg, in.Timestamps)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to analyze tags: %v", err)), nil
	}

	data, err := json.Marshal(output.NewReportView(locator, report))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) configFromRequest(request mcp.CallToolRequest) (sessions.Config, error) {
	cfg := s.defaults
	fields := []struct {
		name string
		dst  *time.Duration
	}{
		{"break_threshold", &cfg.BreakThreshold},
		{"lead_time", &cfg.LeadTime},
		{"lone_session", &cfg.LoneSession},
	}
	for _, f := range fields {
		raw := request.GetString(f.name, "")
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %q", f.name, raw)
		}
		*f.dst = d
	}
	return cfg, cfg.Validate()
}

// codetime_parse_tag
func (s *Server) parseTagTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("codetime_parse_tag",
		mcp.WithDescription("Classify a single tag name as compile or submission and return its timestamp."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag name, e.g. compile-2024.01.01_09.00.00")),
	)
	return tool, s.handleParseTag
}

func (s *Server) handleParseTag(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: tag"), nil
	}

	tag, err := tags.Parse(name)
	if err != nil {
		if errors.Is(err, tags.ErrMalformedTag) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	out := struct {
		Name string     `json:"name"`
		Kind string     `json:"kind"`
		Time *time.Time `json:"time,omitempty"`
	}{Name: tag.Name, Kind: tag.Kind.String()}
	if tag.Kind == tags.KindCompile {
		out.Time = &tag.Time
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal tag: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
