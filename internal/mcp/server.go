// Package mcp exposes outline extraction as MCP tools.
package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dgallion1/docoutline/internal/batch"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

const (
	serverName    = "docoutline"
	serverVersion = "0.1.0"
)

// Server wraps the MCP server with the outline tools.
type Server struct {
	mcpServer *server.MCPServer
	proc      *pipeline.Processor
	runner    *batch.Runner
	workers   int
	log       *slog.Logger
}

// NewServer creates the MCP server and registers its tools. workers bounds
// outline_directory parallelism.
func NewServer(proc *pipeline.Processor, workers int, log *slog.Logger) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(serverName, serverVersion, server.WithLogging()),
		proc:      proc,
		runner:    batch.NewRunner(proc, log),
		workers:   workers,
		log:       log.With("component", "mcp"),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("extract_outline",
		mcp.WithDescription("Extract the title and heading outline of a PDF, Markdown, HTML or DOCX file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the document to outline"),
		),
		mcp.WithString("view",
			mcp.Description("'flat' (default) for a list of headings, 'tree' to nest them by level"),
		),
	), s.handleExtractOutline)

	s.mcpServer.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List the documents in a directory that can be outlined"),
		mcp.WithString("dir",
			mcp.Required(),
			mcp.Description("Directory to scan (not recursive)"),
		),
		mcp.WithBoolean("all_formats",
			mcp.Description("Include Markdown, HTML and DOCX files, not only PDFs"),
		),
	), s.handleListSources)

	s.mcpServer.AddTool(mcp.NewTool("outline_directory",
		mcp.WithDescription("Outline every document in a directory and write one JSON file per document"),
		mcp.WithString("input_dir",
			mcp.Required(),
			mcp.Description("Directory holding the source documents"),
		),
		mcp.WithString("output_dir",
			mcp.Required(),
			mcp.Description("Directory that receives <name>.json outlines"),
		),
		mcp.WithBoolean("all_formats",
			mcp.Description("Include Markdown, HTML and DOCX files, not only PDFs"),
		),
	), s.handleOutlineDirectory)

	s.mcpServer.AddTool(mcp.NewTool("processing_stats",
		mcp.WithDescription("Report outline counts and latency for documents processed by this server"),
	), s.handleProcessingStats)

	s.log.Info("registered MCP tools", "count", 4)
}

// ServeStdio serves MCP over stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	s.log.Info("starting MCP server", "transport", "stdio")
	return server.ServeStdio(s.mcpServer)
}

// toolResult renders v as indented JSON text.
func toolResult(v any) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(buf.String()), nil
}
