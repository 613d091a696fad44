package mcp

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dgallion1/docoutline/internal/batch"
	"github.com/dgallion1/docoutline/internal/parser"
)

func (s *Server) handleExtractOutline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}
	view := request.GetString("view", "flat")
	if view != "flat" && view != "tree" {
		return mcp.NewToolResultError("view must be 'flat' or 'tree'"), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError("read " + path + ": " + err.Error()), nil
	}

	out, err := s.proc.Process(ctx, filepath.Base(path), data)
	if err != nil {
		s.log.Error("outline failed", "path", path, "error", err, "category", parser.Categorize(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	if view == "tree" {
		return toolResult(out.Result.Tree())
	}
	return toolResult(out.Result)
}

func (s *Server) handleListSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := request.GetString("dir", "")
	if dir == "" {
		return mcp.NewToolResultError("dir parameter is required"), nil
	}
	allFormats := request.GetBool("all_formats", false)

	sources, err := batch.ListSources(dir, allFormats)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if sources == nil {
		sources = []string{}
	}
	return toolResult(map[string]any{
		"dir":     dir,
		"sources": sources,
		"total":   len(sources),
	})
}

func (s *Server) handleOutlineDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := request.GetString("input_dir", "")
	out := request.GetString("output_dir", "")
	if in == "" || out == "" {
		return mcp.NewToolResultError("input_dir and output_dir are required"), nil
	}

	sum, err := s.runner.Run(ctx, batch.Options{
		InputDir:   in,
		OutputDir:  out,
		Workers:    s.workers,
		AllFormats: request.GetBool("all_formats", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(sum)
}

func (s *Server) handleProcessingStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tracker := s.proc.Stats()
	if tracker == nil {
		return mcp.NewToolResultError("processing stats unavailable"), nil
	}
	return toolResult(tracker.Snapshot())
}
