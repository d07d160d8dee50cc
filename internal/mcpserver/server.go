// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the mod operations to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/modsync/internal/engine"
	"github.com/starford/modsync/internal/models"
	"github.com/starford/modsync/internal/modservice"
)

const usageURI = "modsync://usage"

// ModService is the part of the service layer the tools call.
type ModService interface {
	List(ctx context.Context, f modservice.Filter) ([]modservice.ModRow, error)
	Activate(ctx context.Context, n int) (*engine.Result, error)
	Deactivate(ctx context.Context, n int) (*engine.Result, error)
	Refresh(ctx context.Context) (*engine.Result, error)
	Reorder(ctx context.Context, selected []int, placement engine.Placement) (*engine.Result, error)
}

// Server wraps the MCP server with the mod tools.
type Server struct {
	mcp *server.MCPServer
	svc ModService
}

// New creates a new MCP server with all tools registered.
func New(svc ModService, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"modsync",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_mods",
		mcp.WithDescription("List registered mods in load order with their numbers and active state."),
		mcp.WithString("filter", mcp.Description(`Optional: "active" or "inactive"`)),
	), s.listMods)

	s.mcp.AddTool(mcp.NewTool("activate_mod",
		mcp.WithDescription("Activate a deactivated mod by restoring its backed-up load-order entry."),
		mcp.WithNumber("number", mcp.Required(), mcp.Description("Order number from list_mods")),
	), s.activateMod)

	s.mcp.AddTool(mcp.NewTool("deactivate_mod",
		mcp.WithDescription("Deactivate a mod: back up its load-order entry and remove it from the load order."),
		mcp.WithNumber("number", mcp.Required(), mcp.Description("Order number from list_mods")),
	), s.deactivateMod)

	s.mcp.AddTool(mcp.NewTool("refresh_mods",
		mcp.WithDescription("Sync the registry with external edits of the load-order file."),
	), s.refreshMods)

	s.mcp.AddTool(mcp.NewTool("reorder_mods",
		mcp.WithDescription("Move the selected mods and renumber all mods. Read "+usageURI+" for the placement syntax."),
		mcp.WithString("selection", mcp.Required(), mcp.Description(`Comma-separated order numbers, e.g. "2, 5"`)),
		mcp.WithString("placement", mcp.Required(), mcp.Description(`"b", "e", "a N" or "c"`)),
	), s.reorderMods)

	s.mcp.AddResource(
		mcp.NewResource(usageURI, "modsync tool guide",
			mcp.WithResourceDescription("How mod numbers and reorder placements work."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readUsageResource,
	)

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

// resultDTO is the JSON shape of an operation result.
type resultDTO struct {
	Op       string      `json:"op"`
	Outcome  string      `json:"outcome"`
	UUID     string      `json:"uuid,omitempty"`
	Name     string      `json:"name,omitempty"`
	Message  string      `json:"message"`
	Warnings []string    `json:"warnings,omitempty"`
	Refresh  *refreshDTO `json:"refresh,omitempty"`
}

type refreshDTO struct {
	Imported []modDTO `json:"imported"`
	Disabled []modDTO `json:"disabled"`
	Enabled  []modDTO `json:"enabled"`
}

type modDTO struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	UUID   string `json:"uuid"`
}

func toMods(entries []*models.ModEntry) []modDTO {
	out := make([]modDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, modDTO{Number: e.Number, Name: e.Name, UUID: e.UUID})
	}
	return out
}

func resultJSON(res *engine.Result, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dto := resultDTO{
		Op:       res.Op,
		Outcome:  res.Outcome.String(),
		UUID:     res.UUID,
		Name:     res.Name,
		Message:  res.Message,
		Warnings: res.Warnings,
	}
	if r := res.Refresh; r != nil {
		dto.Refresh = &refreshDTO{
			Imported: toMods(r.Imported),
			Disabled: toMods(r.Disabled),
			Enabled:  toMods(r.Enabled),
		}
	}
	out, _ := json.MarshalIndent(dto, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listMods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, _ := req.RequireString("filter")
	var f modservice.Filter
	switch filter {
	case "":
		f = modservice.FilterAll
	case "active":
		f = modservice.FilterActive
	case "inactive":
		f = modservice.FilterInactive
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown filter %q", filter)), nil
	}
	rows, err := s.svc.List(ctx, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if rows == nil {
		rows = []modservice.ModRow{}
	}
	out, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) activateMod(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := req.RequireInt("number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultJSON(s.svc.Activate(ctx, n))
}

func (s *Server) deactivateMod(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := req.RequireInt("number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultJSON(s.svc.Deactivate(ctx, n))
}

func (s *Server) refreshMods(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return resultJSON(s.svc.Refresh(ctx))
}

func (s *Server) reorderMods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := req.RequireString("selection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	place, err := req.RequireString("placement")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	selected, err := engine.ParseSelection(sel)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	placement, err := engine.ParsePlacement(place)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultJSON(s.svc.Reorder(ctx, selected, placement))
}

func (s *Server) readUsageResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      usageURI,
			MIMEType: "text/markdown",
			Text:     UsageGuide,
		},
	}, nil
}
