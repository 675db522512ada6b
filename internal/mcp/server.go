// Package mcp exposes the focusveil daemon to MCP clients over stdio.
// Every tool is a thin wrapper around the daemon's IPC surface, so the
// MCP process carries no overlay state of its own.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/focusveil/internal/ipc"
)

const (
	ServerName    = "focusveil"
	ServerVersion = "0.1.0"
)

// Server is the MCP server bridging tools to the running daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates an MCP server. The daemon must be reachable over
// IPC; individual tool calls surface connection errors.
func NewServer() *Server {
	s := &Server{
		client: ipc.NewClient(),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Get the focusveil daemon status: whether focus dimming is active, how many display overlays exist, the configured dim intensity, and daemon uptime.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_dimming",
		Description: "Toggle focus dimming on or off. When activated, every display is covered by a dimming overlay with a cutout over the focused window.",
	}, s.handleToggle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List the connected displays with their global coordinates and sizes.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_exclusion",
		Description: "Exclude an application (by WM_CLASS identifier) from focus treatment, or remove an existing exclusion. Excluded applications never get a cutout; the whole screen stays dimmed while they are focused.",
	}, s.handleSetExclusion)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_exclusions",
		Description: "List the application identifiers currently excluded from focus treatment.",
	}, s.handleListExclusions)
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}

	return nil, GetStatusOutput{
		DimmingActive: status.DimmingActive,
		OverlayCount:  status.OverlayCount,
		Intensity:     status.Intensity,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}

func (s *Server) handleToggle(_ context.Context, _ *mcpsdk.CallToolRequest, _ ToggleInput) (*mcpsdk.CallToolResult, ToggleOutput, error) {
	if err := s.client.Toggle(); err != nil {
		return nil, ToggleOutput{}, err
	}

	// The toggle is processed asynchronously by the daemon's update
	// loop; report the post-toggle state once it is observable.
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, ToggleOutput{}, err
	}

	return nil, ToggleOutput{DimmingActive: status.DimmingActive}, nil
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	data, err := s.client.GetDisplays()
	if err != nil {
		return nil, ListDisplaysOutput{}, err
	}

	out := ListDisplaysOutput{Displays: make([]DisplayEntry, 0, len(data.Displays))}
	for _, d := range data.Displays {
		out.Displays = append(out.Displays, DisplayEntry{
			ID:     d.ID,
			Name:   d.Name,
			X:      d.X,
			Y:      d.Y,
			Width:  d.Width,
			Height: d.Height,
		})
	}
	return nil, out, nil
}

func (s *Server) handleSetExclusion(_ context.Context, _ *mcpsdk.CallToolRequest, args SetExclusionInput) (*mcpsdk.CallToolResult, SetExclusionOutput, error) {
	if args.Identifier == "" {
		return nil, SetExclusionOutput{}, fmt.Errorf("identifier must not be empty")
	}

	var err error
	if args.Excluded {
		err = s.client.ExcludeAdd(args.Identifier)
	} else {
		err = s.client.ExcludeRemove(args.Identifier)
	}
	if err != nil {
		return nil, SetExclusionOutput{}, err
	}

	all, err := s.client.ExcludeList()
	if err != nil {
		return nil, SetExclusionOutput{}, err
	}

	return nil, SetExclusionOutput{
		Identifier: args.Identifier,
		Excluded:   args.Excluded,
		All:        all,
	}, nil
}

func (s *Server) handleListExclusions(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListExclusionsInput) (*mcpsdk.CallToolResult, ListExclusionsOutput, error) {
	ids, err := s.client.ExcludeList()
	if err != nil {
		return nil, ListExclusionsOutput{}, err
	}
	return nil, ListExclusionsOutput{Identifiers: ids}, nil
}
