package mcp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskgrid/internal/store"
)

const (
	ServerName    = "deskgrid"
	ServerVersion = "0.1.0"
)

// Session gives exclusive access to the store. *daemon.Guarded implements it.
type Session interface {
	Do(fn func(*store.Store) error) error
}

// Server is the MCP server for inspecting and editing icon layouts.
type Server struct {
	mcpServer *mcpsdk.Server
	session   Session
	logger    *slog.Logger

	flushInterval time.Duration
	now           func() time.Time
}

// NewServer creates a new MCP server on top of session.
func NewServer(session Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		session:       session,
		logger:        logger,
		flushInterval: time.Second,
		now:           time.Now,
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

// Run serves on stdio until the client disconnects or ctx is cancelled.
// Pending edits are flushed before returning.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.flushLoop(ctx)

	err := s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
	closeErr := s.session.Do(func(st *store.Store) error { return st.Close() })
	return errors.Join(err, closeErr)
}

func (s *Server) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.session.Do(func(st *store.Store) error {
				st.Tick(s.now())
				return nil
			})
		}
	}
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List stored icon layouts in priority order with their level, the monitor each is currently bound to, the monitors it remembers, and its icon count.",
	}, s.handleListLayouts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_icon",
		Description: "Find where an icon is placed. Without layout, resolves the icon across layouts bound to connected monitors, strongest level first.",
	}, s.handleGetIcon)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_icon_position",
		Description: "Store an icon's grid cell in a layout. The icon is dropped from every other layout of the same or a weaker level.",
	}, s.handleSetIconPosition)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_icon",
		Description: "Remove an icon from one layout. Other layouts keep their copy.",
	}, s.handleRemoveIcon)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "delete_layout",
		Description: "Delete a layout and release the monitor bound to it.",
	}, s.handleDeleteLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save",
		Description: "Write the layouts file now instead of waiting for the debounced save.",
	}, s.handleSave)
}
