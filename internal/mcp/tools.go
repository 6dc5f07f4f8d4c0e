package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskgrid/internal/store"
)

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	var out ListLayoutsOutput
	err := s.session.Do(func(st *store.Store) error {
		out.Path = st.Path()
		infos := st.Configurations()
		out.Layouts = make([]LayoutInfo, 0, len(infos))
		for _, info := range infos {
			li := LayoutInfo{
				Layout:   uint64(info.ID),
				Level:    info.Config.Level.String(),
				Monitors: make([]MonitorInfo, 0, len(info.Config.Monitors)),
				Icons:    len(info.Config.Icons),
			}
			if info.Monitor != nil {
				li.BoundTo = info.Monitor.ID
			}
			for id, rec := range info.Config.Monitors {
				li.Monitors = append(li.Monitors, MonitorInfo{ID: id, Name: rec.DisplayName, Geometry: rec.Geometry.String()})
			}
			sort.Slice(li.Monitors, func(i, j int) bool { return li.Monitors[i].ID < li.Monitors[j].ID })
			out.Layouts = append(out.Layouts, li)
		}
		return nil
	})
	return nil, out, err
}

func (s *Server) handleGetIcon(_ context.Context, _ *mcpsdk.CallToolRequest, args GetIconInput) (*mcpsdk.CallToolResult, GetIconOutput, error) {
	if args.Icon == "" {
		return nil, GetIconOutput{}, fmt.Errorf("icon is required")
	}

	var out GetIconOutput
	err := s.session.Do(func(st *store.Store) error {
		if args.Layout != nil {
			cfg, ok := st.Configuration(store.ConfigID(*args.Layout))
			if !ok {
				return fmt.Errorf("layout %d: %w", *args.Layout, store.ErrUnknownConfig)
			}
			pos, ok := cfg.Icons[args.Icon]
			if !ok {
				return nil
			}
			out = GetIconOutput{Found: true, Layout: *args.Layout, Row: pos.Row, Col: pos.Col, LastSeen: pos.LastSeen}
			return nil
		}

		p, ok := st.Lookup(args.Icon)
		if !ok {
			return nil
		}
		out = GetIconOutput{Found: true, Layout: uint64(p.Config), Row: p.Row, Col: p.Col}
		if p.Monitor != nil {
			out.Monitor = p.Monitor.ID
		}
		if cfg, ok := st.Configuration(p.Config); ok {
			out.LastSeen = cfg.Icons[args.Icon].LastSeen
		}
		return nil
	})
	return nil, out, err
}

func (s *Server) handleSetIconPosition(_ context.Context, _ *mcpsdk.CallToolRequest, args SetIconPositionInput) (*mcpsdk.CallToolResult, IconOutput, error) {
	if args.Icon == "" {
		return nil, IconOutput{}, fmt.Errorf("icon is required")
	}
	err := s.session.Do(func(st *store.Store) error {
		return st.SetIconPosition(store.ConfigID(args.Layout), args.Icon, args.Row, args.Col, args.LastSeen)
	})
	if err != nil {
		return nil, IconOutput{}, err
	}
	s.logger.Info("icon position set", "layout", args.Layout, "icon", args.Icon, "row", args.Row, "col", args.Col)
	return nil, IconOutput{Layout: args.Layout, Icon: args.Icon}, nil
}

func (s *Server) handleRemoveIcon(_ context.Context, _ *mcpsdk.CallToolRequest, args RemoveIconInput) (*mcpsdk.CallToolResult, IconOutput, error) {
	err := s.session.Do(func(st *store.Store) error {
		return st.RemoveIcon(store.ConfigID(args.Layout), args.Icon)
	})
	if err != nil {
		return nil, IconOutput{}, err
	}
	s.logger.Info("icon removed", "layout", args.Layout, "icon", args.Icon)
	return nil, IconOutput{Layout: args.Layout, Icon: args.Icon}, nil
}

func (s *Server) handleDeleteLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args DeleteLayoutInput) (*mcpsdk.CallToolResult, DeleteLayoutOutput, error) {
	err := s.session.Do(func(st *store.Store) error {
		return st.DeleteConfiguration(store.ConfigID(args.Layout))
	})
	if errors.Is(err, store.ErrUnknownConfig) {
		return nil, DeleteLayoutOutput{Layout: args.Layout}, nil
	}
	if err != nil {
		return nil, DeleteLayoutOutput{}, err
	}
	s.logger.Info("layout deleted", "layout", args.Layout)
	return nil, DeleteLayoutOutput{Layout: args.Layout, Deleted: true}, nil
}

func (s *Server) handleSave(_ context.Context, _ *mcpsdk.CallToolRequest, _ SaveInput) (*mcpsdk.CallToolResult, SaveOutput, error) {
	var out SaveOutput
	err := s.session.Do(func(st *store.Store) error {
		if err := st.Save(); err != nil {
			return err
		}
		out = SaveOutput{Path: st.Path(), Layouts: len(st.Configurations())}
		return nil
	})
	return nil, out, err
}
