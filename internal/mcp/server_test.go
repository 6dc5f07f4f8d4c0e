package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/deskgrid/internal/daemon"
	"github.com/1broseidon/deskgrid/internal/display"
	"github.com/1broseidon/deskgrid/internal/layout"
	"github.com/1broseidon/deskgrid/internal/store"
)

type fixture struct {
	server    *Server
	session   *daemon.Guarded
	primary   store.ConfigID
	secondary store.ConfigID
	path      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "positions.yaml")
	st := store.New(path, store.Options{})

	dp := &display.Monitor{ID: "DP-1", Description: "Laptop", Geometry: layout.Rect{Width: 1920, Height: 1080}, Primary: true}
	hdmi := &display.Monitor{ID: "HDMI-1", Geometry: layout.Rect{X: 1920, Width: 1280, Height: 1024}}
	f := &fixture{path: path}
	f.primary = st.AssignNew(dp, layout.LevelPrimary)
	f.secondary = st.AssignNew(hdmi, layout.LevelSecondary)
	require.NoError(t, st.SetIconPosition(f.secondary, "trash", 4, 5, 0))
	require.NoError(t, st.SetIconPosition(f.primary, "home", 0, 1, 0))

	f.session = daemon.NewGuarded(st)
	f.server = NewServer(f.session, nil)
	return f
}

func TestListLayouts(t *testing.T) {
	f := newFixture(t)
	_, out, err := f.server.handleListLayouts(context.Background(), nil, ListLayoutsInput{})
	require.NoError(t, err)

	assert.Equal(t, f.path, out.Path)
	require.Len(t, out.Layouts, 2)
	assert.Equal(t, LayoutInfo{
		Layout:   uint64(f.primary),
		Level:    "primary",
		BoundTo:  "DP-1",
		Monitors: []MonitorInfo{{ID: "DP-1", Name: "Laptop", Geometry: "1920x1080+0+0"}},
		Icons:    1,
	}, out.Layouts[0])
	assert.Equal(t, "secondary", out.Layouts[1].Level)
	assert.Equal(t, "HDMI-1", out.Layouts[1].Monitors[0].Name, "empty description falls back to the id")
}

func TestGetIcon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, out, err := f.server.handleGetIcon(ctx, nil, GetIconInput{Icon: "trash"})
	require.NoError(t, err)
	assert.Equal(t, GetIconOutput{Found: true, Layout: uint64(f.secondary), Monitor: "HDMI-1", Row: 4, Col: 5}, out)

	_, out, err = f.server.handleGetIcon(ctx, nil, GetIconInput{Icon: "missing"})
	require.NoError(t, err)
	assert.False(t, out.Found)

	layoutID := uint64(f.primary)
	_, out, err = f.server.handleGetIcon(ctx, nil, GetIconInput{Icon: "trash", Layout: &layoutID})
	require.NoError(t, err)
	assert.False(t, out.Found, "trash is not stored in the primary layout")

	unknown := uint64(99)
	_, _, err = f.server.handleGetIcon(ctx, nil, GetIconInput{Icon: "trash", Layout: &unknown})
	assert.ErrorIs(t, err, store.ErrUnknownConfig)

	_, _, err = f.server.handleGetIcon(ctx, nil, GetIconInput{})
	assert.Error(t, err)
}

func TestSetIconPosition_MovesIconToStrongerLayout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.server.handleSetIconPosition(ctx, nil, SetIconPositionInput{Layout: uint64(f.primary), Icon: "trash", Row: 2, Col: 3, LastSeen: 42})
	require.NoError(t, err)

	_, out, err := f.server.handleGetIcon(ctx, nil, GetIconInput{Icon: "trash"})
	require.NoError(t, err)
	assert.Equal(t, GetIconOutput{Found: true, Layout: uint64(f.primary), Monitor: "DP-1", Row: 2, Col: 3, LastSeen: 42}, out)

	_, _, err = f.server.handleSetIconPosition(ctx, nil, SetIconPositionInput{Layout: 99, Icon: "trash"})
	assert.ErrorIs(t, err, store.ErrUnknownConfig)
}

func TestRemoveIconAndDeleteLayout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.server.handleRemoveIcon(ctx, nil, RemoveIconInput{Layout: uint64(f.primary), Icon: "home"})
	require.NoError(t, err)
	_, got, err := f.server.handleGetIcon(ctx, nil, GetIconInput{Icon: "home"})
	require.NoError(t, err)
	assert.False(t, got.Found)

	_, out, err := f.server.handleDeleteLayout(ctx, nil, DeleteLayoutInput{Layout: uint64(f.secondary)})
	require.NoError(t, err)
	assert.True(t, out.Deleted)

	_, out, err = f.server.handleDeleteLayout(ctx, nil, DeleteLayoutInput{Layout: uint64(f.secondary)})
	require.NoError(t, err)
	assert.False(t, out.Deleted, "deleting twice is not an error")
}

func TestSave(t *testing.T) {
	f := newFixture(t)
	_, out, err := f.server.handleSave(context.Background(), nil, SaveInput{})
	require.NoError(t, err)
	assert.Equal(t, SaveOutput{Path: f.path, Layouts: 2}, out)

	_, err = os.Stat(f.path)
	require.NoError(t, err)

	reloaded := store.New(f.path, store.Options{})
	require.NoError(t, reloaded.Load())
	assert.Len(t, reloaded.Configurations(), 2)
}
