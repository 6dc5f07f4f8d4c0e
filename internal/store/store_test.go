package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/deskgrid/internal/codec"
	"github.com/1broseidon/deskgrid/internal/display"
	"github.com/1broseidon/deskgrid/internal/layout"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type countingWriter struct {
	writes int
	err    error
}

func (w *countingWriter) write(path string, cfgs []*layout.Configuration) error {
	w.writes++
	if w.err != nil {
		return w.err
	}
	return codec.WriteFile(path, cfgs)
}

func newTestStore(t *testing.T) (*Store, *fakeClock, *countingWriter) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := New(filepath.Join(t.TempDir(), "positions.yaml"), Options{
		SaveDelay: 2 * time.Second,
		Now:       clock.Now,
	})
	w := &countingWriter{}
	s.write = w.write
	return s, clock, w
}

func writeDoc(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func monitorRecord(name string, geom layout.Rect) layout.MonitorRecord {
	return layout.MonitorRecord{DisplayName: name, Geometry: geom}
}

func TestStore_EndToEndLookup(t *testing.T) {
	s, _, _ := newTestStore(t)
	writeDoc(t, s.Path(),
		"configs:",
		"  - level: 0",
		"    monitors:",
		"      - id: \"DP-1\"",
		"        display_name: \"Dell\"",
		"        geometry: {x: 0, y: 0, width: 1920, height: 1080}",
		"    icons:",
		"      \"file.desktop\": {row: 2, col: 3}",
	)
	require.NoError(t, s.Load())

	_, ok := s.Lookup("file.desktop")
	assert.False(t, ok, "unbound configurations must not answer lookups")

	mon := &display.Monitor{ID: "DP-1", Description: "Dell", Geometry: layout.Rect{Width: 1920, Height: 1080}}
	match := s.AddMonitor(mon, layout.LevelPrimary)
	require.True(t, match.Found)

	got, ok := s.Lookup("file.desktop")
	require.True(t, ok)
	assert.Same(t, mon, got.Monitor)
	assert.Equal(t, uint(2), got.Row)
	assert.Equal(t, uint(3), got.Col)

	_, ok = s.Lookup("missing.desktop")
	assert.False(t, ok)
}

func TestStore_PriorityShadowing(t *testing.T) {
	s, _, _ := newTestStore(t)
	a := layout.New(layout.LevelPrimary)
	a.Icons["X"] = layout.Position{Row: 1, Col: 1}
	b := layout.New(layout.LevelSecondary)
	b.Icons["X"] = layout.Position{Row: 2, Col: 2}
	idA := s.insert(a)
	idB := s.insert(b)

	require.NoError(t, s.SetIconPosition(idB, "X", 5, 5, 0))
	assert.Equal(t, layout.Position{Row: 1, Col: 1}, a.Icons["X"], "secondary write must not touch primary")
	assert.Equal(t, layout.Position{Row: 5, Col: 5}, b.Icons["X"])

	require.NoError(t, s.SetIconPosition(idA, "X", 7, 8, 0))
	assert.Equal(t, layout.Position{Row: 7, Col: 8}, a.Icons["X"])
	_, ok := b.Icons["X"]
	assert.False(t, ok, "primary write must drop the secondary record")
}

func TestStore_SetIconPositionDropsEqualLevel(t *testing.T) {
	s, _, _ := newTestStore(t)
	first := layout.New(layout.LevelSecondary)
	first.Icons["X"] = layout.Position{Row: 1, Col: 1}
	second := layout.New(layout.LevelOther)
	second.Icons["X"] = layout.Position{Row: 2, Col: 2}
	s.insert(first)
	id := s.insert(second)

	require.NoError(t, s.SetIconPosition(id, "X", 3, 3, 99))
	_, ok := first.Icons["X"]
	assert.False(t, ok)
	assert.Equal(t, layout.Position{Row: 3, Col: 3, LastSeen: 99}, second.Icons["X"])
}

func TestStore_RemoveIconOnlyTouchesTarget(t *testing.T) {
	s, _, _ := newTestStore(t)
	a := layout.New(layout.LevelPrimary)
	a.Icons["X"] = layout.Position{Row: 1, Col: 1}
	b := layout.New(layout.LevelSecondary)
	b.Icons["X"] = layout.Position{Row: 2, Col: 2}
	s.insert(a)
	idB := s.insert(b)

	require.NoError(t, s.RemoveIcon(idB, "X"))
	assert.Contains(t, a.Icons, "X")
	assert.NotContains(t, b.Icons, "X")
}

func TestStore_UnknownConfig(t *testing.T) {
	s, _, _ := newTestStore(t)
	id := s.insert(layout.New(layout.LevelPrimary))
	require.NoError(t, s.DeleteConfiguration(id))

	assert.ErrorIs(t, s.SetIconPosition(id, "X", 0, 0, 0), ErrUnknownConfig)
	assert.ErrorIs(t, s.RemoveIcon(id, "X"), ErrUnknownConfig)
	assert.ErrorIs(t, s.DeleteConfiguration(id), ErrUnknownConfig)
	assert.ErrorIs(t, s.Assign(&display.Monitor{ID: "DP-1"}, id), ErrUnknownConfig)
	_, ok := s.Configuration(id)
	assert.False(t, ok)
}

func TestStore_SetIconPositionRejectsInvalidUTF8(t *testing.T) {
	s, clock, w := newTestStore(t)
	id := s.insert(layout.New(layout.LevelPrimary))

	err := s.SetIconPosition(id, "caf\xe9.desktop", 1, 1, 0)
	require.ErrorIs(t, err, ErrInvalidIconID)
	cfg, ok := s.Configuration(id)
	require.True(t, ok)
	assert.Empty(t, cfg.Icons)

	require.NoError(t, s.SetIconPosition(id, "café.desktop", 1, 1, 0))
	clock.Advance(3 * time.Second)
	s.Tick(clock.Now())
	assert.Equal(t, 1, w.writes)

	saved, err := codec.ReadFile(s.Path())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, layout.Position{Row: 1, Col: 1}, saved[0].Icons["café.desktop"])
}

func TestStore_LookupPrefersStrongerLevel(t *testing.T) {
	s, _, _ := newTestStore(t)
	weak := layout.New(layout.LevelSecondary)
	weak.Icons["X"] = layout.Position{Row: 9, Col: 9}
	strong := layout.New(layout.LevelPrimary)
	strong.Icons["X"] = layout.Position{Row: 1, Col: 2}
	idWeak := s.insert(weak)
	idStrong := s.insert(strong)

	monWeak := &display.Monitor{ID: "HDMI-1"}
	monStrong := &display.Monitor{ID: "DP-1"}
	require.NoError(t, s.Assign(monWeak, idWeak))
	require.NoError(t, s.Assign(monStrong, idStrong))

	got, ok := s.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, idStrong, got.Config)
	assert.Same(t, monStrong, got.Monitor)
}

func TestStore_LookupTieBreaksOnStoreOrder(t *testing.T) {
	s, _, _ := newTestStore(t)
	first := layout.New(layout.LevelPrimary)
	first.Icons["X"] = layout.Position{Row: 1, Col: 1}
	second := layout.New(layout.LevelPrimary)
	second.Icons["X"] = layout.Position{Row: 2, Col: 2}
	idFirst := s.insert(first)
	idSecond := s.insert(second)
	require.NoError(t, s.Assign(&display.Monitor{ID: "B"}, idSecond))
	require.NoError(t, s.Assign(&display.Monitor{ID: "A"}, idFirst))

	for i := 0; i < 10; i++ {
		got, ok := s.Lookup("X")
		require.True(t, ok)
		assert.Equal(t, idFirst, got.Config)
	}
}

func TestStore_DeleteConfigurationDropsBinding(t *testing.T) {
	s, _, w := newTestStore(t)
	cfg := layout.New(layout.LevelPrimary)
	cfg.Icons["X"] = layout.Position{Row: 1, Col: 1}
	id := s.insert(cfg)
	mon := &display.Monitor{ID: "DP-1"}
	require.NoError(t, s.Assign(mon, id))

	require.NoError(t, s.DeleteConfiguration(id))
	_, ok := s.BoundConfig(mon)
	assert.False(t, ok)
	_, ok = s.Lookup("X")
	assert.False(t, ok)
	assert.Empty(t, s.Configurations())

	require.NoError(t, s.Close())
	assert.Equal(t, 1, w.writes)
}

func TestStore_LoadFailureLeavesStateUnmodified(t *testing.T) {
	s, _, _ := newTestStore(t)
	cfg := layout.New(layout.LevelPrimary)
	cfg.Icons["X"] = layout.Position{Row: 1, Col: 1}
	id := s.insert(cfg)
	mon := &display.Monitor{ID: "DP-1"}
	require.NoError(t, s.Assign(mon, id))

	writeDoc(t, s.Path(),
		"configs:",
		"  - level: 0",
		"    icons: {\"X\": {row: abc, col: 1}}",
	)
	err := s.Load()
	var perr *codec.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Line)

	got, ok := s.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, id, got.Config)
}

func TestStore_LoadMissingFile(t *testing.T) {
	s, _, _ := newTestStore(t)
	err := s.Load()
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
	assert.Empty(t, s.Configurations())
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s, _, _ := newTestStore(t)
	primary := layout.New(layout.LevelPrimary)
	primary.Monitors["DP-1"] = monitorRecord("Dell", layout.Rect{Width: 1920, Height: 1080})
	primary.Icons["a.desktop"] = layout.Position{Row: 1, Col: 2}
	secondary := layout.New(layout.LevelSecondary)
	secondary.Monitors["HDMI-1"] = monitorRecord("TV", layout.Rect{X: 1920, Width: 1280, Height: 720})
	secondary.Icons["b.desktop"] = layout.Position{Row: 3, Col: 4, LastSeen: 1700000000}
	s.insert(secondary)
	s.insert(primary)
	require.NoError(t, s.Assign(&display.Monitor{ID: "DP-1", Description: "Dell", Geometry: layout.Rect{Width: 1920, Height: 1080}}, s.entries[0].id))

	require.NoError(t, s.Save())

	fresh := New(s.Path(), Options{})
	require.NoError(t, fresh.Load())
	got := fresh.Configurations()
	require.Len(t, got, 2)
	assert.True(t, got[0].Config.Equal(primary), "primary differs: %+v", got[0].Config)
	assert.True(t, got[1].Config.Equal(secondary), "secondary differs: %+v", got[1].Config)
	assert.Nil(t, got[0].Monitor, "bindings are never persisted")
}

func TestStore_DebounceCoalescesWrites(t *testing.T) {
	s, clock, w := newTestStore(t)
	id := s.insert(layout.New(layout.LevelPrimary))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.SetIconPosition(id, "X", uint(i), uint(i), 0))
		clock.Advance(300 * time.Millisecond)
	}
	deadline, ok := s.NextSave()
	require.True(t, ok)
	assert.Equal(t, time.Unix(1700000000, 0).Add(2*time.Second), deadline, "later mutations must not extend the deadline")

	assert.False(t, s.Tick(clock.Now()))
	assert.Equal(t, 0, w.writes)

	clock.Advance(time.Second)
	assert.True(t, s.Tick(clock.Now()))
	assert.False(t, s.Tick(clock.Now()))
	assert.Equal(t, 1, w.writes)

	cfgs, err := codec.ReadFile(s.Path())
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	assert.Equal(t, layout.Position{Row: 4, Col: 4}, cfgs[0].Icons["X"])
}

func TestStore_FailedSaveIsNotRetried(t *testing.T) {
	s, clock, w := newTestStore(t)
	w.err = errors.New("read-only file system")
	id := s.insert(layout.New(layout.LevelPrimary))

	require.NoError(t, s.SetIconPosition(id, "X", 1, 1, 0))
	clock.Advance(3 * time.Second)
	assert.True(t, s.Tick(clock.Now()))
	assert.Equal(t, 1, w.writes)

	clock.Advance(time.Minute)
	assert.False(t, s.Tick(clock.Now()), "failed saves must wait for the next mutation")
	_, pending := s.NextSave()
	assert.False(t, pending)

	w.err = nil
	require.NoError(t, s.SetIconPosition(id, "X", 2, 2, 0))
	clock.Advance(3 * time.Second)
	assert.True(t, s.Tick(clock.Now()))
	assert.Equal(t, 2, w.writes)
}

func TestStore_CloseFlushesPendingSave(t *testing.T) {
	s, _, w := newTestStore(t)
	id := s.insert(layout.New(layout.LevelPrimary))

	require.NoError(t, s.Close())
	assert.Equal(t, 0, w.writes, "nothing pending, nothing written")

	require.NoError(t, s.SetIconPosition(id, "X", 1, 1, 0))
	require.NoError(t, s.Close())
	assert.Equal(t, 1, w.writes)

	cfgs, err := codec.ReadFile(s.Path())
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	assert.Contains(t, cfgs[0].Icons, "X")
}

func TestStore_UnassignKeepsData(t *testing.T) {
	s, _, _ := newTestStore(t)
	mon := &display.Monitor{ID: "DP-1", Description: "Dell", Geometry: layout.Rect{Width: 1920, Height: 1080}}
	id := s.AssignNew(mon, layout.LevelPrimary)
	require.NoError(t, s.SetIconPosition(id, "X", 1, 1, 0))

	s.UnassignMonitor(mon)
	_, ok := s.Lookup("X")
	assert.False(t, ok)
	cfg, ok := s.Configuration(id)
	require.True(t, ok)
	assert.Contains(t, cfg.Icons, "X")
	assert.Contains(t, cfg.Monitors, "DP-1")

	again := &display.Monitor{ID: "DP-1", Geometry: layout.Rect{X: 100, Width: 2560, Height: 1440}}
	match := s.AddMonitor(again, layout.LevelPrimary)
	require.True(t, match.Found)
	assert.Equal(t, id, match.Config)
}
