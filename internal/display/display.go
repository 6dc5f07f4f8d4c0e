package display

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/1broseidon/deskgrid/internal/layout"
)

// Monitor is a live monitor as reported by the display service. Hosts hand
// out *Monitor values as stable handles for as long as the output stays
// connected.
type Monitor struct {
	// ID is the connector name, e.g. "DP-1".
	ID          string
	Description string
	Geometry    layout.Rect
	// Workarea is Geometry minus panels and docks.
	Workarea layout.Rect
	Primary  bool
}

// Level is the tier a freshly connected monitor asks for.
func (m *Monitor) Level() layout.Level {
	if m.Primary {
		return layout.LevelPrimary
	}
	return layout.LevelSecondary
}

func (m *Monitor) String() string {
	return fmt.Sprintf("%s (%s)", m.ID, m.Geometry)
}

// Provider enumerates the currently connected monitors.
type Provider interface {
	Monitors() ([]Monitor, error)
}

// TotalWorkarea returns the bounding box of all monitor workareas.
func TotalWorkarea(monitors []Monitor) layout.Rect {
	if len(monitors) == 0 {
		return layout.Rect{}
	}
	x1, y1 := monitors[0].Workarea.X, monitors[0].Workarea.Y
	x2, y2 := x1+monitors[0].Workarea.Width, y1+monitors[0].Workarea.Height
	for _, m := range monitors[1:] {
		wa := m.Workarea
		x1 = min(x1, wa.X)
		y1 = min(y1, wa.Y)
		x2 = max(x2, wa.X+wa.Width)
		y2 = max(y2, wa.Y+wa.Height)
	}
	return layout.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

var specPattern = regexp.MustCompile(`^([^=]+)=(\d+)x(\d+)([+-]\d+)([+-]\d+)(\*)?$`)

// ParseSpec parses "ID=WxH+X+Y" with an optional trailing "*" marking the
// primary monitor. The workarea equals the geometry.
func ParseSpec(spec string) (Monitor, error) {
	m := specPattern.FindStringSubmatch(spec)
	if m == nil {
		return Monitor{}, fmt.Errorf("invalid monitor %q (want ID=WxH+X+Y)", spec)
	}
	nums := make([]int, 4)
	for i, s := range m[2:6] {
		v, err := strconv.Atoi(s)
		if err != nil {
			return Monitor{}, fmt.Errorf("invalid monitor %q: %w", spec, err)
		}
		nums[i] = v
	}
	geom := layout.Rect{X: nums[2], Y: nums[3], Width: nums[0], Height: nums[1]}
	return Monitor{
		ID:          m[1],
		Description: m[1],
		Geometry:    geom,
		Workarea:    geom,
		Primary:     m[6] == "*",
	}, nil
}

// Static is a fixed monitor set, used when no display server is queried.
type Static []Monitor

func (s Static) Monitors() ([]Monitor, error) {
	return append([]Monitor(nil), s...), nil
}
