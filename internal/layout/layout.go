package layout

import "fmt"

// Level is the priority tier of a Configuration. The numeric value is what
// gets persisted; a lower value is the stronger tier.
type Level int

const (
	LevelPrimary   Level = 0
	LevelSecondary Level = 1
	// LevelOther shares its value with LevelSecondary, so the two tiers are
	// indistinguishable in every comparison and on disk.
	LevelOther Level = 1
)

// Valid reports whether l is a value that can appear on disk.
func (l Level) Valid() bool {
	return l == LevelPrimary || l == LevelSecondary
}

// Precedes reports whether l is a strictly stronger tier than other.
func (l Level) Precedes(other Level) bool {
	return l < other
}

// Distance is the numeric gap between two levels.
func Distance(a, b Level) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func (l Level) String() string {
	switch l {
	case LevelPrimary:
		return "primary"
	case LevelSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Rect is a logical geometry rectangle.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Equal compares all four fields.
func (r Rect) Equal(o Rect) bool {
	return r == o
}

// SameSize compares width and height only.
func (r Rect) SameSize(o Rect) bool {
	return r.Width == o.Width && r.Height == o.Height
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d%+d%+d", r.Width, r.Height, r.X, r.Y)
}

// Position is one icon's stored grid cell. LastSeen is zero except for
// removable-volume icons.
type Position struct {
	Row      uint
	Col      uint
	LastSeen uint64
}

// MonitorRecord is a Configuration's memory of one monitor.
type MonitorRecord struct {
	DisplayName string
	Geometry    Rect
}

// Configuration is one saved layout: monitor identity hints plus icon
// positions, tagged with a Level.
type Configuration struct {
	Level    Level
	Monitors map[string]MonitorRecord
	Icons    map[string]Position
}

// New returns an empty Configuration at the given level.
func New(level Level) *Configuration {
	return &Configuration{
		Level:    level,
		Monitors: make(map[string]MonitorRecord),
		Icons:    make(map[string]Position),
	}
}

// Clone returns a deep copy.
func (c *Configuration) Clone() *Configuration {
	out := New(c.Level)
	for id, rec := range c.Monitors {
		out.Monitors[id] = rec
	}
	for id, pos := range c.Icons {
		out.Icons[id] = pos
	}
	return out
}

// Equal reports whether both configurations hold the same level, monitor
// records and positions.
func (c *Configuration) Equal(o *Configuration) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Level != o.Level || len(c.Monitors) != len(o.Monitors) || len(c.Icons) != len(o.Icons) {
		return false
	}
	for id, rec := range c.Monitors {
		other, ok := o.Monitors[id]
		if !ok || other != rec {
			return false
		}
	}
	for id, pos := range c.Icons {
		other, ok := o.Icons[id]
		if !ok || other != pos {
			return false
		}
	}
	return true
}

// HasMonitorSize reports whether any monitor record has the same width and
// height as geom.
func (c *Configuration) HasMonitorSize(geom Rect) bool {
	for _, rec := range c.Monitors {
		if rec.Geometry.SameSize(geom) {
			return true
		}
	}
	return false
}

// HasMonitorGeometry reports whether any monitor record matches geom exactly.
func (c *Configuration) HasMonitorGeometry(geom Rect) bool {
	for _, rec := range c.Monitors {
		if rec.Geometry.Equal(geom) {
			return true
		}
	}
	return false
}
