package codec

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/1broseidon/deskgrid/internal/layout"
)

// Document keys.
const (
	keyConfigs     = "configs"
	keyLevel       = "level"
	keyMonitors    = "monitors"
	keyIcons       = "icons"
	keyID          = "id"
	keyDisplayName = "display_name"
	keyGeometry    = "geometry"
	keyX           = "x"
	keyY           = "y"
	keyWidth       = "width"
	keyHeight      = "height"
	keyRow         = "row"
	keyCol         = "col"
	keyLastSeen    = "last_seen"
)

type state int

const (
	stateStreamStart state = iota
	stateDocument
	stateTopKey
	stateConfigsValue
	stateConfigList
	stateConfigKey
	stateLevelValue
	stateMonitorsValue
	stateMonitorList
	stateMonitorKey
	stateMonitorIDValue
	stateMonitorNameValue
	stateGeometryValue
	stateGeometryKey
	stateGeometryXValue
	stateGeometryYValue
	stateGeometryWidthValue
	stateGeometryHeightValue
	stateIconsValue
	stateIconsKey
	stateIconValue
	stateIconKey
	stateIconRowValue
	stateIconColValue
	stateIconLastSeenValue
	stateDocumentEnd
	stateDone
)

var stateNames = map[state]string{
	stateStreamStart:         "stream start",
	stateDocument:            "document",
	stateTopKey:              "top-level key",
	stateConfigsValue:        "configs value",
	stateConfigList:          "configs list",
	stateConfigKey:           "config key",
	stateLevelValue:          "level value",
	stateMonitorsValue:       "monitors value",
	stateMonitorList:         "monitors list",
	stateMonitorKey:          "monitor key",
	stateMonitorIDValue:      "monitor id",
	stateMonitorNameValue:    "monitor display_name",
	stateGeometryValue:       "geometry value",
	stateGeometryKey:         "geometry key",
	stateGeometryXValue:      "geometry x",
	stateGeometryYValue:      "geometry y",
	stateGeometryWidthValue:  "geometry width",
	stateGeometryHeightValue: "geometry height",
	stateIconsValue:          "icons value",
	stateIconsKey:            "icon id",
	stateIconValue:           "icon value",
	stateIconKey:             "icon key",
	stateIconRowValue:        "icon row",
	stateIconColValue:        "icon col",
	stateIconLastSeenValue:   "icon last_seen",
	stateDocumentEnd:         "document end",
	stateDone:                "end of stream",
}

func (s state) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Field presence bits.
const (
	geomX = 1 << iota
	geomY
	geomWidth
	geomHeight

	geomAll = geomX | geomY | geomWidth | geomHeight
)

type configBuilder struct {
	cfg         *layout.Configuration
	hasLevel    bool
	hasMonitors bool
	hasIcons    bool
	line        int
	column      int
}

type monitorBuilder struct {
	id          string
	rec         layout.MonitorRecord
	hasID       bool
	hasName     bool
	hasGeometry bool
	geomFields  int
	geomLine    int
	geomColumn  int
	line        int
	column      int
}

type iconBuilder struct {
	id          string
	pos         layout.Position
	hasRow      bool
	hasCol      bool
	hasLastSeen bool
	line        int
	column      int
}

type parser struct {
	state      state
	hasConfigs bool
	configs    []*layout.Configuration
	cfg        *configBuilder
	mon        *monitorBuilder
	icon       *iconBuilder
}

// Parse reads a positions document. On any error no configurations are
// returned. The result is ordered Primary first.
func Parse(r io.Reader) ([]*layout.Configuration, error) {
	p := &parser{state: stateStreamStart}
	if err := scan(r, p.feed); err != nil {
		return nil, err
	}
	if p.state != stateDone {
		return nil, &ParseError{State: p.state.String(), Msg: "unexpected end of input"}
	}
	sort.SliceStable(p.configs, func(i, j int) bool {
		return p.configs[i].Level.Precedes(p.configs[j].Level)
	})
	return p.configs, nil
}

// ReadFile parses the positions document at path.
func ReadFile(path string) ([]*layout.Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}
	defer f.Close()

	cfgs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfgs, nil
}

func (p *parser) fail(ev event, format string, args ...any) error {
	return &ParseError{
		Line:   ev.line,
		Column: ev.column,
		State:  p.state.String(),
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (p *parser) failAt(line, column int, format string, args ...any) error {
	return &ParseError{
		Line:   line,
		Column: column,
		State:  p.state.String(),
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (p *parser) unexpected(ev event) error {
	if ev.kind == eventScalar {
		return p.fail(ev, "unexpected scalar %q", ev.value)
	}
	return p.fail(ev, "unexpected %s", ev.kind)
}

// feed is the transition function: it consumes one event in the current
// state and moves to the next one.
func (p *parser) feed(ev event) error {
	if ev.kind == eventAlias {
		return p.fail(ev, "aliases are not supported")
	}
	if ev.anchor != "" {
		return p.fail(ev, "anchors are not supported (&%s)", ev.anchor)
	}

	switch p.state {
	case stateStreamStart:
		if ev.kind != eventStreamStart {
			return p.unexpected(ev)
		}
		p.state = stateDocument

	case stateDocument:
		switch ev.kind {
		case eventMappingStart:
			p.state = stateTopKey
		case eventStreamEnd:
			p.state = stateDone
		default:
			return p.unexpected(ev)
		}

	case stateTopKey:
		switch ev.kind {
		case eventMappingEnd:
			p.state = stateDocumentEnd
		case eventScalar:
			if ev.value != keyConfigs {
				return p.fail(ev, "unknown key %q", ev.value)
			}
			if p.hasConfigs {
				return p.fail(ev, "duplicate key %q", ev.value)
			}
			p.hasConfigs = true
			p.state = stateConfigsValue
		default:
			return p.unexpected(ev)
		}

	case stateConfigsValue:
		if ev.kind != eventSequenceStart {
			return p.fail(ev, "%q must be a sequence", keyConfigs)
		}
		p.state = stateConfigList

	case stateConfigList:
		switch ev.kind {
		case eventMappingStart:
			p.cfg = &configBuilder{cfg: layout.New(layout.LevelPrimary), line: ev.line, column: ev.column}
			p.state = stateConfigKey
		case eventSequenceEnd:
			p.state = stateTopKey
		default:
			return p.unexpected(ev)
		}

	case stateConfigKey:
		return p.feedConfigKey(ev)

	case stateLevelValue:
		v, err := p.scalarInt(ev, keyLevel)
		if err != nil {
			return err
		}
		level := layout.Level(v)
		if !level.Valid() {
			return p.fail(ev, "invalid level %d", v)
		}
		p.cfg.cfg.Level = level
		p.state = stateConfigKey

	case stateMonitorsValue:
		if ev.kind != eventSequenceStart {
			return p.fail(ev, "%q must be a sequence", keyMonitors)
		}
		p.state = stateMonitorList

	case stateMonitorList:
		switch ev.kind {
		case eventMappingStart:
			p.mon = &monitorBuilder{line: ev.line, column: ev.column}
			p.state = stateMonitorKey
		case eventSequenceEnd:
			p.state = stateConfigKey
		default:
			return p.unexpected(ev)
		}

	case stateMonitorKey:
		return p.feedMonitorKey(ev)

	case stateMonitorIDValue:
		s, err := p.scalarString(ev, keyID)
		if err != nil {
			return err
		}
		if s == "" {
			return p.fail(ev, "empty monitor %q", keyID)
		}
		p.mon.id = s
		p.state = stateMonitorKey

	case stateMonitorNameValue:
		s, err := p.scalarString(ev, keyDisplayName)
		if err != nil {
			return err
		}
		p.mon.rec.DisplayName = s
		p.state = stateMonitorKey

	case stateGeometryValue:
		if ev.kind != eventMappingStart {
			return p.fail(ev, "%q must be a mapping", keyGeometry)
		}
		p.mon.geomLine, p.mon.geomColumn = ev.line, ev.column
		p.state = stateGeometryKey

	case stateGeometryKey:
		return p.feedGeometryKey(ev)

	case stateGeometryXValue, stateGeometryYValue, stateGeometryWidthValue, stateGeometryHeightValue:
		return p.feedGeometryValue(ev)

	case stateIconsValue:
		if ev.kind != eventMappingStart {
			return p.fail(ev, "%q must be a mapping", keyIcons)
		}
		p.state = stateIconsKey

	case stateIconsKey:
		switch ev.kind {
		case eventMappingEnd:
			p.state = stateConfigKey
		case eventScalar:
			id, err := p.scalarString(ev, "icon id")
			if err != nil {
				return err
			}
			if id == "" {
				return p.fail(ev, "empty icon id")
			}
			if _, dup := p.cfg.cfg.Icons[id]; dup {
				return p.fail(ev, "duplicate icon %q", id)
			}
			p.icon = &iconBuilder{id: id, line: ev.line, column: ev.column}
			p.state = stateIconValue
		default:
			return p.unexpected(ev)
		}

	case stateIconValue:
		if ev.kind != eventMappingStart {
			return p.fail(ev, "icon %q must be a mapping", p.icon.id)
		}
		p.state = stateIconKey

	case stateIconKey:
		return p.feedIconKey(ev)

	case stateIconRowValue:
		v, err := p.scalarUint(ev, keyRow)
		if err != nil {
			return err
		}
		p.icon.pos.Row = v
		p.state = stateIconKey

	case stateIconColValue:
		v, err := p.scalarUint(ev, keyCol)
		if err != nil {
			return err
		}
		p.icon.pos.Col = v
		p.state = stateIconKey

	case stateIconLastSeenValue:
		v, err := p.scalarUint64(ev, keyLastSeen)
		if err != nil {
			return err
		}
		p.icon.pos.LastSeen = v
		p.state = stateIconKey

	case stateDocumentEnd:
		if ev.kind != eventStreamEnd {
			return p.unexpected(ev)
		}
		p.state = stateDone

	case stateDone:
		return p.unexpected(ev)

	default:
		return p.fail(ev, "internal error: unhandled state")
	}
	return nil
}

func (p *parser) feedConfigKey(ev event) error {
	b := p.cfg
	switch ev.kind {
	case eventMappingEnd:
		if !b.hasLevel {
			return p.failAt(b.line, b.column, "config is missing %q", keyLevel)
		}
		p.configs = append(p.configs, b.cfg)
		p.cfg = nil
		p.state = stateConfigList
		return nil
	case eventScalar:
	default:
		return p.unexpected(ev)
	}

	switch ev.value {
	case keyLevel:
		if b.hasLevel {
			return p.fail(ev, "duplicate key %q", ev.value)
		}
		b.hasLevel = true
		p.state = stateLevelValue
	case keyMonitors:
		if b.hasMonitors {
			return p.fail(ev, "duplicate key %q", ev.value)
		}
		b.hasMonitors = true
		p.state = stateMonitorsValue
	case keyIcons:
		if b.hasIcons {
			return p.fail(ev, "duplicate key %q", ev.value)
		}
		b.hasIcons = true
		p.state = stateIconsValue
	default:
		return p.fail(ev, "unknown key %q", ev.value)
	}
	return nil
}

func (p *parser) feedMonitorKey(ev event) error {
	m := p.mon
	switch ev.kind {
	case eventMappingEnd:
		return p.closeMonitor()
	case eventScalar:
	default:
		return p.unexpected(ev)
	}

	switch ev.value {
	case keyID:
		if m.hasID {
			return p.fail(ev, "duplicate key %q", ev.value)
		}
		m.hasID = true
		p.state = stateMonitorIDValue
	case keyDisplayName:
		if m.hasName {
			return p.fail(ev, "duplicate key %q", ev.value)
		}
		m.hasName = true
		p.state = stateMonitorNameValue
	case keyGeometry:
		if m.hasGeometry {
			return p.fail(ev, "duplicate key %q", ev.value)
		}
		m.hasGeometry = true
		p.state = stateGeometryValue
	default:
		return p.fail(ev, "unknown key %q", ev.value)
	}
	return nil
}

func (p *parser) closeMonitor() error {
	m := p.mon
	switch {
	case !m.hasID:
		return p.failAt(m.line, m.column, "monitor is missing %q", keyID)
	case m.rec.DisplayName == "":
		return p.failAt(m.line, m.column, "monitor %q is missing %q", m.id, keyDisplayName)
	case !m.hasGeometry:
		return p.failAt(m.line, m.column, "monitor %q is missing %q", m.id, keyGeometry)
	}
	if _, dup := p.cfg.cfg.Monitors[m.id]; dup {
		return p.failAt(m.line, m.column, "duplicate monitor %q", m.id)
	}
	p.cfg.cfg.Monitors[m.id] = m.rec
	p.mon = nil
	p.state = stateMonitorList
	return nil
}

func (p *parser) feedGeometryKey(ev event) error {
	m := p.mon
	switch ev.kind {
	case eventMappingEnd:
		if m.geomFields != geomAll {
			for _, f := range []struct {
				bit  int
				name string
			}{{geomX, keyX}, {geomY, keyY}, {geomWidth, keyWidth}, {geomHeight, keyHeight}} {
				if m.geomFields&f.bit == 0 {
					return p.failAt(m.geomLine, m.geomColumn, "geometry is missing %q", f.name)
				}
			}
		}
		p.state = stateMonitorKey
		return nil
	case eventScalar:
	default:
		return p.unexpected(ev)
	}

	var bit int
	var next state
	switch ev.value {
	case keyX:
		bit, next = geomX, stateGeometryXValue
	case keyY:
		bit, next = geomY, stateGeometryYValue
	case keyWidth:
		bit, next = geomWidth, stateGeometryWidthValue
	case keyHeight:
		bit, next = geomHeight, stateGeometryHeightValue
	default:
		return p.fail(ev, "unknown key %q", ev.value)
	}
	if m.geomFields&bit != 0 {
		return p.fail(ev, "duplicate key %q", ev.value)
	}
	m.geomFields |= bit
	p.state = next
	return nil
}

func (p *parser) feedGeometryValue(ev event) error {
	g := &p.mon.rec.Geometry
	var field string
	var dst *int
	switch p.state {
	case stateGeometryXValue:
		field, dst = keyX, &g.X
	case stateGeometryYValue:
		field, dst = keyY, &g.Y
	case stateGeometryWidthValue:
		field, dst = keyWidth, &g.Width
	default:
		field, dst = keyHeight, &g.Height
	}
	v, err := p.scalarInt(ev, field)
	if err != nil {
		return err
	}
	*dst = v
	p.state = stateGeometryKey
	return nil
}

func (p *parser) feedIconKey(ev event) error {
	ic := p.icon
	switch ev.kind {
	case eventMappingEnd:
		switch {
		case !ic.hasRow:
			return p.failAt(ic.line, ic.column, "icon %q is missing %q", ic.id, keyRow)
		case !ic.hasCol:
			return p.failAt(ic.line, ic.column, "icon %q is missing %q", ic.id, keyCol)
		}
		p.cfg.cfg.Icons[ic.id] = ic.pos
		p.icon = nil
		p.state = stateIconsKey
		return nil
	case eventScalar:
	default:
		return p.unexpected(ev)
	}

	switch ev.value {
	case keyRow:
		if ic.hasRow {
			return p.fail(ev, "duplicate key %q", ev.value)
		}
		ic.hasRow = true
		p.state = stateIconRowValue
	case keyCol:
		if ic.hasCol {
			return p.fail(ev, "duplicate key %q", ev.value)
		}
		ic.hasCol = true
		p.state = stateIconColValue
	case keyLastSeen:
		if ic.hasLastSeen {
			return p.fail(ev, "duplicate key %q", ev.value)
		}
		ic.hasLastSeen = true
		p.state = stateIconLastSeenValue
	default:
		return p.fail(ev, "unknown key %q", ev.value)
	}
	return nil
}

func (p *parser) scalarString(ev event, field string) (string, error) {
	if ev.kind != eventScalar {
		return "", p.fail(ev, "expected string for %q, got %s", field, ev.kind)
	}
	if ev.tag == "!!null" {
		return "", nil
	}
	return ev.value, nil
}

// Numbers are read from the scalar text whatever the tag, so a quoted
// "3" is accepted as 3.
func (p *parser) scalarInt(ev event, field string) (int, error) {
	if ev.kind != eventScalar {
		return 0, p.fail(ev, "expected integer for %q, got %s", field, ev.kind)
	}
	v, err := strconv.ParseInt(ev.value, 10, strconv.IntSize)
	if err != nil {
		return 0, p.fail(ev, "invalid value %q for %q: expected integer", ev.value, field)
	}
	return int(v), nil
}

func (p *parser) scalarUint(ev event, field string) (uint, error) {
	if ev.kind != eventScalar {
		return 0, p.fail(ev, "expected unsigned integer for %q, got %s", field, ev.kind)
	}
	v, err := strconv.ParseUint(ev.value, 10, strconv.IntSize)
	if err != nil {
		return 0, p.fail(ev, "invalid value %q for %q: expected unsigned integer", ev.value, field)
	}
	return uint(v), nil
}

func (p *parser) scalarUint64(ev event, field string) (uint64, error) {
	if ev.kind != eventScalar {
		return 0, p.fail(ev, "expected unsigned integer for %q, got %s", field, ev.kind)
	}
	v, err := strconv.ParseUint(ev.value, 10, 64)
	if err != nil {
		return 0, p.fail(ev, "invalid value %q for %q: expected unsigned integer", ev.value, field)
	}
	return v, nil
}
