package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/deskgrid/internal/display"
	"github.com/1broseidon/deskgrid/internal/layout"
)

// Monitors retrieves all active monitors using XRandR. Workareas exclude
// dock struts, falling back to the EWMH workarea of the current desktop.
func (c *Connection) Monitors() ([]display.Monitor, error) {
	conn := c.XUtil.Conn()

	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(conn, c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []display.Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if outputInfo, err := randr.GetOutputInfo(conn, crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
		}

		geom := layout.Rect{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		monitors = append(monitors, display.Monitor{
			ID:          name,
			Description: name,
			Geometry:    geom,
			Workarea:    geom,
			Primary:     primary != 0 && slices.Contains(crtcInfo.Outputs, primary),
		})
	}

	// Without a RandR primary the first output stands in.
	if primary == 0 && len(monitors) > 0 {
		monitors[0].Primary = true
	}

	c.applyWorkareas(monitors)
	return monitors, nil
}

func (c *Connection) applyWorkareas(monitors []display.Monitor) {
	docks := c.dockStruts()
	rootWidth, rootHeight := c.rootSize()
	var desktop layout.Rect
	haveDesktop := false
	if len(docks) == 0 {
		desktop, haveDesktop = c.desktopWorkarea()
	}

	for i := range monitors {
		mon := &monitors[i]
		if len(docks) > 0 {
			var acc insets
			for _, sp := range docks {
				acc.add(mon.Geometry, rootWidth, rootHeight, sp)
			}
			mon.Workarea = acc.apply(mon.Geometry)
			continue
		}
		if haveDesktop {
			if wa, ok := intersect(mon.Geometry, desktop); ok {
				mon.Workarea = wa
			}
		}
	}
}

func (c *Connection) rootSize() (int, int) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, 0
	}
	return int(geom.Width), int(geom.Height)
}

// dockStruts collects the partial struts of every dock window.
func (c *Connection) dockStruts() []*ewmh.WmStrutPartial {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}
	rootWidth, rootHeight := c.rootSize()

	var out []*ewmh.WmStrutPartial
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil || !slices.Contains(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			out = append(out, sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			out = append(out, fullStrut(s, rootWidth, rootHeight))
		}
	}
	return out
}

func (c *Connection) desktopWorkarea() (layout.Rect, bool) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return layout.Rect{}, false
	}
	idx := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workArea) {
		idx = int(current)
	}
	wa := workArea[idx]
	return layout.Rect{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)}, true
}
