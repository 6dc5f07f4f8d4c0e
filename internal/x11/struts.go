package x11

import (
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/deskgrid/internal/layout"
)

type insets struct {
	left   int
	right  int
	top    int
	bottom int
}

func fullStrut(s *ewmh.WmStrut, rootWidth, rootHeight int) *ewmh.WmStrutPartial {
	return &ewmh.WmStrutPartial{
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		LeftEndY:   uint(max(rootHeight-1, 0)),
		RightEndY:  uint(max(rootHeight-1, 0)),
		TopEndX:    uint(max(rootWidth-1, 0)),
		BottomEndX: uint(max(rootWidth-1, 0)),
	}
}

// add widens acc by the part of sp that overlaps mon. Struts are expressed
// relative to the root window edges.
func (acc *insets) add(mon layout.Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial) {
	if sp.Top > 0 {
		r := layout.Rect{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX) - int(sp.TopStartX) + 1, Height: int(sp.Top)}
		if isect, ok := intersect(mon, r); ok {
			acc.top = max(acc.top, isect.Height)
		}
	}
	if sp.Bottom > 0 {
		r := layout.Rect{X: int(sp.BottomStartX), Y: rootHeight - int(sp.Bottom), Width: int(sp.BottomEndX) - int(sp.BottomStartX) + 1, Height: int(sp.Bottom)}
		if isect, ok := intersect(mon, r); ok {
			acc.bottom = max(acc.bottom, isect.Height)
		}
	}
	if sp.Left > 0 {
		r := layout.Rect{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) - int(sp.LeftStartY) + 1}
		if isect, ok := intersect(mon, r); ok {
			acc.left = max(acc.left, isect.Width)
		}
	}
	if sp.Right > 0 {
		r := layout.Rect{X: rootWidth - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY) - int(sp.RightStartY) + 1}
		if isect, ok := intersect(mon, r); ok {
			acc.right = max(acc.right, isect.Width)
		}
	}
}

func (acc insets) apply(mon layout.Rect) layout.Rect {
	out := layout.Rect{
		X:      mon.X + acc.left,
		Y:      mon.Y + acc.top,
		Width:  mon.Width - acc.left - acc.right,
		Height: mon.Height - acc.top - acc.bottom,
	}
	out.Width = max(out.Width, 1)
	out.Height = max(out.Height, 1)
	return out
}

func intersect(a, b layout.Rect) (layout.Rect, bool) {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return layout.Rect{}, false
	}
	return layout.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}
