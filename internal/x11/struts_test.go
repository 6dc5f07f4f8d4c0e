package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/deskgrid/internal/layout"
)

func TestInsets_TopPanelOnlyAffectsCoveredMonitor(t *testing.T) {
	left := layout.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := layout.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}
	// 30px panel across the left monitor only.
	panel := &ewmh.WmStrutPartial{Top: 30, TopStartX: 0, TopEndX: 1919}

	var acc insets
	acc.add(left, 3200, 1080, panel)
	if got := acc.apply(left); got != (layout.Rect{X: 0, Y: 30, Width: 1920, Height: 1050}) {
		t.Fatalf("unexpected left workarea %v", got)
	}

	acc = insets{}
	acc.add(right, 3200, 1080, panel)
	if got := acc.apply(right); got != right {
		t.Fatalf("expected right monitor untouched, got %v", got)
	}
}

func TestInsets_BottomAndSideStruts(t *testing.T) {
	mon := layout.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	var acc insets
	acc.add(mon, 1920, 1080, &ewmh.WmStrutPartial{Bottom: 40, BottomStartX: 0, BottomEndX: 1919})
	acc.add(mon, 1920, 1080, fullStrut(&ewmh.WmStrut{Left: 64}, 1920, 1080))

	want := layout.Rect{X: 64, Y: 0, Width: 1856, Height: 1040}
	if got := acc.apply(mon); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestIntersect(t *testing.T) {
	a := layout.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	if got, ok := intersect(a, layout.Rect{X: 50, Y: 60, Width: 100, Height: 100}); !ok || got != (layout.Rect{X: 50, Y: 60, Width: 50, Height: 40}) {
		t.Fatalf("unexpected intersection %v %v", got, ok)
	}
	if _, ok := intersect(a, layout.Rect{X: 100, Y: 0, Width: 10, Height: 10}); ok {
		t.Fatalf("touching rects must not intersect")
	}
}
