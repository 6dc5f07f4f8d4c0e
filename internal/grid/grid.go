package grid

import (
	"fmt"

	"github.com/1broseidon/deskgrid/internal/layout"
)

const (
	DefaultCellWidth  = 96
	DefaultCellHeight = 112
)

// Bounds is the inclusive range of grid cells usable on one monitor.
type Bounds struct {
	FirstRow int
	LastRow  int
	FirstCol int
	LastCol  int
}

// Contains reports whether row/col lies inside b.
func (b Bounds) Contains(row, col int) bool {
	return row >= b.FirstRow && row <= b.LastRow && col >= b.FirstCol && col <= b.LastCol
}

// Rows is the number of usable rows.
func (b Bounds) Rows() int { return b.LastRow - b.FirstRow + 1 }

// Cols is the number of usable columns.
func (b Bounds) Cols() int { return b.LastCol - b.FirstCol + 1 }

// Oracle computes which cells of the grid laid over total fall inside
// workarea.
type Oracle interface {
	Bounds(workarea, total layout.Rect) (Bounds, bool)
}

// Cells is a uniform grid anchored at the top-left of the total workarea.
type Cells struct {
	CellWidth  int
	CellHeight int
}

// Validate checks that the cell size is usable.
func (c Cells) Validate() error {
	if c.CellWidth <= 0 || c.CellHeight <= 0 {
		return fmt.Errorf("cell size must be positive, got %dx%d", c.CellWidth, c.CellHeight)
	}
	return nil
}

// Bounds returns the cells lying entirely inside workarea. It reports false
// when not even one cell fits.
func (c Cells) Bounds(workarea, total layout.Rect) (Bounds, bool) {
	if c.Validate() != nil {
		return Bounds{}, false
	}
	left := workarea.X - total.X
	top := workarea.Y - total.Y

	b := Bounds{
		FirstCol: ceilDiv(left, c.CellWidth),
		LastCol:  floorDiv(left+workarea.Width, c.CellWidth) - 1,
		FirstRow: ceilDiv(top, c.CellHeight),
		LastRow:  floorDiv(top+workarea.Height, c.CellHeight) - 1,
	}
	if b.LastCol < b.FirstCol || b.LastRow < b.FirstRow {
		return Bounds{}, false
	}
	return b, true
}

// Dimensions returns how many rows and columns fit in a workarea.
func (c Cells) Dimensions(workarea layout.Rect) (rows, cols int) {
	if c.Validate() != nil {
		return 0, 0
	}
	return workarea.Height / c.CellHeight, workarea.Width / c.CellWidth
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}
