// Package grid approximates tabletop distances on a square grid.
//
// Diagonal steps cost the same as orthogonal steps, elevation is ignored,
// and positions are snapped up to whole cells.
package grid

import "math"

// DefaultSize is the pixel width of one grid cell on a standard scene.
const DefaultSize = 100

// DefaultDistance is the number of feet one grid cell represents.
const DefaultDistance = 5

// Position is a pixel coordinate on the scene canvas.
type Position struct {
	X float64
	Y float64
}

// Grid describes the scene's square grid.
type Grid struct {
	// Size is the pixel width of one cell.
	Size float64
	// Distance is the linear distance, in feet, of one cell.
	Distance int
}

// Default returns the standard 100px / 5ft grid.
func Default() Grid {
	return Grid{Size: DefaultSize, Distance: DefaultDistance}
}

// Between returns the distance in feet between a and b.
// A nil position is treated as the origin.
//
// Precondition: g.Size > 0.
// Postcondition: Returns a non-negative multiple of g.Distance.
func (g Grid) Between(a, b *Position) int {
	ax, ay := coords(a)
	bx, by := coords(b)
	dx := int(math.Ceil(math.Abs(bx-ax) / g.Size))
	dy := int(math.Ceil(math.Abs(by-ay) / g.Size))
	// min(dx,dy) diagonal steps plus |dy-dx| straight steps, each costing one cell.
	return max(dx, dy) * g.Distance
}

// Adjacent reports whether a and b are at most one cell apart.
func (g Grid) Adjacent(a, b *Position) bool {
	return g.Between(a, b) <= g.Distance
}

// Within reports whether a and b are at most feet apart.
func (g Grid) Within(a, b *Position, feet int) bool {
	return g.Between(a, b) <= feet
}

func coords(p *Position) (float64, float64) {
	if p == nil {
		return 0, 0
	}
	return p.X, p.Y
}
