package fit

import (
	"gonum.org/v1/gonum/graph"

	"github.com/n8l/dungeonmap/pkg/grid"
)

// lattice numbers the cells of a bounded rectangle so they can serve as
// gonum node IDs.
type lattice struct {
	box grid.Rect
}

func (l lattice) id(p grid.Point) int64 {
	return int64(p.Y-l.box.Y)*int64(l.box.Width) + int64(p.X-l.box.X)
}

func (l lattice) point(id int64) grid.Point {
	w := int64(l.box.Width)
	return grid.Point{X: l.box.X + int(id%w), Y: l.box.Y + int(id/w)}
}

func (l lattice) points(nodes []graph.Node) []grid.Point {
	out := make([]grid.Point, len(nodes))
	for i, n := range nodes {
		out[i] = l.point(n.ID())
	}
	return out
}

// nearRoom reports whether any orthogonal neighbour of p is a ROOM cell.
func nearRoom(g *grid.Grid, p grid.Point) bool {
	for _, n := range grid.Neighbours4(p) {
		if g.TypeAt(n) == grid.CellRoom {
			return true
		}
	}
	return false
}
