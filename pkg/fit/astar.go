package fit

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/n8l/dungeonmap/pkg/dungeon"
	"github.com/n8l/dungeonmap/pkg/grid"
)

// AStar places rooms with random jitter and routes corridors with A* over a
// weighted grid graph. Rooms are clamped to AStarMaxDimension on each side
// and may overlap; a later room overwrites an earlier one.
type AStar struct {
	opts Options
	rng  *rand.Rand
}

// NewAStar returns an A* fitter. The same seed yields the same layout for
// the same dungeon on the first Fit call.
func NewAStar(opts Options) *AStar {
	opts.SetDefaults()
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &AStar{opts: opts, rng: rand.New(rand.NewPCG(seed, seed^0xda942042e4dd58b5))}
}

// Name implements Fitter.
func (f *AStar) Name() string { return AlgorithmAStar }

// Fit implements Fitter. An AStar value is not safe for concurrent Fit calls.
func (f *AStar) Fit(ctx context.Context, d *dungeon.Dungeon) (*Result, error) {
	r := newRun(AlgorithmAStar, f.opts.Logger, d)
	f.placeRooms(r, d.Rooms)

	for i, c := range d.Corridors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		from, to, ok := r.endpoints(c)
		var p []grid.Point
		if ok {
			start := f.stub(r.grid, from)
			goal := f.stub(r.grid, to)
			p = astarPath(r.grid, start, goal, f.opts.SearchMargin)
		}
		r.corridorDone(ctx, i, c, p, ok)
	}
	return r.finish(), nil
}

// placeRooms advances a cursor by width+5 per room, jittering each room by
// up to AStarOffsetRange cells, and wraps once the cursor passes the row
// width.
func (f *AStar) placeRooms(r *run, rooms []dungeon.Room) {
	x, y, tallest := 0, 0, 0
	maxDim := f.opts.AStarMaxDimension
	for _, room := range rooms {
		w, h := room.Size()
		w, h = min(w, maxDim), min(h, maxDim)

		px, py := x+f.jitter(), y+f.jitter()
		r.grid.FillRoom(room.ID, px, py, w, h)
		r.placed(room.ID, grid.Rect{X: px, Y: py, Width: w, Height: h})

		x += w + astarRoomGap
		tallest = max(tallest, h)
		if x > f.opts.AStarRowWidth {
			x = 0
			y += tallest + astarRowGap
			tallest = 0
		}
	}
}

func (f *AStar) jitter() int {
	n := f.opts.AStarOffsetRange
	if n <= 0 {
		return 0
	}
	return f.rng.IntN(2*n+1) - n
}

// stub digs 1 to 3 corridor cells from a boundary cell in a random
// direction and returns the last cell reached. The first step may enter the
// room itself; later steps stop at any room cell.
func (f *AStar) stub(g *grid.Grid, from grid.Point) grid.Point {
	length := stubMin + f.rng.IntN(stubMax-stubMin+1)
	dir := grid.Directions4[f.rng.IntN(len(grid.Directions4))]

	cur := from
	for i := range length {
		next := cur.Add(dir)
		if g.TypeAt(next) == grid.CellRoom {
			if i > 0 {
				break
			}
		} else {
			g.MarkCorridor(next)
		}
		cur = next
	}
	return cur
}

// astarPath finds the cheapest path from start to goal on a weighted grid
// graph spanning the two points plus margin. Entering a cell next to a room
// costs 5, any other cell 1. ROOM cells are closed except start and goal.
func astarPath(g *grid.Grid, start, goal grid.Point, margin int) []grid.Point {
	if start == goal {
		return []grid.Point{start}
	}
	cg := costGrid{
		lattice: lattice{box: grid.RectAround(start, goal).Grow(margin)},
		grid:    g,
		start:   start,
		goal:    goal,
	}
	manhattan := func(a, b graph.Node) float64 {
		return float64(cg.point(a.ID()).Manhattan(cg.point(b.ID())))
	}
	shortest, _ := path.AStar(simple.Node(cg.id(start)), simple.Node(cg.id(goal)), cg, manhattan)
	route, _ := shortest.To(cg.id(goal))
	if len(route) == 0 {
		return nil
	}
	return cg.points(route)
}

// costGrid exposes the open cells of a grid as an implicit weighted graph.
// Neighbours are returned in a fixed order so equal-cost paths resolve the
// same way on every run.
type costGrid struct {
	lattice
	grid        *grid.Grid
	start, goal grid.Point
}

func (c costGrid) open(p grid.Point) bool {
	if !c.box.Contains(p) {
		return false
	}
	return p == c.start || p == c.goal || c.grid.TypeAt(p) != grid.CellRoom
}

func (c costGrid) From(id int64) graph.Nodes {
	var out []graph.Node
	for _, n := range grid.Neighbours4(c.point(id)) {
		if c.open(n) {
			out = append(out, simple.Node(c.id(n)))
		}
	}
	return iterator.NewOrderedNodes(out)
}

func (c costGrid) Edge(uid, vid int64) graph.Edge {
	return c.WeightedEdge(uid, vid)
}

func (c costGrid) WeightedEdge(uid, vid int64) graph.WeightedEdge {
	w, ok := c.Weight(uid, vid)
	if !ok || uid == vid {
		return nil
	}
	return simple.WeightedEdge{F: simple.Node(uid), T: simple.Node(vid), W: w}
}

func (c costGrid) Weight(xid, yid int64) (w float64, ok bool) {
	if xid == yid {
		return 0, true
	}
	x, y := c.point(xid), c.point(yid)
	if x.Manhattan(y) != 1 || !c.open(x) || !c.open(y) {
		return math.Inf(1), false
	}
	if nearRoom(c.grid, y) {
		return nearRoomCost, true
	}
	return openFloorCost, true
}
