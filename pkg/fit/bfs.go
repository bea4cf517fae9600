package fit

import (
	"context"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/n8l/dungeonmap/pkg/dungeon"
	"github.com/n8l/dungeonmap/pkg/grid"
)

// BFS places rooms in rows without overlap and routes corridors with a
// breadth-first search.
type BFS struct {
	opts Options
}

// NewBFS returns a BFS fitter.
func NewBFS(opts Options) *BFS {
	opts.SetDefaults()
	return &BFS{opts: opts}
}

// Name implements Fitter.
func (f *BFS) Name() string { return AlgorithmBFS }

// Fit implements Fitter.
func (f *BFS) Fit(ctx context.Context, d *dungeon.Dungeon) (*Result, error) {
	r := newRun(AlgorithmBFS, f.opts.Logger, d)
	f.placeRooms(r, d.Rooms)

	search := r.grid.Bounds().Grow(f.opts.SearchMargin)
	for i, c := range d.Corridors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		from, to, ok := r.endpoints(c)
		var path []grid.Point
		if ok {
			path = bfsPath(r.grid, search, from, to)
		}
		r.corridorDone(ctx, i, c, path, ok)
	}
	return r.finish(), nil
}

// placeRooms lays rooms left to right, two cells apart, starting a new row
// three cells below the tallest room once the row would pass the row width.
func (f *BFS) placeRooms(r *run, rooms []dungeon.Room) {
	x, y, tallest := 0, 0, 0
	for _, room := range rooms {
		w, h := room.Size()
		if x+w > f.opts.BFSRowWidth {
			x = 0
			y += tallest + bfsRowGap
			tallest = 0
		}
		r.grid.FillRoom(room.ID, x, y, w, h)
		r.placed(room.ID, grid.Rect{X: x, Y: y, Width: w, Height: h})
		x += w + bfsRoomGap
		tallest = max(tallest, h)
	}
}

// bfsPath finds a shortest 4-connected path from start to goal inside box.
// Missing, EMPTY and CORRIDOR cells are open; ROOM cells are open only at
// the goal. The path includes both ends and is nil when the goal cannot be
// reached.
func bfsPath(g *grid.Grid, box grid.Rect, start, goal grid.Point) []grid.Point {
	if start == goal {
		return []grid.Point{start}
	}
	if !box.Contains(start) || !box.Contains(goal) {
		return nil
	}
	og := openGrid{lattice: lattice{box: box}, grid: g, goal: goal}
	parent := make(map[int64]int64)
	startID, goalID := og.id(start), og.id(goal)

	bf := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			to := e.To().ID()
			if _, seen := parent[to]; !seen && to != startID {
				parent[to] = e.From().ID()
			}
			return true
		},
	}
	found := bf.Walk(og, simple.Node(startID), func(n graph.Node, _ int) bool {
		return n.ID() == goalID
	})
	if found == nil {
		return nil
	}

	path := []grid.Point{goal}
	for id := goalID; id != startID; {
		id = parent[id]
		path = append(path, og.point(id))
	}
	slices.Reverse(path)
	return path
}

// openGrid exposes the passable cells of a grid as an implicit gonum graph.
type openGrid struct {
	lattice
	grid *grid.Grid
	goal grid.Point
}

func (o openGrid) From(id int64) graph.Nodes {
	p := o.point(id)
	var out []graph.Node
	for _, n := range grid.Neighbours4(p) {
		if !o.box.Contains(n) {
			continue
		}
		if o.grid.TypeAt(n) == grid.CellRoom && n != o.goal {
			continue
		}
		out = append(out, simple.Node(o.id(n)))
	}
	return iterator.NewOrderedNodes(out)
}

func (o openGrid) Edge(uid, vid int64) graph.Edge {
	return simple.Edge{F: simple.Node(uid), T: simple.Node(vid)}
}
