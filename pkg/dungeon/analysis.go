package dungeon

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Stats summarizes the shape of a dungeon graph.
type Stats struct {
	Rooms      int `json:"rooms"`
	Corridors  int `json:"corridors"`
	DeadEnds   int `json:"dead_ends"`  // corridors with no target room
	Components int `json:"components"` // connected components of the room graph
	Reachable  int `json:"reachable"`  // rooms reachable from the starter, starter included
	TotalFeet  int `json:"total_feet"`

	// FarthestRoom is the reachable room with the greatest corridor distance
	// from the starter. Ties go to the lowest ID.
	FarthestRoom int `json:"farthest_room"`
	FarthestFeet int `json:"farthest_feet"`
}

// Starter returns the first room with [ShapeStarter], or the first room when
// no starter exists.
func (d *Dungeon) Starter() (Room, bool) {
	for _, r := range d.Rooms {
		if r.Shape == ShapeStarter {
			return r, true
		}
	}
	if len(d.Rooms) == 0 {
		return Room{}, false
	}
	return d.Rooms[0], true
}

// Graph builds an undirected gonum graph with one node per room and one edge
// per corridor that connects two distinct rooms. Parallel corridors keep the
// shortest length.
func (d *Dungeon) Graph() *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, r := range d.Rooms {
		if g.Node(int64(r.ID)) == nil {
			g.AddNode(simple.Node(r.ID))
		}
	}
	for _, c := range d.Corridors {
		if !c.Connects() || c.From == c.To {
			continue
		}
		if g.Node(int64(c.From)) == nil || g.Node(int64(c.To)) == nil {
			continue
		}
		w := float64(c.LengthFeet)
		if existing, ok := g.Weight(int64(c.From), int64(c.To)); ok && existing <= w {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(c.From), simple.Node(c.To), w))
	}
	return g
}

// Stats computes counts, connectivity and distances over the room graph.
func (d *Dungeon) Stats() (Stats, error) {
	s := Stats{Rooms: len(d.Rooms), Corridors: len(d.Corridors)}
	for _, c := range d.Corridors {
		s.TotalFeet += c.LengthFeet
		if c.To == NoRoom {
			s.DeadEnds++
		}
	}

	start, ok := d.Starter()
	if !ok {
		return s, ErrNoStarterRoom
	}

	g := d.Graph()
	s.Components = len(topo.ConnectedComponents(g))

	shortest := path.DijkstraFrom(simple.Node(start.ID), g)
	for _, r := range d.Rooms {
		w := shortest.WeightTo(int64(r.ID))
		if math.IsInf(w, 1) {
			continue
		}
		s.Reachable++
		feet := int(w)
		if s.FarthestRoom == 0 || feet > s.FarthestFeet || (feet == s.FarthestFeet && r.ID < s.FarthestRoom) {
			s.FarthestRoom, s.FarthestFeet = r.ID, feet
		}
	}
	return s, nil
}

// PathBetween returns the room IDs on the shortest corridor route from one
// room to another and its length in feet. ok is false when no route exists.
func (d *Dungeon) PathBetween(from, to int) (ids []int, feet int, ok bool) {
	g := d.Graph()
	if g.Node(int64(from)) == nil || g.Node(int64(to)) == nil {
		return nil, 0, false
	}
	shortest := path.DijkstraFrom(simple.Node(from), g)
	nodes, w := shortest.To(int64(to))
	if len(nodes) == 0 {
		return nil, 0, false
	}
	return nodeIDs(nodes), int(w), true
}

func nodeIDs(nodes []graph.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	return ids
}
