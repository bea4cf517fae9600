package fit

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/n8l/dungeonmap/pkg/dungeon"
	"github.com/n8l/dungeonmap/pkg/generator"
	"github.com/n8l/dungeonmap/pkg/grid"
)

func twoRooms() *dungeon.Dungeon {
	d := dungeon.New("two", 1)
	a := d.NewRoom(dungeon.ShapeStarter, "20' x 20'")
	b := d.NewRoom(dungeon.ShapeSquare, "10' x 10'")
	_ = d.AddCorridor(dungeon.Corridor{From: a.ID, To: b.ID, LengthFeet: 30, Description: "To Chamber"})
	_ = d.AddCorridor(dungeon.Corridor{From: b.ID, LengthFeet: 10, Description: "Dead end here"})
	return d
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr error
	}{
		{"", AlgorithmBFS, nil},
		{"bfs", AlgorithmBFS, nil},
		{"astar", AlgorithmAStar, nil},
		{"dijkstra", "", ErrUnknownFitter},
	}
	for _, tt := range tests {
		f, err := New(tt.name, Options{})
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("New(%q) error = %v, want %v", tt.name, err, tt.wantErr)
			continue
		}
		if err == nil && f.Name() != tt.want {
			t.Errorf("New(%q).Name() = %q, want %q", tt.name, f.Name(), tt.want)
		}
	}
	if got := Names(); !slices.Equal(got, []string{"astar", "bfs"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestBFSFit(t *testing.T) {
	res, err := NewBFS(Options{}).Fit(context.Background(), twoRooms())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	wantPlacements := []Placement{
		{RoomID: 1, Rect: grid.Rect{X: 0, Y: 0, Width: 20, Height: 20}},
		{RoomID: 2, Rect: grid.Rect{X: 22, Y: 0, Width: 10, Height: 10}},
	}
	if !slices.Equal(res.Placements, wantPlacements) {
		t.Errorf("Placements = %v, want %v", res.Placements, wantPlacements)
	}

	// The corridor leaves (0,0) upwards, runs along y=-1 and drops into
	// (22,0): 23 corridor cells between the two room corners.
	if n := res.Grid.Count(grid.CellCorridor); n != 23 {
		t.Errorf("corridor cells = %d, want 23", n)
	}
	if want := (grid.Rect{X: 0, Y: -1, Width: 32, Height: 21}); res.Bounds != want {
		t.Errorf("Bounds = %v, want %v", res.Bounds, want)
	}
	if res.Stats.RoomsPlaced != 2 || res.Stats.CorridorsRouted != 1 || res.Stats.CorridorsSkipped != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.Fitter != AlgorithmBFS {
		t.Errorf("Fitter = %q", res.Fitter)
	}
}

func TestBFSRowWrap(t *testing.T) {
	d := dungeon.New("wrap", 0)
	d.NewRoom(dungeon.ShapeStarter, "20' x 20'")
	d.NewRoom(dungeon.ShapeSquare, "40' x 40'")
	d.NewRoom(dungeon.ShapeSquare, "20' x 20'")
	d.NewRoom(dungeon.ShapeCircular, "30' diameter")

	res, err := NewBFS(Options{}).Fit(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	want := []grid.Rect{
		{X: 0, Y: 0, Width: 20, Height: 20},
		{X: 22, Y: 0, Width: 40, Height: 40},
		{X: 0, Y: 43, Width: 20, Height: 20},
		{X: 22, Y: 43, Width: 5, Height: 5},
	}
	for i, p := range res.Placements {
		if p.Rect != want[i] {
			t.Errorf("room %d placed at %v, want %v", p.RoomID, p.Rect, want[i])
		}
	}
}

func TestBFSPath(t *testing.T) {
	g := grid.New()
	box := grid.Rect{X: -5, Y: -5, Width: 20, Height: 20}

	p := bfsPath(g, box, grid.Pt(0, 0), grid.Pt(3, 0))
	if len(p) != 4 || p[0] != grid.Pt(0, 0) || p[3] != grid.Pt(3, 0) {
		t.Errorf("open-floor path = %v", p)
	}
	if got := bfsPath(g, box, grid.Pt(1, 1), grid.Pt(1, 1)); len(got) != 1 {
		t.Errorf("trivial path = %v", got)
	}
	if got := bfsPath(g, box, grid.Pt(0, 0), grid.Pt(50, 0)); got != nil {
		t.Errorf("path to a goal outside the search box = %v", got)
	}

	// A start cell walled in by another room has no way out.
	g.FillRoom(1, 1, 1, 1, 1)
	g.FillRoom(2, 0, 0, 3, 1)
	g.FillRoom(2, 0, 2, 3, 1)
	g.FillRoom(2, 0, 1, 1, 1)
	g.FillRoom(2, 2, 1, 1, 1)
	if got := bfsPath(g, box, grid.Pt(1, 1), grid.Pt(8, 8)); got != nil {
		t.Errorf("walled-in start found path %v", got)
	}
}

func TestAStarPathAvoidsRooms(t *testing.T) {
	g := grid.New()
	g.FillRoom(1, 1, 1, 2, 1)

	p := astarPath(g, grid.Pt(0, 0), grid.Pt(3, 0), DefaultSearchMargin)
	if len(p) == 0 {
		t.Fatal("no path found")
	}
	if p[0] != grid.Pt(0, 0) || p[len(p)-1] != grid.Pt(3, 0) {
		t.Errorf("path endpoints = %v, %v", p[0], p[len(p)-1])
	}
	if slices.Contains(p, grid.Pt(1, 0)) || slices.Contains(p, grid.Pt(2, 0)) {
		t.Errorf("path %v hugs the room wall instead of the cheaper detour", p)
	}
	if len(p) != 6 {
		t.Errorf("path length = %d, want 6", len(p))
	}
}

func TestAStarPathBlocked(t *testing.T) {
	g := grid.New()
	// Goal enclosed by a ring of room cells.
	for _, c := range grid.Neighbours4(grid.Pt(10, 10)) {
		g.FillRoom(9, c.X, c.Y, 1, 1)
	}
	if p := astarPath(g, grid.Pt(0, 0), grid.Pt(10, 10), 2); p != nil {
		t.Errorf("path into enclosed goal = %v", p)
	}
}

func TestAStarFitDeterministic(t *testing.T) {
	d, err := generator.New(generator.Options{Seed: 99, ID: "a"}).Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewAStar(Options{Seed: 5}).Fit(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewAStar(Options{Seed: 5}).Fit(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.Grid.Cells(), b.Grid.Cells()) {
		t.Error("same seed produced different layouts")
	}
	if a.Bounds != a.Grid.Bounds() {
		t.Errorf("Bounds = %v, grid says %v", a.Bounds, a.Grid.Bounds())
	}
}

func TestAStarClampsRooms(t *testing.T) {
	d := dungeon.New("big", 0)
	d.NewRoom(dungeon.ShapeRectangular, "40' x 60'")
	res, err := NewAStar(Options{Seed: 1, AStarOffsetRange: -1}).Fit(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if want := (grid.Rect{Width: 30, Height: 30}); res.Placements[0].Rect != want {
		t.Errorf("placement = %v, want %v", res.Placements[0].Rect, want)
	}
}

func TestAStarStub(t *testing.T) {
	f := NewAStar(Options{Seed: 3})
	g := grid.New()
	g.FillRoom(1, 0, 0, 4, 4)
	for range 50 {
		from := grid.Pt(0, 0)
		end := f.stub(g, from)
		if d := from.Manhattan(end); d < 1 || d > stubMax {
			t.Fatalf("stub end %v is %d cells from %v", end, d, from)
		}
	}
}

func TestFitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, name := range Names() {
		f, _ := New(name, Options{Seed: 1})
		if _, err := f.Fit(ctx, twoRooms()); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: Fit() error = %v, want context.Canceled", name, err)
		}
	}
}

func TestFitGeneratedDungeons(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		d, err := generator.New(generator.Options{Seed: seed}).Generate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		for _, name := range Names() {
			f, _ := New(name, Options{Seed: seed})
			res, err := f.Fit(context.Background(), d)
			if err != nil {
				t.Fatalf("seed %d %s: %v", seed, name, err)
			}
			s := res.Stats
			if got := s.CorridorsRouted + s.CorridorsSkipped + s.CorridorsFailed; got != d.CorridorCount() {
				t.Errorf("seed %d %s: stats cover %d of %d corridors", seed, name, got, d.CorridorCount())
			}
			if name == AlgorithmBFS && s.CorridorsFailed != 0 {
				t.Errorf("seed %d: BFS failed to route %d corridors", seed, s.CorridorsFailed)
			}
		}
	}
}
