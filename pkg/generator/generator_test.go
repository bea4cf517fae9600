package generator

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/n8l/dungeonmap/pkg/dungeon"
)

// scriptedDice replays fixed rolls. Once the script runs out every d20 is 18
// (dead end), which ends the expansion.
type scriptedDice struct {
	rolls []int
	coins []bool
}

func (s *scriptedDice) D20() int {
	if len(s.rolls) == 0 {
		return 18
	}
	r := s.rolls[0]
	s.rolls = s.rolls[1:]
	return r
}

func (s *scriptedDice) Coin() bool {
	if len(s.coins) == 0 {
		return false
	}
	c := s.coins[0]
	s.coins = s.coins[1:]
	return c
}

func generateScripted(t *testing.T, maxRooms int, rolls []int, coins ...bool) *dungeon.Dungeon {
	t.Helper()
	g := NewWithDice(Options{MaxRooms: maxRooms, ID: "test", Seed: 1}, &scriptedDice{rolls: rolls, coins: coins})
	d, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return d
}

func TestGenerateFirstCorridor(t *testing.T) {
	tests := []struct {
		name      string
		rolls     []int
		coins     []bool
		wantDesc  string
		wantFeet  int
		wantShape dungeon.RoomShape
		wantDims  string
	}{
		{"straight", []int{1}, nil, "Continue straight", 60, dungeon.ShapeCorridorEnd, "N/A"},
		{"parallel passage", []int{3, 1, 1}, []bool{true}, "Door at LEFT -> parallel passage", 30, dungeon.ShapeCorridorEnd, "N/A"},
		{"small room", []int{4, 12, 4}, []bool{false}, "Door at RIGHT -> small 10x10 room", 5, dungeon.ShapeSquare, "10' x 10'"},
		{"door straight", []int{5, 13, 5}, nil, "Door at AHEAD -> passage straight", 30, dungeon.ShapeCorridorEnd, "N/A"},
		{"angled 45", []int{3, 13, 9}, []bool{true}, "Door at AHEAD -> angled 45° passage", 30, dungeon.ShapeCorridorEnd, "N/A"},
		{"angled 135", []int{3, 6, 10}, []bool{false}, "Door at LEFT -> angled 135° passage", 30, dungeon.ShapeCorridorEnd, "N/A"},
		{"door room", []int{3, 7, 11, 9}, nil, "Door at RIGHT -> Room (Table V)", 10, dungeon.ShapeRectangular, "20' x 30'"},
		{"door chamber", []int{3, 20, 19, 18}, nil, "Door at AHEAD -> Chamber (Table V)", 10, dungeon.ShapeUnusual, "about 500+ sq. ft"},
		{"side passage", []int{6, 11, 18}, nil, "Side passage T_INTERSECTION, 30 ft wide", 30, dungeon.ShapeCorridorEnd, "N/A"},
		{"turn", []int{11, 19, 1}, nil, "5 ft wide, Right 45° ahead", 60, dungeon.ShapeCorridorEnd, "N/A"},
		{"chamber", []int{14, 16}, nil, "To Chamber", 30, dungeon.ShapeCircular, "30' diameter"},
		{"stairs", []int{17, 1}, nil, "Stairs: Down 1 level", 20, dungeon.ShapeCorridorEnd, "N/A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := generateScripted(t, DefaultMaxRooms, tt.rolls, tt.coins...)
			if d.RoomCount() != 2 {
				t.Fatalf("RoomCount() = %d, want 2", d.RoomCount())
			}
			want := dungeon.Corridor{From: 1, To: 2, LengthFeet: tt.wantFeet, Description: tt.wantDesc}
			if d.Corridors[0] != want {
				t.Errorf("first corridor = %+v, want %+v", d.Corridors[0], want)
			}
			room, _ := d.Room(2)
			if room.Shape != tt.wantShape || room.Dimensions != tt.wantDims {
				t.Errorf("room 2 = %v %q, want %v %q", room.Shape, room.Dimensions, tt.wantShape, tt.wantDims)
			}
			last := d.Corridors[len(d.Corridors)-1]
			if last.Description != "Dead end here" || last.From != 2 || last.To != dungeon.NoRoom {
				t.Errorf("expansion did not continue from room 2: last corridor %+v", last)
			}
		})
	}
}

func TestGenerateStairsToChamber(t *testing.T) {
	d := generateScripted(t, DefaultMaxRooms, []int{17, 20, 16})
	want := []dungeon.Corridor{
		{From: 1, To: 2, LengthFeet: 20, Description: "Stairs: Up 1 level, then down 2 levels, ends in chamber"},
		{From: 2, To: 3, LengthFeet: 10, Description: "End of stairs -> Chamber"},
		{From: 3, To: dungeon.NoRoom, LengthFeet: 10, Description: "Dead end here"},
	}
	if !slices.Equal(d.Corridors, want) {
		t.Errorf("corridors = %+v\nwant %+v", d.Corridors, want)
	}
	if r, _ := d.Room(3); r.Shape != dungeon.ShapeCircular {
		t.Errorf("chamber shape = %v, want CIRCULAR", r.Shape)
	}
}

func TestGenerateTrapAndMonster(t *testing.T) {
	d := generateScripted(t, DefaultMaxRooms, []int{19, 20})
	want := []dungeon.Corridor{
		{From: 1, To: dungeon.NoRoom, LengthFeet: 30, Description: "Trap in passage - continues"},
		{From: dungeon.NoRoom, To: 2, LengthFeet: 0, Description: "Trap corridor ends here"},
		{From: 2, To: dungeon.NoRoom, LengthFeet: 10, Description: "Wandering monster encountered"},
		{From: 2, To: dungeon.NoRoom, LengthFeet: 10, Description: "Dead end here"},
	}
	if !slices.Equal(d.Corridors, want) {
		t.Errorf("corridors = %+v\nwant %+v", d.Corridors, want)
	}
	if r, _ := d.Room(2); r.Shape != dungeon.ShapeCorridorEnd || r.Dimensions != "End after trap" {
		t.Errorf("trap end room = %v", r)
	}
}

func TestGenerateTrapStopsAtRoomLimit(t *testing.T) {
	d := generateScripted(t, 2, []int{19, 1})
	if d.RoomCount() != 2 || d.CorridorCount() != 2 {
		t.Errorf("got %d rooms, %d corridors; want 2, 2", d.RoomCount(), d.CorridorCount())
	}
	last := d.Corridors[len(d.Corridors)-1]
	if last.Description != "Trap corridor ends here" {
		t.Errorf("last corridor = %+v, want the trap exit", last)
	}
}

func TestGenerateMaxRooms(t *testing.T) {
	d := generateScripted(t, 1, []int{1, 1, 1})
	if d.RoomCount() != 1 || d.CorridorCount() != 0 {
		t.Errorf("MaxRooms=1 produced %d rooms, %d corridors", d.RoomCount(), d.CorridorCount())
	}
}

func TestGenerateDepthLimit(t *testing.T) {
	rolls := make([]int, 100)
	for i := range rolls {
		rolls[i] = 20
	}
	d := generateScripted(t, DefaultMaxRooms, rolls)
	// Depths 0 through 2*MaxRooms each add one encounter.
	if got, want := d.CorridorCount(), 2*DefaultMaxRooms+1; got != want {
		t.Errorf("CorridorCount() = %d, want %d", got, want)
	}
}

func TestGenerateReproducible(t *testing.T) {
	a, err := New(Options{Seed: 7, ID: "x"}).Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(Options{Seed: 7, ID: "x"}).Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.Rooms, b.Rooms) || !slices.Equal(a.Corridors, b.Corridors) {
		t.Error("same seed produced different dungeons")
	}
	if a.Seed != 7 {
		t.Errorf("Seed = %d, want 7", a.Seed)
	}
}

func TestGenerateInvariants(t *testing.T) {
	for seed := uint64(1); seed <= 200; seed++ {
		d, err := New(Options{Seed: seed}).Generate(context.Background())
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if err := d.Validate(); err != nil {
			t.Fatalf("seed %d: Validate: %v", seed, err)
		}
		if d.Rooms[0].Shape != dungeon.ShapeStarter || d.Rooms[0].Dimensions != StarterDimensions {
			t.Fatalf("seed %d: first room %v is not the starter", seed, d.Rooms[0])
		}
		// A single step can add a stairs node and its chamber.
		if d.RoomCount() > DefaultMaxRooms+1 {
			t.Fatalf("seed %d: %d rooms exceeds limit", seed, d.RoomCount())
		}
		if d.ID == "" {
			t.Fatalf("seed %d: empty dungeon ID", seed)
		}
	}
}

func TestGenerateRandomSeedRecorded(t *testing.T) {
	d, err := New(Options{}).Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d.Seed == 0 {
		t.Fatal("random seed was not recorded")
	}
	again, _ := New(Options{Seed: d.Seed, ID: d.ID}).Generate(context.Background())
	if !slices.Equal(d.Corridors, again.Corridors) {
		t.Error("recorded seed does not reproduce the dungeon")
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Options{Seed: 3}).Generate(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}

func TestBatch(t *testing.T) {
	ds, err := Batch(context.Background(), 8, Options{Seed: 11, ID: "b"}, 3)
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if len(ds) != 8 {
		t.Fatalf("len = %d, want 8", len(ds))
	}
	for i, d := range ds {
		if d.Seed != BatchSeed(11, i) {
			t.Errorf("dungeon %d seed = %d, want %d", i, d.Seed, BatchSeed(11, i))
		}
		single, _ := New(Options{Seed: d.Seed, ID: d.ID}).Generate(context.Background())
		if !slices.Equal(single.Corridors, d.Corridors) {
			t.Errorf("dungeon %d differs from a single generation with the same seed", i)
		}
	}
	if ds[3].ID != "b-3" {
		t.Errorf("ID = %q, want b-3", ds[3].ID)
	}

	if ds, err := Batch(context.Background(), 0, Options{}, 1); err != nil || ds != nil {
		t.Errorf("Batch(0) = %v, %v", ds, err)
	}
}
