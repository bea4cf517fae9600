package grid

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrEmpty is returned when an operation needs at least one non-EMPTY cell.
var ErrEmpty = errors.New("grid has no used cells")

// CellType is the content of a cell.
type CellType int

const (
	CellEmpty CellType = iota
	CellRoom
	CellCorridor
)

var cellTypeNames = [...]string{"EMPTY", "ROOM", "CORRIDOR"}

func (t CellType) String() string {
	if t < 0 || int(t) >= len(cellTypeNames) {
		return fmt.Sprintf("CellType(%d)", int(t))
	}
	return cellTypeNames[t]
}

// ParseCellType maps a name to a CellType. Unknown names yield EMPTY and
// ok=false.
func ParseCellType(name string) (t CellType, ok bool) {
	for i, n := range cellTypeNames {
		if strings.EqualFold(n, name) {
			return CellType(i), true
		}
	}
	return CellEmpty, false
}

// MarshalText implements encoding.TextMarshaler.
func (t CellType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(cellTypeNames) {
		return nil, fmt.Errorf("invalid cell type %d", int(t))
	}
	return []byte(cellTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *CellType) UnmarshalText(text []byte) error {
	v, ok := ParseCellType(string(text))
	if !ok {
		return fmt.Errorf("unknown cell type %q", text)
	}
	*t = v
	return nil
}

// Cell is one grid square. RoomID is 0 unless Type is CellRoom.
type Cell struct {
	X      int      `json:"x"`
	Y      int      `json:"y"`
	RoomID int      `json:"roomId"`
	Type   CellType `json:"cellType"`
}

// Point returns the cell coordinate.
func (c Cell) Point() Point { return Point{c.X, c.Y} }

func (c Cell) String() string {
	return fmt.Sprintf("Cell[%d,%d %s R%d]", c.X, c.Y, c.Type, c.RoomID)
}

// Grid is a sparse map of cells. The zero value is not usable; call [New].
type Grid struct {
	cells    map[Point]*Cell
	boundary map[int][]Point
}

// New returns an empty grid.
func New() *Grid {
	return &Grid{
		cells:    make(map[Point]*Cell),
		boundary: make(map[int][]Point),
	}
}

// FromCells builds a grid from stored cells. Later duplicates win.
func FromCells(cells []Cell) *Grid {
	g := New()
	for _, c := range cells {
		g.Set(c)
	}
	return g
}

// Len returns the number of stored cells, EMPTY ones included.
func (g *Grid) Len() int { return len(g.cells) }

// Cell returns the cell at (x, y).
func (g *Grid) Cell(x, y int) (Cell, bool) { return g.At(Point{x, y}) }

// At returns the cell at p.
func (g *Grid) At(p Point) (Cell, bool) {
	c, ok := g.cells[p]
	if !ok {
		return Cell{}, false
	}
	return *c, true
}

// TypeAt returns the type at p; missing cells read as EMPTY.
func (g *Grid) TypeAt(p Point) CellType {
	if c, ok := g.cells[p]; ok {
		return c.Type
	}
	return CellEmpty
}

// GetOrCreate returns the cell at p, creating an EMPTY cell when missing.
func (g *Grid) GetOrCreate(p Point) Cell {
	return *g.getOrCreate(p)
}

func (g *Grid) getOrCreate(p Point) *Cell {
	c, ok := g.cells[p]
	if !ok {
		c = &Cell{X: p.X, Y: p.Y}
		g.cells[p] = c
	}
	return c
}

// Set stores c, replacing any cell at the same coordinate.
func (g *Grid) Set(c Cell) {
	g.cells[c.Point()] = &c
	g.invalidate()
}

// FillRoom marks the w×h block at (x, y) as ROOM cells owned by roomID,
// overwriting whatever was there.
func (g *Grid) FillRoom(roomID, x, y, w, h int) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			c := g.getOrCreate(Point{xx, yy})
			c.Type = CellRoom
			c.RoomID = roomID
		}
	}
	g.invalidate()
}

// MarkCorridor turns the cell at p into CORRIDOR, creating it if needed.
// ROOM cells are left untouched and MarkCorridor reports false.
func (g *Grid) MarkCorridor(p Point) bool {
	c := g.getOrCreate(p)
	if c.Type == CellRoom {
		return false
	}
	c.Type = CellCorridor
	return true
}

func (g *Grid) invalidate() {
	if len(g.boundary) > 0 {
		clear(g.boundary)
	}
}

// Boundary returns the cells of a room that have at least one orthogonal
// neighbour that is missing or not part of the same room, ordered by row
// then column. The result is cached until a room is filled.
func (g *Grid) Boundary(roomID int) []Point {
	if b, ok := g.boundary[roomID]; ok {
		return b
	}
	var b []Point
	for p, c := range g.cells {
		if c.RoomID == roomID && g.isBoundary(p, roomID) {
			b = append(b, p)
		}
	}
	slices.SortFunc(b, less)
	g.boundary[roomID] = b
	return b
}

func (g *Grid) isBoundary(p Point, roomID int) bool {
	for _, n := range Neighbours4(p) {
		c, ok := g.cells[n]
		if !ok || c.RoomID != roomID {
			return true
		}
	}
	return false
}

// Bounds returns the tightest rectangle covering every non-EMPTY cell, or
// the zero Rect when there are none.
func (g *Grid) Bounds() Rect {
	first := true
	var minX, minY, maxX, maxY int
	for p, c := range g.cells {
		if c.Type == CellEmpty {
			continue
		}
		if first {
			minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
			first = false
			continue
		}
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	if first {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}

// Cells returns a copy of every stored cell ordered by row then column.
func (g *Grid) Cells() []Cell {
	keys := slices.SortedFunc(maps.Keys(g.cells), less)
	out := make([]Cell, len(keys))
	for i, p := range keys {
		out[i] = *g.cells[p]
	}
	return out
}

// Count returns the number of cells of type t.
func (g *Grid) Count(t CellType) int {
	n := 0
	for _, c := range g.cells {
		if c.Type == t {
			n++
		}
	}
	return n
}

// RoomIDs returns the IDs of rooms that own at least one cell, ascending.
func (g *Grid) RoomIDs() []int {
	seen := make(map[int]struct{})
	for _, c := range g.cells {
		if c.Type == CellRoom {
			seen[c.RoomID] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}
