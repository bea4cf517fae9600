package io

import (
	"errors"

	"github.com/n8l/dungeonmap/pkg/dungeon"
	derrors "github.com/n8l/dungeonmap/pkg/errors"
	"github.com/n8l/dungeonmap/pkg/fit"
	"github.com/n8l/dungeonmap/pkg/grid"
)

// ErrNoLayout is returned by operations that need stored cells when the
// document has none.
var ErrNoLayout = errors.New("document has no fitted layout")

// Document is the on-disk form of a dungeon and its fitted layout.
type Document struct {
	ID        string             `json:"id,omitempty"`
	Seed      uint64             `json:"seed,omitempty"`
	Fitter    string             `json:"fitter,omitempty"`
	Rect      *grid.Rect         `json:"rect,omitempty"`
	Cells     []Cell             `json:"cells,omitempty"`
	Rooms     []Room             `json:"rooms"`
	Corridors []dungeon.Corridor `json:"corridors,omitempty"`
}

// Cell is a stored grid cell. CellType is kept as text so that files with
// unknown types still load.
type Cell struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	RoomID   int    `json:"roomId"`
	CellType string `json:"cellType"`
}

// Room is a stored room.
type Room struct {
	ID         int    `json:"id"`
	Shape      string `json:"shape,omitempty"`
	Dimensions string `json:"dimensions"`
}

// NewDocument captures a dungeon and, when res is non-nil, its fitted
// layout. Cells are written in row order.
func NewDocument(d *dungeon.Dungeon, res *fit.Result) *Document {
	doc := &Document{
		ID:        d.ID,
		Seed:      d.Seed,
		Rooms:     make([]Room, len(d.Rooms)),
		Corridors: append([]dungeon.Corridor(nil), d.Corridors...),
	}
	for i, r := range d.Rooms {
		doc.Rooms[i] = Room{ID: r.ID, Shape: r.Shape.String(), Dimensions: r.Dimensions}
	}
	if res != nil {
		doc.SetLayout(res.Fitter, res.Grid, res.Bounds)
	}
	return doc
}

// SetLayout replaces the stored layout.
func (doc *Document) SetLayout(fitter string, g *grid.Grid, bounds grid.Rect) {
	doc.Fitter = fitter
	rect := bounds
	doc.Rect = &rect
	cells := g.Cells()
	doc.Cells = make([]Cell, len(cells))
	for i, c := range cells {
		doc.Cells[i] = Cell{X: c.X, Y: c.Y, RoomID: c.RoomID, CellType: c.Type.String()}
	}
}

// HasLayout reports whether the document carries fitted cells.
func (doc *Document) HasLayout() bool {
	return doc.Rect != nil && len(doc.Cells) > 0
}

// Dungeon rebuilds the room graph with the stored room IDs. Duplicate rooms
// and corridors to unknown rooms fail with INVALID_DOCUMENT.
func (doc *Document) Dungeon() (*dungeon.Dungeon, error) {
	d := dungeon.New(doc.ID, doc.Seed)
	for _, r := range doc.Rooms {
		shape, _ := dungeon.ParseRoomShape(r.Shape)
		if err := d.AddRoom(dungeon.Room{ID: r.ID, Shape: shape, Dimensions: r.Dimensions}); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidDocument, err, "room %d", r.ID)
		}
	}
	for i, c := range doc.Corridors {
		if err := d.AddCorridor(c); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidDocument, err, "corridor %d", i)
		}
	}
	return d, nil
}

// Grid rebuilds the stored cells and returns them with the stored bounds.
// When the document has no rect the bounds are computed from the cells.
func (doc *Document) Grid() (*grid.Grid, grid.Rect) {
	cells := make([]grid.Cell, len(doc.Cells))
	for i, c := range doc.Cells {
		t, _ := grid.ParseCellType(c.CellType)
		cells[i] = grid.Cell{X: c.X, Y: c.Y, RoomID: c.RoomID, Type: t}
	}
	g := grid.FromCells(cells)
	if doc.Rect != nil {
		return g, *doc.Rect
	}
	return g, g.Bounds()
}

// Layout returns the stored layout as a fit result so it can be rendered
// like a fresh fit.
func (doc *Document) Layout() (*fit.Result, error) {
	if !doc.HasLayout() {
		return nil, ErrNoLayout
	}
	g, bounds := doc.Grid()
	return &fit.Result{Fitter: doc.Fitter, Grid: g, Bounds: bounds}, nil
}
