package render

import (
	"fmt"
	"image/color"

	derrors "github.com/n8l/dungeonmap/pkg/errors"
	"github.com/n8l/dungeonmap/pkg/grid"
)

// DefaultCellSize is the edge length of one cell in pixels.
const DefaultCellSize = 16

// Format names accepted by [Render].
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatText = "txt"
)

// ErrNothingToRender is returned when the bounds cover no cells.
var ErrNothingToRender = fmt.Errorf("nothing to render: %w", grid.ErrEmpty)

// Palette maps cell types to fill colors.
type Palette struct {
	Room     color.RGBA
	Corridor color.RGBA
	Empty    color.RGBA
	Outline  color.RGBA
}

// DefaultPalette is the classic viewer palette.
var DefaultPalette = Palette{
	Room:     color.RGBA{R: 220, G: 220, B: 220, A: 255},
	Corridor: color.RGBA{R: 200, G: 200, B: 255, A: 255},
	Empty:    color.RGBA{R: 48, G: 48, B: 48, A: 255},
	Outline:  color.RGBA{A: 255},
}

// Fill returns the fill color for a cell type.
func (p Palette) Fill(t grid.CellType) color.RGBA {
	switch t {
	case grid.CellRoom:
		return p.Room
	case grid.CellCorridor:
		return p.Corridor
	default:
		return p.Empty
	}
}

// Option configures a renderer.
type Option func(*config)

type config struct {
	cellSize int
	palette  Palette
	outline  bool
}

// WithCellSize sets the cell edge length in pixels. Values outside
// 1..[derrors.MaxCellSize] are ignored.
func WithCellSize(px int) Option {
	return func(c *config) {
		if derrors.ValidateCellSize(px) == nil {
			c.cellSize = px
		}
	}
}

// WithPalette replaces the default colors.
func WithPalette(p Palette) Option { return func(c *config) { c.palette = p } }

// WithoutOutline skips the black cell borders.
func WithoutOutline() Option { return func(c *config) { c.outline = false } }

func newConfig(opts []Option) config {
	c := config{cellSize: DefaultCellSize, palette: DefaultPalette, outline: true}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Render dispatches to the renderer for format.
func Render(format string, g *grid.Grid, bounds grid.Rect, opts ...Option) ([]byte, error) {
	switch format {
	case FormatPNG:
		return RenderPNG(g, bounds, opts...)
	case FormatSVG:
		return RenderSVG(g, bounds, opts...)
	case FormatText:
		return RenderText(g, bounds)
	default:
		return nil, fmt.Errorf("unsupported grid format: %q", format)
	}
}

// eachCell calls fn for every coordinate in bounds with its column and row
// offset inside the bounds.
func eachCell(g *grid.Grid, bounds grid.Rect, fn func(col, row int, t grid.CellType)) {
	for row := 0; row < bounds.Height; row++ {
		for col := 0; col < bounds.Width; col++ {
			fn(col, row, g.TypeAt(grid.Pt(bounds.X+col, bounds.Y+row)))
		}
	}
}

// canvasSize returns the image size: one extra pixel so the last outline
// fits.
func canvasSize(bounds grid.Rect, cellSize int) (w, h int) {
	return bounds.Width*cellSize + 1, bounds.Height*cellSize + 1
}
