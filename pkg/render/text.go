package render

import (
	"bytes"

	"github.com/n8l/dungeonmap/pkg/grid"
)

// Text glyphs per cell type.
const (
	GlyphRoom     = '#'
	GlyphCorridor = '.'
	GlyphEmpty    = ' '
)

// RenderText draws the cells inside bounds as ASCII, one line per row.
// Trailing spaces are trimmed.
func RenderText(g *grid.Grid, bounds grid.Rect) ([]byte, error) {
	if bounds.Empty() {
		return nil, ErrNothingToRender
	}
	var buf bytes.Buffer
	line := make([]byte, bounds.Width)
	for row := 0; row < bounds.Height; row++ {
		for col := range line {
			line[col] = glyph(g.TypeAt(grid.Pt(bounds.X+col, bounds.Y+row)))
		}
		buf.Write(bytes.TrimRight(line, " "))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func glyph(t grid.CellType) byte {
	switch t {
	case grid.CellRoom:
		return GlyphRoom
	case grid.CellCorridor:
		return GlyphCorridor
	default:
		return GlyphEmpty
	}
}
