package render

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/n8l/dungeonmap/pkg/grid"
)

// RenderPNG rasterizes the cells inside bounds.
func RenderPNG(g *grid.Grid, bounds grid.Rect, opts ...Option) ([]byte, error) {
	if bounds.Empty() {
		return nil, ErrNothingToRender
	}
	c := newConfig(opts)
	w, h := canvasSize(bounds, c.cellSize)
	cs := float64(c.cellSize)

	dc := gg.NewContext(w, h)
	dc.SetColor(c.palette.Empty)
	dc.Clear()

	eachCell(g, bounds, func(col, row int, t grid.CellType) {
		x, y := float64(col)*cs, float64(row)*cs
		dc.SetColor(c.palette.Fill(t))
		dc.DrawRectangle(x, y, cs, cs)
		dc.Fill()
		if c.outline {
			dc.SetColor(c.palette.Outline)
			dc.SetLineWidth(1)
			dc.DrawRectangle(x+0.5, y+0.5, cs, cs)
			dc.Stroke()
		}
	})

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
