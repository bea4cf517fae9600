package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/n8l/dungeonmap/pkg/grid"
)

// RenderSVG draws the cells inside bounds as SVG rectangles. Cells are
// tagged with their type and, for rooms, a data-room attribute.
func RenderSVG(g *grid.Grid, bounds grid.Rect, opts ...Option) ([]byte, error) {
	if bounds.Empty() {
		return nil, ErrNothingToRender
	}
	c := newConfig(opts)
	w, h := canvasSize(bounds, c.cellSize)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n", w, h, w, h)
	buf.WriteString("  <style>\n")
	fmt.Fprintf(&buf, "    .room { fill: %s; }\n", hex(c.palette.Room))
	fmt.Fprintf(&buf, "    .corridor { fill: %s; }\n", hex(c.palette.Corridor))
	fmt.Fprintf(&buf, "    .empty { fill: %s; }\n", hex(c.palette.Empty))
	if c.outline {
		fmt.Fprintf(&buf, "    rect { stroke: %s; stroke-width: 1; }\n", hex(c.palette.Outline))
	}
	buf.WriteString("  </style>\n")
	fmt.Fprintf(&buf, `  <rect class="empty" x="0" y="0" width="%d" height="%d" stroke="none"/>`+"\n", w, h)

	eachCell(g, bounds, func(col, row int, t grid.CellType) {
		x, y := col*c.cellSize, row*c.cellSize
		switch t {
		case grid.CellRoom:
			cell, _ := g.At(grid.Pt(bounds.X+col, bounds.Y+row))
			fmt.Fprintf(&buf, `  <rect class="room" data-room="%d" x="%d.5" y="%d.5" width="%d" height="%d"/>`+"\n",
				cell.RoomID, x, y, c.cellSize, c.cellSize)
		case grid.CellCorridor:
			fmt.Fprintf(&buf, `  <rect class="corridor" x="%d.5" y="%d.5" width="%d" height="%d"/>`+"\n",
				x, y, c.cellSize, c.cellSize)
		default:
			if c.outline {
				fmt.Fprintf(&buf, `  <rect class="empty" x="%d.5" y="%d.5" width="%d" height="%d"/>`+"\n",
					x, y, c.cellSize, c.cellSize)
			}
		}
	})

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
