// Package render draws fitted dungeon grids.
//
// # Overview
//
// Every renderer walks the bounds rectangle of a [grid.Grid] row by row and
// paints one square per cell:
//
//   - ROOM cells in light grey (220,220,220)
//   - CORRIDOR cells in pale blue (200,200,255)
//   - EMPTY and missing cells in dark grey (48,48,48)
//
// Each square gets a black outline. Squares are 16 pixels wide unless
// [WithCellSize] says otherwise.
//
// # Formats
//
//	png, err := render.RenderPNG(g, bounds)
//	svg, err := render.RenderSVG(g, bounds, render.WithCellSize(8))
//	txt, err := render.RenderText(g, bounds)
//
// PNG output is rasterized with [github.com/fogleman/gg]. The text format
// uses '#' for rooms, '.' for corridors and a space for empty cells, one
// line per grid row.
//
// All renderers return [ErrNothingToRender] when the bounds are empty.
//
// # Room Graphs
//
// The [nodelink] subpackage draws the abstract room graph instead of the
// fitted grid, using Graphviz.
//
// [nodelink]: github.com/n8l/dungeonmap/pkg/render/nodelink
package render
