// Package nodelink renders the abstract room graph of a dungeon as a
// node-link diagram.
//
// # Overview
//
// Where package render draws the fitted grid, this package draws the graph
// the generator produced: one node per room and one arrow per corridor,
// laid out by Graphviz.
//
//	dot := nodelink.ToDOT(d, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Styling
//
//   - The starter room is filled gold.
//   - Corridor ends are small points, since they are passage junctions
//     rather than rooms.
//   - A corridor with no target (dead ends, wandering monsters) or no source
//     (trap exits) gets its own "None" node so that each one stays visible.
//
// # Options
//
//   - Detailed: node labels include shape and dimensions, edge labels
//     include the corridor description.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering.
package nodelink
