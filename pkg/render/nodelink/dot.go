package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/n8l/dungeonmap/pkg/dungeon"
)

// Output formats accepted by [Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes shapes, dimensions and corridor descriptions in
	// labels. When false, only room numbers and lengths are shown.
	Detailed bool
}

// ToDOT converts a dungeon to Graphviz DOT source.
func ToDOT(d *dungeon.Dungeon, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph Dungeon {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, r := range d.Rooms {
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(r.ID), strings.Join(roomAttrs(r, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for i, c := range d.Corridors {
		from, to := nodeID(c.From), nodeID(c.To)
		if c.From == dungeon.NoRoom {
			from = noneID(i)
			fmt.Fprintf(&buf, "  %s [label=\"None\", shape=plaintext, style=\"\"];\n", from)
		}
		if c.To == dungeon.NoRoom {
			to = noneID(i)
			fmt.Fprintf(&buf, "  %s [label=\"None\", shape=plaintext, style=\"\"];\n", to)
		}
		fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", from, to, edgeLabel(c, opts.Detailed))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int) string { return "r" + strconv.Itoa(id) }

func noneID(corridor int) string { return "none" + strconv.Itoa(corridor) }

func roomAttrs(r dungeon.Room, detailed bool) []string {
	label := "#" + strconv.Itoa(r.ID)
	if detailed && r.Shape != dungeon.ShapeCorridorEnd {
		label += "\n" + r.Shape.Description() + "\n" + r.Dimensions
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch r.Shape {
	case dungeon.ShapeStarter:
		attrs = append(attrs, "fillcolor=gold")
	case dungeon.ShapeCorridorEnd:
		attrs = append(attrs, "shape=point", "width=0.15", "xlabel="+strconv.Quote(label))
	}
	return attrs
}

func edgeLabel(c dungeon.Corridor, detailed bool) string {
	length := strconv.Itoa(c.LengthFeet) + " ft"
	if !detailed || c.Description == "" {
		return length
	}
	return c.Description + "\n" + length
}

// Render renders DOT source in the given format. FormatDOT returns the
// source unchanged.
func Render(dot, format string) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(dot)
	case FormatPNG:
		return RenderPNG(dot)
	default:
		return nil, fmt.Errorf("unsupported graph format: %q (must be one of: dot, svg, png)", format)
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := renderGraphviz(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderGraphviz(dot, graphviz.PNG)
}

func renderGraphviz(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with one whose
// viewBox starts at the origin and whose size matches it in pixels.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
