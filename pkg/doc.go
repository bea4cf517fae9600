// Package pkg provides the libraries behind dungeonmap, a random dungeon
// generator that fits its room graph onto a square grid.
//
// # Overview
//
// The pkg directory is organized by pipeline stage:
//
//  1. [dungeon] - the abstract room graph and its analysis
//  2. [generator] - table-driven dungeon generation
//  3. [grid] and [fit] - the sparse cell grid and the BFS and A* fitters
//  4. [render] - PNG, SVG and text maps, plus Graphviz room graphs
//  5. [io] - the JSON document shared by every stage
//  6. [pipeline] - orchestration (generate → fit → render) with caching
//
// Supporting packages: [cache] (file, Redis), [storage] (files, MongoDB),
// [config], [errors], [observability] and [buildinfo].
//
// # Architecture
//
//	random tables
//	     ↓
//	[generator] → [dungeon.Dungeon] (rooms + corridors)
//	     ↓
//	[fit] BFS or A* → [grid.Grid] (ROOM / CORRIDOR / EMPTY cells)
//	     ↓
//	[render] → PNG / SVG / text, [io] → JSON
//
// # Quick Start
//
//	import (
//	    "context"
//
//	    "github.com/n8l/dungeonmap/pkg/fit"
//	    "github.com/n8l/dungeonmap/pkg/generator"
//	    "github.com/n8l/dungeonmap/pkg/render"
//	)
//
//	d, err := generator.New(generator.Options{MaxRooms: 10, Seed: 42}).Generate(ctx)
//	if err != nil {
//	    return err
//	}
//	res, err := fit.NewBFS(fit.Options{}).Fit(ctx, d)
//	if err != nil {
//	    return err
//	}
//	png, err := render.Render(render.FormatPNG, res.Grid, res.Bounds)
//
// For cached end-to-end runs use [pipeline.Runner].
package pkg
