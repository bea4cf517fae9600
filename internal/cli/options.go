package cli

import (
	"github.com/spf13/cobra"

	"github.com/n8l/dungeonmap/pkg/pipeline"
)

// pipelineFlags holds the command-line flags shared by the pipeline commands.
// Flags only override the config file when set explicitly.
type pipelineFlags struct {
	maxRooms int
	seed     uint64
	id       string
	fitter   string
	margin   int
	formats  string
	cellSize int
	detailed bool
	noCache  bool
	refresh  bool
}

func (f *pipelineFlags) addGenerate(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.maxRooms, "rooms", "n", 0, "maximum number of rooms (default from config: 10)")
	cmd.Flags().Uint64VarP(&f.seed, "seed", "s", 0, "random seed (0 picks one at random)")
	cmd.Flags().StringVar(&f.id, "id", "", "dungeon id (default: new UUID)")
}

func (f *pipelineFlags) addFit(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.fitter, "fitter", "", "grid fitter: bfs (default), astar")
	cmd.Flags().IntVar(&f.margin, "margin", 0, "corridor search margin in cells")
}

func (f *pipelineFlags) addRender(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): png (default), svg, txt, json, dot, graph-svg, graph-png (comma-separated)")
	cmd.Flags().IntVar(&f.cellSize, "cell-size", 0, "pixels per grid cell (png, svg)")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show full labels in graph outputs")
}

func (f *pipelineFlags) addCache(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

// options builds pipeline options from the config file, then applies every
// flag the user set on cmd.
func (c *CLI) options(cmd *cobra.Command, f *pipelineFlags) pipeline.Options {
	cfg := c.Config
	opts := pipeline.Options{
		MaxRooms:          cfg.Generator.MaxRooms,
		Seed:              cfg.Generator.Seed,
		Fitter:            cfg.Fit.Algorithm,
		SearchMargin:      cfg.Fit.SearchMargin,
		BFSRowWidth:       cfg.Fit.BFSRowWidth,
		AStarRowWidth:     cfg.Fit.AStarRowWidth,
		AStarMaxDimension: cfg.Fit.AStarMaxDimension,
		AStarOffsetRange:  cfg.Fit.AStarOffsetRange,
		Formats:           cfg.Render.Formats,
		CellSize:          cfg.Render.CellSize,
		Logger:            c.Logger,
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		fl := flags.Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("rooms") {
		opts.MaxRooms = f.maxRooms
	}
	if changed("seed") {
		opts.Seed = f.seed
	}
	if changed("fitter") {
		opts.Fitter = f.fitter
	}
	if changed("margin") {
		opts.SearchMargin = f.margin
	}
	if changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if changed("cell-size") {
		opts.CellSize = f.cellSize
	}
	opts.ID = f.id
	opts.Detailed = f.detailed
	opts.Refresh = f.refresh
	return opts
}
