// Package pipeline runs the generate → fit → render chain shared by the CLI
// and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Generate: roll a dungeon graph from the d20 tables
//  2. Fit: place rooms on a grid and route corridors (BFS or A*)
//  3. Render: produce artifacts (JSON document, PNG, SVG, text, DOT)
//
// Each stage can be run on its own or as part of [Runner.Execute]. Stages
// whose inputs are fully determined (a fixed seed, the deterministic BFS
// fitter) are cached through a [cache.Cache].
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    MaxRooms: 10,
//	    Seed:     42,
//	    Fitter:   "astar",
//	    Formats:  []string{"png", "json"},
//	})
//	png := result.Artifacts["png"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/n8l/dungeonmap/pkg/cache"
	"github.com/n8l/dungeonmap/pkg/dungeon"
	derrors "github.com/n8l/dungeonmap/pkg/errors"
	"github.com/n8l/dungeonmap/pkg/fit"
	"github.com/n8l/dungeonmap/pkg/generator"
	dio "github.com/n8l/dungeonmap/pkg/io"
	"github.com/n8l/dungeonmap/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxRooms matches the generator default.
	DefaultMaxRooms = generator.DefaultMaxRooms

	// DefaultFitter is the fitter used when none is named.
	DefaultFitter = fit.DefaultAlgorithm

	// DefaultCellSize is the pixel size of one grid cell in raster outputs.
	DefaultCellSize = render.DefaultCellSize
)

// Format constants for output formats.
const (
	FormatJSON     = "json"
	FormatPNG      = render.FormatPNG
	FormatSVG      = render.FormatSVG
	FormatText     = render.FormatText
	FormatDOT      = "dot"
	FormatGraphSVG = "graph-svg"
	FormatGraphPNG = "graph-png"
)

// Formats lists every supported output format.
var Formats = []string{FormatJSON, FormatPNG, FormatSVG, FormatText, FormatDOT, FormatGraphSVG, FormatGraphPNG}

// needsLayout reports whether format draws the fitted grid.
func needsLayout(format string) bool {
	switch format {
	case FormatPNG, FormatSVG, FormatText:
		return true
	}
	return false
}

// Extension returns the file extension for an output format.
func Extension(format string) string {
	switch format {
	case FormatGraphSVG:
		return "graph.svg"
	case FormatGraphPNG:
		return "graph.png"
	}
	return format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Generate options
	MaxRooms int    `json:"max_rooms,omitempty"`
	Seed     uint64 `json:"seed,omitempty"` // zero rolls a random seed and disables caching
	ID       string `json:"id,omitempty"`

	// Fit options
	Fitter            string `json:"fitter,omitempty"`
	SearchMargin      int    `json:"search_margin,omitempty"`
	BFSRowWidth       int    `json:"bfs_row_width,omitempty"`
	AStarRowWidth     int    `json:"astar_row_width,omitempty"`
	AStarMaxDimension int    `json:"astar_max_dimension,omitempty"`
	AStarOffsetRange  int    `json:"astar_offset_range,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	CellSize int      `json:"cell_size,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // full labels in graph outputs

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dungeon is the abstract room graph.
	Dungeon *dungeon.Dungeon

	// Layout is the fitted grid. Nil when only graph outputs were requested
	// from an unfitted document.
	Layout *fit.Result

	// Document is the JSON-ready form of Dungeon and Layout.
	Document *dio.Document

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rooms        int
	Corridors    int
	GenerateTime time.Duration
	FitTime      time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GenerateHit bool
	FitHit      bool
	RenderHit   bool // all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return derrors.ValidateFormat(format, Formats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFitter checks that a fitter name is registered.
func ValidateFitter(name string) error {
	return derrors.ValidateFitter(name, fit.Names())
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full
// pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	if err := o.ValidateForFit(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForGenerate checks generator inputs.
func (o *Options) ValidateForGenerate() error {
	if o.MaxRooms == 0 {
		o.MaxRooms = DefaultMaxRooms
	}
	o.setLogger()
	return derrors.ValidateMaxRooms(o.MaxRooms)
}

// SetFitDefaults sets default values for fitting.
func (o *Options) SetFitDefaults() {
	if o.Fitter == "" {
		o.Fitter = DefaultFitter
	}
	o.setLogger()
}

// ValidateForFit validates and sets defaults for fitting.
func (o *Options) ValidateForFit() error {
	o.SetFitDefaults()
	return ValidateFitter(o.Fitter)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.CellSize == 0 {
		o.CellSize = DefaultCellSize
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := derrors.ValidateCellSize(o.CellSize); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// GeneratorOptions returns the generator configuration.
func (o *Options) GeneratorOptions() generator.Options {
	return generator.Options{
		MaxRooms: o.MaxRooms,
		Seed:     o.Seed,
		ID:       o.ID,
		Logger:   o.Logger,
	}
}

// FitOptions returns the fitter configuration.
func (o *Options) FitOptions() fit.Options {
	return fit.Options{
		BFSRowWidth:       o.BFSRowWidth,
		AStarRowWidth:     o.AStarRowWidth,
		AStarMaxDimension: o.AStarMaxDimension,
		AStarOffsetRange:  o.AStarOffsetRange,
		SearchMargin:      o.SearchMargin,
		Seed:              o.Seed,
		Logger:            o.Logger,
	}
}

// RenderOptions returns the grid renderer options.
func (o *Options) RenderOptions() []render.Option {
	return []render.Option{render.WithCellSize(o.CellSize)}
}

// DungeonKeyOpts returns cache key options for generation.
func (o *Options) DungeonKeyOpts() cache.DungeonKeyOpts {
	return cache.DungeonKeyOpts{MaxRooms: o.MaxRooms, Seed: o.Seed}
}

// LayoutKeyOpts returns cache key options for fitting.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	f := o.FitOptions()
	f.SetDefaults()
	k := cache.LayoutKeyOpts{
		Fitter:       o.Fitter,
		RowWidth:     f.BFSRowWidth,
		SearchMargin: f.SearchMargin,
	}
	if o.Fitter == fit.AlgorithmAStar {
		k.RowWidth = f.AStarRowWidth
		k.MaxDimension = f.AStarMaxDimension
		k.OffsetRange = f.AStarOffsetRange
		k.Seed = o.Seed
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if needsLayout(format) {
		k.CellSize = o.CellSize
	}
	if format == FormatDOT || format == FormatGraphSVG || format == FormatGraphPNG {
		k.Detailed = o.Detailed
	}
	return k
}
