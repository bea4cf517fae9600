package fit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/n8l/dungeonmap/pkg/dungeon"
	"github.com/n8l/dungeonmap/pkg/grid"
	"github.com/n8l/dungeonmap/pkg/observability"
)

// Fitter names accepted by [New].
const (
	AlgorithmBFS   = "bfs"
	AlgorithmAStar = "astar"
)

// DefaultAlgorithm is used when no fitter is named.
const DefaultAlgorithm = AlgorithmBFS

// Layout defaults.
const (
	DefaultBFSRowWidth       = 80
	DefaultAStarRowWidth     = 100
	DefaultAStarMaxDimension = 30
	DefaultAStarOffsetRange  = 5
	DefaultSearchMargin      = 20

	bfsRoomGap    = 2
	bfsRowGap     = 3
	astarRoomGap  = 5
	astarRowGap   = 5
	stubMin       = 1
	stubMax       = 3
	nearRoomCost  = 5.0
	openFloorCost = 1.0
	progressEvery = 5
)

// ErrUnknownFitter is returned by [New] for an unregistered name.
var ErrUnknownFitter = errors.New("unknown fitter")

// Fitter places a dungeon onto a fresh grid.
type Fitter interface {
	Name() string
	Fit(ctx context.Context, d *dungeon.Dungeon) (*Result, error)
}

// Options configures the fitters. Zero fields take the defaults above.
type Options struct {
	BFSRowWidth       int `json:"bfs_row_width,omitempty"`
	AStarRowWidth     int `json:"astar_row_width,omitempty"`
	AStarMaxDimension int `json:"astar_max_dimension,omitempty"`
	AStarOffsetRange  int `json:"astar_offset_range,omitempty"` // negative disables jitter

	// SearchMargin bounds the search area around the placed rooms (BFS) or
	// around the corridor stubs (A*).
	SearchMargin int `json:"search_margin,omitempty"`

	// Seed drives the A* fitter's jitter and stubs. Zero picks a random seed.
	Seed uint64 `json:"seed,omitempty"`

	Logger *log.Logger `json:"-"`
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.BFSRowWidth <= 0 {
		o.BFSRowWidth = DefaultBFSRowWidth
	}
	if o.AStarRowWidth <= 0 {
		o.AStarRowWidth = DefaultAStarRowWidth
	}
	if o.AStarMaxDimension <= 0 {
		o.AStarMaxDimension = DefaultAStarMaxDimension
	}
	if o.AStarOffsetRange < 0 {
		o.AStarOffsetRange = 0
	} else if o.AStarOffsetRange == 0 {
		o.AStarOffsetRange = DefaultAStarOffsetRange
	}
	if o.SearchMargin <= 0 {
		o.SearchMargin = DefaultSearchMargin
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Placement records where a room landed.
type Placement struct {
	RoomID int       `json:"room_id"`
	Rect   grid.Rect `json:"rect"`
}

// Stats describes a fit run.
type Stats struct {
	RoomsPlaced      int           `json:"rooms_placed"`
	CorridorsRouted  int           `json:"corridors_routed"`
	CorridorsSkipped int           `json:"corridors_skipped"` // missing endpoint or boundary
	CorridorsFailed  int           `json:"corridors_failed"`  // no path inside the search area
	Elapsed          time.Duration `json:"elapsed"`
}

// Result is the output of a fitter.
type Result struct {
	Fitter     string
	Grid       *grid.Grid
	Bounds     grid.Rect
	Placements []Placement
	Stats      Stats
}

var registry = map[string]func(Options) Fitter{
	AlgorithmBFS:   func(o Options) Fitter { return NewBFS(o) },
	AlgorithmAStar: func(o Options) Fitter { return NewAStar(o) },
}

// New returns the fitter registered under name. An empty name selects
// [DefaultAlgorithm].
func New(name string, opts Options) (Fitter, error) {
	if name == "" {
		name = DefaultAlgorithm
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (must be one of: %v)", ErrUnknownFitter, name, Names())
	}
	return ctor(opts), nil
}

// Names lists the registered fitters in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}

// Valid reports whether name is a registered fitter.
func Valid(name string) bool {
	_, ok := registry[name]
	return ok
}

// =============================================================================
// Shared fitting helpers
// =============================================================================

// run holds the per-call state shared by both fitters.
type run struct {
	name   string
	logger *log.Logger
	grid   *grid.Grid
	res    *Result
	start  time.Time
}

func newRun(name string, logger *log.Logger, d *dungeon.Dungeon) *run {
	logger.Info("starting dungeon fit",
		"fitter", name,
		"rooms", d.RoomCount(),
		"corridors", d.CorridorCount())
	g := grid.New()
	return &run{
		name:   name,
		logger: logger,
		grid:   g,
		res:    &Result{Fitter: name, Grid: g},
		start:  time.Now(),
	}
}

func (r *run) placed(roomID int, rect grid.Rect) {
	r.res.Placements = append(r.res.Placements, Placement{RoomID: roomID, Rect: rect})
	r.res.Stats.RoomsPlaced++
	r.logger.Debug("placed room", "room", roomID, "at", rect)
	if n := r.res.Stats.RoomsPlaced; n%progressEvery == 0 {
		r.logger.Info("placing rooms", "placed", n)
	}
}

// endpoints returns the boundary cells a corridor starts and ends at.
// ok is false when the corridor has no geometry.
func (r *run) endpoints(c dungeon.Corridor) (from, to grid.Point, ok bool) {
	if !c.Connects() {
		return from, to, false
	}
	fb, tb := r.grid.Boundary(c.From), r.grid.Boundary(c.To)
	if len(fb) == 0 || len(tb) == 0 {
		r.logger.Debug("no boundary cells for corridor", "from", c.From, "to", c.To)
		return from, to, false
	}
	return fb[0], tb[0], true
}

func (r *run) corridorDone(ctx context.Context, i int, c dungeon.Corridor, path []grid.Point, attempted bool) {
	switch {
	case !attempted:
		r.res.Stats.CorridorsSkipped++
	case len(path) == 0:
		r.res.Stats.CorridorsFailed++
		r.logger.Debug("no path for corridor", "from", c.From, "to", c.To)
		observability.Pipeline().OnCorridorUnrouted(ctx, r.name, c.From, c.To)
	default:
		for _, p := range path {
			r.grid.MarkCorridor(p)
		}
		r.res.Stats.CorridorsRouted++
		r.logger.Debug("connected corridor", "from", c.From, "to", c.To, "length", len(path))
	}
	if n := i + 1; n%progressEvery == 0 {
		r.logger.Info("connecting corridors", "processed", n)
	}
}

func (r *run) finish() *Result {
	r.res.Bounds = r.grid.Bounds()
	r.res.Stats.Elapsed = time.Since(r.start)
	r.logger.Info("dungeon fit complete",
		"fitter", r.name,
		"area", r.res.Bounds,
		"routed", r.res.Stats.CorridorsRouted,
		"elapsed", r.res.Stats.Elapsed)
	return r.res
}
