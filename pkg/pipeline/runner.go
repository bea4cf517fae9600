package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/n8l/dungeonmap/pkg/cache"
	"github.com/n8l/dungeonmap/pkg/dungeon"
	"github.com/n8l/dungeonmap/pkg/fit"
	"github.com/n8l/dungeonmap/pkg/generator"
	dio "github.com/n8l/dungeonmap/pkg/io"
	"github.com/n8l/dungeonmap/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so that caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete generate → fit → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Generate
	start := time.Now()
	d, hit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Dungeon = d
	result.Stats.GenerateTime = time.Since(start)
	result.Stats.Rooms = d.RoomCount()
	result.Stats.Corridors = d.CorridorCount()
	result.CacheInfo.GenerateHit = hit

	r.Logger.Info("generated dungeon",
		"rooms", d.RoomCount(),
		"corridors", d.CorridorCount(),
		"seed", d.Seed,
		"duration", result.Stats.GenerateTime)

	// Stage 2: Fit
	start = time.Now()
	layout, hit, err := r.FitWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	result.Layout = layout
	result.Stats.FitTime = time.Since(start)
	result.CacheInfo.FitHit = hit

	r.Logger.Info("fitted layout",
		"fitter", layout.Fitter,
		"bounds", layout.Bounds,
		"duration", result.Stats.FitTime)

	// Stage 3: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, d, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit
	result.Document = dio.NewDocument(d, layout)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo rolls a dungeon and reports whether it came from the
// cache. Only dungeons with an explicit seed are cached. A cached dungeon
// gets opts.ID, or a fresh UUID, so that repeated requests stay distinct.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (*dungeon.Dungeon, bool, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	hooks := observability.Pipeline()

	cacheable := opts.Seed != 0
	cacheKey := r.Keyer.DungeonKey(opts.DungeonKeyOpts())

	if cacheable && !opts.Refresh {
		if d, ok := r.cachedDungeon(ctx, cacheKey); ok {
			if opts.ID != "" {
				d.ID = opts.ID
			} else {
				d.ID = uuid.NewString()
			}
			return d, true, nil
		}
	}

	hooks.OnGenerateStart(ctx, opts.MaxRooms, opts.Seed)
	start := time.Now()
	d, err := generator.New(opts.GeneratorOptions()).Generate(ctx)
	rooms := 0
	if d != nil {
		rooms = d.RoomCount()
	}
	hooks.OnGenerateComplete(ctx, rooms, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if cacheable {
		r.store(ctx, cache.KindDungeon, cacheKey, dio.NewDocument(d, nil), cache.DungeonTTL)
	}
	return d, false, nil
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (*dungeon.Dungeon, error) {
	d, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return d, err
}

// FitWithCacheInfo fits d onto a grid and reports whether the layout came
// from the cache. When opts.Seed is zero the A* fitter is seeded from the
// dungeon's own seed, which keeps its layouts reproducible.
func (r *Runner) FitWithCacheInfo(ctx context.Context, d *dungeon.Dungeon, opts Options) (*fit.Result, bool, error) {
	if err := opts.ValidateForFit(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	hooks := observability.Pipeline()

	if opts.Seed == 0 {
		opts.Seed = d.Seed
	}
	cacheable := opts.Fitter == fit.AlgorithmBFS || opts.Seed != 0
	cacheKey := r.Keyer.LayoutKey(dungeonHash(d), opts.LayoutKeyOpts())

	if cacheable && !opts.Refresh {
		if doc, ok := r.cachedDocument(ctx, cache.KindLayout, cacheKey); ok {
			if layout, err := doc.Layout(); err == nil {
				return layout, true, nil
			}
		}
	}

	fitter, err := fit.New(opts.Fitter, opts.FitOptions())
	if err != nil {
		return nil, false, err
	}

	hooks.OnFitStart(ctx, opts.Fitter, d.RoomCount())
	start := time.Now()
	layout, err := fitter.Fit(ctx, d)
	hooks.OnFitComplete(ctx, opts.Fitter, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if cacheable {
		r.store(ctx, cache.KindLayout, cacheKey, dio.NewDocument(d, layout), cache.LayoutTTL)
	}
	return layout, false, nil
}

// Fit is a convenience wrapper that calls FitWithCacheInfo and discards the cache hit info.
func (r *Runner) Fit(ctx context.Context, d *dungeon.Dungeon, opts Options) (*fit.Result, error) {
	layout, _, err := r.FitWithCacheInfo(ctx, d, opts)
	return layout, err
}

// RenderWithCacheInfo produces every requested format and reports whether
// all of them came from the cache. layout may be nil when only json and
// graph formats are requested.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *dungeon.Dungeon, layout *fit.Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	data, err := dio.Marshal(dio.NewDocument(d, layout))
	if err != nil {
		return nil, false, fmt.Errorf("serialize document for cache key: %w", err)
	}
	docHash := cache.Hash(data)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
			cached, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, cache.KindArtifact)
				break
			}
			observability.Cache().OnCacheHit(ctx, cache.KindArtifact)
			artifacts[format] = cached
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(d, layout, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, out := range rendered {
		key := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, out, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, cache.KindArtifact, len(out))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d *dungeon.Dungeon, layout *fit.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, layout, opts)
	return artifacts, err
}

// RenderDocument renders a stored document without fitting it again.
func (r *Runner) RenderDocument(ctx context.Context, doc *dio.Document, opts Options) (map[string][]byte, error) {
	d, err := doc.Dungeon()
	if err != nil {
		return nil, fmt.Errorf("load dungeon: %w", err)
	}
	layout, err := doc.Layout()
	if err != nil && !errors.Is(err, dio.ErrNoLayout) {
		return nil, err
	}
	return r.Render(ctx, d, layout, opts)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Cache helpers
// =============================================================================

func (r *Runner) cachedDocument(ctx context.Context, keyType, key string) (*dio.Document, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	doc, err := dio.Unmarshal(data)
	if err != nil {
		// Unreadable entries are recomputed and overwritten.
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return doc, true
}

func (r *Runner) cachedDungeon(ctx context.Context, key string) (*dungeon.Dungeon, bool) {
	doc, ok := r.cachedDocument(ctx, cache.KindDungeon, key)
	if !ok {
		return nil, false
	}
	d, err := doc.Dungeon()
	if err != nil {
		return nil, false
	}
	return d, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, doc *dio.Document, ttl time.Duration) {
	data, err := dio.Marshal(doc)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// dungeonHash identifies a dungeon's rooms and corridors independent of its ID.
func dungeonHash(d *dungeon.Dungeon) string {
	doc := dio.NewDocument(d, nil)
	doc.ID = ""
	data, err := dio.Marshal(doc)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
