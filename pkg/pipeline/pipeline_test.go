package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/n8l/dungeonmap/pkg/cache"
	derrors "github.com/n8l/dungeonmap/pkg/errors"
	dio "github.com/n8l/dungeonmap/pkg/io"
)

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"png", false},
		{"svg", false},
		{"txt", false},
		{"dot", false},
		{"graph-svg", false},
		{"graph-png", false},
		{"pdf", true},
		{"PNG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateFitter(t *testing.T) {
	for _, name := range []string{"bfs", "astar"} {
		if err := ValidateFitter(name); err != nil {
			t.Errorf("ValidateFitter(%q) = %v", name, err)
		}
	}
	err := ValidateFitter("dijkstra")
	if !derrors.Is(err, derrors.ErrCodeInvalidFitter) {
		t.Errorf("ValidateFitter(dijkstra) = %v, want INVALID_FITTER", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.MaxRooms != DefaultMaxRooms {
		t.Errorf("MaxRooms = %d, want %d", opts.MaxRooms, DefaultMaxRooms)
	}
	if opts.Fitter != DefaultFitter {
		t.Errorf("Fitter = %q, want %q", opts.Fitter, DefaultFitter)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatPNG {
		t.Errorf("Formats = %v, want [png]", opts.Formats)
	}
	if opts.CellSize != DefaultCellSize {
		t.Errorf("CellSize = %d, want %d", opts.CellSize, DefaultCellSize)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	bad := Options{MaxRooms: -1}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("negative MaxRooms should fail")
	}
	bad = Options{Fitter: "greedy"}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("unknown fitter should fail")
	}
	for _, cs := range []int{-1, derrors.MaxCellSize + 1} {
		bad = Options{CellSize: cs}
		if err := bad.ValidateAndSetDefaults(); !derrors.Is(err, derrors.ErrCodeInvalidInput) {
			t.Errorf("CellSize %d: err = %v, want INVALID_INPUT", cs, err)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		FormatPNG:      "png",
		FormatJSON:     "json",
		FormatGraphSVG: "graph.svg",
		FormatGraphPNG: "graph.png",
	}
	for format, want := range tests {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), Options{
		MaxRooms: 6,
		Seed:     42,
		Formats:  []string{FormatText, FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Dungeon == nil || res.Layout == nil || res.Document == nil {
		t.Fatalf("Execute left stages empty: %+v", res)
	}
	if res.Stats.Rooms != res.Dungeon.RoomCount() || res.Stats.Rooms == 0 {
		t.Errorf("Stats.Rooms = %d, dungeon has %d", res.Stats.Rooms, res.Dungeon.RoomCount())
	}
	if !res.Document.HasLayout() {
		t.Error("document should carry the fitted layout")
	}
	if !strings.Contains(string(res.Artifacts[FormatText]), "#") {
		t.Errorf("text artifact has no room cells:\n%s", res.Artifacts[FormatText])
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph Dungeon") {
		t.Errorf("dot artifact = %q", res.Artifacts[FormatDOT])
	}

	doc, err := dio.Unmarshal(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if doc.ID != res.Dungeon.ID || len(doc.Rooms) != res.Dungeon.RoomCount() {
		t.Errorf("json artifact = id %s rooms %d", doc.ID, len(doc.Rooms))
	}
}

func TestExecuteIsReproducible(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := Options{MaxRooms: 8, Seed: 7, ID: "same", Fitter: "astar", Formats: []string{FormatText}}

	a, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	b, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if string(a.Artifacts[FormatText]) != string(b.Artifacts[FormatText]) {
		t.Error("same seed should produce the same A* layout")
	}
}

func TestExecuteUsesCache(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	runner := NewRunner(c, nil, nil)
	opts := Options{MaxRooms: 5, Seed: 99, ID: "cached", Formats: []string{FormatText, FormatJSON}}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.GenerateHit || first.CacheInfo.FitHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := CacheInfo{GenerateHit: true, FitHit: true, RenderHit: true}
	if second.CacheInfo != want {
		t.Errorf("second run CacheInfo = %+v, want %+v", second.CacheInfo, want)
	}
	if string(first.Artifacts[FormatText]) != string(second.Artifacts[FormatText]) {
		t.Error("cached artifact differs from the original")
	}

	opts.Refresh = true
	third, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if third.CacheInfo.GenerateHit || third.CacheInfo.FitHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass reads: %+v", third.CacheInfo)
	}
}

func TestGenerateRandomSeedNotCached(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	runner := NewRunner(c, nil, nil)

	d, hit, err := runner.GenerateWithCacheInfo(ctx, Options{MaxRooms: 3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if hit {
		t.Error("random seed should never hit")
	}
	if d.Seed == 0 {
		t.Error("random seed should be recorded on the dungeon")
	}
	if c.sets != 0 {
		t.Errorf("random-seed dungeon was cached (%d writes)", c.sets)
	}
}

func TestGenerateCachedGetsFreshID(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(newMemCache(), nil, nil)
	opts := Options{MaxRooms: 4, Seed: 5}

	a, err := runner.Generate(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, hit, err := runner.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Fatal("second generate should hit")
	}
	if a.ID == b.ID {
		t.Error("cached dungeon should get a new ID")
	}
	if a.RoomCount() != b.RoomCount() {
		t.Errorf("rooms = %d vs %d", a.RoomCount(), b.RoomCount())
	}
}

func TestRenderRequiresLayout(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)
	d, err := runner.Generate(ctx, Options{MaxRooms: 3, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}

	_, err = runner.Render(ctx, d, nil, Options{Formats: []string{FormatPNG}})
	if !errors.Is(err, dio.ErrNoLayout) {
		t.Errorf("Render(png, no layout) err = %v, want ErrNoLayout", err)
	}

	out, err := runner.Render(ctx, d, nil, Options{Formats: []string{FormatJSON, FormatDOT}})
	if err != nil {
		t.Fatalf("Render(json, dot): %v", err)
	}
	if len(out[FormatJSON]) == 0 || len(out[FormatDOT]) == 0 {
		t.Errorf("missing artifacts: %v", out)
	}
}

func TestRenderDocument(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(ctx, Options{MaxRooms: 4, Seed: 3, Formats: []string{FormatText}})
	if err != nil {
		t.Fatal(err)
	}

	out, err := runner.RenderDocument(ctx, res.Document, Options{Formats: []string{FormatText}})
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if string(out[FormatText]) != string(res.Artifacts[FormatText]) {
		t.Errorf("stored layout renders differently:\n%s\nvs\n%s", out[FormatText], res.Artifacts[FormatText])
	}
}
