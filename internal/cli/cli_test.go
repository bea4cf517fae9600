package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	dio "github.com/n8l/dungeonmap/pkg/io"
	"github.com/n8l/dungeonmap/pkg/pipeline"
)

// isolate points every XDG directory at a temp dir so tests never touch the
// user's config, cache or store.
func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	return root
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"png", []string{"png"}},
		{"png, svg,,txt", []string{"png", "svg", "txt"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "", "dungeon"},
		{"", "maps/cave.json", "maps/cave"},
		{"out/map.png", "cave.json", "out/map"},
		{"out/map.graph.svg", "", "out/map"},
		{"out/map", "", "out/map"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input, "dungeon"); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "sub", "map")
	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{"txt": []byte("#"), "graph-svg": []byte("<svg/>")},
		formats:   []string{"txt", "png", "graph-svg"},
		base:      base,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{base + ".txt", base + ".graph.svg"}
	if !slices.Equal(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	for _, p := range want {
		if _, err := os.Stat(p); err != nil {
			t.Error(err)
		}
	}
}

func TestOptionsFlagsOverrideConfig(t *testing.T) {
	isolate(t)
	c := New(io.Discard, LogInfo)
	c.Config.Generator.MaxRooms = 25
	c.Config.Fit.Algorithm = "astar"

	var flags pipelineFlags
	cmd := &cobra.Command{Use: "x"}
	flags.addGenerate(cmd)
	flags.addFit(cmd)
	flags.addRender(cmd)
	if err := cmd.ParseFlags([]string{"--seed", "9", "-f", "txt,svg"}); err != nil {
		t.Fatal(err)
	}

	opts := c.options(cmd, &flags)
	if opts.MaxRooms != 25 || opts.Fitter != "astar" {
		t.Errorf("config values lost: rooms=%d fitter=%q", opts.MaxRooms, opts.Fitter)
	}
	if opts.Seed != 9 || !slices.Equal(opts.Formats, []string{"txt", "svg"}) {
		t.Errorf("flags ignored: seed=%d formats=%v", opts.Seed, opts.Formats)
	}
}

func TestCommandsEndToEnd(t *testing.T) {
	dir := isolate(t)
	dungeonPath := filepath.Join(dir, "cave.json")

	if err := run(t, "generate", "--seed", "5", "-n", "6", "-o", dungeonPath); err != nil {
		t.Fatalf("generate: %v", err)
	}
	doc, err := dio.ImportJSON(dungeonPath)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Seed != 5 || doc.HasLayout() {
		t.Errorf("generated document seed=%d layout=%v", doc.Seed, doc.HasLayout())
	}

	if err := run(t, "fit", dungeonPath, "-f", "txt", "--store"); err != nil {
		t.Fatalf("fit: %v", err)
	}
	fitted := filepath.Join(dir, "cave.bfs.json")
	for _, p := range []string{fitted, filepath.Join(dir, "cave.bfs.txt")} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("fit output missing: %v", err)
		}
	}
	stored, _ := os.ReadDir(filepath.Join(dir, "data", appName, "dungeons"))
	if !slices.ContainsFunc(stored, func(e os.DirEntry) bool { return strings.HasSuffix(e.Name(), ".json") }) {
		t.Error("--store did not write to the file store")
	}

	if err := run(t, "render", fitted, "-f", "svg"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "cave.bfs.svg")); err != nil {
		t.Error(err)
	}

	if err := run(t, "graph", dungeonPath, "-f", "dot"); err != nil {
		t.Fatalf("graph: %v", err)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "cave.dot"))
	if err != nil || !strings.Contains(string(dot), "digraph") {
		t.Errorf("graph output: %v", err)
	}

	if err := run(t, "inspect", fitted, "--route", "1,2"); err != nil {
		t.Errorf("inspect: %v", err)
	}
}

func TestRenderNeedsLayout(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "d.json")
	if err := run(t, "generate", "--seed", "3", "-o", path); err != nil {
		t.Fatal(err)
	}
	if err := run(t, "render", path, "-f", "png"); err == nil {
		t.Error("rendering an unfitted document as png succeeded")
	}
}

func TestBatchCommand(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "batch")
	if err := run(t, "batch", "-c", "4", "--seed", "11", "--fit", "--fitter", "astar", "-d", out); err != nil {
		t.Fatalf("batch: %v", err)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Fatalf("batch wrote %d files, want 4", len(entries))
	}
	doc, err := dio.ImportJSON(filepath.Join(out, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Fitter != "astar" {
		t.Errorf("batch document fitter = %q", doc.Fitter)
	}
}

func TestInvalidInput(t *testing.T) {
	isolate(t)
	tests := [][]string{
		{"generate", "-n", "5000", "-o", "-"},
		{"fit", "--fitter", "dijkstra"},
		{"graph", "missing.json", "-f", "pdf"},
		{"completion", "tcsh"},
	}
	for _, args := range tests {
		if err := run(t, args...); err == nil {
			t.Errorf("%v succeeded", args)
		}
	}
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)
	cfg := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(cfg, []byte("[fit]\nalgorithm = \"astar\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "m")
	if err := run(t, "--config", cfg, "fit", "--seed", "2", "-f", "txt", "-o", out); err != nil {
		t.Fatal(err)
	}
	doc, err := dio.ImportJSON(out + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Fitter != "astar" {
		t.Errorf("fitter = %q, want astar from config", doc.Fitter)
	}

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("[fit]\nalgorithm = \"dfs\"\n"), 0644)
	if err := run(t, "--config", bad, "config"); err == nil {
		t.Error("invalid config accepted")
	}
}

func TestViewerModel(t *testing.T) {
	isolate(t)
	ctx := context.Background()
	runner := pipeline.NewRunner(nil, nil, New(io.Discard, LogInfo).Logger)
	opts := pipeline.Options{MaxRooms: 5, Seed: 21}
	if err := opts.ValidateForGenerate(); err != nil {
		t.Fatal(err)
	}

	var m tea.Model = newViewerModel(ctx, runner, opts)
	m, _ = m.Update(m.Init()())
	vm := m.(viewerModel)
	if vm.dungeon == nil || vm.dungeon.Seed != 21 || vm.busy {
		t.Fatalf("after init: dungeon=%v busy=%v", vm.dungeon, vm.busy)
	}
	if !strings.Contains(vm.View(), "Shape") {
		t.Error("unfitted view should list rooms")
	}

	// p needs a layout.
	m, cmd := m.Update(keyMsg("p"))
	if cmd != nil || m.(viewerModel).err == nil {
		t.Error("png save without layout should fail immediately")
	}

	m, cmd = m.Update(keyMsg("b"))
	if cmd == nil || !m.(viewerModel).busy {
		t.Fatal("b did not start a fit")
	}
	m, _ = m.Update(cmd())
	vm = m.(viewerModel)
	if vm.layout == nil || vm.layout.Fitter != "bfs" || len(vm.mapText) == 0 {
		t.Fatalf("after fit: layout=%v lines=%d", vm.layout, len(vm.mapText))
	}

	vm.jsonPath = filepath.Join(t.TempDir(), "v.json")
	m, cmd = vm.Update(keyMsg("s"))
	m, _ = m.Update(cmd())
	if _, err := os.Stat(vm.jsonPath); err != nil {
		t.Fatalf("save: %v", err)
	}

	m, _ = m.Update(keyMsg("r"))
	m, cmd = m.Update(keyMsg("l")) // ignored while busy
	if cmd != nil {
		t.Error("keys should be ignored while busy")
	}

	vm = m.(viewerModel)
	vm.busy = false
	m, cmd = vm.Update(keyMsg("l"))
	m, _ = m.Update(cmd())
	vm = m.(viewerModel)
	if vm.layout == nil || vm.dungeon.Seed != 21 {
		t.Errorf("load did not restore the saved document: %+v", vm.status)
	}

	_, cmd = m.Update(keyMsg("q"))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestViewerAStarReseeds(t *testing.T) {
	isolate(t)
	ctx := context.Background()
	runner := pipeline.NewRunner(nil, nil, New(io.Discard, LogInfo).Logger)
	opts := pipeline.Options{MaxRooms: 8, Seed: 5}
	if err := opts.ValidateForGenerate(); err != nil {
		t.Fatal(err)
	}

	vm := newViewerModel(ctx, runner, opts)
	seeds := []uint64{101, 202}
	vm.seeds = func() uint64 {
		s := seeds[0]
		seeds = seeds[1:]
		return s
	}
	var m tea.Model = vm
	m, _ = m.Update(m.Init()())

	var statuses []string
	for range 2 {
		var cmd tea.Cmd
		m, cmd = m.Update(keyMsg("a"))
		if cmd == nil {
			t.Fatal("a did not start a fit")
		}
		msg, ok := cmd().(layoutMsg)
		if !ok {
			t.Fatalf("fit returned %T", msg)
		}
		m, _ = m.Update(msg)
		statuses = append(statuses, m.(viewerModel).status)
	}
	if !strings.Contains(statuses[0], "seed 101") || !strings.Contains(statuses[1], "seed 202") {
		t.Errorf("statuses = %q", statuses)
	}

	if a, b := fitSeed(), fitSeed(); a == 0 || a == b {
		t.Errorf("fitSeed() = %d, %d", a, b)
	}
}

func TestViewRejectsCellSize(t *testing.T) {
	isolate(t)
	for _, cs := range []string{"-1", "257", "100000"} {
		err := run(t, "view", "--cell-size="+cs)
		if err == nil || !strings.Contains(err.Error(), "cell_size") {
			t.Errorf("view --cell-size %s: err = %v", cs, err)
		}
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
