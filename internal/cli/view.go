package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/n8l/dungeonmap/pkg/dungeon"
	"github.com/n8l/dungeonmap/pkg/fit"
	dio "github.com/n8l/dungeonmap/pkg/io"
	"github.com/n8l/dungeonmap/pkg/pipeline"
	"github.com/n8l/dungeonmap/pkg/render"
)

// Viewer styles
var (
	viewerBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	viewerErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	viewerDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// viewCommand creates the interactive viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		flags   pipelineFlags
		jsonOut string
		pngOut  string
	)

	cmd := &cobra.Command{
		Use:   "view [dungeon.json]",
		Short: "Browse dungeons interactively in the terminal",
		Long: `Browse dungeons interactively in the terminal.

Keys:
  r        roll a new dungeon
  b        fit with BFS
  a        fit with A*
  s        save the document as JSON
  p        save the map as PNG
  l        load the JSON document
  arrows   scroll the map
  q        quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.options(cmd, &flags)
			if err := opts.ValidateForGenerate(); err != nil {
				return err
			}
			if err := opts.ValidateForFit(); err != nil {
				return err
			}
			opts.Formats = []string{pipeline.FormatPNG}
			if err := opts.ValidateForRender(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			m := newViewerModel(ctx, runner, opts)
			m.jsonPath, m.pngPath = jsonOut, pngOut
			if len(args) == 1 {
				m.jsonPath = args[0]
			}

			// The log would scribble over the alternate screen.
			level := c.Logger.GetLevel()
			c.Logger.SetLevel(LogError)
			defer c.Logger.SetLevel(level)

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		},
	}

	flags.addGenerate(cmd)
	flags.addFit(cmd)
	cmd.Flags().StringVarP(&jsonOut, "output", "o", "dungeon.json", "file used by save (s) and load (l)")
	cmd.Flags().StringVar(&pngOut, "png", "dungeon.png", "file used by save PNG (p)")
	cmd.Flags().IntVar(&flags.cellSize, "cell-size", 0, "pixels per grid cell in saved PNGs")

	return cmd
}

// =============================================================================
// viewerModel - Interactive dungeon viewer
// =============================================================================

// Messages produced by viewer commands.
type (
	dungeonMsg struct{ d *dungeon.Dungeon }
	layoutMsg  struct {
		layout *fit.Result
		seed   uint64
	}
	loadedMsg  struct {
		d      *dungeon.Dungeon
		layout *fit.Result
	}
	savedMsg struct{ path string }
	errMsg   struct{ err error }
)

// viewerModel is the bubbletea model for the dungeon viewer.
type viewerModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	opts   pipeline.Options

	jsonPath string
	pngPath  string

	// seeds yields the A* seed for each fit so repeated presses of a
	// produce different layouts.
	seeds func() uint64

	dungeon *dungeon.Dungeon
	layout  *fit.Result
	mapText []string

	status string
	err    error
	busy   bool

	width, height int
	offX, offY    int
}

func newViewerModel(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) viewerModel {
	return viewerModel{
		ctx:      ctx,
		runner:   runner,
		opts:     opts,
		jsonPath: "dungeon.json",
		pngPath:  "dungeon.png",
		seeds:    fitSeed,
		width:    100,
		height:   30,
		status:   "rolling dungeon...",
		busy:     true,
	}
}

func (m viewerModel) Init() tea.Cmd {
	return m.generate(m.opts.Seed)
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case dungeonMsg:
		m.busy, m.err = false, nil
		m.dungeon, m.layout, m.mapText = msg.d, nil, nil
		m.offX, m.offY = 0, 0
		m.status = fmt.Sprintf("rolled %d rooms (seed %d)", msg.d.RoomCount(), msg.d.Seed)

	case layoutMsg:
		m.busy, m.err = false, nil
		m.setLayout(msg.layout)
		s := msg.layout.Stats
		m.status = fmt.Sprintf("fitted with %s: %d routed, %d skipped, %d failed",
			msg.layout.Fitter, s.CorridorsRouted, s.CorridorsSkipped, s.CorridorsFailed)
		if msg.seed != 0 {
			m.status += fmt.Sprintf(" (seed %d)", msg.seed)
		}

	case loadedMsg:
		m.busy, m.err = false, nil
		m.dungeon = msg.d
		m.setLayout(msg.layout)
		m.status = "loaded " + m.jsonPath

	case savedMsg:
		m.busy, m.err = false, nil
		m.status = "saved " + msg.path

	case errMsg:
		m.busy = false
		m.err = msg.err
	}
	return m, nil
}

func (m viewerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.offY = max(m.offY-1, 0)
		return m, nil
	case "down", "j":
		m.offY = min(m.offY+1, max(len(m.mapText)-1, 0))
		return m, nil
	case "left":
		m.offX = max(m.offX-2, 0)
		return m, nil
	case "right":
		m.offX += 2
		return m, nil
	}

	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	switch msg.String() {
	case "r":
		m.status, cmd = "rolling dungeon...", m.generate(0)
	case "l":
		m.status, cmd = "loading "+m.jsonPath+"...", m.load()
	case "b", "a", "s", "p":
		if m.dungeon == nil {
			return m, nil
		}
		switch msg.String() {
		case "b":
			m.status, cmd = "fitting with BFS...", m.fit(fit.AlgorithmBFS)
		case "a":
			m.status, cmd = "fitting with A*...", m.fit(fit.AlgorithmAStar)
		case "s":
			m.status, cmd = "saving...", m.saveJSON()
		case "p":
			if m.layout == nil {
				m.err = dio.ErrNoLayout
				return m, nil
			}
			m.status, cmd = "saving...", m.savePNG()
		}
	default:
		return m, nil
	}
	m.busy, m.err = true, nil
	return m, cmd
}

func (m *viewerModel) setLayout(layout *fit.Result) {
	m.layout, m.mapText = layout, nil
	m.offX, m.offY = 0, 0
	if layout == nil {
		return
	}
	text, err := render.Render(render.FormatText, layout.Grid, layout.Bounds)
	if err != nil {
		m.err = err
		return
	}
	m.mapText = strings.Split(strings.TrimRight(string(text), "\n"), "\n")
}

// =============================================================================
// Commands
// =============================================================================

func (m viewerModel) generate(seed uint64) tea.Cmd {
	opts := m.opts
	opts.Seed = seed
	return func() tea.Msg {
		d, err := m.runner.Generate(m.ctx, opts)
		if err != nil {
			return errMsg{err}
		}
		return dungeonMsg{d}
	}
}

func (m viewerModel) fit(fitter string) tea.Cmd {
	opts := m.opts
	opts.Fitter = fitter
	opts.Seed = 0
	if fitter == fit.AlgorithmAStar {
		opts.Seed = m.seeds()
	}
	d := m.dungeon
	return func() tea.Msg {
		layout, err := m.runner.Fit(m.ctx, d, opts)
		if err != nil {
			return errMsg{err}
		}
		return layoutMsg{layout, opts.Seed}
	}
}

// fitSeed returns a random non-zero seed. Zero would make the fitter fall
// back to the dungeon seed.
func fitSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

func (m viewerModel) saveJSON() tea.Cmd {
	doc, path := dio.NewDocument(m.dungeon, m.layout), m.jsonPath
	return func() tea.Msg {
		if err := dio.ExportJSON(doc, path); err != nil {
			return errMsg{err}
		}
		return savedMsg{path}
	}
}

func (m viewerModel) savePNG() tea.Cmd {
	opts := m.opts
	opts.Formats = []string{pipeline.FormatPNG}
	d, layout, path := m.dungeon, m.layout, m.pngPath
	return func() tea.Msg {
		out, err := m.runner.Render(m.ctx, d, layout, opts)
		if err != nil {
			return errMsg{err}
		}
		if err := os.WriteFile(path, out[pipeline.FormatPNG], 0644); err != nil {
			return errMsg{err}
		}
		return savedMsg{path}
	}
}

func (m viewerModel) load() tea.Cmd {
	path := m.jsonPath
	return func() tea.Msg {
		doc, d, err := loadDocument(path)
		if err != nil {
			return errMsg{err}
		}
		layout, err := doc.Layout()
		if err != nil && !errors.Is(err, dio.ErrNoLayout) {
			return errMsg{err}
		}
		return loadedMsg{d: d, layout: layout}
	}
}

// =============================================================================
// View
// =============================================================================

func (m viewerModel) View() string {
	var b strings.Builder

	title := "Dungeon"
	if m.dungeon != nil {
		title = fmt.Sprintf("Dungeon %s", m.dungeon.ID)
	}
	b.WriteString(StyleTitle.Render(title))
	if m.layout != nil {
		b.WriteString(viewerDimStyle.Render("  " + m.layout.Fitter))
	}
	b.WriteString("\n")
	b.WriteString(viewerDimStyle.Render("r roll  b bfs  a a*  s save  p png  l load  ←↑↓→ scroll  q quit"))
	b.WriteString("\n\n")

	switch {
	case m.dungeon == nil:
	case m.layout == nil:
		b.WriteString(roomTable(m.dungeon, dungeon.NoRoom))
	default:
		b.WriteString(viewerBorderStyle.Render(m.viewport()))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(viewerErrorStyle.Render(iconError + " " + m.err.Error()))
	} else {
		b.WriteString(viewerDimStyle.Render(m.status))
	}
	return b.String()
}

// viewport crops the text map to the window, honoring the scroll offsets.
func (m viewerModel) viewport() string {
	rows := max(m.height-8, 5)
	cols := max(m.width-4, 10)

	end := min(m.offY+rows, len(m.mapText))
	lines := make([]string, 0, rows)
	for _, line := range m.mapText[min(m.offY, end):end] {
		runes := []rune(line)
		if m.offX >= len(runes) {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, string(runes[m.offX:min(m.offX+cols, len(runes))]))
	}
	return strings.Join(lines, "\n")
}
