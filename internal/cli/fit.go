package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n8l/dungeonmap/pkg/dungeon"
	dio "github.com/n8l/dungeonmap/pkg/io"
	"github.com/n8l/dungeonmap/pkg/pipeline"
)

// fitCommand creates the fit command: generate or load, fit, and render.
func (c *CLI) fitCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		output string
		store  bool
	)

	cmd := &cobra.Command{
		Use:   "fit [dungeon.json]",
		Short: "Fit a dungeon onto a grid and render it",
		Long: `Fit a dungeon onto a grid and render it.

With an argument, the dungeon is read from a document written by 'generate'.
Without one, a new dungeon is rolled first. The fitted document is always
written as JSON next to the requested formats so it can be rendered again
with 'render'.

Fitters:
  bfs    rooms in rows without overlap, shortest corridors (default)
  astar  jittered rooms, corridors that avoid room walls`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return c.runFit(cmd.Context(), input, opts, output, flags.noCache, store)
		},
	}

	flags.addGenerate(cmd)
	flags.addFit(cmd)
	flags.addRender(cmd)
	flags.addCache(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: <input> or ./dungeon)")
	cmd.Flags().BoolVar(&store, "store", false, "save the fitted document to the dungeon store")

	return cmd
}

func (c *CLI) runFit(ctx context.Context, input string, opts pipeline.Options, output string, noCache, store bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var (
		d        *dungeon.Dungeon
		cacheHit bool
	)
	if input != "" {
		_, d, err = loadDocument(input)
	} else {
		d, cacheHit, err = runner.GenerateWithCacheInfo(ctx, opts)
	}
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fitting %d rooms (%s)...", d.RoomCount(), opts.Fitter))
	spinner.Start()

	layout, fitHit, err := runner.FitWithCacheInfo(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Fit failed")
		return fmt.Errorf("fit: %w", err)
	}
	spinner.SetMessage(fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, d, layout, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	doc := dio.NewDocument(d, layout)
	base := basePath(output, input, "dungeon")
	if input != "" && output == "" {
		base += "." + layout.Fitter
	}

	formats := opts.Formats
	if _, ok := artifacts[pipeline.FormatJSON]; !ok {
		data, err := dio.Marshal(doc)
		if err != nil {
			return err
		}
		artifacts[pipeline.FormatJSON] = data
		formats = append([]string{pipeline.FormatJSON}, formats...)
	}
	paths, err := writeArtifacts(artifactWriteParams{artifacts: artifacts, formats: formats, base: base})
	if err != nil {
		return err
	}

	printSuccess("Fitted with %s", StyleHighlight.Render(layout.Fitter))
	for _, p := range paths {
		printFile(p)
	}
	printStats(d.RoomCount(), d.CorridorCount(), cacheHit || fitHit || renderHit)
	s := layout.Stats
	printDetail("%dx%d cells, %d corridors routed, %d skipped, %d failed",
		layout.Bounds.Width, layout.Bounds.Height, s.CorridorsRouted, s.CorridorsSkipped, s.CorridorsFailed)

	if store {
		st, err := c.newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		id, err := st.Put(ctx, doc)
		if err != nil {
			return fmt.Errorf("store document: %w", err)
		}
		printDetail("stored as %s", id)
	}

	printNewline()
	printNextStep("Render again", appName+" render "+base+".json -f svg")
	return nil
}
