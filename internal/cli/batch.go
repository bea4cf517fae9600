package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/n8l/dungeonmap/pkg/fit"
	"github.com/n8l/dungeonmap/pkg/generator"
	dio "github.com/n8l/dungeonmap/pkg/io"
	"github.com/n8l/dungeonmap/pkg/pipeline"
)

// batchCommand creates the batch command for generating many dungeons.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		flags   pipelineFlags
		count   int
		workers int
		dir     string
		doFit   bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate many dungeons concurrently",
		Long: `Generate many dungeons concurrently, one JSON document per dungeon.

Dungeon i of the batch is rolled from a seed derived from the base --seed,
so the same base seed reproduces the whole batch. With --fit every dungeon
is also fitted onto a grid before it is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags)
			if err := opts.ValidateForGenerate(); err != nil {
				return err
			}
			if doFit {
				if err := opts.ValidateForFit(); err != nil {
					return err
				}
			}
			return c.runBatch(cmd.Context(), opts, count, workers, dir, doFit, flags.noCache)
		},
	}

	flags.addGenerate(cmd)
	flags.addFit(cmd)
	flags.addCache(cmd)
	cmd.Flags().IntVarP(&count, "count", "c", 10, "number of dungeons")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent workers (default: GOMAXPROCS)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "dungeons", "output directory")
	cmd.Flags().BoolVar(&doFit, "fit", false, "fit each dungeon onto a grid")

	return cmd
}

func (c *CLI) runBatch(ctx context.Context, opts pipeline.Options, count, workers int, dir string, doFit, noCache bool) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	prog := newProgress(loggerFromContext(ctx))

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %d dungeons...", count))
	spinner.Start()

	dungeons, err := generator.Batch(ctx, count, opts.GeneratorOptions(), workers)
	if err != nil {
		spinner.StopWithError("Batch failed")
		return fmt.Errorf("generate batch: %w", err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		spinner.StopWithError("Batch failed")
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner.SetMessage(fmt.Sprintf("Writing %d documents...", len(dungeons)))
	var written atomic.Int64
	paths := make([]string, len(dungeons))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, d := range dungeons {
		g.Go(func() error {
			var layout *fit.Result
			if doFit {
				o := opts
				o.Seed = d.Seed
				l, err := runner.Fit(gctx, d, o)
				if err != nil {
					return fmt.Errorf("fit %s: %w", d.ID, err)
				}
				layout = l
			}
			path := filepath.Join(dir, d.ID+".json")
			if err := dio.ExportJSON(dio.NewDocument(d, layout), path); err != nil {
				return err
			}
			paths[i] = path
			spinner.SetMessage(fmt.Sprintf("Writing documents (%d/%d)...", written.Add(1), len(dungeons)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		spinner.StopWithError("Batch failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Generated %d dungeons in %s", len(dungeons), dir))

	rooms, corridors := 0, 0
	for _, d := range dungeons {
		rooms += d.RoomCount()
		corridors += d.CorridorCount()
	}
	printStats(rooms, corridors, false)
	prog.done(fmt.Sprintf("Wrote %d documents", len(paths)))
	return nil
}
