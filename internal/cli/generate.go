package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	dio "github.com/n8l/dungeonmap/pkg/io"
	"github.com/n8l/dungeonmap/pkg/pipeline"
)

// generateCommand creates the generate command for rolling an abstract dungeon.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Roll a dungeon and write its room graph as JSON",
		Long: `Roll a dungeon from the random dungeon tables.

The output is a dungeon.json document holding rooms and corridors but no
grid layout. Use 'fit' to place it on a grid, or 'graph' to draw the room
graph directly.

Dungeons rolled with an explicit --seed are cached locally.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), c.options(cmd, &flags), output, flags.noCache)
		},
	}

	flags.addGenerate(cmd)
	flags.addCache(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "dungeon.json", "output file (- for stdout)")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, cacheHit, err := runner.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	data, err := dio.Marshal(dio.NewDocument(d, nil))
	if err != nil {
		return err
	}
	if err := writeFile(output, data); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	if output == "-" {
		return nil
	}

	printSuccess("Generated dungeon %s", StyleHighlight.Render(d.ID))
	printFile(output)
	printStats(d.RoomCount(), d.CorridorCount(), cacheHit)
	printDetail("seed %d", d.Seed)
	printNewline()
	printNextStep("Fit", appName+" fit "+output)
	return nil
}
