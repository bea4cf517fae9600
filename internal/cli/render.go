package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n8l/dungeonmap/pkg/pipeline"
)

// renderCommand creates the render command for drawing a saved document.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "render [document.json]",
		Short: "Render a fitted document without fitting it again",
		Long: `Render a fitted document without fitting it again.

The document is read as written by 'fit'. Grid formats (png, svg, txt)
need a fitted layout; json and the graph formats also work on documents
written by 'generate'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &flags)
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, flags.noCache)
		},
	}

	flags.addRender(cmd)
	flags.addCache(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: <input>)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	doc, _, err := loadDocument(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	artifacts, err := runner.RenderDocument(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		base:      basePath(output, input, "dungeon"),
	})
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
