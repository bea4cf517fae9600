package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	derrors "github.com/n8l/dungeonmap/pkg/errors"
	"github.com/n8l/dungeonmap/pkg/pipeline"
)

// graphFormats maps the graph command's short format names to pipeline formats.
var graphFormats = map[string]string{
	"dot": pipeline.FormatDOT,
	"svg": pipeline.FormatGraphSVG,
	"png": pipeline.FormatGraphPNG,
}

// graphCommand creates the graph command for drawing the room graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph [dungeon.json]",
		Short: "Draw the room graph with Graphviz",
		Long: `Draw the abstract room graph of a dungeon with Graphviz.

Rooms become nodes labelled with their shape and size; corridors become
edges labelled with their length. Dead ends and traps point at small
terminal nodes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, ok := graphFormats[format]
			if !ok {
				return derrors.New(derrors.ErrCodeInvalidFormat, "unsupported graph format %q (valid: dot, svg, png)", format)
			}
			doc, _, err := loadDocument(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := pipeline.Options{Formats: []string{pf}, Detailed: detailed, Logger: c.Logger}
			artifacts, err := runner.RenderDocument(cmd.Context(), doc, opts)
			if err != nil {
				return fmt.Errorf("render graph: %w", err)
			}

			path := output
			if path == "" {
				path = basePath("", args[0], "dungeon") + "." + pipeline.Extension(pf)
			}
			if err := writeFile(path, artifacts[pf]); err != nil {
				return fmt.Errorf("write output %s: %w", path, err)
			}
			if path != "-" {
				printSuccess("Drew room graph")
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, png, dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.<format>, - for stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include room descriptions and corridor notes")

	return cmd
}
