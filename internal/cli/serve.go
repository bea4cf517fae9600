package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n8l/dungeonmap/internal/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags pipelineFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dungeon API over HTTP",
		Long: `Serve the dungeon API over HTTP.

Generated dungeons are kept in the configured store (files by default,
MongoDB with storage.backend = "mongo") and pipeline results in the
configured cache (files, Redis or none).

Endpoints:
  POST   /api/v1/dungeons
  GET    /api/v1/dungeons
  GET    /api/v1/dungeons/{id}
  DELETE /api/v1/dungeons/{id}
  POST   /api/v1/dungeons/{id}/fit?fitter=bfs|astar
  GET    /api/v1/dungeons/{id}/render/{format}
  GET    /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			store, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(runner, store, c.Logger)
			srv.Defaults = c.options(cmd, &flags)

			printInfo("Listening on %s", StyleLink.Render("http://"+displayAddr(addr)))
			return srv.ListenAndServe(ctx, addr,
				c.Config.Server.ReadTimeout.Duration,
				c.Config.Server.WriteTimeout.Duration)
		},
	}

	flags.addFit(cmd)
	flags.addCache(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: :8080)")

	return cmd
}

// displayAddr turns a listen address like ":8080" into something clickable.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
