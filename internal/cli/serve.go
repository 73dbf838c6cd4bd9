package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archlens/internal/server"
	"github.com/matzehuels/archlens/pkg/observability"
	"github.com/matzehuels/archlens/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve views and module reports over HTTP",
		Long: `Serve views and module reports over HTTP.

The source tree is scanned on the first request and kept until POST /rescan.
Routes:
  GET  /views                      configured views
  GET  /views/{name}.{format}      rendered view (svg, pdf, png, dot, json)
  GET  /modules                    module table as JSON
  POST /rescan                     scan again
  GET  /snapshots                  stored snapshots
  POST /snapshots?view=name        store the current scan
  GET  /snapshots/{a}/diff/{b}     changes between two snapshots`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cfg)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			var st *store.Store
			if !noStore {
				if st, err = c.openStore(cfg); err != nil {
					return err
				}
				defer st.Close()
			}

			logger := loggerFromContext(ctx)
			observability.SetHTTPHooks(requestLog{logger: logger})

			printInfo("Listening on %s", StyleHighlight.Render("http://"+addr))
			return server.New(cfg, runner, st, logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from the configuration)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable the snapshot routes")

	return cmd
}
