package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archlens/pkg/config"
	"github.com/matzehuels/archlens/pkg/observability"
	"github.com/matzehuels/archlens/pkg/pipeline"
	"github.com/matzehuels/archlens/pkg/store"
)

// scanOpts holds the command-line flags for the scan command.
type scanOpts struct {
	churn       bool   // mine churn from git history
	noChurn     bool   // skip churn even if configured
	save        bool   // store a snapshot of the scan
	view        string // view whose edges are stored with the snapshot
	showSkipped bool   // list skipped files
}

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var opts scanOpts

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the source tree and summarize its modules",
		Long: `Scan the source tree and summarize its modules.

Every source file below the root is parsed for imports, which are resolved to
the module or third-party package they name. Files whose module name cannot be
derived, or that cannot be read, are skipped and reported.

With --save the scan is stored as a snapshot; compare snapshots with
'archlens snapshots diff'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.churn {
				cfg.History.Churn = true
			}
			if opts.noChurn {
				cfg.History.Churn = false
			}
			return c.runScanCommand(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.churn, "churn", false, "mine churn from git history")
	cmd.Flags().BoolVar(&opts.noChurn, "no-churn", false, "skip churn even if configured")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store the scan as a snapshot")
	cmd.Flags().StringVar(&opts.view, "view", "top-level", "view whose edges are stored with --save")
	cmd.Flags().BoolVar(&opts.showSkipped, "skipped", false, "list skipped files")
	cmd.MarkFlagsMutuallyExclusive("churn", "no-churn")

	return cmd
}

func (c *CLI) runScanCommand(ctx context.Context, cfg *config.Config, opts scanOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	stats := &importStats{}
	observability.SetCacheHooks(stats)
	defer observability.SetCacheHooks(observability.NoopCacheHooks{})

	scan, err := c.runScan(ctx, runner, cfg)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Scanned %s", scan.Root))

	printSuccess("Scanned %d files", scan.Files)
	printStats(
		stat{scan.Forest.System.Len(), "modules"},
		stat{scan.Forest.External.Len(), "third-party"},
		stat{len(scan.Skipped), "skipped"},
		stat{len(scan.Forest.Diagnostics()), "diagnostics"},
	)
	printStats(
		stat{int(stats.hits.Load()), "cached"},
		stat{int(stats.misses.Load()), "parsed"},
	)
	printKeyValue("Root", scan.Root)
	printKeyValue("Lines", fmt.Sprint(sumLines(scan.Lines)))
	if scan.Churn != nil {
		printKeyValue("Churned", fmt.Sprintf("%d modules", len(scan.Churn)))
	}
	for _, d := range scan.Forest.Diagnostics() {
		printWarning("%s %s: %s", d.Kind, d.Module, d.Message)
	}
	if opts.showSkipped {
		for _, s := range scan.Skipped {
			printDetail("%s: %s", s.Path, s.Reason)
		}
	}

	if opts.save {
		v, err := cfg.View(opts.view)
		if err != nil {
			return err
		}
		st, err := c.openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		g := runner.Graph(scan, runner.View(ctx, scan, v, cfg.System), pipeline.GraphOptions{View: v.Name})
		snap, err := st.Save(ctx, store.Input{Root: scan.Root, View: v.Name, Forest: scan.Forest, Graph: g})
		if err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		printSuccess("Saved snapshot %s", StyleHighlight.Render(snap.ID))
		printNextStep("Compare with an earlier scan", "archlens snapshots diff <id> "+snap.ID)
		return nil
	}

	printNextStep("Draw the top-level view", "archlens view top-level")
	return nil
}

func sumLines(lines map[string]int) int {
	var total int
	for _, n := range lines {
		total += n
	}
	return total
}
