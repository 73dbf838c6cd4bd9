package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archlens/pkg/config"
	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/history"
	"github.com/matzehuels/archlens/pkg/metrics"
)

// churnOpts holds the command-line flags for the churn command.
type churnOpts struct {
	top   int  // rows to show
	files bool // rank files instead of modules
}

// churnCommand creates the churn command.
func (c *CLI) churnCommand() *cobra.Command {
	var opts churnOpts

	cmd := &cobra.Command{
		Use:   "churn",
		Short: "Rank modules by how much they changed",
		Long: `Rank modules by churn mined from the git history of HEAD.

Churn is the number of added and deleted lines over all commits touching a
file. A module's figure includes its sub-modules. With --files the raw
per-file tallies are shown, including files that are not modules.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.top < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--top must not be negative")
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.files {
				return runFileChurn(cmd.Context(), cfg, opts.top)
			}
			cfg.History.Churn = true
			return c.runModuleChurn(cmd.Context(), cfg, opts.top)
		},
	}

	cmd.Flags().IntVarP(&opts.top, "top", "n", 20, "show the n highest-churn entries (0 shows all)")
	cmd.Flags().BoolVar(&opts.files, "files", false, "rank files instead of modules")

	return cmd
}

func (c *CLI) runModuleChurn(ctx context.Context, cfg *config.Config, top int) error {
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	scan, err := c.runScan(ctx, runner, cfg)
	if err != nil {
		return err
	}

	rolled := scan.RolledChurn()
	n := top
	if n == 0 {
		n = -1
	}
	var rows [][]string
	for _, name := range metrics.Top(rolled, n) {
		if scan.Forest.System.Get(name) == nil {
			continue
		}
		st := scan.Churn[name]
		rows = append(rows, []string{
			name,
			strconv.Itoa(rolled[name]),
			strconv.Itoa(st.Churn),
			strconv.Itoa(st.Commits),
		})
	}
	if len(rows) == 0 {
		printInfo("No history for the modules below %s", scan.Root)
		return nil
	}
	printTable([]string{"Module", "Churn", "Own", "Commits"}, rows, 1, 2, 3)
	return nil
}

func runFileChurn(ctx context.Context, cfg *config.Config, top int) error {
	dir := cfg.History.Repository
	if dir == "" {
		dir = cfg.Source.Root
	}

	spinner := newSpinner(ctx, "Reading history...")
	spinner.Start()
	stats, err := history.Churn(ctx, dir)
	if err != nil {
		spinner.StopWithError("Reading history failed")
		return err
	}
	spinner.Stop()

	paths := stats.Paths()
	if top > 0 && len(paths) > top {
		paths = paths[:top]
	}
	rows := make([][]string, len(paths))
	for i, p := range paths {
		rows[i] = []string{p, strconv.Itoa(stats[p].Churn), strconv.Itoa(stats[p].Commits)}
	}
	printTable([]string{"File", "Churn", "Commits"}, rows, 1, 2)
	printStats(stat{len(stats), "files in history"})
	return nil
}
