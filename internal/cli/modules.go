package cli

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archlens/pkg/config"
	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/pipeline"
)

// Sort orders for the modules command.
const (
	sortLines = "lines"
	sortChurn = "churn"
	sortName  = "name"
)

// modulesOpts holds the command-line flags for the modules command.
type modulesOpts struct {
	top      int    // rows to show, 0 for all
	sortBy   string // lines, churn or name
	external bool   // list third-party packages instead
}

// modulesCommand creates the modules command.
func (c *CLI) modulesCommand() *cobra.Command {
	var opts modulesOpts

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the scanned modules",
		Long: `List the scanned modules with their own and rolled-up line counts.

Rolled-up lines include every sub-module. With churn enabled in the
configuration the table also shows churn and commit counts, and --sort churn
ranks modules by how much they changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.sortBy {
			case sortLines, sortChurn, sortName:
			default:
				return errors.New(errors.ErrCodeInvalidInput, "--sort must be lines, churn or name, got %q", opts.sortBy)
			}
			if opts.top < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--top must not be negative")
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.sortBy == sortChurn {
				cfg.History.Churn = true
			}
			return c.runModules(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.top, "top", "n", 0, "show only the first n modules (0 shows all)")
	cmd.Flags().StringVarP(&opts.sortBy, "sort", "s", sortLines, "sort by lines, churn or name")
	cmd.Flags().BoolVar(&opts.external, "external", false, "list third-party packages instead")

	return cmd
}

func (c *CLI) runModules(ctx context.Context, cfg *config.Config, opts modulesOpts) error {
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	scan, err := c.runScan(ctx, runner, cfg)
	if err != nil {
		return err
	}

	if opts.external {
		printExternal(scan, opts.top)
		return nil
	}

	rows := moduleRows(scan, opts.sortBy)
	if opts.top > 0 && len(rows) > opts.top {
		rows = rows[:opts.top]
	}

	headers := []string{"Module", "Lines", "Rolled", "Imports"}
	if scan.Churn != nil {
		headers = append(headers, "Churn", "Commits")
	}
	table := make([][]string, len(rows))
	for i, r := range rows {
		table[i] = r.cells(scan.Churn != nil)
	}
	printTable(headers, table, 1, 2, 3, 4, 5)
	printStats(
		stat{scan.Forest.System.Len(), "modules"},
		stat{scan.Forest.External.Len(), "third-party"},
	)
	return nil
}

type moduleRow struct {
	name    string
	lines   int
	rolled  int
	imports int
	churn   int
	commits int
}

func (r moduleRow) cells(withChurn bool) []string {
	cells := []string{r.name, strconv.Itoa(r.lines), strconv.Itoa(r.rolled), strconv.Itoa(r.imports)}
	if withChurn {
		cells = append(cells, strconv.Itoa(r.churn), strconv.Itoa(r.commits))
	}
	return cells
}

// moduleRows collects one row per system module, sorted by sortBy with ties
// broken by name.
func moduleRows(scan *pipeline.Scan, sortBy string) []moduleRow {
	rolled := scan.RolledLines()
	churn := scan.RolledChurn()

	var rows []moduleRow
	for d := range scan.Forest.System.All() {
		st := scan.Churn[d.FullName]
		rows = append(rows, moduleRow{
			name:    d.FullName,
			lines:   d.Lines,
			rolled:  rolled[d.FullName],
			imports: len(d.Resolved),
			churn:   churn[d.FullName],
			commits: st.Commits,
		})
	}

	slices.SortStableFunc(rows, func(a, b moduleRow) int {
		var c int
		switch sortBy {
		case sortLines:
			c = cmp.Compare(b.rolled, a.rolled)
		case sortChurn:
			c = cmp.Compare(b.churn, a.churn)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	return rows
}

// printExternal lists third-party packages by how many modules import them.
func printExternal(scan *pipeline.Scan, top int) {
	users := make(map[string]int)
	for d := range scan.Forest.System.All() {
		for _, imp := range d.Resolved {
			if scan.Forest.External.Get(imp) != nil {
				users[imp]++
			}
		}
	}

	var names []string
	for d := range scan.Forest.External.All() {
		names = append(names, d.FullName)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(users[b], users[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if top > 0 && len(names) > top {
		names = names[:top]
	}

	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{StyleExternal.Render(name), strconv.Itoa(users[name])}
	}
	printTable([]string{"Package", "Imported by"}, rows, 1)
}
