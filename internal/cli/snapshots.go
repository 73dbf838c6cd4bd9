package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archlens/pkg/store"
)

// snapshotsCommand creates the snapshots command.
func (c *CLI) snapshotsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snap"},
		Short:   "Manage stored scans",
		Long: `Manage scans stored with 'archlens scan --save'.

Snapshots record the modules, imports and view edges of one scan so that the
architecture can be compared over time.`,
	}

	cmd.AddCommand(c.snapshotsListCommand())
	cmd.AddCommand(c.snapshotsDiffCommand())
	cmd.AddCommand(c.snapshotsRemoveCommand())

	return cmd
}

// withStore loads the configuration and runs fn with the snapshot store.
func (c *CLI) withStore(fn func(st *store.Store, root string) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := c.openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st, cfg.Source.Root)
}

// snapshotsListCommand creates the "snapshots list" subcommand.
func (c *CLI) snapshotsListCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List snapshots of the source root, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(func(st *store.Store, root string) error {
				if all {
					root = ""
				}
				snaps, err := st.Snapshots(cmd.Context(), root)
				if err != nil {
					return err
				}
				if len(snaps) == 0 {
					printInfo("No snapshots")
					printNextStep("Store one", "archlens scan --save")
					return nil
				}
				rows := make([][]string, len(snaps))
				for i, s := range snaps {
					rows[i] = []string{
						s.ID,
						s.CreatedAt.Local().Format("2006-01-02 15:04"),
						s.View,
						strconv.Itoa(s.Modules),
						strconv.Itoa(s.Edges),
					}
					if all {
						rows[i] = append(rows[i], s.Root)
					}
				}
				headers := []string{"ID", "Created", "View", "Modules", "Edges"}
				if all {
					headers = append(headers, "Root")
				}
				printTable(headers, rows, 3, 4)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "list snapshots of every root")

	return cmd
}

// snapshotsDiffCommand creates the "snapshots diff" subcommand.
func (c *CLI) snapshotsDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <from> <to>",
		Short: "Show modules and edges that changed between two snapshots",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(func(st *store.Store, _ string) error {
				d, err := st.Diff(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				printDiff(d)
				return nil
			})
		},
	}
}

func printDiff(d store.Diff) {
	if d.Empty() {
		printSuccess("No changes between %s and %s", d.From, d.To)
		return
	}
	fmt.Fprintln(out, StyleTitle.Render("Modules"))
	for _, m := range d.AddedModules {
		printChange(true, m)
	}
	for _, m := range d.RemovedModules {
		printChange(false, m)
	}
	fmt.Fprintln(out, StyleTitle.Render("Imports"))
	for _, e := range d.AddedEdges {
		printChange(true, e.From+" "+iconArrow+" "+e.To)
	}
	for _, e := range d.RemovedEdges {
		printChange(false, e.From+" "+iconArrow+" "+e.To)
	}
	printStats(
		stat{len(d.AddedModules), "modules added"},
		stat{len(d.RemovedModules), "modules removed"},
		stat{len(d.AddedEdges), "imports added"},
		stat{len(d.RemovedEdges), "imports removed"},
	)
}

// snapshotsRemoveCommand creates the "snapshots rm" subcommand.
func (c *CLI) snapshotsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Delete snapshots",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(func(st *store.Store, _ string) error {
				for _, id := range args {
					if err := st.Delete(cmd.Context(), id); err != nil {
						return err
					}
					printSuccess("Deleted %s", id)
				}
				return nil
			})
		},
	}
}
