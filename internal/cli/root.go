package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/archlens/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands
// registered. The logger is attached to the command context before any
// subcommand runs.
//
// Global flags:
//   - --config (-c): configuration file (default: ./archlens.toml if present)
//   - --root (-r): source root, overriding the configuration
//   - --no-cache: read every file instead of using the import cache
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "archlens draws the module architecture of a Python codebase",
		Long: `archlens scans a Python source tree, resolves every import to the module or
third-party package it refers to, and draws configurable architecture views:
top-level packages, the sub-modules of one package, or custom fold/filter
combinations. Modules are sized by lines of code and can be ranked by churn
mined from git history.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "configuration file (default: ./archlens.toml if present)")
	root.PersistentFlags().StringVarP(&c.root, "root", "r", "", "source root (overrides the configuration)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the import cache")

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.modulesCommand())
	root.AddCommand(c.churnCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.snapshotsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
