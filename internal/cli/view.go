package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archlens/pkg/config"
	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/pipeline"
)

// viewOpts holds the command-line flags for the view command.
type viewOpts struct {
	formats  string  // comma-separated output formats
	output   string  // output file path
	within   string  // restrict to the sub-modules of one module
	collapse int     // merge modules deeper than this depth
	reduce   bool    // break cycles and drop implied edges
	detailed bool    // label nodes with line and churn figures
	scale    float64 // PNG scale factor
	list     bool    // list configured views instead of drawing
}

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view [name]",
		Short: "Draw an architecture view",
		Long: `Draw an architecture view of the source tree.

Views are defined in archlens.toml; without a configuration the top-level view
is available. Each module is drawn as a box sized by its lines of code and each
resolved import as an edge. Third-party packages are drawn separately.

Output formats: svg (default), pdf, png, dot, json. PDF and PNG need
rsvg-convert on the PATH.`,
		Example: `  # Draw the top-level view as SVG
  archlens view top-level

  # Only the sub-modules of app.api, merged two levels deep
  archlens view top-level --within app.api --collapse 2

  # Several formats at once
  archlens view top-level -f svg,png -o docs/architecture.svg`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeViews,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.list {
				return listViews(cfg)
			}
			name := "top-level"
			if len(args) == 1 {
				name = args[0]
			} else if len(cfg.Views) > 0 {
				name = cfg.Views[0].Name
			}
			return c.runView(cmd.Context(), cfg, name, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, pdf, png, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <view>.<format>)")
	cmd.Flags().StringVar(&opts.within, "within", "", "only draw the sub-modules of this module")
	cmd.Flags().IntVar(&opts.collapse, "collapse", 0, "merge modules deeper than this depth (0 keeps all)")
	cmd.Flags().BoolVar(&opts.reduce, "reduce", false, "break cycles and drop transitively implied edges")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with lines and churn")
	cmd.Flags().Float64Var(&opts.scale, "scale", 1, "scale factor for PNG output")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "list the configured views")

	return cmd
}

func (c *CLI) runView(ctx context.Context, cfg *config.Config, name string, opts viewOpts) error {
	formats, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}
	if opts.within != "" {
		if err := errors.ValidateModuleName(opts.within); err != nil {
			return err
		}
	}
	if opts.collapse < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "--collapse must not be negative")
	}
	v, err := cfg.View(name)
	if err != nil {
		return err
	}

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	scan, err := c.runScan(ctx, runner, cfg)
	if err != nil {
		return err
	}

	forest := runner.View(ctx, scan, v, cfg.System)
	g := runner.Graph(scan, forest, pipeline.GraphOptions{
		View:     v.Name,
		Within:   opts.within,
		Collapse: opts.collapse,
		Reduce:   opts.reduce,
	})
	if g.NodeCount() == 0 {
		printWarning("View %q has no modules", v.Name)
		return nil
	}

	spinner := newSpinner(ctx, "Rendering "+v.Name+"...")
	spinner.Start()
	artifacts, err := runner.Render(ctx, g, pipeline.RenderOptions{
		Title:       v.Title,
		Detailed:    opts.detailed,
		WeightScale: v.WeightScale,
		MinWeight:   v.MinWeight,
		Formats:     formats,
		Scale:       opts.scale,
		CacheKey:    v.Name,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	var paths []string
	for _, f := range formats {
		path := outputPath(opts.output, v.Name, f, len(formats) > 1)
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	prog.done(fmt.Sprintf("Rendered %s", v.Name))

	printSuccess("Drew %s", StyleHighlight.Render(v.Title))
	printStats(
		stat{g.NodeCount(), "nodes"},
		stat{g.EdgeCount(), "edges"},
		stat{len(forest.Diagnostics()), "diagnostics"},
	)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

func listViews(cfg *config.Config) error {
	views, err := cfg.CompileViews()
	if err != nil {
		return err
	}
	rows := make([][]string, len(views))
	for i, v := range views {
		rows[i] = []string{v.Name, v.Title}
	}
	printTable([]string{"View", "Title"}, rows)
	return nil
}
