package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/matzehuels/archlens/pkg/errors"
	"github.com/matzehuels/archlens/pkg/history"
	"github.com/matzehuels/archlens/pkg/modtree"
	"github.com/matzehuels/archlens/pkg/observability"
	"github.com/matzehuels/archlens/pkg/source"
)

// Scan walks opts.Resolver.Root and builds the resolved module forest.
//
// Files whose module name cannot be derived, or whose imports cannot be
// read, are recorded in [Scan.Skipped] and left out. A cancelled context
// stops the scan between files.
func (r *Runner) Scan(ctx context.Context, opts ScanOptions) (_ *Scan, err error) {
	start := time.Now()
	root, err := filepath.Abs(opts.Resolver.Root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", opts.Resolver.Root)
	}
	opts.Resolver.Root = root
	hooks := observability.Pipeline()
	hooks.OnScanStart(ctx, root)

	modules := 0
	defer func() {
		hooks.OnScanComplete(ctx, root, modules, time.Since(start), err)
	}()

	files, err := source.Walk(root, opts.Resolver.Extension, opts.Exclude)
	if err != nil {
		return nil, err
	}

	scan := &Scan{
		Root:   root,
		Forest: modtree.New(r.Logger),
		Lines:  make(map[string]int),
		Files:  len(files),
	}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if reason := r.addFile(ctx, scan, opts, path); reason != "" {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r.Logger.Debug("skipped file", "path", path, "reason", reason)
			scan.Skipped = append(scan.Skipped, Skipped{Path: path, Reason: reason})
		}
	}

	created := scan.Forest.ResolveExternal()
	modules = scan.Forest.System.Len()
	r.Logger.Debug("resolved imports", "modules", modules, "externals", created)

	if opts.Churn {
		if err := r.addChurn(ctx, scan, opts); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.Logger.Warn("churn unavailable", "error", err)
		}
	}

	scan.Duration = time.Since(start)
	r.Logger.Info("scanned sources",
		"files", scan.Files,
		"modules", modules,
		"skipped", len(scan.Skipped),
		"duration", scan.Duration)
	return scan, nil
}

// addFile adds one source file to the scan and returns why it was skipped,
// or "".
func (r *Runner) addFile(ctx context.Context, scan *Scan, opts ScanOptions, path string) string {
	name, err := opts.Resolver.FromPath(path)
	if err != nil {
		return errors.UserMessage(err)
	}
	imports, err := r.Reader.ReadImports(ctx, path)
	if err != nil {
		return errors.UserMessage(err)
	}
	lines, err := source.LineCount(path)
	if err != nil {
		return err.Error()
	}

	rel, err := filepath.Rel(scan.Root, path)
	if err != nil {
		rel = path
	}
	d := modtree.NewModule(name, filepath.ToSlash(rel), imports)
	d.Lines = lines
	if scan.Forest.Add(d) {
		scan.Lines[name] = lines
	}
	return ""
}

func (r *Runner) addChurn(ctx context.Context, scan *Scan, opts ScanOptions) error {
	repoDir := opts.Repository
	if repoDir == "" {
		repoDir = scan.Root
	}
	repoRoot, err := history.RepositoryRoot(repoDir)
	if err != nil {
		return err
	}
	stats, err := history.Churn(ctx, repoRoot)
	if err != nil {
		return err
	}
	scan.Churn = history.ModuleChurn(stats, repoRoot, opts.Resolver)
	r.Logger.Debug("mined churn", "files", len(stats), "modules", len(scan.Churn))
	return nil
}
