package view

import (
	"github.com/matzehuels/archlens/pkg/modtree"
)

// TopLevel folds everything strictly inside the foldUnder modules into them
// and keeps only system modules and significant top-level packages.
func TopLevel(f *modtree.Forest, cls Classifier, foldUnder []string) *modtree.Forest {
	folded := f.Fold(AnyContains(foldUnder...))
	return folded.Filter(Or(cls.BelongsToSystem, cls.IsSignificantExternalTopLevel))
}

// SubModuleOptions selects what a [SubModule] view shows.
type SubModuleOptions struct {
	// Parent is the module whose direct children are drawn.
	Parent string
	// Keep lists other modules drawn for context. Their sub-modules are
	// folded into them and their third-party imports are dropped.
	Keep []string
	// Exclude lists modules removed at the end.
	Exclude []string
}

// SubModule draws the direct children of opts.Parent. Everything deeper is
// folded into those children. Significant top-level packages are kept only
// when something left in the view still imports them.
func SubModule(f *modtree.Forest, cls Classifier, opts SubModuleOptions) *modtree.Forest {
	base := f
	if len(opts.Keep) > 0 {
		base = f.Clone()
		for _, name := range opts.Keep {
			base.StripImports(name, Not(cls.BelongsToSystem))
		}
	}

	folded := base.Fold(Or(DeeperThan(opts.Parent, 1), AnyContains(opts.Keep...)))
	selected := folded.Filter(Or(
		ChildOf(opts.Parent),
		cls.IsSignificantExternalTopLevel,
		In(opts.Keep...),
	))
	referenced := selected.Filter(Or(
		cls.BelongsToSystem,
		And(cls.IsSignificantExternalTopLevel, selected.IsReferenced),
		In(opts.Keep...),
	))
	if len(opts.Exclude) == 0 {
		return referenced
	}
	return referenced.Filter(Not(In(opts.Exclude...)))
}

// Custom folds with fold, then filters with keep. A nil predicate skips its
// pass.
func Custom(f *modtree.Forest, fold, keep modtree.Predicate) *modtree.Forest {
	out := f
	if fold != nil {
		out = out.Fold(fold)
	}
	if keep != nil {
		out = out.Filter(keep)
	}
	if out == f {
		out = f.Clone()
		out.Prune()
	}
	return out
}
