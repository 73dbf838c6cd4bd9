package modtree

import (
	"fmt"
	"iter"
	"slices"

	"github.com/charmbracelet/log"
)

// Predicate selects modules by full name.
type Predicate func(name string) bool

// Forest holds the System tree of in-system modules and the External tree
// of third-party placeholders, plus the diagnostics recorded while building
// and transforming them.
//
// A Forest is not safe for concurrent use. Fold and Filter only read their
// receiver, so concurrent transformations of a forest that is no longer
// modified are fine.
type Forest struct {
	System   *Tree
	External *Tree

	logger     *log.Logger
	diags      []Diagnostic
	duplicates int
}

// New returns an empty forest. Diagnostics are logged as warnings to logger
// when it is non-nil.
func New(logger *log.Logger) *Forest {
	return &Forest{
		System:   NewTree(),
		External: NewTree(),
		logger:   logger,
	}
}

// derive returns an empty forest sharing f's logger.
func (f *Forest) derive() *Forest {
	return &Forest{logger: f.logger}
}

func (f *Forest) note(kind DiagnosticKind, module, format string, args ...any) {
	d := Diagnostic{Kind: kind, Module: module, Message: fmt.Sprintf(format, args...)}
	f.diags = append(f.diags, d)
	if f.logger != nil {
		f.logger.Warn(d.Message, "kind", kind, "module", module)
	}
}

// Add inserts an in-system descriptor. It returns false, records a
// diagnostic and keeps the existing descriptor when the name is taken.
func (f *Forest) Add(d *Descriptor) bool {
	return f.insert(f.System, d)
}

// AddExternal inserts a third-party descriptor with the same rules as Add.
func (f *Forest) AddExternal(d *Descriptor) bool {
	return f.insert(f.External, d)
}

func (f *Forest) insert(t *Tree, d *Descriptor) bool {
	if d.FullName == "" {
		f.note(DiagInvalidName, "", "descriptor for %q has no module name", d.Path)
		return false
	}
	if !t.Insert(d) {
		f.duplicates++
		prev := t.Get(d.FullName)
		f.note(DiagDuplicateModule, d.FullName, "already defined by %q, ignoring %q", prev.Path, d.Path)
		return false
	}
	return true
}

// Duplicates returns how many descriptors were rejected as duplicates.
func (f *Forest) Duplicates() int { return f.duplicates }

// Diagnostics returns the conditions recorded on this forest.
func (f *Forest) Diagnostics() []Diagnostic { return slices.Clone(f.diags) }

// Lookup resolves name in System, then in External, with the
// best-available-match policy of [Tree.Lookup].
func (f *Forest) Lookup(name string) *Descriptor {
	if d := f.System.Lookup(name); d != nil {
		return d
	}
	return f.External.Lookup(name)
}

// Get returns the descriptor stored exactly under name in System, then in
// External, or nil.
func (f *Forest) Get(name string) *Descriptor {
	if d := f.System.Get(name); d != nil {
		return d
	}
	return f.External.Get(name)
}

// All iterates over System, then External.
func (f *Forest) All() iter.Seq[*Descriptor] {
	return func(yield func(*Descriptor) bool) {
		if walk(f.System.root, yield) {
			walk(f.External.root, yield)
		}
	}
}

// Len returns the number of descriptors in both trees.
func (f *Forest) Len() int { return f.System.Len() + f.External.Len() }

// Clone returns a deep copy of both trees. Diagnostics are not copied.
func (f *Forest) Clone() *Forest {
	c := f.derive()
	c.System = f.System.Clone()
	c.External = f.External.Clone()
	return c
}

// IsReferenced reports whether any descriptor resolves an import to name.
func (f *Forest) IsReferenced(name string) bool {
	for d := range f.All() {
		if slices.Contains(d.Resolved, name) {
			return true
		}
	}
	return false
}

// StripImports removes from the in-system module name every import whose
// resolved name satisfies drop, then re-resolves its imports. It modifies
// the forest in place. A missing module is recorded as a diagnostic and
// StripImports returns false.
func (f *Forest) StripImports(name string, drop Predicate) bool {
	d := f.System.Get(name)
	if d == nil {
		f.note(DiagMissingDescriptor, name, "cannot strip imports: no such module")
		return false
	}
	d.Imports = slices.DeleteFunc(d.Imports, func(imp string) bool {
		return drop(f.normalize(imp))
	})
	d.Resolved = f.resolveAll(d.Imports)
	return true
}
