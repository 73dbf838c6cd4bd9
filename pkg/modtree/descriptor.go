package modtree

import (
	"slices"

	"github.com/matzehuels/archlens/pkg/modname"
)

// Descriptor is the per-module record stored in a [Tree].
//
// Imports is the set of raw imported identities, kept sorted and free of
// duplicates. Resolved is rebuilt by [Forest.Prune] and lists, in order of
// first occurrence, the canonical names the imports resolve to.
type Descriptor struct {
	FullName  string   `json:"name"`
	LocalName string   `json:"local_name"`
	Path      string   `json:"path,omitempty"`
	Lines     int      `json:"lines,omitempty"`
	Imports   []string `json:"imports,omitempty"`
	Resolved  []string `json:"resolved,omitempty"`
}

// NewModule returns a descriptor for an in-system module read from path.
func NewModule(name, path string, imports []string) *Descriptor {
	d := &Descriptor{
		FullName:  name,
		LocalName: modname.Local(name),
		Path:      path,
	}
	d.AddImports(imports...)
	return d
}

// NewExternal returns a placeholder descriptor for a third-party module.
func NewExternal(name string) *Descriptor {
	return &Descriptor{FullName: name, LocalName: modname.Local(name)}
}

// IsExternal reports whether the descriptor has no source file.
func (d *Descriptor) IsExternal() bool { return d.Path == "" }

// AddImports merges names into the raw import set.
func (d *Descriptor) AddImports(names ...string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		i, found := slices.BinarySearch(d.Imports, name)
		if !found {
			d.Imports = slices.Insert(d.Imports, i, name)
		}
	}
}

// HasImport reports whether name is one of the raw imports.
func (d *Descriptor) HasImport(name string) bool {
	_, found := slices.BinarySearch(d.Imports, name)
	return found
}

// Clone returns a copy that shares no slices with d.
func (d *Descriptor) Clone() *Descriptor {
	c := *d
	c.Imports = slices.Clone(d.Imports)
	c.Resolved = slices.Clone(d.Resolved)
	return &c
}
