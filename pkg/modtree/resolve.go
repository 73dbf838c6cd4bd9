package modtree

// ResolveExternal materializes an External descriptor for every raw import
// of an in-system module that resolves in neither tree, then prunes. It
// returns the number of descriptors created; a second call returns 0.
func (f *Forest) ResolveExternal() int {
	var created int
	for d := range f.System.All() {
		for _, imp := range d.Imports {
			if f.Lookup(imp) != nil {
				continue
			}
			if f.External.Insert(NewExternal(imp)) {
				created++
			}
		}
	}
	f.Prune()
	return created
}

// Prune rebuilds the Resolved list of every descriptor from its raw
// imports. Imports that resolve in neither tree are dropped; the others are
// replaced by the name of the descriptor they resolve to, without
// duplicates. Prune modifies descriptors in place and is idempotent.
func (f *Forest) Prune() {
	for d := range f.All() {
		d.Resolved = f.resolveAll(d.Imports)
	}
}

func (f *Forest) resolveAll(imports []string) []string {
	var resolved []string
	seen := make(map[string]bool, len(imports))
	for _, imp := range imports {
		target := f.Lookup(imp)
		if target == nil || seen[target.FullName] {
			continue
		}
		seen[target.FullName] = true
		resolved = append(resolved, target.FullName)
	}
	return resolved
}

// normalize returns the name imp resolves to, or imp itself.
func (f *Forest) normalize(imp string) string {
	if d := f.Lookup(imp); d != nil {
		return d.FullName
	}
	return imp
}
