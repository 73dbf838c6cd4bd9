package modtree

import (
	"slices"

	"github.com/matzehuels/archlens/pkg/modname"
)

// Filter returns a new forest keeping only the descriptors whose name
// satisfies keep. The tree structure is preserved: a node that fails keep
// loses its descriptor but its children are still visited, so a deeper
// module that satisfies keep survives under a removed ancestor.
//
// Each kept descriptor is copied and its raw imports narrowed to those that
// satisfy keep. An import is tested by the name it currently resolves to in
// f, or by its raw name when it does not resolve.
//
// f is not modified. The result is pruned.
func (f *Forest) Filter(keep Predicate) *Forest {
	out := f.derive()
	out.System = &Tree{root: f.filterNode(f.System.root, "", keep)}
	out.External = &Tree{root: f.filterNode(f.External.root, "", keep)}
	out.Prune()
	return out
}

func (f *Forest) filterNode(n *Node, prefix string, keep Predicate) *Node {
	res := &Node{}
	if n.Desc != nil && keep(prefix) {
		d := n.Desc.Clone()
		d.Resolved = nil
		d.Imports = slices.DeleteFunc(d.Imports, func(imp string) bool {
			return !keep(f.normalize(imp))
		})
		res.Desc = d
	}
	for name, child := range n.Children() {
		res.attach(name, f.filterNode(child, modname.Join(prefix, name), keep))
	}
	return res
}
