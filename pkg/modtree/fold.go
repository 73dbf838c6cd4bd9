package modtree

import (
	"slices"

	"github.com/matzehuels/archlens/pkg/modname"
)

// Fold returns a new forest in which every sub-tree whose root name
// satisfies fold is collapsed into the descriptor of its parent node.
//
// The raw imports of all descriptors in a folded sub-tree are merged into
// the absorbing descriptor. Imports that name a folded sub-tree, anything
// inside it, or the absorbing module itself are discarded afterwards. When
// the parent node has no descriptor the sub-tree's imports are lost and a
// [DiagFoldWithoutTarget] diagnostic is recorded.
//
// f is not modified. The result is pruned.
func (f *Forest) Fold(fold Predicate) *Forest {
	out := f.derive()
	out.System = &Tree{root: out.foldNode(f.System.root, "", fold)}
	out.External = &Tree{root: out.foldNode(f.External.root, "", fold)}
	out.Prune()
	return out
}

func (f *Forest) foldNode(n *Node, prefix string, fold Predicate) *Node {
	res := &Node{}
	if n.Desc != nil {
		res.Desc = n.Desc.Clone()
		res.Desc.Resolved = nil
	}

	var folded []string
	for name, child := range n.Children() {
		full := modname.Join(prefix, name)
		if !fold(full) {
			res.attach(name, f.foldNode(child, full, fold))
			continue
		}
		if res.Desc == nil {
			target := prefix
			if target == "" {
				target = "<root>"
			}
			f.note(DiagFoldWithoutTarget, full, "no module at %s to fold into", target)
			continue
		}
		res.Desc.AddImports(collectImports(child)...)
		folded = append(folded, full)
	}

	if len(folded) > 0 {
		res.Desc.Imports = slices.DeleteFunc(res.Desc.Imports, func(imp string) bool {
			return imp == prefix || slices.Contains(folded, imp) || modname.AnyContains(folded, imp)
		})
	}
	return res
}

// collectImports returns the raw imports of every descriptor below n,
// n included.
func collectImports(n *Node) []string {
	var imports []string
	walk(n, func(d *Descriptor) bool {
		imports = append(imports, d.Imports...)
		return true
	})
	return imports
}
