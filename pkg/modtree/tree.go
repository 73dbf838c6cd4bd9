package modtree

import (
	"iter"

	"github.com/matzehuels/archlens/pkg/modname"
)

// Node is one component of a module path. Desc is nil for pure path
// segments. Children keep their insertion order.
type Node struct {
	Desc *Descriptor

	names    []string
	children map[string]*Node
}

// Child returns the child with the given component name, or nil.
func (n *Node) Child(name string) *Node { return n.children[name] }

// Len returns the number of direct children.
func (n *Node) Len() int { return len(n.names) }

// Children iterates over the direct children in insertion order.
func (n *Node) Children() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		for _, name := range n.names {
			if !yield(name, n.children[name]) {
				return
			}
		}
	}
}

func (n *Node) ensure(name string) *Node {
	if c, ok := n.children[name]; ok {
		return c
	}
	c := &Node{}
	n.attach(name, c)
	return c
}

func (n *Node) attach(name string, c *Node) {
	if n.children == nil {
		n.children = make(map[string]*Node)
	}
	if _, ok := n.children[name]; !ok {
		n.names = append(n.names, name)
	}
	n.children[name] = c
}

func (n *Node) clone() *Node {
	c := &Node{}
	if n.Desc != nil {
		c.Desc = n.Desc.Clone()
	}
	for name, child := range n.Children() {
		c.attach(name, child.clone())
	}
	return c
}

// Tree is a prefix tree of descriptors keyed by name component. The root
// node never carries a descriptor.
//
// The zero value is not usable; use [NewTree].
type Tree struct {
	root *Node
}

// NewTree returns an empty tree.
func NewTree() *Tree { return &Tree{root: &Node{}} }

// Root returns the synthetic root node.
func (t *Tree) Root() *Node { return t.root }

// Insert stores d under d.FullName, creating intermediate nodes as needed.
// The first descriptor stored under a name wins: Insert returns false and
// leaves the tree unchanged when a descriptor is already present, or when
// d has an empty name.
func (t *Tree) Insert(d *Descriptor) bool {
	if d.FullName == "" {
		return false
	}
	n := t.root
	for _, c := range modname.Components(d.FullName) {
		n = n.ensure(c)
	}
	if n.Desc != nil {
		return false
	}
	n.Desc = d
	return true
}

// Lookup returns the best available match for name. When a component is
// missing the descriptor of the deepest node reached is returned, which may
// be nil. When the whole path exists the descriptor at its end is returned,
// which may also be nil.
func (t *Tree) Lookup(name string) *Descriptor {
	n := t.root
	for _, c := range modname.Components(name) {
		next := n.children[c]
		if next == nil {
			return n.Desc
		}
		n = next
	}
	return n.Desc
}

// Get returns the descriptor stored exactly under name, or nil.
func (t *Tree) Get(name string) *Descriptor {
	if n := t.node(name); n != nil {
		return n.Desc
	}
	return nil
}

func (t *Tree) node(name string) *Node {
	n := t.root
	for _, c := range modname.Components(name) {
		if n = n.children[c]; n == nil {
			return nil
		}
	}
	return n
}

// All iterates over every descriptor depth-first, visiting a node's
// descriptor before its children and children in insertion order.
func (t *Tree) All() iter.Seq[*Descriptor] {
	return func(yield func(*Descriptor) bool) {
		walk(t.root, yield)
	}
}

func walk(n *Node, yield func(*Descriptor) bool) bool {
	if n.Desc != nil && !yield(n.Desc) {
		return false
	}
	for _, name := range n.names {
		if !walk(n.children[name], yield) {
			return false
		}
	}
	return true
}

// Len returns the number of descriptors in the tree.
func (t *Tree) Len() int {
	var count int
	for range t.All() {
		count++
	}
	return count
}

// Names returns the full names of all descriptors in traversal order.
func (t *Tree) Names() []string {
	var names []string
	for d := range t.All() {
		names = append(names, d.FullName)
	}
	return names
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree { return &Tree{root: t.root.clone()} }
