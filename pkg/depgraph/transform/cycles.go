package transform

import "github.com/matzehuels/archlens/pkg/depgraph"

// BreakCycles makes g acyclic by removing one import from every cycle and
// returns the removed imports in the order they were found.
//
// Modules are visited depth first, starting with those nothing imports and
// then any module still unvisited, both in insertion order. An import that
// leads back to a module on the current path closes a cycle; it is the one
// removed. A module importing itself is a cycle of length one.
func BreakCycles(g *depgraph.Graph) []depgraph.Edge {
	type frame struct {
		id   string
		next int
	}

	onPath := make(map[string]bool)
	done := make(map[string]bool)
	var removed []depgraph.Edge

	walk := func(start string) {
		if done[start] {
			return
		}
		stack := []frame{{id: start}}
		onPath[start] = true
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			imports := g.Children(top.id)
			if top.next == len(imports) {
				onPath[top.id] = false
				done[top.id] = true
				stack = stack[:len(stack)-1]
				continue
			}
			to := imports[top.next]
			top.next++
			switch {
			case onPath[to]:
				removed = append(removed, depgraph.Edge{From: top.id, To: to})
			case !done[to]:
				onPath[to] = true
				stack = append(stack, frame{id: to})
			}
		}
	}

	for _, n := range g.Sources() {
		walk(n.ID)
	}
	for _, n := range g.Nodes() {
		walk(n.ID)
	}

	for _, e := range removed {
		g.RemoveEdge(e.From, e.To)
	}
	return removed
}
