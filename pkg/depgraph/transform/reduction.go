package transform

import "github.com/matzehuels/archlens/pkg/depgraph"

// TransitiveReduction removes every edge (u, v) for which v is also
// reachable from u through another child of u. It returns the number of
// edges removed.
//
// On a graph with cycles the result depends on edge order, since every
// member of a cycle reaches every other one; call [BreakCycles] first when a
// canonical reduction is needed. Self-loops are kept.
//
// Space is O(V²) for the reachability matrix.
func TransitiveReduction(g *depgraph.Graph) int {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return 0
	}

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	adjacency := make([][]int, len(ids))
	for _, e := range g.Edges() {
		adjacency[index[e.From]] = append(adjacency[index[e.From]], index[e.To])
	}

	reachable := computeReachability(adjacency)

	var removed int
	for _, e := range g.Edges() {
		src, dst := index[e.From], index[e.To]
		if src == dst {
			continue
		}
		for _, mid := range adjacency[src] {
			if mid != dst && mid != src && g.HasEdge(e.From, ids[mid]) && reachable[mid][dst] {
				g.RemoveEdge(e.From, e.To)
				removed++
				break
			}
		}
	}
	return removed
}

func computeReachability(adjacency [][]int) [][]bool {
	n := len(adjacency)
	reachable := make([][]bool, n)
	for i := range reachable {
		reachable[i] = make([]bool, n)
	}

	var dfs func(source, current int)
	dfs = func(source, current int) {
		for _, next := range adjacency[current] {
			if !reachable[source][next] {
				reachable[source][next] = true
				dfs(source, next)
			}
		}
	}
	for i := range n {
		dfs(i, i)
	}
	return reachable
}
