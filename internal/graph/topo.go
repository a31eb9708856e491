package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ComputeLevels produces the leaf-first processing order. Components are
// condensed into strongly connected components first, so cycles never
// block the ordering: every member of a cycle lands on the same level.
//
// Level 0 is exactly the leaf set. A component alone in its SCC with no
// resolved external dependencies sits at level 0; every non-trivial SCC
// sits at least at level 1, and any SCC with external dependencies sits
// one above the deepest of them. Within a level, ids are sorted so reruns
// produce identical output.
func ComputeLevels(g *Graph) []Level {
	if len(g.Order) == 0 {
		return nil
	}

	index := make(map[string]int64, len(g.Order))
	for i, id := range g.Order {
		index[id] = int64(i)
	}

	dg := simple.NewDirectedGraph()
	for i := range g.Order {
		dg.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.ResolvedEdges() {
		from, to := index[e.Caller], index[e.Callee]
		if from == to {
			// Self-references carry no ordering information.
			continue
		}
		dg.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	sccs := topo.TarjanSCC(dg)

	// Map each node to its SCC and collect the condensation's edges.
	sccOf := make([]int, len(g.Order))
	for sccIdx, members := range sccs {
		for _, n := range members {
			sccOf[n.ID()] = sccIdx
		}
	}
	deps := make([][]int, len(sccs))
	seen := make(map[[2]int]bool)
	for _, e := range g.ResolvedEdges() {
		from, to := index[e.Caller], index[e.Callee]
		a, b := sccOf[from], sccOf[to]
		if a == b {
			continue
		}
		key := [2]int{a, b}
		if !seen[key] {
			seen[key] = true
			deps[a] = append(deps[a], b)
		}
	}

	// The condensation is acyclic, so a memoized walk terminates.
	levels := make([]int, len(sccs))
	visited := make([]bool, len(sccs))
	var levelOf func(scc int) int
	levelOf = func(scc int) int {
		if visited[scc] {
			return levels[scc]
		}
		visited[scc] = true
		base := 0
		if len(sccs[scc]) > 1 {
			base = 1
		}
		level := base
		for _, dep := range deps[scc] {
			if l := levelOf(dep) + 1; l > level {
				level = l
			}
		}
		levels[scc] = level
		return level
	}

	maxLevel := 0
	for i := range sccs {
		if l := levelOf(i); l > maxLevel {
			maxLevel = l
		}
	}

	out := make([]Level, maxLevel+1)
	for sccIdx, members := range sccs {
		level := levels[sccIdx]
		for _, n := range members {
			out[level] = append(out[level], g.Order[n.ID()])
		}
	}
	for i := range out {
		sort.Strings(out[i])
	}
	return out
}

// StronglyConnected returns the SCC partition of the graph with member
// ids sorted. Components off every cycle form singleton groups.
func StronglyConnected(g *Graph) [][]string {
	index := make(map[string]int64, len(g.Order))
	for i, id := range g.Order {
		index[id] = int64(i)
	}
	dg := simple.NewDirectedGraph()
	for i := range g.Order {
		dg.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.ResolvedEdges() {
		from, to := index[e.Caller], index[e.Callee]
		if from == to {
			continue
		}
		dg.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}
	var out [][]string
	for _, members := range topo.TarjanSCC(dg) {
		ids := make([]string, 0, len(members))
		for _, n := range members {
			ids = append(ids, g.Order[n.ID()])
		}
		sort.Strings(ids)
		out = append(out, ids)
	}
	return out
}
