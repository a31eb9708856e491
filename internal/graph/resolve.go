package graph

import (
	"sort"
	"strings"
)

// resolveEdges settles the edges the per-file pass left unresolved by
// matching callee names against the global component table. A bare name
// that matches components resolves to the lexicographically smallest id,
// which keeps reruns byte-identical. Dotted names fall back to their last
// segment. Names that match nothing stay unresolved; they are kept for
// reporting but never contribute to leveling.
func resolveEdges(g *Graph) {
	byName := make(map[string][]string)
	for _, id := range g.Order {
		c := g.Components[id]
		byName[c.Name] = append(byName[c.Name], id)
	}
	for name := range byName {
		sort.Strings(byName[name])
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		if e.Resolved {
			// File-local resolution already produced a component id, but
			// duplicate-id suppression may have dropped the target.
			if _, ok := g.Components[e.Callee]; !ok {
				e.Resolved = false
			}
			continue
		}
		if id, ok := resolveName(g, byName, e.Callee); ok {
			e.Callee = id
			e.Resolved = true
		}
	}
}

func resolveName(g *Graph, byName map[string][]string, callee string) (string, bool) {
	// An exact component id beats name matching.
	if _, ok := g.Components[callee]; ok {
		return callee, true
	}
	if ids := byName[callee]; len(ids) > 0 {
		return ids[0], true
	}
	if idx := strings.LastIndexAny(callee, "."); idx >= 0 {
		last := callee[idx+1:]
		if ids := byName[last]; len(ids) > 0 {
			return ids[0], true
		}
	}
	return "", false
}

// Leaves returns the ids of components with no resolved dependencies on
// other components, in deterministic first-seen order. Self-references
// do not disqualify a leaf.
func (g *Graph) Leaves() []string {
	hasDep := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Resolved && e.Caller != e.Callee {
			if _, ok := g.Components[e.Caller]; ok {
				hasDep[e.Caller] = true
			}
		}
	}
	var leaves []string
	for _, id := range g.Order {
		if !hasDep[id] {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// ResolvedEdges returns only the edges whose caller and callee both exist
// in the component table.
func (g *Graph) ResolvedEdges() []DependencyEdge {
	var edges []DependencyEdge
	for _, e := range g.Edges {
		if !e.Resolved {
			continue
		}
		if _, ok := g.Components[e.Caller]; !ok {
			continue
		}
		if _, ok := g.Components[e.Callee]; !ok {
			continue
		}
		edges = append(edges, e)
	}
	return edges
}
