package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu         sync.RWMutex
	components map[string]Component
	ids        []string
	edges      []DependencyEdge
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		components: make(map[string]Component),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddComponent stores a component keyed by its id. Re-adding an id
// overwrites the previous value without changing insertion order.
func (m *MemStore) AddComponent(_ context.Context, c Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.components[c.ID]; !exists {
		m.ids = append(m.ids, c.ID)
	}
	m.components[c.ID] = c
	return nil
}

// AddEdge appends an edge to the internal slice.
func (m *MemStore) AddEdge(_ context.Context, e DependencyEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, e)
	return nil
}

// GetComponent returns the component for the given id, or nil if absent.
func (m *MemStore) GetComponent(_ context.Context, id string) (*Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.components[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// QueryComponents returns components whose id or name contains query
// (case-insensitive), sorted by id, up to limit results. A limit <= 0
// returns all matches.
func (m *MemStore) QueryComponents(_ context.Context, query string, limit int) ([]Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lowerQuery := strings.ToLower(query)
	matched := make([]string, 0)
	for id, c := range m.components {
		if strings.Contains(strings.ToLower(id), lowerQuery) ||
			strings.Contains(strings.ToLower(c.Name), lowerQuery) {
			matched = append(matched, id)
		}
	}
	sort.Strings(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	results := make([]Component, 0, len(matched))
	for _, id := range matched {
		results = append(results, m.components[id])
	}
	return results, nil
}

// GetDependencies performs a BFS over resolved edges from id in the given
// direction, up to maxDepth hops. It returns one DependencyChain per
// reachable component, ordered by depth then id.
func (m *MemStore) GetDependencies(_ context.Context, id string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}

	neighbors := make(map[string][]string)
	for _, e := range m.edges {
		if !e.Resolved {
			continue
		}
		switch direction {
		case DirectionUpstream:
			neighbors[e.Caller] = append(neighbors[e.Caller], e.Callee)
		case DirectionDownstream:
			neighbors[e.Callee] = append(neighbors[e.Callee], e.Caller)
		}
	}

	visited := map[string]bool{id: true}
	var chains []DependencyChain
	frontier := []string{id}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, cur := range frontier {
			targets := append([]string(nil), neighbors[cur]...)
			sort.Strings(targets)
			for _, t := range targets {
				if visited[t] {
					continue
				}
				visited[t] = true
				chains = append(chains, DependencyChain{ComponentID: t, Depth: depth})
				next = append(next, t)
			}
		}
		frontier = next
	}
	return chains, nil
}

// Stats returns counts over the stored graph.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &GraphStats{
		ComponentCount: len(m.components),
		EdgeCount:      len(m.edges),
	}
	hasDep := make(map[string]bool)
	for _, e := range m.edges {
		if e.Resolved {
			stats.ResolvedEdges++
			if e.Caller != e.Callee {
				hasDep[e.Caller] = true
			}
		}
	}
	for id := range m.components {
		if !hasDep[id] {
			stats.LeafCount++
		}
	}
	return stats, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
