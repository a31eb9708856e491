package graph

import (
	"context"
	"io"
)

// Store is the interface for the component graph backend.
// Implementations: KuzuStore (production), MemStore (testing and
// single-shot runs). All graph persistence goes through this interface.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddComponent(ctx context.Context, c Component) error
	AddEdge(ctx context.Context, e DependencyEdge) error

	// Read operations.
	GetComponent(ctx context.Context, id string) (*Component, error)
	QueryComponents(ctx context.Context, query string, limit int) ([]Component, error)

	// Graph traversal.
	GetDependencies(ctx context.Context, id string, direction Direction, maxDepth int) ([]DependencyChain, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what does this depend on?
	DirectionDownstream Direction = "downstream" // what depends on this?
)

// DependencyChain is one reachable component in a traversal, with the hop
// count from the starting component.
type DependencyChain struct {
	ComponentID string `json:"component_id"`
	Depth       int    `json:"depth"`
}

// LoadGraph writes every component and edge of a built graph into a store
// in deterministic order.
func LoadGraph(ctx context.Context, store Store, g *Graph) error {
	for _, id := range g.Order {
		if err := store.AddComponent(ctx, *g.Components[id]); err != nil {
			return err
		}
	}
	for _, e := range g.Edges {
		if err := store.AddEdge(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
