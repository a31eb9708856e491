//go:build !cgo

package graph

import "fmt"

// OpenStore returns an in-memory store. Persistent graph databases
// require a cgo build.
func OpenStore(dbPath string) (Store, error) {
	if dbPath != "" {
		return nil, fmt.Errorf("graph database at %s requires a cgo-enabled build", dbPath)
	}
	return NewMemStore(), nil
}
