//go:build cgo

package graph

// OpenStore returns a KuzuDB-backed store at dbPath, or an in-memory
// store when dbPath is empty.
func OpenStore(dbPath string) (Store, error) {
	if dbPath == "" {
		return NewMemStore(), nil
	}
	return NewKuzuFileStore(dbPath)
}
