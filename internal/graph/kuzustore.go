//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph
// backend. It requires CGO because the go-kuzu driver wraps KuzuDB's C
// library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at
// the given directory path, so a graph index survives across sessions.
// KuzuDB creates the leaf directory itself for new databases.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open file database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// The node table must precede the relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Component(
		id STRING,
		name STRING,
		kind STRING,
		file_path STRING,
		start_line INT64,
		end_line INT64,
		enclosing_type STRING,
		has_docstring BOOLEAN,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS CALLS(FROM Component TO Component, call_line INT64)`,
	`CREATE REL TABLE IF NOT EXISTS INHERITS_FROM(FROM Component TO Component, call_line INT64)`,
	`CREATE REL TABLE IF NOT EXISTS IMPLEMENTS(FROM Component TO Component, call_line INT64)`,
	`CREATE REL TABLE IF NOT EXISTS USES_FIELD(FROM Component TO Component, call_line INT64)`,
	`CREATE REL TABLE IF NOT EXISTS CREATES(FROM Component TO Component, call_line INT64)`,
}

// InitSchema creates the node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddComponent inserts a Component node.
func (s *KuzuStore) AddComponent(_ context.Context, c Component) error {
	return s.exec(
		`CREATE (c:Component {
			id: $id,
			name: $name,
			kind: $kind,
			file_path: $fp,
			start_line: $sl,
			end_line: $el,
			enclosing_type: $et,
			has_docstring: $doc
		})`,
		map[string]any{
			"id":   c.ID,
			"name": c.Name,
			"kind": string(c.Kind),
			"fp":   c.RelativePath,
			"sl":   int64(c.StartLine),
			"el":   int64(c.EndLine),
			"et":   c.EnclosingType,
			"doc":  c.HasDocstring,
		},
	)
}

// AddEdge inserts a relationship between two components. Unresolved edges
// are skipped: their callee is a bare name, not a component id.
func (s *KuzuStore) AddEdge(_ context.Context, e DependencyEdge) error {
	if !e.Resolved {
		return nil
	}
	table, err := edgeTable(e.Kind)
	if err != nil {
		return err
	}
	cypher := fmt.Sprintf(
		`MATCH (a:Component {id: $src}), (b:Component {id: $dst})
		 CREATE (a)-[:%s {call_line: $line}]->(b)`, table)
	return s.exec(cypher, map[string]any{
		"src":  e.Caller,
		"dst":  e.Callee,
		"line": int64(e.CallLine),
	})
}

// edgeTable maps an edge kind onto its relationship table name.
func edgeTable(kind EdgeKind) (string, error) {
	switch kind {
	case EdgeKindCall:
		return "CALLS", nil
	case EdgeKindInherits:
		return "INHERITS_FROM", nil
	case EdgeKindImplements:
		return "IMPLEMENTS", nil
	case EdgeKindUsesField:
		return "USES_FIELD", nil
	case EdgeKindCreates:
		return "CREATES", nil
	default:
		return "", fmt.Errorf("kuzu: unsupported edge kind: %s", kind)
	}
}

// ---------- Read operations ----------

// GetComponent retrieves a component by id, or nil if not found.
func (s *KuzuStore) GetComponent(_ context.Context, id string) (*Component, error) {
	rows, err := s.query(
		`MATCH (c:Component {id: $id})
		 RETURN c.id, c.name, c.kind, c.file_path, c.start_line, c.end_line, c.enclosing_type, c.has_docstring`,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToComponent(rows[0]), nil
}

// QueryComponents returns components whose id or name contains the query
// string, ordered by id.
func (s *KuzuStore) QueryComponents(_ context.Context, queryStr string, limit int) ([]Component, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.query(
		`MATCH (c:Component) WHERE c.id CONTAINS $q OR c.name CONTAINS $q
		 RETURN c.id, c.name, c.kind, c.file_path, c.start_line, c.end_line, c.enclosing_type, c.has_docstring
		 ORDER BY c.id
		 LIMIT $lim`,
		map[string]any{
			"q":   queryStr,
			"lim": int64(limit),
		},
	)
	if err != nil {
		return nil, err
	}
	out := make([]Component, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToComponent(r))
	}
	return out, nil
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over every relationship table from the
// given component, up to maxDepth hops.
func (s *KuzuStore) GetDependencies(_ context.Context, id string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		maxDepth = 10
	}

	visited := map[string]bool{id: true}
	var chains []DependencyChain
	frontier := []string{id}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, cur := range frontier {
			neighbors, err := s.componentNeighbors(cur, dir)
			if err != nil {
				return nil, err
			}
			for _, nb := range neighbors {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				chains = append(chains, DependencyChain{ComponentID: nb, Depth: depth})
				next = append(next, nb)
			}
		}
		frontier = next
	}
	return chains, nil
}

// componentNeighbors returns the immediate neighbors of a component across
// every relationship table, sorted for deterministic traversal.
func (s *KuzuStore) componentNeighbors(id string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionUpstream:
		cypher = "MATCH (a:Component {id: $id})-[]->(b:Component) RETURN DISTINCT b.id"
	case DirectionDownstream:
		cypher = "MATCH (a:Component)-[]->(b:Component {id: $id}) RETURN DISTINCT a.id"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	sort.Strings(out)
	return out, nil
}

// ---------- Stats ----------

// Stats returns component and edge counts.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	components, err := s.countTable("Component")
	if err != nil {
		return nil, err
	}
	edges := 0
	for _, t := range []string{"CALLS", "INHERITS_FROM", "IMPLEMENTS", "USES_FIELD", "CREATES"} {
		n, err := s.countRelTable(t)
		if err != nil {
			continue
		}
		edges += n
	}
	return &GraphStats{
		ComponentCount: components,
		EdgeCount:      edges,
		ResolvedEdges:  edges,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result
// rows. Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countRelTable returns the number of rows in a relationship table.
func (s *KuzuStore) countRelTable(table string) (int, error) {
	cypher := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowToComponent converts an 8-column result row into a Component.
// Column order: id, name, kind, file_path, start_line, end_line,
// enclosing_type, has_docstring.
func rowToComponent(r []any) *Component {
	return &Component{
		ID:            toString(r[0]),
		Name:          toString(r[1]),
		Kind:          ComponentKind(toString(r[2])),
		FilePath:      toString(r[3]),
		RelativePath:  toString(r[3]),
		StartLine:     toInt(r[4]),
		EndLine:       toInt(r[5]),
		EnclosingType: toString(r[6]),
		HasDocstring:  toBool(r[7]),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
