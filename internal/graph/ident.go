package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// fileContext carries the immutable per-file state threaded through an
// extractor's passes: the repo-relative path, the derived module path,
// and the raw source split into lines for snippet extraction.
type fileContext struct {
	relPath string
	module  string
	source  []byte
	lines   []string
}

func newFileContext(relPath string, source []byte, lang Language) *fileContext {
	return &fileContext{
		relPath: relPath,
		module:  modulePath(relPath, lang),
		source:  source,
		lines:   strings.Split(string(source), "\n"),
	}
}

// modulePath converts a repo-relative file path into a dotted module
// prefix: the recognized extension is stripped and path separators become
// dots, so "pkg/mod/thing.py" yields "pkg.mod.thing".
func modulePath(relPath string, lang Language) string {
	path := relPath
	for _, ext := range lang.Extensions() {
		if strings.HasSuffix(path, ext) {
			path = path[:len(path)-len(ext)]
			break
		}
	}
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.ReplaceAll(path, "/", ".")
}

// componentID builds the globally unique dotted id for a declaration:
// module path, then the enclosing type when present, then the name.
func (f *fileContext) componentID(enclosing, name string) string {
	if enclosing != "" {
		return f.module + "." + enclosing + "." + name
	}
	return f.module + "." + name
}

// span returns the 1-based start and end lines of a node.
func span(node *tree_sitter.Node) (int, int) {
	return int(node.StartPosition().Row) + 1, int(node.EndPosition().Row) + 1
}

// snippet returns the raw source lines covered by a node.
func (f *fileContext) snippet(node *tree_sitter.Node) string {
	start, end := span(node)
	if start < 1 {
		start = 1
	}
	if end > len(f.lines) {
		end = len(f.lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(f.lines[start-1:end], "\n")
}

// scope is the immutable traversal context threaded through extractor
// recursion: the innermost enclosing type and function names. It is
// passed by value so sibling subtrees never observe each other's state.
type scope struct {
	enclosingType string
	enclosingFunc string
}

// callerID returns the id of the innermost enclosing declaration, or ""
// when the position is outside any recognized declaration.
func (s scope) callerID(f *fileContext) string {
	switch {
	case s.enclosingType != "" && s.enclosingFunc != "":
		return f.componentID(s.enclosingType, s.enclosingFunc)
	case s.enclosingFunc != "":
		return f.componentID("", s.enclosingFunc)
	case s.enclosingType != "":
		return f.componentID("", s.enclosingType)
	default:
		return ""
	}
}

// declTable records the components declared in a single file, keyed by
// bare name, for local edge resolution.
type declTable struct {
	byName map[string]*Component
}

func newDeclTable() *declTable {
	return &declTable{byName: make(map[string]*Component)}
}

func (t *declTable) add(c *Component) {
	if _, exists := t.byName[c.Name]; !exists {
		t.byName[c.Name] = c
	}
}

func (t *declTable) lookup(name string) (*Component, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// localEdge builds a DependencyEdge from caller to a referenced symbol,
// resolving the callee against the file-local declaration table when
// possible. Unmatched names stay bare for the global resolution pass.
func localEdge(f *fileContext, table *declTable, caller, callee string, line int, kind EdgeKind) DependencyEdge {
	if c, ok := table.lookup(callee); ok {
		return DependencyEdge{
			Caller:   caller,
			Callee:   c.ID,
			CallLine: line,
			Resolved: true,
			Kind:     kind,
		}
	}
	return DependencyEdge{
		Caller:   caller,
		Callee:   callee,
		CallLine: line,
		Resolved: false,
		Kind:     kind,
	}
}
