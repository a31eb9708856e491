package graph

import (
	"context"
	"fmt"
	"sort"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_c_sharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// extractor extracts declarations and dependency edges from a parsed
// tree-sitter AST. Implementations run two passes: declarations first,
// then relationships resolved against the file-local table.
type extractor interface {
	Extract(root *tree_sitter.Node, f *fileContext) ([]Component, []DependencyEdge)
}

// TreeSitterParser implements the Parser interface using tree-sitter
// grammars. A new tree-sitter parser is created per Analyze call, so this
// type is safe for concurrent use by multiple goroutines.
type TreeSitterParser struct {
	languages  map[Language]*tree_sitter.Language
	extractors map[Language]extractor
}

// NewTreeSitterParser creates a TreeSitterParser with all supported
// grammars registered: Python, Java, C#, C, C++, Go, TypeScript, Rust.
func NewTreeSitterParser() *TreeSitterParser {
	langs := map[Language]*tree_sitter.Language{
		LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
		LangJava:       tree_sitter.NewLanguage(tree_sitter_java.Language()),
		LangCSharp:     tree_sitter.NewLanguage(tree_sitter_c_sharp.Language()),
		LangC:          tree_sitter.NewLanguage(tree_sitter_c.Language()),
		LangCpp:        tree_sitter.NewLanguage(tree_sitter_cpp.Language()),
		LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
		LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
	}

	extractors := map[Language]extractor{
		LangPython:     &pyExtractor{},
		LangJava:       &javaExtractor{},
		LangCSharp:     &csExtractor{},
		LangC:          &cExtractor{},
		LangCpp:        &cppExtractor{},
		LangGo:         &goExtractor{},
		LangTypeScript: &tsExtractor{},
		LangRust:       &rsExtractor{},
	}

	return &TreeSitterParser{
		languages:  langs,
		extractors: extractors,
	}
}

// Analyze extracts declarations and relationships from a single file.
func (p *TreeSitterParser) Analyze(_ context.Context, relPath string, source []byte, lang Language) (*AnalyzeResult, error) {
	tsLang, ok := p.languages[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	ext, ok := p.extractors[lang]
	if !ok {
		return nil, fmt.Errorf("no extractor for language: %s", lang)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", relPath)
	}
	defer tree.Close()

	fc := newFileContext(relPath, source, lang)
	components, edges := ext.Extract(tree.RootNode(), fc)

	return &AnalyzeResult{
		Path:       relPath,
		Language:   lang,
		Components: components,
		Edges:      edges,
	}, nil
}

// SupportedLanguages returns the languages this parser can handle.
func (p *TreeSitterParser) SupportedLanguages() []Language {
	langs := make([]Language, 0, len(p.languages))
	for l := range p.languages {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Close is a no-op because parsers are created per Analyze call.
func (p *TreeSitterParser) Close() error {
	return nil
}

// nodeText returns the source text covered by a node, or "" for nil.
func nodeText(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return node.Utf8Text(source)
}

// eachChild invokes fn on every child of node, named or anonymous.
func eachChild(node *tree_sitter.Node, fn func(child *tree_sitter.Node)) {
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil {
			fn(c)
		}
	}
}

// firstChildOfKind returns the first direct child with the given kind.
func firstChildOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

// paramList returns the source text of each named child of a parameter
// list node, skipping comments.
func paramList(node *tree_sitter.Node, source []byte) []string {
	if node == nil {
		return nil
	}
	var params []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if c == nil || c.Kind() == "comment" {
			continue
		}
		params = append(params, c.Utf8Text(source))
	}
	return params
}
