package graph

import "context"

// AnalyzeResult holds the declarations and raw dependency edges extracted
// from a single source file. Edges may reference components by bare name
// when the target lives in another file; the resolver settles those later.
type AnalyzeResult struct {
	Path       string           `json:"path"`
	Language   Language         `json:"language"`
	Components []Component      `json:"components"`
	Edges      []DependencyEdge `json:"edges"`
}

// Parser extracts structural information from source files.
// TreeSitterParser is the production implementation; tests swap in
// their own via BuildOptions.Parser.
type Parser interface {
	// Analyze extracts declarations and relationships from a single file.
	// relPath is the repo-relative path used for component id construction.
	Analyze(ctx context.Context, relPath string, source []byte, lang Language) (*AnalyzeResult, error)

	// SupportedLanguages returns the languages this parser can handle.
	SupportedLanguages() []Language

	// Close releases parser resources (tree-sitter C memory).
	Close() error
}
