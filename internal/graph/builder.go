package graph

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/eitatech/gatomia-wiki/internal/fileproc"
)

// defaultExcludes are directory names skipped during repository walks.
var defaultExcludes = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"dist":         true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"obj":          true,
	".idea":        true,
	".vscode":      true,
}

// BuildOptions configures a repository graph build.
type BuildOptions struct {
	// RepoPath is the repository root to analyze. Required.
	RepoPath string

	// Languages restricts analysis to the given languages. Empty means
	// every supported language.
	Languages []Language

	// Exclude lists additional directory names to skip, on top of the
	// defaults (.git, node_modules, vendor, and similar).
	Exclude []string

	// Workers caps the parse worker count. <= 0 uses the fileproc default.
	Workers int

	// Parser overrides the tree-sitter parser, mainly for tests.
	Parser Parser

	// Logger receives per-file skip warnings. Nil uses the default logger.
	Logger *log.Logger

	// OnFile is invoked after each file finishes parsing.
	OnFile func(path string)
}

// Graph is the aggregated repository dependency graph. Components is
// keyed by id; Order preserves first-seen order across the sorted file
// walk so iteration is deterministic.
type Graph struct {
	Components map[string]*Component
	Order      []string
	Edges      []DependencyEdge
	Files      []string
}

// Build walks the repository, parses every matching file, and aggregates
// the per-file results into a resolved dependency graph. A repository
// that cannot be walked is a fatal error; individual files that cannot
// be read or parsed are skipped with a warning.
func Build(ctx context.Context, opts BuildOptions) (*Graph, error) {
	if opts.RepoPath == "" {
		return nil, fmt.Errorf("repo path is required")
	}
	info, err := os.Stat(opts.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("stat repo: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repo path %s is not a directory", opts.RepoPath)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	parser := opts.Parser
	if parser == nil {
		parser = NewTreeSitterParser()
		defer parser.Close()
	}

	allowed := allowedLanguages(opts.Languages)
	excludes := make(map[string]bool, len(defaultExcludes)+len(opts.Exclude))
	for name := range defaultExcludes {
		excludes[name] = true
	}
	for _, name := range opts.Exclude {
		excludes[name] = true
	}

	files, err := collectFiles(opts.RepoPath, allowed, excludes)
	if err != nil {
		return nil, fmt.Errorf("walk repo: %w", err)
	}

	results, ok, perr := fileproc.MapOrdered(ctx, files, opts.Workers,
		func(ctx context.Context, relPath string) (*AnalyzeResult, error) {
			source, err := os.ReadFile(filepath.Join(opts.RepoPath, relPath))
			if err != nil {
				return nil, fmt.Errorf("read: %w", err)
			}
			lang, _ := LanguageForExtension(filepath.Ext(relPath))
			return parser.Analyze(ctx, relPath, source, lang)
		},
		fileproc.ProgressFunc(opts.OnFile),
	)
	if perr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		for _, fe := range perr.Errors {
			logger.Printf("warn: skipping %s: %v", fe.Path, fe.Err)
		}
	}

	g := &Graph{Components: make(map[string]*Component)}
	for i, res := range results {
		if !ok[i] || res == nil {
			continue
		}
		g.Files = append(g.Files, res.Path)
		for j := range res.Components {
			c := res.Components[j]
			if _, exists := g.Components[c.ID]; exists {
				logger.Printf("warn: duplicate component id %s in %s, keeping first occurrence", c.ID, res.Path)
				continue
			}
			g.Components[c.ID] = &c
			g.Order = append(g.Order, c.ID)
		}
		g.Edges = append(g.Edges, res.Edges...)
	}

	resolveEdges(g)
	return g, nil
}

// collectFiles returns the repo-relative paths of every analyzable file,
// sorted lexicographically.
func collectFiles(repoPath string, allowed map[Language]bool, excludes map[string]bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == repoPath {
				return err
			}
			return nil // skip inaccessible paths
		}
		if d.IsDir() {
			if path != repoPath && excludes[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		lang, known := LanguageForExtension(filepath.Ext(path))
		if !known || !allowed[lang] {
			return nil
		}

		relPath, err := filepath.Rel(repoPath, path)
		if err != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(relPath))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func allowedLanguages(langs []Language) map[Language]bool {
	allowed := make(map[Language]bool)
	if len(langs) == 0 {
		for _, l := range SupportedLanguages {
			allowed[l] = true
		}
		return allowed
	}
	for _, l := range langs {
		allowed[l] = true
	}
	return allowed
}

// Stats summarizes the graph.
func (g *Graph) Stats() GraphStats {
	stats := GraphStats{
		ComponentCount: len(g.Components),
		EdgeCount:      len(g.Edges),
	}
	for _, e := range g.Edges {
		if e.Resolved {
			stats.ResolvedEdges++
		}
	}
	stats.LeafCount = len(g.Leaves())
	return stats
}
