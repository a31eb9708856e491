package artifact

import (
	"context"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eitatech/gatomia-wiki/internal/graph"
)

// GeneratorVersion is recorded in analysis metadata.
const GeneratorVersion = "2.0.0"

// Metadata describes one completed analysis run.
type Metadata struct {
	AnalysisInfo  AnalysisInfo `json:"analysis_info"`
	Statistics    Statistics   `json:"statistics"`
	AnalysisFiles []string     `json:"analysis_files"`
}

// AnalysisInfo identifies the analyzed repository and the run itself.
type AnalysisInfo struct {
	Timestamp        string `json:"timestamp"`
	GeneratorVersion string `json:"generator_version"`
	RepoPath         string `json:"repo_path"`
	CommitID         string `json:"commit_id,omitempty"`
}

// Statistics summarizes the analysis results.
type Statistics struct {
	TotalComponents int `json:"total_components"`
	LeafNodes       int `json:"leaf_nodes"`
	TotalEdges      int `json:"total_edges"`
	ResolvedEdges   int `json:"resolved_edges"`
	Levels          int `json:"levels"`
	Modules         int `json:"modules"`
	MaxDepth        int `json:"max_depth"`
}

// Bundle is everything a run produces for the working directory.
type Bundle struct {
	Components map[string]*graph.Component
	Levels     []graph.Level
	ModuleTree graph.ModuleTree
	Metadata   Metadata
}

// Writer persists bundles into a working directory.
type Writer struct {
	Dir string
}

// NewWriter creates the working directory and returns a writer for it.
func NewWriter(dir string) (*Writer, error) {
	if err := EnsureDirectory(dir); err != nil {
		return nil, err
	}
	return &Writer{Dir: dir}, nil
}

// Path returns the absolute path of a named artifact.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// WriteBundle writes components, processing order, module tree, and
// metadata concurrently. Each artifact is independent, so one bad file
// does not corrupt the rest; the first error is returned.
func (w *Writer) WriteBundle(ctx context.Context, b Bundle) error {
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		return SaveJSON(w.Path(ComponentsFile), b.Components)
	})
	g.Go(func() error {
		return SaveJSON(w.Path(ProcessingOrderFile), b.Levels)
	})
	g.Go(func() error {
		return SaveJSON(w.Path(ModuleTreeFile), b.ModuleTree)
	})
	g.Go(func() error {
		return SaveJSON(w.Path(MetadataFile), b.Metadata)
	})

	return g.Wait()
}

// LoadCheckpoint returns the clustering checkpoint if one exists. A
// repository already clustered on a previous run skips clustering
// entirely and reuses the checkpointed tree.
func (w *Writer) LoadCheckpoint() (graph.ModuleTree, bool, error) {
	path := w.Path(FirstModuleTreeFile)
	if !Exists(path) {
		return nil, false, nil
	}
	var tree graph.ModuleTree
	if err := LoadJSON(path, &tree); err != nil {
		return nil, false, err
	}
	return tree, true, nil
}

// SaveCheckpoint records the clustering checkpoint.
func (w *Writer) SaveCheckpoint(tree graph.ModuleTree) error {
	return SaveJSON(w.Path(FirstModuleTreeFile), tree)
}

// NewMetadata builds run metadata from graph results.
func NewMetadata(repoPath, commitID string, g *graph.Graph, levels []graph.Level, tree graph.ModuleTree, maxDepth int) Metadata {
	stats := g.Stats()
	return Metadata{
		AnalysisInfo: AnalysisInfo{
			Timestamp:        time.Now().Format(time.RFC3339),
			GeneratorVersion: GeneratorVersion,
			RepoPath:         repoPath,
			CommitID:         commitID,
		},
		Statistics: Statistics{
			TotalComponents: stats.ComponentCount,
			LeafNodes:       stats.LeafCount,
			TotalEdges:      stats.EdgeCount,
			ResolvedEdges:   stats.ResolvedEdges,
			Levels:          len(levels),
			Modules:         len(tree),
			MaxDepth:        maxDepth,
		},
		AnalysisFiles: []string{
			ComponentsFile,
			ProcessingOrderFile,
			ModuleTreeFile,
			FirstModuleTreeFile,
		},
	}
}
