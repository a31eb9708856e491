package mcptools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/eitatech/gatomia-wiki/internal/artifact"
	"github.com/eitatech/gatomia-wiki/internal/graph"
	"github.com/eitatech/gatomia-wiki/internal/pipeline"
)

// AnalysisService holds the graph store and the last completed analysis
// used by MCP tool handlers.
type AnalysisService struct {
	store graph.Store

	mu         sync.RWMutex
	workingDir string
}

// NewAnalysisService creates an AnalysisService backed by the given store.
func NewAnalysisService(store graph.Store) *AnalysisService {
	return &AnalysisService{store: store}
}

// AnalyzeRepo runs the full analysis pipeline on a repository: dependency
// graph, processing order, module clustering, and artifacts. The built
// graph is also loaded into the service's store for the query tools.
func (s *AnalysisService) AnalyzeRepo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeRepoInput,
) (*mcp.CallToolResult, AnalyzeRepoOutput, error) {
	if input.RepoPath == "" {
		return nil, AnalyzeRepoOutput{}, fmt.Errorf("repoPath is required")
	}

	outputDir := input.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(input.RepoPath, ".gatomia")
	}

	langs, err := parseLanguages(input.Languages)
	if err != nil {
		return nil, AnalyzeRepoOutput{}, err
	}

	result, err := pipeline.Run(ctx, pipeline.Options{
		RepoPath:   input.RepoPath,
		OutputDir:  outputDir,
		Languages:  langs,
		Exclude:    input.Exclude,
		Containers: input.Containers,
		MaxDepth:   input.MaxDepth,
		Workers:    input.Workers,
		Store:      s.store,
	})
	if err != nil {
		return nil, AnalyzeRepoOutput{}, err
	}

	s.mu.Lock()
	s.workingDir = result.WorkingDir
	s.mu.Unlock()

	return nil, AnalyzeRepoOutput{
		WorkingDir:     result.WorkingDir,
		FromCheckpoint: result.FromCheckpoint,
		Stats:          result.Graph.Stats(),
		Levels:         len(result.Levels),
		Modules:        result.Tree.ModuleNames(),
	}, nil
}

// GetModuleTree returns the clustered module tree of an analysis run.
func (s *AnalysisService) GetModuleTree(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetModuleTreeInput,
) (*mcp.CallToolResult, GetModuleTreeOutput, error) {
	dir, err := s.resolveDir(input.OutputDir)
	if err != nil {
		return nil, GetModuleTreeOutput{}, err
	}
	var tree graph.ModuleTree
	if err := artifact.LoadJSON(filepath.Join(dir, artifact.ModuleTreeFile), &tree); err != nil {
		return nil, GetModuleTreeOutput{}, err
	}
	return nil, GetModuleTreeOutput{Tree: tree}, nil
}

// GetProcessingOrder returns the leaf-first level order of an analysis run.
func (s *AnalysisService) GetProcessingOrder(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetProcessingOrderInput,
) (*mcp.CallToolResult, GetProcessingOrderOutput, error) {
	dir, err := s.resolveDir(input.OutputDir)
	if err != nil {
		return nil, GetProcessingOrderOutput{}, err
	}
	var levels []graph.Level
	if err := artifact.LoadJSON(filepath.Join(dir, artifact.ProcessingOrderFile), &levels); err != nil {
		return nil, GetProcessingOrderOutput{}, err
	}
	return nil, GetProcessingOrderOutput{Levels: levels}, nil
}

// QueryComponents searches components by id or name substring.
func (s *AnalysisService) QueryComponents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryComponentsInput,
) (*mcp.CallToolResult, QueryComponentsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	// Over-fetch when a kind filter applies, then trim after filtering.
	fetchLimit := limit
	if input.Kind != "" {
		fetchLimit = 0
	}
	components, err := s.store.QueryComponents(ctx, input.Query, fetchLimit)
	if err != nil {
		return nil, QueryComponentsOutput{}, err
	}

	if input.Kind != "" {
		kind := graph.ComponentKind(strings.ToLower(input.Kind))
		filtered := components[:0]
		for _, c := range components {
			if c.Kind == kind {
				filtered = append(filtered, c)
			}
		}
		components = filtered
		if len(components) > limit {
			components = components[:limit]
		}
	}

	return nil, QueryComponentsOutput{
		Components: components,
		Total:      len(components),
	}, nil
}

// GetDependencies traverses the stored graph from a component.
func (s *AnalysisService) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.ComponentID == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("componentId is required")
	}

	direction := graph.DirectionUpstream
	switch input.Direction {
	case "", "upstream":
	case "downstream":
		direction = graph.DirectionDownstream
	default:
		return nil, GetDependenciesOutput{}, fmt.Errorf("invalid direction: %s", input.Direction)
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 5
	}

	chains, err := s.store.GetDependencies(ctx, input.ComponentID, direction, maxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, err
	}
	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// resolveDir picks the explicit output dir, falling back to the last
// analyze_repo run.
func (s *AnalysisService) resolveDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.workingDir == "" {
		return "", fmt.Errorf("no analysis has run yet; pass outputDir or call analyze_repo first")
	}
	return s.workingDir, nil
}

// parseLanguages validates a list of language names.
func parseLanguages(names []string) ([]graph.Language, error) {
	if len(names) == 0 {
		return nil, nil
	}
	supported := make(map[graph.Language]bool, len(graph.SupportedLanguages))
	for _, l := range graph.SupportedLanguages {
		supported[l] = true
	}
	out := make([]graph.Language, 0, len(names))
	for _, name := range names {
		lang := graph.Language(strings.ToLower(name))
		if !supported[lang] {
			return nil, fmt.Errorf("unsupported language: %s", name)
		}
		out = append(out, lang)
	}
	return out, nil
}
