package mcptools

import (
	"github.com/eitatech/gatomia-wiki/internal/graph"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// AnalyzeRepoInput is the input for the analyze_repo MCP tool.
type AnalyzeRepoInput struct {
	RepoPath   string   `json:"repoPath" jsonschema:"the absolute path to the repository to analyze"`
	OutputDir  string   `json:"outputDir,omitempty" jsonschema:"working directory for analysis artifacts (default: <repoPath>/.gatomia)"`
	Languages  []string `json:"languages,omitempty" jsonschema:"languages to analyze. Values: python, java, csharp, c, cpp, go, typescript, rust. Default: all"`
	Exclude    []string `json:"exclude,omitempty" jsonschema:"directory names to exclude from analysis (e.g. vendor, node_modules)"`
	Containers []string `json:"containers,omitempty" jsonschema:"top-level wrapper directories collapsed during module clustering"`
	MaxDepth   int      `json:"maxDepth,omitempty" jsonschema:"maximum module hierarchy depth (default: 1, a flat tree)"`
	Workers    int      `json:"workers,omitempty" jsonschema:"maximum parse workers (default: 2x CPU count)"`
}

// AnalyzeRepoOutput is the result of the analyze_repo MCP tool.
type AnalyzeRepoOutput struct {
	WorkingDir     string           `json:"working_dir"`
	FromCheckpoint bool             `json:"from_checkpoint"`
	Stats          graph.GraphStats `json:"stats"`
	Levels         int              `json:"levels"`
	Modules        []string         `json:"modules"`
}

// GetModuleTreeInput is the input for the get_module_tree MCP tool.
type GetModuleTreeInput struct {
	OutputDir string `json:"outputDir,omitempty" jsonschema:"working directory of a previous analysis. Defaults to the last analyze_repo run"`
}

// GetModuleTreeOutput is the result of the get_module_tree MCP tool.
type GetModuleTreeOutput struct {
	Tree graph.ModuleTree `json:"tree"`
}

// GetProcessingOrderInput is the input for the get_processing_order MCP tool.
type GetProcessingOrderInput struct {
	OutputDir string `json:"outputDir,omitempty" jsonschema:"working directory of a previous analysis. Defaults to the last analyze_repo run"`
}

// GetProcessingOrderOutput is the result of the get_processing_order MCP tool.
type GetProcessingOrderOutput struct {
	Levels []graph.Level `json:"levels"`
}

// QueryComponentsInput is the input for the query_components MCP tool.
type QueryComponentsInput struct {
	Query string `json:"query" jsonschema:"search query matched against component ids and names (substring match)"`
	Kind  string `json:"kind,omitempty" jsonschema:"filter by component kind: function, method, class, struct, interface, enum, record, type, variable"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QueryComponentsOutput is the result of the query_components MCP tool.
type QueryComponentsOutput struct {
	Components []graph.Component `json:"components"`
	Total      int               `json:"total"`
}

// GetDependenciesInput is the input for the get_dependencies MCP tool.
type GetDependenciesInput struct {
	ComponentID string `json:"componentId" jsonschema:"fully qualified component id"`
	Direction   string `json:"direction,omitempty" jsonschema:"upstream (what it depends on) or downstream (what depends on it). Default: upstream"`
	MaxDepth    int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies MCP tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}
