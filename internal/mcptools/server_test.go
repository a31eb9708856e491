package mcptools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eitatech/gatomia-wiki/internal/graph"
)

// setupServerClient wires the MCP server and a client together over
// in-memory transports and returns the connected client session.
func setupServerClient(t *testing.T) (*mcp.ClientSession, *AnalysisService) {
	t.Helper()

	svc := NewAnalysisService(graph.NewMemStore())
	server := NewAnalysisMCPServer(svc)

	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})

	return session, svc
}

func TestMCPListTools(t *testing.T) {
	session, _ := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, result.Tools, 5, "expected 5 registered tools")

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"analyze_repo",
		"get_dependencies",
		"get_module_tree",
		"get_processing_order",
		"query_components",
	}, names)
}

func TestMCPAnalyzeRepoTool(t *testing.T) {
	session, _ := setupServerClient(t)
	ctx := context.Background()

	repo := writeTestRepo(t)
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "analyze_repo",
		Arguments: map[string]any{
			"repoPath":  repo,
			"outputDir": filepath.Join(t.TempDir(), "work"),
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "tool call should succeed")

	data, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)

	var out AnalyzeRepoOutput
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 4, out.Stats.ComponentCount)
	assert.Contains(t, out.Modules, "core")
}

func TestMCPQueryComponentsTool(t *testing.T) {
	session, svc := setupServerClient(t)
	ctx := context.Background()

	_, err := runAnalyze(svc, AnalyzeRepoInput{
		RepoPath:  writeTestRepo(t),
		OutputDir: filepath.Join(t.TempDir(), "work"),
	})
	require.NoError(t, err)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "query_components",
		Arguments: map[string]any{"query": "engine"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	data, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)

	var out QueryComponentsOutput
	require.NoError(t, json.Unmarshal(data, &out))
	assert.NotEmpty(t, out.Components)
}

func TestMCPToolError(t *testing.T) {
	session, _ := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "analyze_repo",
		Arguments: map[string]any{"repoPath": ""},
	})
	require.NoError(t, err, "protocol-level call should succeed")
	assert.True(t, result.IsError, "handler error should surface as a tool error")
}
