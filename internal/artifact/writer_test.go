package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eitatech/gatomia-wiki/internal/graph"
)

func sampleBundle() Bundle {
	components := map[string]*graph.Component{
		"pkg.a.base": {ID: "pkg.a.base", Name: "base", Kind: graph.KindFunction},
		"pkg.b.top":  {ID: "pkg.b.top", Name: "top", Kind: graph.KindFunction},
	}
	tree := graph.ModuleTree{
		"pkg": {Path: "pkg", Components: []string{"pkg.a.base"}, Children: map[string]*graph.Module{}},
	}
	return Bundle{
		Components: components,
		Levels:     []graph.Level{{"pkg.a.base"}, {"pkg.b.top"}},
		ModuleTree: tree,
		Metadata: Metadata{
			AnalysisInfo: AnalysisInfo{GeneratorVersion: GeneratorVersion, RepoPath: "/repo"},
			Statistics:   Statistics{TotalComponents: 2, Levels: 2, Modules: 1},
		},
	}
}

func TestWriter_WriteBundle(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, w.WriteBundle(context.Background(), sampleBundle()))

	for _, name := range []string{ComponentsFile, ProcessingOrderFile, ModuleTreeFile, MetadataFile} {
		assert.True(t, Exists(w.Path(name)), "%s should be written", name)
	}
	assert.False(t, Exists(w.Path(FirstModuleTreeFile)), "checkpoint is written separately")

	var components map[string]*graph.Component
	require.NoError(t, LoadJSON(w.Path(ComponentsFile), &components))
	assert.Len(t, components, 2)

	var levels []graph.Level
	require.NoError(t, LoadJSON(w.Path(ProcessingOrderFile), &levels))
	assert.Equal(t, sampleBundle().Levels, levels)

	var meta Metadata
	require.NoError(t, LoadJSON(w.Path(MetadataFile), &meta))
	assert.Equal(t, GeneratorVersion, meta.AnalysisInfo.GeneratorVersion)
}

func TestWriter_Checkpoint(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	tree, found, err := w.LoadCheckpoint()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, tree)

	require.NoError(t, w.SaveCheckpoint(sampleBundle().ModuleTree))

	tree, found, err = w.LoadCheckpoint()
	require.NoError(t, err)
	assert.True(t, found)
	require.Contains(t, tree, "pkg")
	assert.Equal(t, []string{"pkg.a.base"}, tree["pkg"].Components)
}

func TestNewMetadata(t *testing.T) {
	g := &graph.Graph{Components: map[string]*graph.Component{
		"pkg.a.base": {ID: "pkg.a.base", Name: "base"},
		"pkg.b.top":  {ID: "pkg.b.top", Name: "top"},
	}}
	g.Order = []string{"pkg.a.base", "pkg.b.top"}
	g.Edges = []graph.DependencyEdge{
		{Caller: "pkg.b.top", Callee: "pkg.a.base", Resolved: true},
		{Caller: "pkg.b.top", Callee: "mystery", Resolved: false},
	}

	levels := []graph.Level{{"pkg.a.base"}, {"pkg.b.top"}}
	tree := graph.ModuleTree{"pkg": {Path: "pkg"}}

	meta := NewMetadata("/repo", "abc123", g, levels, tree, 2)
	assert.Equal(t, "/repo", meta.AnalysisInfo.RepoPath)
	assert.Equal(t, "abc123", meta.AnalysisInfo.CommitID)
	assert.NotEmpty(t, meta.AnalysisInfo.Timestamp)
	assert.Equal(t, 2, meta.Statistics.TotalComponents)
	assert.Equal(t, 2, meta.Statistics.TotalEdges)
	assert.Equal(t, 1, meta.Statistics.ResolvedEdges)
	assert.Equal(t, 1, meta.Statistics.LeafNodes)
	assert.Equal(t, 2, meta.Statistics.Levels)
	assert.Equal(t, 1, meta.Statistics.Modules)
	assert.Equal(t, 2, meta.Statistics.MaxDepth)
	assert.Contains(t, meta.AnalysisFiles, ComponentsFile)
}
