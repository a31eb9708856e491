package pipeline

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eitatech/gatomia-wiki/internal/artifact"
	"github.com/eitatech/gatomia-wiki/internal/graph"
)

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for relPath, content := range files {
		full := filepath.Join(root, filepath.FromSlash(relPath))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func sampleRepo(t *testing.T) string {
	return writeRepo(t, map[string]string{
		"src/core/parser.py": `
def tokenize(text):
    return text.split()

def parse(text):
    return tokenize(text)
`,
		"src/cli/main.py": `
def main():
    parse("x")
`,
	})
}

func testOptions(repo, out string) Options {
	return Options{
		RepoPath:  repo,
		OutputDir: out,
		Logger:    log.New(io.Discard, "", 0),
	}
}

func TestRun_FullPipeline(t *testing.T) {
	repo := sampleRepo(t)
	out := filepath.Join(t.TempDir(), "work")

	res, err := Run(context.Background(), testOptions(repo, out))
	require.NoError(t, err)

	assert.False(t, res.FromCheckpoint)
	assert.Equal(t, out, res.WorkingDir)
	require.NotNil(t, res.Graph)
	assert.Len(t, res.Graph.Components, 3)

	// tokenize is the only component without resolved dependencies.
	require.NotEmpty(t, res.Levels)
	assert.Equal(t, graph.Level{"src.core.parser.tokenize"}, res.Levels[0])
	assert.Len(t, res.Levels, 3)

	// The leaf clusters under its area below src.
	require.Contains(t, res.Tree, "core")
	assert.Equal(t, []string{"src.core.parser.tokenize"}, res.Tree["core"].Components)

	for _, name := range []string{
		artifact.ComponentsFile,
		artifact.ProcessingOrderFile,
		artifact.ModuleTreeFile,
		artifact.MetadataFile,
		artifact.FirstModuleTreeFile,
	} {
		assert.True(t, artifact.Exists(filepath.Join(out, name)), "%s missing", name)
	}

	var meta artifact.Metadata
	require.NoError(t, artifact.LoadJSON(filepath.Join(out, artifact.MetadataFile), &meta))
	assert.Equal(t, 3, meta.Statistics.TotalComponents)
	assert.Equal(t, 1, meta.Statistics.MaxDepth)
	assert.Equal(t, repo, meta.AnalysisInfo.RepoPath)
}

func TestRun_MaxDepthNests(t *testing.T) {
	repo := writeRepo(t, map[string]string{
		"core/run.py":         "def run():\n    pass\n",
		"core/util/fmt.py":    "def shorten(s):\n    return s\n",
		"core/util/num/id.py": "def next_id():\n    return 0\n",
	})
	out := filepath.Join(t.TempDir(), "work")

	opts := testOptions(repo, out)
	opts.MaxDepth = 2
	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	require.Contains(t, res.Tree, "core")
	assert.Equal(t, []string{"core.run.run"}, res.Tree["core"].Components)

	child, ok := res.Tree["core"].Children["util"]
	require.True(t, ok)
	assert.ElementsMatch(t,
		[]string{"core.util.fmt.shorten", "core.util.num.id.next_id"},
		child.Components)
	assert.Empty(t, child.Children, "depth two stops below the first child level")

	var meta artifact.Metadata
	require.NoError(t, artifact.LoadJSON(filepath.Join(out, artifact.MetadataFile), &meta))
	assert.Equal(t, 2, meta.Statistics.MaxDepth)

	// The nested tree survives the checkpoint roundtrip.
	var checkpointed graph.ModuleTree
	require.NoError(t, artifact.LoadJSON(filepath.Join(out, artifact.FirstModuleTreeFile), &checkpointed))
	require.Contains(t, checkpointed, "core")
	assert.Contains(t, checkpointed["core"].Children, "util")
}

func TestRun_ResumesFromCheckpoint(t *testing.T) {
	repo := sampleRepo(t)
	out := filepath.Join(t.TempDir(), "work")

	first, err := Run(context.Background(), testOptions(repo, out))
	require.NoError(t, err)
	require.False(t, first.FromCheckpoint)

	checkpoint, err := os.ReadFile(filepath.Join(out, artifact.FirstModuleTreeFile))
	require.NoError(t, err)

	second, err := Run(context.Background(), testOptions(repo, out))
	require.NoError(t, err)
	assert.True(t, second.FromCheckpoint)
	assert.Equal(t, first.Tree, second.Tree)

	// The checkpoint itself is never rewritten.
	after, err := os.ReadFile(filepath.Join(out, artifact.FirstModuleTreeFile))
	require.NoError(t, err)
	assert.Equal(t, string(checkpoint), string(after))

	// module_tree.json is rewritten from the checkpointed tree and stays
	// byte-identical across the two runs.
	var firstTree, secondTree graph.ModuleTree
	require.NoError(t, artifact.LoadJSON(filepath.Join(out, artifact.ModuleTreeFile), &secondTree))
	require.NoError(t, artifact.LoadJSON(filepath.Join(out, artifact.FirstModuleTreeFile), &firstTree))
	assert.Equal(t, firstTree, secondTree)
}

func TestRun_CorruptCheckpointFails(t *testing.T) {
	repo := sampleRepo(t)
	out := filepath.Join(t.TempDir(), "work")
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(out, artifact.FirstModuleTreeFile), []byte("{bad"), 0o644))

	_, err := Run(context.Background(), testOptions(repo, out))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkpoint")
}

func TestRun_PopulatesStore(t *testing.T) {
	repo := sampleRepo(t)
	store := graph.NewMemStore()
	defer store.Close()

	opts := testOptions(repo, filepath.Join(t.TempDir(), "work"))
	opts.Store = store

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(res.Graph.Components), stats.ComponentCount)
	assert.Equal(t, len(res.Graph.Edges), stats.EdgeCount)
}

func TestRun_MissingRepoFails(t *testing.T) {
	opts := testOptions("/does/not/exist", filepath.Join(t.TempDir(), "work"))
	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build graph")
}

func TestRun_EmitsStageEvents(t *testing.T) {
	repo := sampleRepo(t)
	reporter := NewProgressReporter()

	opts := testOptions(repo, filepath.Join(t.TempDir(), "work"))
	opts.Reporter = reporter

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	reporter.Close()

	completed := make(map[Stage]bool)
	for event := range reporter.Subscribe() {
		if event.Status == ProgressComplete {
			completed[event.Stage] = true
		}
		assert.NotEqual(t, ProgressFailed, event.Status)
	}
	for _, stage := range []Stage{StageGraph, StageLeveling, StageClustering, StageArtifacts} {
		assert.True(t, completed[stage], "stage %s never completed", stage)
	}
}

func TestRun_NilReporterIsSafe(t *testing.T) {
	repo := sampleRepo(t)
	_, err := Run(context.Background(), testOptions(repo, filepath.Join(t.TempDir(), "work")))
	assert.NoError(t, err)
}
