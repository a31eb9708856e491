package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRepo materializes a fake repository under a temp dir.
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

var polyglotRepo = map[string]string{
	"src/be/parser.py": `
def parse(text):
    return text

def check(text):
    return parse(text)
`,
	"src/fe/view.ts": `
export function render(data: string): string {
  return data;
}
`,
	"cli/main.go": `package main

func main() {
	run()
}

func run() {}
`,
	"README.md":             "not source",
	"node_modules/dep.ts":   "export function ignored() {}",
	"generated/skip_me.py":  "def skipped():\n    pass\n",
	"src/be/__pycache__/x.py": "def cached():\n    pass\n",
}

func TestBuild_PolyglotRepo(t *testing.T) {
	root := writeRepo(t, polyglotRepo)

	g, err := Build(context.Background(), BuildOptions{
		RepoPath: root,
		Exclude:  []string{"generated"},
		Logger:   log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)

	assert.NotNil(t, findComponent(componentSlice(g), "src.be.parser.parse"))
	assert.NotNil(t, findComponent(componentSlice(g), "src.be.parser.check"))
	assert.NotNil(t, findComponent(componentSlice(g), "src.fe.view.render"))
	assert.NotNil(t, findComponent(componentSlice(g), "cli.main.main"))

	assert.Nil(t, findComponent(componentSlice(g), "generated.skip_me.skipped"), "excluded dir")
	assert.Nil(t, findComponent(componentSlice(g), "node_modules.dep.ignored"), "default exclude")
	for _, id := range g.Order {
		assert.NotContains(t, id, "__pycache__")
	}

	// check -> parse resolves within the file; main -> run within the file.
	var foundCheck, foundMain bool
	for _, e := range g.Edges {
		if e.Caller == "src.be.parser.check" && e.Callee == "src.be.parser.parse" {
			foundCheck = true
			assert.True(t, e.Resolved)
		}
		if e.Caller == "cli.main.main" && e.Callee == "cli.main.run" {
			foundMain = true
			assert.True(t, e.Resolved)
		}
	}
	assert.True(t, foundCheck)
	assert.True(t, foundMain)

	assert.ElementsMatch(t, []string{"cli/main.go", "src/be/parser.py", "src/fe/view.ts"}, g.Files)
}

func componentSlice(g *Graph) []Component {
	out := make([]Component, 0, len(g.Order))
	for _, id := range g.Order {
		out = append(out, *g.Components[id])
	}
	return out
}

func TestBuild_LanguageFilter(t *testing.T) {
	root := writeRepo(t, polyglotRepo)

	g, err := Build(context.Background(), BuildOptions{
		RepoPath:  root,
		Languages: []Language{LangPython},
		Logger:    log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)

	assert.NotNil(t, findComponent(componentSlice(g), "src.be.parser.parse"))
	assert.Nil(t, findComponent(componentSlice(g), "cli.main.main"))
	assert.Nil(t, findComponent(componentSlice(g), "src.fe.view.render"))
}

func TestBuild_MissingRepo(t *testing.T) {
	_, err := Build(context.Background(), BuildOptions{RepoPath: "/does/not/exist"})
	assert.Error(t, err)
}

func TestBuild_RepoPathRequired(t *testing.T) {
	_, err := Build(context.Background(), BuildOptions{})
	assert.Error(t, err)
}

func TestBuild_RepoPathMustBeDirectory(t *testing.T) {
	root := writeRepo(t, map[string]string{"file.py": "x = 1\n"})
	_, err := Build(context.Background(), BuildOptions{
		RepoPath: filepath.Join(root, "file.py"),
	})
	assert.Error(t, err)
}

func TestBuild_CancelledContext(t *testing.T) {
	root := writeRepo(t, polyglotRepo)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, BuildOptions{
		RepoPath: root,
		Logger:   log.New(io.Discard, "", 0),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_DuplicateComponentKeepsFirst(t *testing.T) {
	// Both files map to the same module path, so their declarations
	// collide; the one from the lexicographically earlier file wins.
	root := writeRepo(t, map[string]string{
		"pkg/thing.c": "int shared(void) { return 1; }\n",
		"pkg/thing.h": "int shared(void) { return 2; }\n",
	})

	var buf bytes.Buffer
	g, err := Build(context.Background(), BuildOptions{
		RepoPath: root,
		Logger:   log.New(&buf, "", 0),
	})
	require.NoError(t, err)

	c := findComponent(componentSlice(g), "pkg.thing.shared")
	require.NotNil(t, c)
	assert.Equal(t, "pkg/thing.c", c.RelativePath)
	assert.Contains(t, buf.String(), "duplicate component id")
}

func TestBuild_OnFileProgress(t *testing.T) {
	root := writeRepo(t, polyglotRepo)

	var seen []string
	_, err := Build(context.Background(), BuildOptions{
		RepoPath: root,
		Logger:   log.New(io.Discard, "", 0),
		OnFile:   func(path string) { seen = append(seen, path) },
	})
	require.NoError(t, err)
	assert.Len(t, seen, 3)
}

func TestBuild_Deterministic(t *testing.T) {
	root := writeRepo(t, polyglotRepo)

	build := func() []byte {
		g, err := Build(context.Background(), BuildOptions{
			RepoPath: root,
			Logger:   log.New(io.Discard, "", 0),
			Workers:  4,
		})
		require.NoError(t, err)
		data, err := json.Marshal(struct {
			Order []string
			Edges []DependencyEdge
			Files []string
		}{g.Order, g.Edges, g.Files})
		require.NoError(t, err)
		return data
	}

	first := build()
	for i := 0; i < 3; i++ {
		assert.Equal(t, string(first), string(build()))
	}
}

func TestBuild_ThenLevelsAndClusters(t *testing.T) {
	root := writeRepo(t, polyglotRepo)

	g, err := Build(context.Background(), BuildOptions{
		RepoPath: root,
		Logger:   log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)

	levels := ComputeLevels(g)
	require.NotEmpty(t, levels)
	assert.ElementsMatch(t, g.Leaves(), []string(levels[0]))

	tree := ClusterModules(g.Leaves(), g.Components, ClusterOptions{})
	assert.Contains(t, tree.ModuleNames(), "be")
	assert.Contains(t, tree.ModuleNames(), "cli")
	assert.Contains(t, tree.ModuleNames(), "fe")
}
