package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	content := `
outputDir: .analysis
languages:
  - python
  - go
exclude:
  - generated
containers:
  - myproject
maxDepth: 2
workers: 8
verbose: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gatomia.yml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ".analysis", cfg.OutputDir)
	assert.Equal(t, []string{"python", "go"}, cfg.Languages)
	assert.Equal(t, []string{"generated"}, cfg.Exclude)
	assert.Equal(t, []string{"myproject"}, cfg.Containers)
	assert.Equal(t, 2, cfg.MaxDepth)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Verbose)
}

func TestLoad_YamlExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gatomia.yaml"), []byte("workers: 2\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoad_YmlTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gatomia.yml"), []byte("workers: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gatomia.yaml"), []byte("workers: 2\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)
}

func TestLoad_MissingFileIsZeroValue(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoad_MalformedYaml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gatomia.yml"), []byte(":\n\t- bad"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
