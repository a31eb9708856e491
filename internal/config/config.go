package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from gatomia.yml.
type ProjectConfig struct {
	OutputDir  string   `yaml:"outputDir,omitempty"`
	Languages  []string `yaml:"languages,omitempty"`
	Exclude    []string `yaml:"exclude,omitempty"`
	Containers []string `yaml:"containers,omitempty"`
	MaxDepth   int      `yaml:"maxDepth,omitempty"`
	Workers    int      `yaml:"workers,omitempty"`
	Verbose    bool     `yaml:"verbose,omitempty"`
}

// Load attempts to read gatomia.yml or gatomia.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"gatomia.yml", "gatomia.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
