// Package artifact persists analysis outputs as JSON files in the
// working directory, including the clustering checkpoint that makes
// reruns resumable.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Output file names in the analysis working directory.
const (
	FirstModuleTreeFile = "first_module_tree.json"
	ModuleTreeFile      = "module_tree.json"
	ComponentsFile      = "components.json"
	ProcessingOrderFile = "processing_order.json"
	MetadataFile        = "analysis_metadata.json"
)

// SaveJSON writes v to path as indented JSON. The write goes through a
// temp file and rename so a crash never leaves a truncated artifact.
func SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadJSON reads the JSON file at path into v.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Exists reports whether a regular file exists at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// EnsureDirectory creates the directory and its parents if needed.
func EnsureDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
