// Package filesystem reads and writes the plain-text inputs of the
// thesaurus jobs: outlines and declared structures.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"thesaurus/internal/domain"
)

// Files resolves relative paths against a base directory
type Files struct {
	baseDir string
}

// NewFiles creates a file adapter rooted at baseDir. A leading ~ is expanded.
func NewFiles(baseDir string) *Files {
	return &Files{baseDir: expandHome(baseDir)}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}
	return path
}

// Path returns the absolute location of name
func (f *Files) Path(name string) string {
	name = expandHome(name)
	if filepath.IsAbs(name) || f.baseDir == "" {
		return name
	}
	return filepath.Join(f.baseDir, name)
}

// ReadOutline returns the lines of an outline file
func (f *Files) ReadOutline(name string) ([]string, error) {
	content, err := os.ReadFile(f.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read outline: %w", err)
	}
	return domain.SplitOutline(string(content)), nil
}

// ReadStructure decodes a declared structure from a JSON file
func (f *Files) ReadStructure(name string) (domain.Structure, error) {
	content, err := os.ReadFile(f.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read structure: %w", err)
	}
	structure, err := domain.ParseStructure(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return structure, nil
}

// WriteOutline writes entries as an outline file, creating parent
// directories. The file is replaced atomically.
func (f *Files) WriteOutline(name string, entries []domain.FlatEntry, format domain.OutlineFormat) error {
	lines, err := domain.FormatOutline(entries, format)
	if err != nil {
		return err
	}

	path := f.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := path + ".tmp"
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write outline: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write outline: %w", err)
	}
	return nil
}
