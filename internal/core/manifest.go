// Package core provides the business logic for skilldock.
// It has zero UI dependencies and is independently testable.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const manifestFileName = ".skilldock-manifest.json"

// ErrNotInstalled is returned when a target root has no manifest.
var ErrNotInstalled = errors.New("not installed")

// Manifest records exactly which bundle artifacts are deployed under a
// target root. It is the sole source of truth for update and uninstall.
type Manifest struct {
	Target      string   `json:"target"`
	Skills      []string `json:"skills"`
	Agents      []string `json:"agents"`
	Hooks       bool     `json:"hooks"`
	PluginFiles []string `json:"plugin_files"`
}

// ManifestPath returns the full path to the manifest in the given root.
func ManifestPath(root string) string {
	return filepath.Join(root, manifestFileName)
}

// ReadManifest reads and parses the manifest from a target root.
// Returns ErrNotInstalled if the file does not exist.
func ReadManifest(root string) (*Manifest, error) {
	data, err := os.ReadFile(ManifestPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotInstalled
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// WriteManifest writes the manifest atomically (write-temp-then-rename, so
// a crash never exposes a half-written manifest). Name slices are sorted
// for deterministic output.
func WriteManifest(root string, m *Manifest) error {
	sort.Strings(m.Skills)
	sort.Strings(m.Agents)
	sort.Strings(m.PluginFiles)

	if m.Skills == nil {
		m.Skills = []string{}
	}
	if m.Agents == nil {
		m.Agents = []string{}
	}
	if m.PluginFiles == nil {
		m.PluginFiles = []string{}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	data = append(data, '\n')

	path := ManifestPath(root)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving manifest: %w", err)
	}
	return nil
}

// RemoveManifest deletes the manifest file. It is called last during
// uninstall, after every referenced file is gone.
func RemoveManifest(root string) error {
	if err := os.Remove(ManifestPath(root)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing manifest: %w", err)
	}
	return nil
}

// ManifestDiff is the outcome of comparing two name sets.
type ManifestDiff struct {
	ToAdd    []string
	ToRemove []string
}

// DiffNames compares an old and a new name set and returns what must be
// added and removed to get from old to new. Both outputs are sorted.
func DiffNames(old, new []string) ManifestDiff {
	oldSet := make(map[string]bool, len(old))
	for _, n := range old {
		oldSet[n] = true
	}
	newSet := make(map[string]bool, len(new))
	for _, n := range new {
		newSet[n] = true
	}

	var d ManifestDiff
	for _, n := range new {
		if !oldSet[n] {
			d.ToAdd = append(d.ToAdd, n)
		}
	}
	for _, n := range old {
		if !newSet[n] {
			d.ToRemove = append(d.ToRemove, n)
		}
	}
	sort.Strings(d.ToAdd)
	sort.Strings(d.ToRemove)
	return d
}

// Empty reports whether the diff requires no work.
func (d ManifestDiff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}
