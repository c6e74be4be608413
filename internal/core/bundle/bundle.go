// Package bundle loads the curated content bundle: skill directories and
// agent definition files, read either from a directory on disk or from the
// embedded default assets. The bundle is immutable input: skilldock never
// interprets skill content, it only places and removes files.
package bundle

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// SkillUnit is one skill directory in the bundle. Content is opaque; the
// file list is relative to Dir and sorted for deterministic conversion.
type SkillUnit struct {
	Name  string
	Dir   string // absolute path to the skill directory
	Files []string
}

// AgentUnit is one parsed agent definition.
type AgentUnit struct {
	Name        string
	Description string
	Model       string
	Tools       []string
	Body        string
}

// Bundle is the full curated catalog read at operation time.
type Bundle struct {
	Name    string
	Version string
	Skills  []SkillUnit
	Agents  []AgentUnit
}

// meta mirrors the optional bundle.toml at the bundle root.
type meta struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// excludedSkillFiles are never copied into a target.
var excludedSkillFiles = map[string]bool{
	".git":        true,
	".DS_Store":   true,
	"bundle.toml": true,
}

// Load reads a bundle from a directory containing skills/ and agents/
// subdirectories and an optional bundle.toml.
func Load(dir string) (*Bundle, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bundle path %s is not a directory", dir)
	}

	b := &Bundle{Name: "skilldock"}

	metaPath := filepath.Join(dir, "bundle.toml")
	if _, err := os.Stat(metaPath); err == nil {
		var m meta
		if _, err := toml.DecodeFile(metaPath, &m); err != nil {
			return nil, fmt.Errorf("parsing bundle.toml: %w", err)
		}
		if m.Name != "" {
			b.Name = m.Name
		}
		b.Version = m.Version
	}

	skills, err := discoverSkills(filepath.Join(dir, "skills"))
	if err != nil {
		return nil, err
	}
	b.Skills = skills

	agents, err := discoverAgents(filepath.Join(dir, "agents"))
	if err != nil {
		return nil, err
	}
	b.Agents = agents

	if len(b.Skills) == 0 && len(b.Agents) == 0 {
		return nil, fmt.Errorf("no skills or agents found in bundle %s", dir)
	}
	return b, nil
}

// LoadFS extracts an embedded bundle filesystem to a temp directory and
// loads it. The caller owns the returned cleanup func.
func LoadFS(fsys fs.FS) (*Bundle, func(), error) {
	tmpDir, err := os.MkdirTemp("", "skilldock-bundle-*")
	if err != nil {
		return nil, nil, fmt.Errorf("creating temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dst := filepath.Join(tmpDir, path)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("extracting embedded bundle: %w", err)
	}

	b, err := Load(tmpDir)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return b, cleanup, nil
}

// discoverSkills finds skill directories: each immediate subdirectory of
// skillsDir containing a SKILL.md qualifies.
func discoverSkills(skillsDir string) ([]SkillUnit, error) {
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading skills directory: %w", err)
	}

	var skills []SkillUnit
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(skillsDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, "SKILL.md")); err != nil {
			continue
		}
		files, err := listSkillFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("listing skill %q: %w", entry.Name(), err)
		}
		skills = append(skills, SkillUnit{
			Name:  entry.Name(),
			Dir:   dir,
			Files: files,
		})
	}

	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills, nil
}

// listSkillFiles walks a skill directory and returns relative file paths,
// sorted, with excluded entries skipped.
func listSkillFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		if excludedSkillFiles[base] || strings.HasPrefix(base, "_") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// discoverAgents parses every .md file in agentsDir as an agent definition.
func discoverAgents(agentsDir string) ([]AgentUnit, error) {
	entries, err := os.ReadDir(agentsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading agents directory: %w", err)
	}

	var agents []AgentUnit
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(agentsDir, entry.Name())
		unit, err := ParseAgentFile(path)
		if err != nil {
			return nil, fmt.Errorf("parsing agent %s: %w", entry.Name(), err)
		}
		if unit.Name == "" {
			unit.Name = strings.TrimSuffix(entry.Name(), ".md")
		}
		agents = append(agents, *unit)
	}

	sort.Slice(agents, func(i, j int) bool { return agents[i].Name < agents[j].Name })
	return agents, nil
}

// SkillNames returns the sorted skill names of the bundle.
func (b *Bundle) SkillNames() []string {
	names := make([]string, len(b.Skills))
	for i, s := range b.Skills {
		names[i] = s.Name
	}
	return names
}

// AgentNames returns the sorted agent names of the bundle.
func (b *Bundle) AgentNames() []string {
	names := make([]string, len(b.Agents))
	for i, a := range b.Agents {
		names[i] = a.Name
	}
	return names
}

// Skill returns the named skill unit, if present.
func (b *Bundle) Skill(name string) (SkillUnit, bool) {
	for _, s := range b.Skills {
		if s.Name == name {
			return s, true
		}
	}
	return SkillUnit{}, false
}
