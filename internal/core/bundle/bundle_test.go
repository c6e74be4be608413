package bundle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func writeBundleDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeBundleDir(t, map[string]string{
		"bundle.toml":           "name = \"test-bundle\"\nversion = \"1.2.3\"\n",
		"skills/zeta/SKILL.md":  "# Zeta\n",
		"skills/alpha/SKILL.md": "# Alpha\n",
		"skills/alpha/notes.md": "notes\n",
		"agents/helper.md":      "---\ndescription: Helps.\n---\n\nHelp.\n",
	})

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b.Name != "test-bundle" || b.Version != "1.2.3" {
		t.Errorf("metadata = %q %q", b.Name, b.Version)
	}

	// Skills come back sorted by name.
	names := b.SkillNames()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("skill names = %v", names)
	}

	alpha, ok := b.Skill("alpha")
	if !ok {
		t.Fatal("alpha not found")
	}
	if len(alpha.Files) != 2 || alpha.Files[0] != "SKILL.md" || alpha.Files[1] != "notes.md" {
		t.Errorf("alpha files = %v", alpha.Files)
	}

	if len(b.Agents) != 1 || b.Agents[0].Name != "helper" {
		t.Errorf("agents = %+v", b.Agents)
	}
}

func TestLoad_SkipsDirsWithoutSkillFile(t *testing.T) {
	dir := writeBundleDir(t, map[string]string{
		"skills/real/SKILL.md":    "# Real\n",
		"skills/not-a-skill/x.md": "no marker file\n",
	})

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(b.Skills) != 1 || b.Skills[0].Name != "real" {
		t.Errorf("skills = %v", b.SkillNames())
	}
}

func TestLoad_SkipsUnderscoreAndJunkFiles(t *testing.T) {
	dir := writeBundleDir(t, map[string]string{
		"skills/a/SKILL.md":     "# A\n",
		"skills/a/_draft.md":    "draft\n",
		"skills/a/.DS_Store":    "junk",
		"skills/a/sub/deep.md":  "keep\n",
		"skills/a/_wip/note.md": "skip entire dir\n",
	})

	b, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sk := b.Skills[0]
	for _, f := range sk.Files {
		if strings.HasPrefix(filepath.Base(f), "_") || f == ".DS_Store" {
			t.Errorf("excluded file listed: %s", f)
		}
	}
	found := false
	for _, f := range sk.Files {
		if f == "sub/deep.md" {
			found = true
		}
	}
	if !found {
		t.Errorf("nested file missing: %v", sk.Files)
	}
}

func TestLoad_EmptyBundle(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("empty bundle should error")
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("missing dir should error")
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"bundle.toml":         {Data: []byte("name = \"embedded\"\n")},
		"skills/one/SKILL.md": {Data: []byte("# One\n")},
		"agents/bot.md":       {Data: []byte("---\ndescription: A bot.\n---\n\nBeep.\n")},
	}

	b, cleanup, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("loadFS: %v", err)
	}
	defer cleanup()

	if b.Name != "embedded" {
		t.Errorf("name = %q", b.Name)
	}
	if len(b.Skills) != 1 || len(b.Agents) != 1 {
		t.Errorf("units = %d skills %d agents", len(b.Skills), len(b.Agents))
	}

	// The extracted files are readable through the unit paths.
	data, err := os.ReadFile(filepath.Join(b.Skills[0].Dir, "SKILL.md"))
	if err != nil || string(data) != "# One\n" {
		t.Errorf("extracted skill unreadable: %v %q", err, data)
	}
}

func TestParseAgentContent(t *testing.T) {
	raw := []byte(`---
name: custom
description: Does things.
model: haiku
tools:
  - Read
  - Bash
---

The body.
`)
	u, err := ParseAgentContent(raw, "test.md")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Name != "custom" || u.Description != "Does things." || u.Model != "haiku" {
		t.Errorf("unit = %+v", u)
	}
	if len(u.Tools) != 2 || u.Tools[0] != "Read" {
		t.Errorf("tools = %v", u.Tools)
	}
	if !strings.Contains(u.Body, "The body.") {
		t.Errorf("body = %q", u.Body)
	}
}

func TestParseAgentContent_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no frontmatter", "just text\n"},
		{"unterminated frontmatter", "---\ndescription: x\n"},
		{"missing description", "---\nname: x\n---\n\nbody\n"},
		{"empty body", "---\ndescription: x\n---\n\n  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAgentContent([]byte(tt.raw), tt.name); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestDiscoverAgents_NameDefaultsToFilename(t *testing.T) {
	dir := writeBundleDir(t, map[string]string{
		"skills/s/SKILL.md": "# S\n",
		"agents/unnamed.md": "---\ndescription: No name field.\n---\n\nBody.\n",
	})
	b, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if b.Agents[0].Name != "unnamed" {
		t.Errorf("name = %q, want filename fallback", b.Agents[0].Name)
	}
}
