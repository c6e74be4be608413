package target

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skilldock/skilldock/internal/core/bundle"
)

var testAgent = bundle.AgentUnit{
	Name:        "reviewer",
	Description: "Reviews code changes\nfor correctness.",
	Model:       "haiku",
	Tools:       []string{"Read", "Grep"},
	Body:        "You review code.\n",
}

func mustTarget(t *testing.T, name string) Target {
	t.Helper()
	tgt, err := BySchema(name)
	if err != nil {
		t.Fatal(err)
	}
	return tgt
}

func TestBySchema(t *testing.T) {
	for _, name := range []string{"claude", "opencode", "codex", "codex-md"} {
		if _, err := BySchema(name); err != nil {
			t.Errorf("BySchema(%q): %v", name, err)
		}
	}
	if _, err := BySchema("cursor"); err == nil {
		t.Error("unknown schema should error")
	}
}

func TestTargetCapabilities(t *testing.T) {
	tests := []struct {
		schema   string
		hooks    bool
		document bool
	}{
		{"claude", true, false},
		{"opencode", true, false},
		{"codex", false, false},
		{"codex-md", false, true},
	}
	for _, tt := range tests {
		tgt := mustTarget(t, tt.schema)
		if tgt.SupportsHooks() != tt.hooks {
			t.Errorf("%s: SupportsHooks = %v, want %v", tt.schema, tgt.SupportsHooks(), tt.hooks)
		}
		if tgt.SingleDocument() != tt.document {
			t.Errorf("%s: SingleDocument = %v, want %v", tt.schema, tgt.SingleDocument(), tt.document)
		}
	}
}

func TestConvertAgent_Claude(t *testing.T) {
	hf, err := ConvertAgent(testAgent, mustTarget(t, "claude"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if hf.Path != ".claude/agents/reviewer.md" {
		t.Errorf("path = %q", hf.Path)
	}

	s := string(hf.Data)
	if !strings.HasPrefix(s, "---\n") {
		t.Errorf("no frontmatter delimiter:\n%s", s)
	}
	if !strings.Contains(s, "name: reviewer") {
		t.Errorf("missing name:\n%s", s)
	}
	if !strings.Contains(s, "tools: Read, Grep") {
		t.Errorf("tools not comma-joined:\n%s", s)
	}
	if !strings.Contains(s, "You review code.") {
		t.Errorf("body lost:\n%s", s)
	}
	// name comes before description in the rendered frontmatter.
	if strings.Index(s, "name:") > strings.Index(s, "description:") {
		t.Errorf("key order wrong:\n%s", s)
	}
}

func TestConvertAgent_OpenCode(t *testing.T) {
	hf, err := ConvertAgent(testAgent, mustTarget(t, "opencode"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if hf.Path != ".opencode/agent/reviewer.md" {
		t.Errorf("path = %q", hf.Path)
	}

	s := string(hf.Data)
	if !strings.Contains(s, "mode: subagent") {
		t.Errorf("missing mode discriminator:\n%s", s)
	}
	if !strings.Contains(s, "grep: true") || !strings.Contains(s, "read: true") {
		t.Errorf("tools not mapped to lowercase booleans:\n%s", s)
	}
}

func TestConvertAgent_Codex(t *testing.T) {
	hf, err := ConvertAgent(testAgent, mustTarget(t, "codex"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	s := string(hf.Data)
	// The multi-line description is folded to one line.
	if !strings.Contains(s, "Reviews code changes for correctness.") {
		t.Errorf("description not folded:\n%s", s)
	}
}

func TestConvertAgent_CodexDescriptionCeiling(t *testing.T) {
	long := testAgent
	long.Description = strings.Repeat("very long description ", 60)

	_, err := ConvertAgent(long, mustTarget(t, "codex"))
	var sv *SchemaViolation
	if !errors.As(err, &sv) {
		t.Fatalf("error = %v, want SchemaViolation", err)
	}
	if sv.Unit != "reviewer" {
		t.Errorf("violation unit = %q", sv.Unit)
	}
	// At exactly the ceiling the conversion succeeds.
	exact := testAgent
	exact.Description = strings.Repeat("a", maxCodexDescription)
	if _, err := ConvertAgent(exact, mustTarget(t, "codex")); err != nil {
		t.Errorf("ceiling-length description rejected: %v", err)
	}
}

func TestConvertAgent_Deterministic(t *testing.T) {
	for _, schema := range []string{"claude", "opencode", "codex"} {
		tgt := mustTarget(t, schema)
		a, err := ConvertAgent(testAgent, tgt)
		if err != nil {
			t.Fatalf("%s: %v", schema, err)
		}
		b, err := ConvertAgent(testAgent, tgt)
		if err != nil {
			t.Fatalf("%s: %v", schema, err)
		}
		if string(a.Data) != string(b.Data) {
			t.Errorf("%s conversion not deterministic", schema)
		}
	}
}

func TestConvertAgent_OmitsEmptyOptionalFields(t *testing.T) {
	bare := bundle.AgentUnit{Name: "min", Description: "Minimal.", Body: "Do things.\n"}
	hf, err := ConvertAgent(bare, mustTarget(t, "claude"))
	if err != nil {
		t.Fatal(err)
	}
	s := string(hf.Data)
	if strings.Contains(s, "model:") || strings.Contains(s, "tools:") {
		t.Errorf("empty optional fields rendered:\n%s", s)
	}
}

func TestBuildDocument(t *testing.T) {
	dir := t.TempDir()
	skillDir := filepath.Join(dir, "alpha")
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte("# Alpha\n\nBody.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := &bundle.Bundle{
		Skills: []bundle.SkillUnit{{Name: "alpha", Dir: skillDir, Files: []string{"SKILL.md"}}},
		Agents: []bundle.AgentUnit{testAgent},
	}

	hf, err := BuildDocument(b, mustTarget(t, "codex-md"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	s := string(hf.Data)
	if hf.Path != "AGENTS.md" {
		t.Errorf("path = %q", hf.Path)
	}
	if !strings.Contains(s, "bundles 1 skill(s) and 1 agent(s)") {
		t.Errorf("roster line wrong:\n%s", s)
	}
	if !strings.Contains(s, "## Skill: alpha") || !strings.Contains(s, "## Agent: reviewer") {
		t.Errorf("sections missing:\n%s", s)
	}

	// Per-agent conversion is meaningless for the document target.
	if _, err := ConvertAgent(testAgent, mustTarget(t, "codex-md")); err == nil {
		t.Error("ConvertAgent should reject the single-document target")
	}
}

func TestBuildDocument_RejectsFileTargets(t *testing.T) {
	if _, err := BuildDocument(&bundle.Bundle{}, mustTarget(t, "claude")); err == nil {
		t.Error("expected error for a non-document target")
	}
}
