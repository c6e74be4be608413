package hook

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedInjector(root string) *Injector {
	return &Injector{
		Root: root,
		Now:  func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) },
	}
}

func TestSessionContext_DateOnly(t *testing.T) {
	blob := fixedInjector(t.TempDir()).SessionContext()
	if !strings.Contains(blob, "Saturday, March 14, 2026") {
		t.Errorf("blob missing date: %q", blob)
	}
}

func TestSessionContext_NotesWithPrecedence(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "CONTEXT.md", "project context at root")
	mustWrite(t, root, ".claude/CONTEXT.md", "fallback context, must lose")
	mustWrite(t, root, ".claude/TODO.md", "todo from fallback")

	blob := fixedInjector(root).SessionContext()

	if !strings.Contains(blob, "project context at root") {
		t.Errorf("root note missing: %q", blob)
	}
	if strings.Contains(blob, "must lose") {
		t.Errorf("fallback note should be shadowed by the root note: %q", blob)
	}
	if !strings.Contains(blob, "todo from fallback") {
		t.Errorf("fallback todo missing when root todo absent: %q", blob)
	}
}

func TestSessionContext_NoteTruncated(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "TODO.md", strings.Repeat("x", 2000))

	blob := fixedInjector(root).SessionContext()
	if strings.Count(blob, "x") != maxNoteChars {
		t.Errorf("note not truncated to %d chars: %d", maxNoteChars, strings.Count(blob, "x"))
	}
}

func TestSessionContext_MissingEverythingStillDated(t *testing.T) {
	// No git, no notes: the blob degrades to the date line, never errors.
	blob := fixedInjector(t.TempDir()).SessionContext()
	if blob == "" {
		t.Fatal("blob should at least carry the date")
	}
	if strings.Contains(blob, "Git branch") {
		t.Errorf("no repository, but blob mentions git: %q", blob)
	}
}

func TestCompactContext(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, ".claude/skills/code-review/SKILL.md", "x")
	mustWrite(t, root, ".claude/skills/debugging/SKILL.md", "x")
	mustWrite(t, root, ".claude/agents/reviewer.md", "x")

	blob := fixedInjector(root).CompactContext()

	if !strings.Contains(blob, "code-review, debugging") {
		t.Errorf("skills missing or unsorted: %q", blob)
	}
	if !strings.Contains(blob, "reviewer") {
		t.Errorf("agents missing: %q", blob)
	}
	if !strings.Contains(blob, compactClosing) {
		t.Errorf("closing instruction missing: %q", blob)
	}
}

func TestCompactContext_FallbackParents(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, ".agents/skills/testing/SKILL.md", "x")

	blob := fixedInjector(root).CompactContext()
	if !strings.Contains(blob, "testing") {
		t.Errorf("fallback parent not scanned: %q", blob)
	}
}

func TestCompactContext_EmptyWhenNothingDeployed(t *testing.T) {
	if blob := fixedInjector(t.TempDir()).CompactContext(); blob != "" {
		t.Errorf("expected empty blob, got %q", blob)
	}
}

func TestRespondContext(t *testing.T) {
	var out bytes.Buffer
	if err := RespondContext(&out, "SessionStart", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		HookSpecificOutput struct {
			HookEventName     string `json:"hookEventName"`
			AdditionalContext string `json:"additionalContext"`
		} `json:"hookSpecificOutput"`
	}
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.HookSpecificOutput.HookEventName != "SessionStart" {
		t.Errorf("event = %q", resp.HookSpecificOutput.HookEventName)
	}
	if resp.HookSpecificOutput.AdditionalContext != "hello" {
		t.Errorf("context = %q", resp.HookSpecificOutput.AdditionalContext)
	}
}

func TestRespondContext_EmptyWritesNothing(t *testing.T) {
	var out bytes.Buffer
	if err := RespondContext(&out, "PreCompact", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("empty blob produced output: %q", out.String())
	}
}

func TestLogFailure(t *testing.T) {
	root := t.TempDir()

	LogFailure(root, "session-error", json.RawMessage(`{"code":500}`))
	LogFailure(root, "session-error", json.RawMessage(`{"code":501}`))

	data, err := os.ReadFile(filepath.Join(root, ".skilldock", "failures.jsonl"))
	if err != nil {
		t.Fatalf("log not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	var rec failureRecord
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line not valid JSON: %v", err)
	}
	if rec.Event != "session-error" {
		t.Errorf("event = %q", rec.Event)
	}
	if rec.Timestamp == "" {
		t.Error("missing timestamp")
	}
}

func TestLogFailure_UnwritableRootIsSwallowed(t *testing.T) {
	// Pointing the log at a path whose parent is a file makes every write
	// fail; LogFailure must stay silent.
	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	LogFailure(root, "session-error", nil)
}

func mustWrite(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
