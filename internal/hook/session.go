package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// maxNoteChars caps how much of a project note is injected.
const maxNoteChars = 500

// compactClosing is appended to every compaction reminder.
const compactClosing = "Continue to use the installed skills and agents above when they are relevant to the task."

// Injector builds context blobs for session lifecycle events. All inputs
// are best-effort: a missing file, branch, or directory is omitted, never
// an error.
type Injector struct {
	Root string           // project root; defaults to the envelope cwd
	Now  func() time.Time // test seam; defaults to time.Now
}

func (inj *Injector) now() time.Time {
	if inj.Now != nil {
		return inj.Now()
	}
	return time.Now()
}

// notePaths are checked in order per note kind; the first readable file
// wins. The project-root location takes precedence over the tool-specific
// fallback.
var notePaths = [][]string{
	{"CONTEXT.md", ".claude/CONTEXT.md"},
	{"TODO.md", ".claude/TODO.md"},
}

// SessionContext assembles the session-start blob: today's date, the git
// branch and dirty-file count when available, and the leading portion of
// any project notes.
func (inj *Injector) SessionContext() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s.\n", inj.now().Format("Monday, January 2, 2006"))

	if branch, dirty, ok := gitState(inj.Root); ok {
		fmt.Fprintf(&b, "Git branch: %s (%d file(s) with uncommitted changes).\n", branch, dirty)
	}

	for _, candidates := range notePaths {
		for _, rel := range candidates {
			text, err := os.ReadFile(filepath.Join(inj.Root, filepath.FromSlash(rel)))
			if err != nil {
				continue
			}
			note := strings.TrimSpace(string(text))
			if note == "" {
				break // found but empty; do not fall through to the fallback
			}
			if len(note) > maxNoteChars {
				note = note[:maxNoteChars]
			}
			fmt.Fprintf(&b, "\nFrom %s:\n%s\n", rel, note)
			break
		}
	}

	return strings.TrimSpace(b.String())
}

// skillParents and agentParents are the candidate deployment locations the
// compaction reminder scans; the first existing parent wins per category.
var (
	skillParents = []string{".claude/skills", ".agents/skills"}
	agentParents = []string{".claude/agents", ".agents"}
)

// CompactContext assembles the reminder blob injected after context
// compaction: the names of deployed skills and agents plus a fixed closing
// instruction. Returns empty when nothing is deployed.
func (inj *Injector) CompactContext() string {
	skills := firstExistingListing(inj.Root, skillParents, listDirNames)
	agents := firstExistingListing(inj.Root, agentParents, listMarkdownBases)
	if len(skills) == 0 && len(agents) == 0 {
		return ""
	}

	var b strings.Builder
	if len(skills) > 0 {
		fmt.Fprintf(&b, "Installed skills: %s.\n", strings.Join(skills, ", "))
	}
	if len(agents) > 0 {
		fmt.Fprintf(&b, "Installed agents: %s.\n", strings.Join(agents, ", "))
	}
	b.WriteString(compactClosing)
	return b.String()
}

// RespondContext writes the host's synthetic-message response for a context
// blob. An empty blob writes nothing, which the host treats as no-op.
func RespondContext(out io.Writer, event, context string) error {
	if context == "" {
		return nil
	}
	resp := map[string]any{
		"hookSpecificOutput": map[string]any{
			"hookEventName":     event,
			"additionalContext": context,
		},
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = out.Write(append(data, '\n'))
	return err
}

// gitState returns the current branch and the number of files with
// uncommitted changes. ok is false when the root is not a usable git
// work tree.
func gitState(root string) (branch string, dirty int, ok bool) {
	out, err := gitOutput(root, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", 0, false
	}
	branch = strings.TrimSpace(out)
	if branch == "" {
		return "", 0, false
	}

	status, err := gitOutput(root, "status", "--porcelain")
	if err != nil {
		return "", 0, false
	}
	for _, line := range strings.Split(status, "\n") {
		if strings.TrimSpace(line) != "" {
			dirty++
		}
	}
	return branch, dirty, true
}

func gitOutput(root string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", root}, args...)...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.Output()
	return string(out), err
}

// firstExistingListing applies list to the first candidate directory that
// exists under root.
func firstExistingListing(root string, candidates []string, list func(string) []string) []string {
	for _, rel := range candidates {
		dir := filepath.Join(root, filepath.FromSlash(rel))
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return list(dir)
		}
	}
	return nil
}

// listDirNames returns sorted names of subdirectories, skipping dotted
// entries.
func listDirNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// listMarkdownBases returns sorted base names of .md files in dir.
func listMarkdownBases(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names
}
