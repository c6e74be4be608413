package target

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skilldock/skilldock/internal/core/bundle"
)

// BuildDocument renders the single-document target: every skill body
// concatenated into one file, prefixed by a roster line. The counts in the
// roster line are computed from the live bundle at render time, never
// cached, so they always match what follows.
func BuildDocument(b *bundle.Bundle, t Target) (HostFile, error) {
	if !t.SingleDocument() {
		return HostFile{}, fmt.Errorf("schema %s is not a single-document target", t.Schema)
	}

	var buf bytes.Buffer
	buf.WriteString("# Agent Instructions\n\n")
	fmt.Fprintf(&buf, "This document bundles %d skill(s) and %d agent(s).\n\n",
		len(b.Skills), len(b.Agents))

	for _, s := range b.Skills {
		body, err := os.ReadFile(filepath.Join(s.Dir, "SKILL.md"))
		if err != nil {
			return HostFile{}, fmt.Errorf("reading skill %q: %w", s.Name, err)
		}
		fmt.Fprintf(&buf, "## Skill: %s\n\n", s.Name)
		buf.Write(bytes.TrimSpace(body))
		buf.WriteString("\n\n")
	}

	for _, a := range b.Agents {
		fmt.Fprintf(&buf, "## Agent: %s\n\n%s\n\n", a.Name, foldLine(a.Description))
	}

	return HostFile{Path: t.Document, Data: buf.Bytes()}, nil
}
