// Package target defines the closed set of host layouts skilldock can
// deploy into, and the pure conversion functions that map bundle units to
// host-native files. Adding a host means adding a Schema constant, a Target
// table row, and a case in the conversion switch.
package target

import (
	"fmt"
	"path"

	"github.com/skilldock/skilldock/internal/core/bundle"
)

// Schema identifies one supported host layout.
type Schema string

const (
	SchemaClaude   Schema = "claude"
	SchemaOpenCode Schema = "opencode"
	SchemaCodex    Schema = "codex"
	SchemaCodexMD  Schema = "codex-md"
)

// Target describes the directory conventions of one host layout. All paths
// are relative to the target root and use forward slashes.
type Target struct {
	Schema       Schema
	DisplayName  string
	SkillsDir    string // directory-based skill deployment; "" for single-document
	AgentsDir    string // per-agent file deployment; "" for single-document
	Document     string // single-document path (codex-md only)
	SettingsPath string // host settings file governed-merged for hooks; "" = no hook support
	HooksDir     string // where the hook bridge shim is deployed
}

// SupportsHooks reports whether the runtime hook bridge can be deployed.
func (t Target) SupportsHooks() bool { return t.SettingsPath != "" }

// SingleDocument reports whether all content collapses into one file.
func (t Target) SingleDocument() bool { return t.Document != "" }

var targets = []Target{
	{
		Schema:       SchemaClaude,
		DisplayName:  "Claude Code",
		SkillsDir:    ".claude/skills",
		AgentsDir:    ".claude/agents",
		SettingsPath: ".claude/settings.json",
		HooksDir:     ".claude/hooks",
	},
	{
		Schema:       SchemaOpenCode,
		DisplayName:  "OpenCode",
		SkillsDir:    ".opencode/skills",
		AgentsDir:    ".opencode/agent",
		SettingsPath: "opencode.json",
		HooksDir:     ".opencode/hooks",
	},
	{
		Schema:      SchemaCodex,
		DisplayName: "Codex",
		SkillsDir:   ".codex/skills",
		AgentsDir:   ".codex/agents",
	},
	{
		Schema:      SchemaCodexMD,
		DisplayName: "Codex (single document)",
		Document:    "AGENTS.md",
	},
}

// All returns every supported target in declaration order.
func All() []Target { return targets }

// BySchema returns the target for the given schema name.
func BySchema(name string) (Target, error) {
	for _, t := range targets {
		if string(t.Schema) == name {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("unknown target %q", name)
}

// HostFile is a single converted host-native file, ready to be written
// temp-then-rename by the installer.
type HostFile struct {
	Path string // relative to the target root
	Data []byte
}

// SchemaViolation reports a unit that cannot be represented in a schema.
// It aborts only the offending unit, never the whole operation.
type SchemaViolation struct {
	Unit       string
	Constraint string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("%s: %s", e.Unit, e.Constraint)
}

// AgentPath returns the host-relative path a converted agent file lands
// at, or "" for single-document targets.
func AgentPath(t Target, name string) string {
	if t.AgentsDir == "" {
		return ""
	}
	return path.Join(t.AgentsDir, name+".md")
}

// SkillPath returns the host-relative directory a skill is copied into, or
// "" for single-document targets.
func SkillPath(t Target, name string) string {
	if t.SkillsDir == "" {
		return ""
	}
	return path.Join(t.SkillsDir, name)
}

// ConvertAgent produces the host-native agent file for the given schema.
// Converting the same unit twice yields byte-identical output.
func ConvertAgent(u bundle.AgentUnit, t Target) (HostFile, error) {
	switch t.Schema {
	case SchemaClaude:
		return convertAgentClaude(u, t)
	case SchemaOpenCode:
		return convertAgentOpenCode(u, t)
	case SchemaCodex:
		return convertAgentCodex(u, t)
	default:
		return HostFile{}, fmt.Errorf("schema %s has no per-agent files", t.Schema)
	}
}
