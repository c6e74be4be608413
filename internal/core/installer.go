package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/skilldock/skilldock/internal/core/bundle"
	"github.com/skilldock/skilldock/internal/core/target"
)

// InstallScope selects which halves of the bundle get deployed.
type InstallScope string

const (
	ScopeFull   InstallScope = "full"
	ScopeSkills InstallScope = "skills" // units only, no hook bridge
	ScopeHooks  InstallScope = "hooks"  // hook bridge only, no units
)

// hookShimName is the runtime bridge script deployed into the host's hooks
// directory. Its name carries HookToken so settings entries referencing it
// are recognizable as skilldock-owned.
const hookShimName = "skilldock-hook.sh"

// ErrAborted is returned when the user declines an untracked-file overwrite.
var ErrAborted = errors.New("installation aborted")

// ErrTargetMismatch is returned when an install would change the target of
// an existing installation without --force.
var ErrTargetMismatch = errors.New("already installed for a different target")

// ConfirmFunc asks the user whether an untracked file may be overwritten.
type ConfirmFunc func(path string) bool

// InstallOptions configures an installation.
type InstallOptions struct {
	Root    string // project root to install into
	Target  target.Target
	Scope   InstallScope
	Force   bool        // overwrite untracked files without asking
	Confirm ConfirmFunc // prompt for untracked overwrites; nil denies
}

// InstallReport summarizes what an install or update actually did.
type InstallReport struct {
	Skills   []string // skill names deployed
	Agents   []string // agent names deployed
	Skipped  []target.SchemaViolation
	Hooks    bool     // hook bridge deployed
	Written  []string // root-relative paths written or refreshed
	Removed  []string // root-relative paths removed (update only)
	Settings string   // settings file merged, if any
}

// Installer deploys a bundle into a host layout.
type Installer struct {
	bundle *bundle.Bundle
}

func NewInstaller(b *bundle.Bundle) *Installer {
	return &Installer{bundle: b}
}

// plannedFile is one file the install will materialize, with the relative
// path that ends up in the manifest.
type plannedFile struct {
	rel  string
	data []byte
	perm os.FileMode
}

// Install deploys the bundle into opts.Root for the selected target.
// Planning and conflict checks run before the first byte is written, so a
// failure at that stage leaves the project untouched.
func (inst *Installer) Install(opts InstallOptions) (*InstallReport, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("project root is required")
	}
	if opts.Scope == "" {
		opts.Scope = ScopeFull
	}
	if err := validateScope(opts.Target, opts.Scope); err != nil {
		return nil, err
	}

	prior, err := ReadManifest(opts.Root)
	if err != nil && !errors.Is(err, ErrNotInstalled) {
		return nil, err
	}
	if prior != nil && prior.Target != string(opts.Target.Schema) && !opts.Force {
		return nil, fmt.Errorf("%w: installed=%s requested=%s (uninstall first or use --force)",
			ErrTargetMismatch, prior.Target, opts.Target.Schema)
	}

	plan, report, err := inst.plan(opts)
	if err != nil {
		return nil, err
	}

	if err := resolveConflicts(opts, prior, plan); err != nil {
		return nil, err
	}

	// The settings merge is computed before any unit is written so an
	// unparseable settings file aborts with the project untouched.
	var merged []byte
	if report.Hooks {
		if merged, err = computeSettingsMerge(opts.Root, opts.Target); err != nil {
			return nil, err
		}
	}

	for _, f := range plan {
		if err := writePlanned(opts.Root, f); err != nil {
			return nil, err
		}
		report.Written = append(report.Written, f.rel)
	}

	if report.Hooks {
		if err := writeSettings(opts.Root, opts.Target, merged); err != nil {
			return nil, err
		}
		report.Settings = opts.Target.SettingsPath
	}

	m := inst.manifestFor(opts, report, plan)
	if err := WriteManifest(opts.Root, m); err != nil {
		return nil, err
	}
	return report, nil
}

// Update reconciles an existing installation with the installer's bundle:
// changed files are rewritten, unchanged files are left alone, and units no
// longer present in the bundle are removed. The manifest is rewritten last.
func (inst *Installer) Update(root string, confirm ConfirmFunc) (*InstallReport, error) {
	prior, err := ReadManifest(root)
	if err != nil {
		return nil, err
	}
	t, err := target.BySchema(prior.Target)
	if err != nil {
		return nil, fmt.Errorf("manifest names unknown target: %w", err)
	}

	opts := InstallOptions{
		Root:    root,
		Target:  t,
		Scope:   scopeOf(prior),
		Confirm: confirm,
	}
	plan, report, err := inst.plan(opts)
	if err != nil {
		return nil, err
	}

	// Paths the prior manifest tracks are ours to rewrite; anything else
	// that exists on disk needs the same confirmation install requires.
	if err := resolveConflicts(opts, prior, plan); err != nil {
		return nil, err
	}

	for _, f := range plan {
		abs := filepath.Join(root, filepath.FromSlash(f.rel))
		if existing, err := os.ReadFile(abs); err == nil && string(existing) == string(f.data) {
			continue // disk already current
		}
		if err := writePlanned(root, f); err != nil {
			return nil, err
		}
		report.Written = append(report.Written, f.rel)
	}

	if report.Hooks {
		merged, err := computeSettingsMerge(root, t)
		if err != nil {
			return nil, err
		}
		abs := filepath.Join(root, filepath.FromSlash(t.SettingsPath))
		if existing, err := os.ReadFile(abs); err != nil || string(existing) != string(merged) {
			if err := writeSettings(root, t, merged); err != nil {
				return nil, err
			}
			report.Settings = t.SettingsPath
		}
	}

	next := inst.manifestFor(opts, report, plan)
	removed, err := removeStale(root, t, prior, next)
	if err != nil {
		return nil, err
	}
	report.Removed = removed

	if err := WriteManifest(root, next); err != nil {
		return nil, err
	}
	return report, nil
}

// Uninstall removes exactly what the manifest records, then the manifest
// itself. Files the manifest does not reference are never touched.
func Uninstall(root string) (*InstallReport, error) {
	m, err := ReadManifest(root)
	if err != nil {
		return nil, err
	}
	t, err := target.BySchema(m.Target)
	if err != nil {
		return nil, fmt.Errorf("manifest names unknown target: %w", err)
	}

	report := &InstallReport{}

	for _, name := range m.Skills {
		rel := target.SkillPath(t, name)
		if rel == "" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return nil, fmt.Errorf("removing skill %s: %w", name, err)
		}
		report.Removed = append(report.Removed, rel)
	}
	for _, name := range m.Agents {
		rel := target.AgentPath(t, name)
		if rel == "" {
			continue
		}
		if err := removeIfExists(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return nil, fmt.Errorf("removing agent %s: %w", name, err)
		}
		report.Removed = append(report.Removed, rel)
	}
	for _, rel := range m.PluginFiles {
		if err := removeIfExists(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return nil, fmt.Errorf("removing plugin file %s: %w", rel, err)
		}
		report.Removed = append(report.Removed, rel)
	}

	if m.Hooks && t.SettingsPath != "" {
		settingsAbs := filepath.Join(root, filepath.FromSlash(t.SettingsPath))
		if data, err := os.ReadFile(settingsAbs); err == nil {
			cleaned, err := RemoveHookSettings(data, t.Schema == target.SchemaOpenCode)
			if err != nil {
				return nil, fmt.Errorf("cleaning %s: %w", t.SettingsPath, err)
			}
			if err := writeFileAtomic(settingsAbs, cleaned, 0o644); err != nil {
				return nil, err
			}
			report.Settings = t.SettingsPath
		}
	}

	pruneEmptyDirs(root, t)

	if err := RemoveManifest(root); err != nil {
		return nil, err
	}
	return report, nil
}

// plan converts the bundle into the concrete files this install will write.
// Nothing touches the disk here.
func (inst *Installer) plan(opts InstallOptions) ([]plannedFile, *InstallReport, error) {
	report := &InstallReport{}
	var plan []plannedFile

	if opts.Scope != ScopeHooks {
		if opts.Target.SingleDocument() {
			doc, err := target.BuildDocument(inst.bundle, opts.Target)
			if err != nil {
				return nil, nil, err
			}
			plan = append(plan, plannedFile{rel: doc.Path, data: doc.Data, perm: 0o644})
			report.Skills = inst.bundle.SkillNames()
			report.Agents = inst.bundle.AgentNames()
		} else {
			for _, sk := range inst.bundle.Skills {
				for _, f := range sk.Files {
					data, err := os.ReadFile(filepath.Join(sk.Dir, filepath.FromSlash(f)))
					if err != nil {
						return nil, nil, fmt.Errorf("reading skill %s: %w", sk.Name, err)
					}
					rel := target.SkillPath(opts.Target, sk.Name) + "/" + f
					plan = append(plan, plannedFile{rel: rel, data: data, perm: 0o644})
				}
				report.Skills = append(report.Skills, sk.Name)
			}
			for _, ag := range inst.bundle.Agents {
				hf, err := target.ConvertAgent(ag, opts.Target)
				if err != nil {
					var sv *target.SchemaViolation
					if errors.As(err, &sv) {
						report.Skipped = append(report.Skipped, *sv)
						continue
					}
					return nil, nil, err
				}
				plan = append(plan, plannedFile{rel: hf.Path, data: hf.Data, perm: 0o644})
				report.Agents = append(report.Agents, ag.Name)
			}
		}
	}

	if opts.Scope != ScopeSkills && opts.Target.SupportsHooks() {
		plan = append(plan, plannedFile{
			rel:  opts.Target.HooksDir + "/" + hookShimName,
			data: []byte(hookShimScript),
			perm: 0o755,
		})
		report.Hooks = true
	}

	sort.Slice(plan, func(i, j int) bool { return plan[i].rel < plan[j].rel })
	return plan, report, nil
}

// resolveConflicts enforces the untracked-overwrite rule: a planned path
// that already exists on disk but is not recorded in the prior manifest
// needs --force or an explicit confirmation before it may be replaced.
func resolveConflicts(opts InstallOptions, prior *Manifest, plan []plannedFile) error {
	if opts.Force {
		return nil
	}
	tracked := trackedPaths(prior, opts.Target)
	for _, f := range plan {
		if containsPath(tracked, f.rel) {
			continue
		}
		abs := filepath.Join(opts.Root, filepath.FromSlash(f.rel))
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		if opts.Confirm == nil || !opts.Confirm(f.rel) {
			return fmt.Errorf("%w: %s exists and is not managed by skilldock", ErrAborted, f.rel)
		}
	}
	return nil
}

// trackedPaths expands a manifest into the set of root-relative paths it
// owns. Skill entries mark the whole skill directory; containsPath matches
// children by prefix.
func trackedPaths(m *Manifest, t target.Target) map[string]bool {
	paths := map[string]bool{}
	if m == nil {
		return paths
	}
	for _, name := range m.Agents {
		if p := target.AgentPath(t, name); p != "" {
			paths[p] = true
		}
	}
	for _, rel := range m.PluginFiles {
		paths[rel] = true
	}
	for _, name := range m.Skills {
		if p := target.SkillPath(t, name); p != "" {
			paths[p] = true
		}
	}
	return paths
}

// containsPath reports whether rel is tracked either exactly or as a child
// of a tracked directory.
func containsPath(tracked map[string]bool, rel string) bool {
	if tracked[rel] {
		return true
	}
	for p := range tracked {
		if strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}

func validateScope(t target.Target, scope InstallScope) error {
	switch scope {
	case ScopeFull, ScopeSkills, ScopeHooks:
	default:
		return fmt.Errorf("unknown scope %q", scope)
	}
	if scope == ScopeHooks && !t.SupportsHooks() {
		return fmt.Errorf("target %s has no hook support; --hooks-only is not applicable", t.Schema)
	}
	return nil
}

func scopeOf(m *Manifest) InstallScope {
	hasUnits := len(m.Skills) > 0 || len(m.Agents) > 0
	switch {
	case m.Hooks && !hasUnits:
		return ScopeHooks
	case !m.Hooks:
		return ScopeSkills
	default:
		return ScopeFull
	}
}

func (inst *Installer) manifestFor(opts InstallOptions, report *InstallReport, plan []plannedFile) *Manifest {
	m := &Manifest{
		Target: string(opts.Target.Schema),
		Skills: append([]string(nil), report.Skills...),
		Agents: append([]string(nil), report.Agents...),
		Hooks:  report.Hooks,
	}
	for _, f := range plan {
		if strings.HasSuffix(f.rel, "/"+hookShimName) || opts.Target.SingleDocument() {
			m.PluginFiles = append(m.PluginFiles, f.rel)
		}
	}
	return m
}

// computeSettingsMerge applies the governed hook registrations to the
// target's settings document without touching the disk.
func computeSettingsMerge(root string, t target.Target) ([]byte, error) {
	abs := filepath.Join(root, filepath.FromSlash(t.SettingsPath))
	existing, err := os.ReadFile(abs)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	merged, err := MergeHookSettings(existing, hookRegistrations(t), t.Schema == target.SchemaOpenCode)
	if err != nil {
		return nil, fmt.Errorf("merging %s: %w", t.SettingsPath, err)
	}
	return merged, nil
}

func writeSettings(root string, t target.Target, merged []byte) error {
	abs := filepath.Join(root, filepath.FromSlash(t.SettingsPath))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	return writeFileAtomic(abs, merged, 0o644)
}

// hookRegistrations returns the governed settings entries for a target.
// Each command routes through the deployed shim so settings stay valid even
// when the skilldock binary moves.
func hookRegistrations(t target.Target) []HookRegistration {
	shim := t.HooksDir + "/" + hookShimName
	return []HookRegistration{
		{Event: "PreToolUse", Matcher: "Bash", Command: fmt.Sprintf("sh %s guard", shim)},
		{Event: "SessionStart", Command: fmt.Sprintf("sh %s session-start", shim)},
		{Event: "PreCompact", Command: fmt.Sprintf("sh %s compact", shim)},
		{Event: "SessionEnd", Command: fmt.Sprintf("sh %s session-error", shim)},
	}
}

// removeStale deletes unit files that the prior manifest tracked but the
// next one no longer does.
func removeStale(root string, t target.Target, prior, next *Manifest) ([]string, error) {
	var removed []string
	skillDiff := DiffNames(prior.Skills, next.Skills)
	for _, name := range skillDiff.ToRemove {
		rel := target.SkillPath(t, name)
		if rel == "" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return nil, fmt.Errorf("removing stale skill %s: %w", name, err)
		}
		removed = append(removed, rel)
	}
	agentDiff := DiffNames(prior.Agents, next.Agents)
	for _, name := range agentDiff.ToRemove {
		rel := target.AgentPath(t, name)
		if rel == "" {
			continue
		}
		if err := removeIfExists(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return nil, fmt.Errorf("removing stale agent %s: %w", name, err)
		}
		removed = append(removed, rel)
	}
	return removed, nil
}

func writePlanned(root string, f plannedFile) error {
	abs := filepath.Join(root, filepath.FromSlash(f.rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	return writeFileAtomic(abs, f.data, f.perm)
}

// writeFileAtomic writes via a temp file in the destination directory and
// renames it into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".skilldock-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// pruneEmptyDirs best-effort removes host directories left empty by an
// uninstall. Non-empty directories are left alone.
func pruneEmptyDirs(root string, t target.Target) {
	for _, rel := range []string{t.SkillsDir, t.AgentsDir, t.HooksDir} {
		if rel == "" {
			continue
		}
		_ = os.Remove(filepath.Join(root, filepath.FromSlash(rel)))
	}
}

// hookShimScript is the bridge deployed into the host hooks directory. It
// forwards the host's hook envelope on stdin to the skilldock binary.
const hookShimScript = `#!/bin/sh
# Managed by skilldock. Do not edit; changes are overwritten on update.
exec skilldock hook "$@"
`
