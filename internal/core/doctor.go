package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/skilldock/skilldock/internal/core/target"
)

// CheckStatus classifies a single doctor finding.
type CheckStatus string

const (
	CheckOK   CheckStatus = "ok"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// CheckResult is one doctor finding. Doctor never repairs; it reports.
type CheckResult struct {
	Name   string
	Status CheckStatus
	Detail string
}

// DoctorReport aggregates all findings for a project root.
type DoctorReport struct {
	Installed bool
	Target    string
	Checks    []CheckResult
}

// Healthy reports whether no check failed. Warnings do not count as
// failures.
func (r *DoctorReport) Healthy() bool {
	for _, c := range r.Checks {
		if c.Status == CheckFail {
			return false
		}
	}
	return true
}

// StatusInfo is the short-form installation summary.
type StatusInfo struct {
	Installed bool
	Target    string
	Skills    int
	Agents    int
	Hooks     bool
}

// Status reports what the manifest says is installed. It reads only the
// manifest; use Doctor for disk verification.
func Status(root string) (*StatusInfo, error) {
	m, err := ReadManifest(root)
	if errors.Is(err, ErrNotInstalled) {
		return &StatusInfo{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &StatusInfo{
		Installed: true,
		Target:    m.Target,
		Skills:    len(m.Skills),
		Agents:    len(m.Agents),
		Hooks:     m.Hooks,
	}, nil
}

// Doctor verifies the manifest against the disk: every tracked unit must
// exist, the settings fragment must be present when hooks are installed,
// and unmanaged entries in managed directories are surfaced as warnings.
func Doctor(root string) (*DoctorReport, error) {
	report := &DoctorReport{}

	m, err := ReadManifest(root)
	if errors.Is(err, ErrNotInstalled) {
		report.Checks = append(report.Checks, CheckResult{
			Name:   "manifest",
			Status: CheckOK,
			Detail: "not installed",
		})
		return report, nil
	}
	if err != nil {
		report.Checks = append(report.Checks, CheckResult{
			Name:   "manifest",
			Status: CheckFail,
			Detail: err.Error(),
		})
		return report, nil
	}
	report.Installed = true
	report.Target = m.Target

	t, err := target.BySchema(m.Target)
	if err != nil {
		report.Checks = append(report.Checks, CheckResult{
			Name:   "target",
			Status: CheckFail,
			Detail: fmt.Sprintf("manifest names unknown target %q", m.Target),
		})
		return report, nil
	}
	report.Checks = append(report.Checks, CheckResult{
		Name:   "target",
		Status: CheckOK,
		Detail: t.DisplayName,
	})

	if t.SingleDocument() {
		checkDocument(root, t, m, report)
	} else {
		checkSkills(root, t, m, report)
		checkAgents(root, t, m, report)
	}
	checkPluginFiles(root, m, report)
	checkSettings(root, t, m, report)

	return report, nil
}

func checkDocument(root string, t target.Target, m *Manifest, report *DoctorReport) {
	abs := filepath.Join(root, filepath.FromSlash(t.Document))
	if _, err := os.Stat(abs); err != nil {
		report.Checks = append(report.Checks, CheckResult{
			Name:   "document",
			Status: CheckFail,
			Detail: fmt.Sprintf("%s is missing", t.Document),
		})
		return
	}
	report.Checks = append(report.Checks, CheckResult{
		Name:   "document",
		Status: CheckOK,
		Detail: fmt.Sprintf("%s present (%d skills, %d agents bundled)", t.Document, len(m.Skills), len(m.Agents)),
	})
}

func checkSkills(root string, t target.Target, m *Manifest, report *DoctorReport) {
	missing := 0
	for _, name := range m.Skills {
		abs := filepath.Join(root, filepath.FromSlash(target.SkillPath(t, name)))
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			report.Checks = append(report.Checks, CheckResult{
				Name:   "skill:" + name,
				Status: CheckFail,
				Detail: "tracked skill directory is missing",
			})
			missing++
		}
	}
	if missing == 0 {
		report.Checks = append(report.Checks, CheckResult{
			Name:   "skills",
			Status: CheckOK,
			Detail: fmt.Sprintf("%d tracked skill(s) present", len(m.Skills)),
		})
	}

	for _, extra := range unmanagedEntries(filepath.Join(root, filepath.FromSlash(t.SkillsDir)), m.Skills) {
		report.Checks = append(report.Checks, CheckResult{
			Name:   "skills",
			Status: CheckWarn,
			Detail: fmt.Sprintf("unmanaged entry %s in %s", extra, t.SkillsDir),
		})
	}
}

func checkAgents(root string, t target.Target, m *Manifest, report *DoctorReport) {
	missing := 0
	for _, name := range m.Agents {
		abs := filepath.Join(root, filepath.FromSlash(target.AgentPath(t, name)))
		if _, err := os.Stat(abs); err != nil {
			report.Checks = append(report.Checks, CheckResult{
				Name:   "agent:" + name,
				Status: CheckFail,
				Detail: "tracked agent file is missing",
			})
			missing++
		}
	}
	if missing == 0 {
		report.Checks = append(report.Checks, CheckResult{
			Name:   "agents",
			Status: CheckOK,
			Detail: fmt.Sprintf("%d tracked agent(s) present", len(m.Agents)),
		})
	}

	var tracked []string
	for _, name := range m.Agents {
		tracked = append(tracked, name+".md")
	}
	for _, extra := range unmanagedEntries(filepath.Join(root, filepath.FromSlash(t.AgentsDir)), tracked) {
		report.Checks = append(report.Checks, CheckResult{
			Name:   "agents",
			Status: CheckWarn,
			Detail: fmt.Sprintf("unmanaged entry %s in %s", extra, t.AgentsDir),
		})
	}
}

func checkPluginFiles(root string, m *Manifest, report *DoctorReport) {
	for _, rel := range m.PluginFiles {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			report.Checks = append(report.Checks, CheckResult{
				Name:   "plugin:" + rel,
				Status: CheckFail,
				Detail: "tracked plugin file is missing",
			})
		}
	}
}

func checkSettings(root string, t target.Target, m *Manifest, report *DoctorReport) {
	if !m.Hooks {
		return
	}
	if t.SettingsPath == "" {
		report.Checks = append(report.Checks, CheckResult{
			Name:   "settings",
			Status: CheckFail,
			Detail: "manifest records hooks but target has no settings file",
		})
		return
	}
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(t.SettingsPath)))
	if err != nil {
		report.Checks = append(report.Checks, CheckResult{
			Name:   "settings",
			Status: CheckFail,
			Detail: fmt.Sprintf("%s is missing", t.SettingsPath),
		})
		return
	}
	for _, reg := range hookRegistrations(t) {
		if !HasHookRegistration(data, reg.Event) {
			report.Checks = append(report.Checks, CheckResult{
				Name:   "settings",
				Status: CheckFail,
				Detail: fmt.Sprintf("%s has no managed %s entry", t.SettingsPath, reg.Event),
			})
			return
		}
	}
	report.Checks = append(report.Checks, CheckResult{
		Name:   "settings",
		Status: CheckOK,
		Detail: fmt.Sprintf("%s carries all managed hook entries", t.SettingsPath),
	})
}

// unmanagedEntries lists directory entries not covered by tracked names.
// A missing directory yields nothing; drift detection is advisory.
func unmanagedEntries(dir string, tracked []string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	known := map[string]bool{}
	for _, name := range tracked {
		known[name] = true
	}
	var extra []string
	for _, e := range entries {
		name := e.Name()
		if known[name] || name == hookShimName || name[0] == '.' {
			continue
		}
		extra = append(extra, name)
	}
	sort.Strings(extra)
	return extra
}
