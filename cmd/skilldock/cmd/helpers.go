package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skilldock/skilldock/assets"
	"github.com/skilldock/skilldock/internal/core"
	"github.com/skilldock/skilldock/internal/core/bundle"
	"github.com/skilldock/skilldock/internal/core/target"
	"github.com/skilldock/skilldock/internal/tui"
	"github.com/spf13/cobra"
)

// addPathFlag registers the shared --path flag.
func addPathFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("path", "p", "", "Project root (default: current directory)")
}

// resolvePath resolves --path or falls back to cwd, always absolute.
func resolvePath(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("path")
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

// addTargetFlags registers the mutually exclusive target selectors.
func addTargetFlags(cmd *cobra.Command) {
	for _, t := range target.All() {
		cmd.Flags().Bool(string(t.Schema), false, "Install for "+t.DisplayName)
	}
}

// resolveTarget picks the target from the selector flags. Exactly one may
// be set; none defaults to claude.
func resolveTarget(cmd *cobra.Command) (target.Target, error) {
	var chosen []string
	for _, t := range target.All() {
		if on, _ := cmd.Flags().GetBool(string(t.Schema)); on {
			chosen = append(chosen, string(t.Schema))
		}
	}
	switch len(chosen) {
	case 0:
		return target.BySchema(string(target.SchemaClaude))
	case 1:
		return target.BySchema(chosen[0])
	default:
		return target.Target{}, fmt.Errorf("flags --%s are mutually exclusive", strings.Join(chosen, ", --"))
	}
}

// loadBundle returns the bundle to deploy: the directory named by source,
// or the embedded default when source is empty. The cleanup func must be
// called after the operation finishes.
func loadBundle(source string) (*bundle.Bundle, func(), error) {
	if source != "" {
		b, err := bundle.Load(source)
		if err != nil {
			return nil, nil, err
		}
		return b, func() {}, nil
	}
	return bundle.LoadFS(assets.Bundle)
}

// confirmOverwrite builds the untracked-overwrite callback: --force answers
// yes to everything, otherwise the user is prompted per file.
func confirmOverwrite(force bool) core.ConfirmFunc {
	if force {
		return func(string) bool { return true }
	}
	return func(path string) bool {
		return tui.Confirm(fmt.Sprintf("%s exists and is not managed by skilldock. Overwrite?", path))
	}
}

// printReport writes the human summary of an install or update.
func printReport(report *core.InstallReport) {
	for _, name := range report.Skills {
		fmt.Printf("Skill: %s\n", name)
	}
	for _, name := range report.Agents {
		fmt.Printf("Agent: %s\n", name)
	}
	for _, sv := range report.Skipped {
		fmt.Printf("Skipped %s: %s\n", sv.Unit, sv.Constraint)
	}
	if report.Hooks {
		fmt.Println("Hook bridge: deployed")
	}
	if report.Settings != "" {
		fmt.Printf("Settings merged: %s\n", report.Settings)
	}
	for _, rel := range report.Removed {
		fmt.Printf("Removed: %s\n", rel)
	}
}
