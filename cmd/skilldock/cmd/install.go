package cmd

import (
	"fmt"

	"github.com/skilldock/skilldock/internal/core"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the bundle into a project",
	Long: `Install the skill and agent bundle into a project for the chosen target,
and deploy the runtime hook bridge where the target supports it.

Pick exactly one target (default --claude):
  --claude     .claude/ layout with settings.json hooks
  --opencode   .opencode/ layout with opencode.json hooks
  --codex      .codex/ layout, no hook support
  --codex-md   everything rendered into a single AGENTS.md

Scope flags:
  --skills-only   deploy skills and agents, skip the hook bridge
  --hooks-only    deploy only the hook bridge (needs a hook-capable target)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolvePath(cmd)
		if err != nil {
			return err
		}
		t, err := resolveTarget(cmd)
		if err != nil {
			return err
		}

		skillsOnly, _ := cmd.Flags().GetBool("skills-only")
		hooksOnly, _ := cmd.Flags().GetBool("hooks-only")
		if skillsOnly && hooksOnly {
			return fmt.Errorf("--skills-only and --hooks-only are mutually exclusive")
		}
		scope := core.ScopeFull
		if skillsOnly {
			scope = core.ScopeSkills
		}
		if hooksOnly {
			scope = core.ScopeHooks
		}

		force, _ := cmd.Flags().GetBool("force")

		b, cleanup, err := loadBundle("")
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := core.NewInstaller(b).Install(core.InstallOptions{
			Root:    root,
			Target:  t,
			Scope:   scope,
			Force:   force,
			Confirm: confirmOverwrite(force),
		})
		if err != nil {
			return err
		}

		fmt.Printf("Installed %s bundle for %s in %s\n", b.Name, t.DisplayName, root)
		printReport(report)
		return nil
	},
}

func init() {
	addPathFlag(installCmd)
	addTargetFlags(installCmd)
	installCmd.Flags().Bool("skills-only", false, "Deploy skills and agents only")
	installCmd.Flags().Bool("hooks-only", false, "Deploy the hook bridge only")
	installCmd.Flags().BoolP("force", "f", false, "Overwrite unmanaged files without asking")
	rootCmd.AddCommand(installCmd)
}
