package cmd

import (
	"errors"
	"fmt"

	"github.com/skilldock/skilldock/internal/core"
	"github.com/skilldock/skilldock/internal/tui"
	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove everything the manifest tracks",
	Long: `Remove every file the manifest records (skills, agents, the hook
bridge, and the managed hook entries in the settings file), then the
manifest itself. Files skilldock did not install are never touched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolvePath(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		status, err := core.Status(root)
		if err != nil {
			return err
		}
		if !status.Installed {
			return core.ErrNotInstalled
		}

		if !force {
			msg := fmt.Sprintf("Remove %d skill(s) and %d agent(s) from %s?", status.Skills, status.Agents, root)
			if !tui.Confirm(msg) {
				return fmt.Errorf("uninstall cancelled")
			}
		}

		report, err := core.Uninstall(root)
		if err != nil {
			if errors.Is(err, core.ErrNotInstalled) {
				return fmt.Errorf("nothing to uninstall in %s", root)
			}
			return err
		}

		fmt.Printf("Uninstalled from %s\n", root)
		printReport(report)
		return nil
	},
}

func init() {
	addPathFlag(uninstallCmd)
	uninstallCmd.Flags().BoolP("force", "f", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(uninstallCmd)
}
