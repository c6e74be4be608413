package cmd

import (
	"fmt"

	"github.com/skilldock/skilldock/internal/core"
	"github.com/skilldock/skilldock/internal/tui"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Reconcile an installation with the bundled content",
	Long: `Update an existing installation: rewrite files whose bundled content
changed, leave unchanged files alone, and remove units no longer in the
bundle. The target is read from the manifest.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolvePath(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		b, cleanup, err := loadBundle("")
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := core.NewInstaller(b).Update(root, confirmOverwrite(force))
		if err != nil {
			return err
		}

		if len(report.Written) == 0 && len(report.Removed) == 0 {
			fmt.Println("Already up to date")
			return nil
		}
		fmt.Printf("Updated %d file(s) in %s\n", len(report.Written), root)
		printReport(report)
		return nil
	},
}

var selfUpdateCmd = &cobra.Command{
	Use:   "self-update",
	Short: "Replace the installation from a bundle directory",
	Long: `Replace the deployed content from a bundle directory instead of the
embedded defaults. Use this to roll out a newer bundle without rebuilding
the binary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolvePath(cmd)
		if err != nil {
			return err
		}
		source, _ := cmd.Flags().GetString("source")
		if source == "" {
			return fmt.Errorf("--source is required")
		}
		yes, _ := cmd.Flags().GetBool("yes")
		force, _ := cmd.Flags().GetBool("force")

		b, cleanup, err := loadBundle(source)
		if err != nil {
			return err
		}
		defer cleanup()

		if !yes {
			msg := fmt.Sprintf("Replace the installation in %s with bundle %s?", root, b.Name)
			if !tui.Confirm(msg) {
				return fmt.Errorf("self-update cancelled")
			}
		}

		report, err := core.NewInstaller(b).Update(root, confirmOverwrite(force))
		if err != nil {
			return err
		}

		fmt.Printf("Replaced installation in %s with bundle %s %s\n", root, b.Name, b.Version)
		printReport(report)
		return nil
	},
}

func init() {
	addPathFlag(updateCmd)
	updateCmd.Flags().BoolP("force", "f", false, "Overwrite unmanaged files without asking")
	rootCmd.AddCommand(updateCmd)

	addPathFlag(selfUpdateCmd)
	selfUpdateCmd.Flags().String("source", "", "Bundle directory to deploy from")
	selfUpdateCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	selfUpdateCmd.Flags().BoolP("force", "f", false, "Overwrite unmanaged files without asking")
	rootCmd.AddCommand(selfUpdateCmd)
}
