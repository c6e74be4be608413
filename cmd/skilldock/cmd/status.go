package cmd

import (
	"fmt"

	"github.com/skilldock/skilldock/internal/core"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the manifest says is installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolvePath(cmd)
		if err != nil {
			return err
		}

		info, err := core.Status(root)
		if err != nil {
			return err
		}
		if !info.Installed {
			fmt.Printf("Not installed in %s\n", root)
			return nil
		}

		fmt.Printf("Target: %s\n", info.Target)
		fmt.Printf("Skills: %d\n", info.Skills)
		fmt.Printf("Agents: %d\n", info.Agents)
		hooks := "not deployed"
		if info.Hooks {
			hooks = "deployed"
		}
		fmt.Printf("Hook bridge: %s\n", hooks)
		return nil
	},
}

func init() {
	addPathFlag(statusCmd)
	rootCmd.AddCommand(statusCmd)
}
