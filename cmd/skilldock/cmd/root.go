package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "skilldock",
	Short: "Deploy a curated skill and agent bundle into AI coding assistants",
	Long: `Skilldock installs a curated bundle of skills and agent definitions into
the layout your AI coding assistant expects, and deploys a runtime hook
bridge that guards shell commands and injects session context.

Supported targets: Claude Code, OpenCode, Codex, and a single-document
AGENTS.md layout. Everything skilldock writes is tracked in a manifest,
so update and uninstall touch only managed files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("skilldock %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
