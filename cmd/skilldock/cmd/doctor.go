package cmd

import (
	"fmt"

	"github.com/skilldock/skilldock/internal/core"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify the installation against the manifest",
	Long: `Check that every file the manifest tracks exists on disk and that the
settings file carries the managed hook entries. Doctor never repairs
anything; it exits non-zero when any check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolvePath(cmd)
		if err != nil {
			return err
		}

		report, err := core.Doctor(root)
		if err != nil {
			return err
		}

		for _, c := range report.Checks {
			marker := "ok  "
			switch c.Status {
			case core.CheckWarn:
				marker = "warn"
			case core.CheckFail:
				marker = "FAIL"
			}
			fmt.Printf("[%s] %-12s %s\n", marker, c.Name, c.Detail)
		}

		if !report.Healthy() {
			return fmt.Errorf("doctor found problems in %s", root)
		}
		return nil
	},
}

func init() {
	addPathFlag(doctorCmd)
	rootCmd.AddCommand(doctorCmd)
}
