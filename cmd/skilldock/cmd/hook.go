package cmd

import (
	"os"

	"github.com/skilldock/skilldock/internal/hook"
	"github.com/spf13/cobra"
)

// hookCmd is the runtime bridge entry point. The deployed shim invokes it
// with the host's event envelope on stdin; it is hidden because users never
// run it by hand.
var hookCmd = &cobra.Command{
	Use:       "hook <event>",
	Short:     "Handle a host hook event (invoked by the deployed bridge)",
	Hidden:    true,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"guard", "session-start", "compact", "session-error"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return hook.Run(args[0], os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(hookCmd)
}
