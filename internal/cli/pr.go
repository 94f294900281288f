package cli

import (
	"github.com/spf13/cobra"
)

// newPRCmd groups the pull request commands
func newPRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pr",
		Short: "Inspect and restack the workspace's pull requests",
	}

	cmd.AddCommand(newPRStatusCmd())
	cmd.AddCommand(newPRStackCmd())
	cmd.AddCommand(newPRRestackCmd())

	return cmd
}
