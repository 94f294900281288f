package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quilt",
		Short: "Quilt keeps stacked pull requests rebased across a multi-repository workspace",
		Long: `Quilt keeps stacked pull requests rebased across a multi-repository workspace.

It reads the workspace manifest (quilt.yaml), builds each repository's
dependency forest of open pull requests from their base branches, and
restacks stale branches by rebasing them onto their parent's latest tip
and force-pushing with a lease.`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage: true,
	}

	// Add subcommands
	rootCmd.AddCommand(newPRCmd())

	return rootCmd
}
