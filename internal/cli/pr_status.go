package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quilt.dev/quilt/internal/github"
	"quilt.dev/quilt/internal/output"
	"quilt.dev/quilt/internal/runtime"
)

// newPRStatusCmd creates the pr status command
func newPRStatusCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:          "status",
		Short:        "Show open pull requests and their check status for every repository",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Splog.Close()

			src := ctx.NewPRSource(github.WithCheckRollups())

			failed := 0
			repos := ctx.Workspace.Repositories()
			for i, repo := range repos {
				if i > 0 {
					ctx.Splog.Newline()
				}
				prs, err := src.ListOpenPullRequests(cmd.Context(), repo)
				if err != nil {
					ctx.Splog.Error("%s: %v", repo.Name, err)
					failed++
					continue
				}
				ctx.Splog.Page(strings.Join(output.RenderPRStatus(repo, prs, verbose), "\n") + "\n")
			}

			if failed > 0 {
				return fmt.Errorf("failed to read %d of %d repositories", failed, len(repos))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Include pull request URLs")

	return cmd
}
