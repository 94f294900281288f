package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quilt.dev/quilt/internal/engine"
	"quilt.dev/quilt/internal/output"
	"quilt.dev/quilt/internal/runtime"
)

// newPRStackCmd creates the pr stack command
func newPRStackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "stack",
		Short:        "Show each repository's dependency forest of open pull requests",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Splog.Close()

			src := ctx.NewPRSource()

			failed := 0
			repos := ctx.Workspace.Repositories()
			for i, repo := range repos {
				if i > 0 {
					ctx.Splog.Newline()
				}
				ctx.Splog.Info(output.ColorRepoName(repo.Name))

				prs, err := src.ListOpenPullRequests(cmd.Context(), repo)
				if err != nil {
					ctx.Splog.Error("%v", err)
					failed++
					continue
				}

				forest, orphans, _, err := engine.BuildForest(repo, prs)
				if err != nil {
					ctx.Splog.Error("%v", err)
					failed++
					continue
				}

				if forest.Size() == 0 {
					ctx.Splog.Info(output.ColorDim("no open pull requests"))
				} else {
					lines := output.RenderStackForest(forest, output.TreeRenderOptions{
						CurrentBranch: currentBranch(repo),
					})
					ctx.Splog.Page(strings.Join(lines, "\n") + "\n")
				}

				for _, orphan := range orphans {
					ctx.Splog.Warn("cannot stack %s", orphan)
				}
			}

			if failed > 0 {
				return fmt.Errorf("failed to read %d of %d repositories", failed, len(repos))
			}
			return nil
		},
	}

	return cmd
}
