package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"quilt.dev/quilt/internal/engine"
	"quilt.dev/quilt/internal/output"
	"quilt.dev/quilt/internal/runtime"
)

type restackFlags struct {
	dryRun bool
	repos  []string
	jobs   int
	yes    bool
}

// newPRRestackCmd creates the pr restack command
func newPRRestackCmd() *cobra.Command {
	f := &restackFlags{}

	cmd := &cobra.Command{
		Use:   "restack",
		Short: "Rebase every stale stacked pull request onto its parent's latest tip",
		Long: `Rebase every stale stacked pull request onto its parent's latest tip.

For each open pull request, quilt fetches the parent branch and the branch
itself, rebases the branch onto the parent's fetched tip, and force-pushes
it with a lease on the tip it fetched. A branch whose parent tip is already
in its history is left untouched. When a rebase conflicts or a push is
rejected, the branch is rolled back and everything stacked on it is
skipped; sibling stacks and other repositories continue.

Examples:
  quilt pr restack --dry-run
  quilt pr restack --repo api --repo web
  quilt pr restack --yes --jobs 8`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Splog.Close()

			repos, err := ctx.Workspace.Select(f.repos)
			if err != nil {
				return err
			}

			if !f.dryRun && !f.yes {
				if err := confirmRestack(len(repos)); err != nil {
					return err
				}
			}

			eng := ctx.NewEngine()
			report := eng.Execute(cmd.Context(), repos, engine.Options{
				DryRun:  f.dryRun,
				Workers: f.jobs,
				OnRepo: func(rr engine.RepoReport) {
					ctx.Splog.Page(strings.Join(output.RenderRepoReport(&rr, f.dryRun), "\n") + "\n")
					for _, orphan := range rr.Orphans {
						ctx.Splog.Warn("cannot restack %s", orphan)
					}
					ctx.Splog.Newline()
				},
			})

			ctx.Splog.Info(output.RenderRunSummary(report))
			if report.OutcomeCounts()[engine.OutcomeConflict] > 0 {
				ctx.Splog.Tip("rebase conflicted branches by hand, push them, then run quilt pr restack again")
			}

			if report.HasFailures() {
				return fmt.Errorf("restack finished with failures")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Fetch and classify branches but do not rebase or push")
	cmd.Flags().StringArrayVar(&f.repos, "repo", nil, "Restack only this repository. May be repeated.")
	cmd.Flags().IntVar(&f.jobs, "jobs", engine.DefaultWorkers, "How many repositories to restack concurrently")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// confirmRestack asks before rebasing and force-pushing. Non-interactive
// sessions must pass --yes instead.
func confirmRestack(repoCount int) error {
	if !isTTY() {
		return fmt.Errorf("refusing to rebase and force-push without --yes in a non-interactive session")
	}

	noun := "repositories"
	if repoCount == 1 {
		noun = "repository"
	}

	var proceed bool
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Fetch, rebase and force-push stacked pull requests in %d %s?", repoCount, noun),
		Default: true,
	}
	if err := survey.AskOne(prompt, &proceed); err != nil {
		return fmt.Errorf("canceled")
	}
	if !proceed {
		return fmt.Errorf("canceled")
	}
	return nil
}
