package git

import (
	"context"
	"fmt"
	"os"
)

// RebaseResult represents the result of a rebase operation
type RebaseResult int

const (
	// RebaseDone indicates the rebase was successful
	RebaseDone RebaseResult = iota
	// RebaseConflict indicates a conflict occurred during rebase
	RebaseConflict
)

// Rebase re-applies the branch's commits since from onto onto.
// onto is the commit or branch to rebase onto (the parent's current tip)
// and from is the old base revision; commits in from..branch are moved.
//
// A conflicted rebase is aborted before returning, so the working copy is
// always left clean; retries belong to a later run, after the conflict has
// been resolved by hand.
func (r *Repository) Rebase(ctx context.Context, branch, onto, from string) (RebaseResult, error) {
	// Cleanup must be able to run even when ctx expired mid-rebase.
	cleanupCtx := context.WithoutCancel(ctx)

	// Save current branch/detached HEAD so it can be restored.
	currentBranch, err := r.CurrentBranch()
	var currentRev string
	if err != nil || currentBranch == "" {
		currentRev, _ = r.runner.Run(cleanupCtx, "rev-parse", "HEAD")
	}

	// Resolve through Tip so branches that only exist as remote-tracking
	// refs can be rebased; update-ref below creates the local branch.
	branchRev, err := r.Tip(branch)
	if err != nil {
		return RebaseConflict, err
	}

	// Rebase a detached HEAD at the branch SHA to avoid "already used by
	// worktree" errors; the branch ref is updated afterwards.
	_, err = r.runner.Run(ctx, "rebase", "--onto", onto, from, branchRev)
	if err != nil {
		if r.IsRebaseInProgress(cleanupCtx) {
			_, _ = r.runner.Run(cleanupCtx, "rebase", "--abort")
			r.restoreHead(cleanupCtx, currentBranch, currentRev)
			return RebaseConflict, nil
		}
		// Failed without leaving a rebase behind; restore and report.
		r.restoreHead(cleanupCtx, currentBranch, currentRev)
		return RebaseConflict, err
	}

	newRev, err := r.runner.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return RebaseConflict, fmt.Errorf("failed to get new revision after rebase: %w", err)
	}
	if _, err := r.runner.Run(ctx, "update-ref", "refs/heads/"+branch, newRev); err != nil {
		return RebaseConflict, fmt.Errorf("failed to update branch reference %s: %w", branch, err)
	}

	r.restoreHead(cleanupCtx, currentBranch, currentRev)
	return RebaseDone, nil
}

// IsRebaseInProgress checks if a rebase is currently in progress
func (r *Repository) IsRebaseInProgress(ctx context.Context) bool {
	// Check for rebase-merge or rebase-apply in the git dir. This is more
	// reliable than REBASE_HEAD, which can persist after a rebase.
	gitDir, err := r.runner.Run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return false
	}

	if _, err := os.Stat(gitDir + "/rebase-merge"); err == nil {
		return true
	}
	if _, err := os.Stat(gitDir + "/rebase-apply"); err == nil {
		return true
	}
	return false
}

// restoreHead puts HEAD back on the branch or revision it was on before a
// rebase moved it.
func (r *Repository) restoreHead(ctx context.Context, branch, rev string) {
	switch {
	case branch != "":
		if _, err := r.runner.Run(ctx, "checkout", branch); err != nil {
			_, _ = r.runner.Run(ctx, "checkout", "--detach", branch)
		}
	case rev != "":
		_, _ = r.runner.Run(ctx, "checkout", "--detach", rev)
	}
}
