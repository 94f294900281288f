package git_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"quilt.dev/quilt/internal/git"
	"quilt.dev/quilt/testhelpers"
)

func TestRebase(t *testing.T) {
	t.Run("rebases a branch onto the moved parent", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		repo := scene.AddRepo(t, "api")

		forkPoint, err := repo.GetBranchSHA("main")
		require.NoError(t, err)

		testhelpers.StackBranch(t, repo, "feature")

		// Move main forward so feature is stale.
		require.NoError(t, repo.CheckoutBranch("main"))
		require.NoError(t, repo.CreateChangeAndCommit("main update", "main"))

		r, err := git.OpenRepository(repo.Dir)
		require.NoError(t, err)

		result, err := r.Rebase(context.Background(), "feature", "main", forkPoint)
		require.NoError(t, err)
		require.Equal(t, git.RebaseDone, result)

		// The rebase ran on a detached HEAD; the working copy must be back
		// on the branch it started from.
		branch, err := repo.CurrentBranchName()
		require.NoError(t, err)
		require.Equal(t, "main", branch)

		// feature now contains the new main commit plus its own.
		ok, err := repo.IsAncestor("main", "feature")
		require.NoError(t, err)
		require.True(t, ok)

		count, err := repo.GetCommitCount("main", "feature")
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("aborts a conflicted rebase and leaves the branch untouched", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		repo := scene.AddRepo(t, "api")

		forkPoint, err := repo.GetBranchSHA("main")
		require.NoError(t, err)

		// Both sides modify the same file.
		require.NoError(t, repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, repo.CreateChangeAndCommit("feature change", "conflict"))

		require.NoError(t, repo.CheckoutBranch("main"))
		require.NoError(t, repo.CreateChangeAndCommit("main change", "conflict"))

		before, err := repo.GetBranchSHA("feature")
		require.NoError(t, err)

		r, err := git.OpenRepository(repo.Dir)
		require.NoError(t, err)

		result, err := r.Rebase(context.Background(), "feature", "main", forkPoint)
		require.NoError(t, err)
		require.Equal(t, git.RebaseConflict, result)

		// The conflicted rebase was aborted, not left for the caller.
		require.False(t, repo.RebaseInProgress())

		after, err := repo.GetBranchSHA("feature")
		require.NoError(t, err)
		require.Equal(t, before, after)

		branch, err := repo.CurrentBranchName()
		require.NoError(t, err)
		require.Equal(t, "main", branch)
	})

	t.Run("creates the local branch when only the remote ref exists", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		repo := scene.AddRepo(t, "api")

		forkPoint, err := repo.GetBranchSHA("main")
		require.NoError(t, err)

		testhelpers.StackBranch(t, repo, "feature")

		// Drop the local branch; the remote tracking ref survives.
		require.NoError(t, repo.CheckoutBranch("main"))
		require.NoError(t, repo.DeleteBranch("feature"))
		require.NoError(t, repo.CreateChangeAndCommit("main update", "main"))

		r, err := git.OpenRepository(repo.Dir)
		require.NoError(t, err)

		result, err := r.Rebase(context.Background(), "feature", "main", forkPoint)
		require.NoError(t, err)
		require.Equal(t, git.RebaseDone, result)

		require.True(t, r.HasBranch("feature"))

		ok, err := repo.IsAncestor("main", "feature")
		require.NoError(t, err)
		require.True(t, ok)
	})
}

func TestIsRebaseInProgress(t *testing.T) {
	t.Run("returns false in a clean repository", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		repo := scene.AddRepo(t, "api")

		r, err := git.OpenRepository(repo.Dir)
		require.NoError(t, err)

		require.False(t, r.IsRebaseInProgress(context.Background()))
	})
}
