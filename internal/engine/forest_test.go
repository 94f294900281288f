package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quilt.dev/quilt/internal/engine"
	quilterrors "quilt.dev/quilt/internal/errors"
)

func TestBuildForest(t *testing.T) {
	t.Run("builds a single chain rooted at trunk", func(t *testing.T) {
		repo := testRepo("api")
		prs := []engine.PullRequestRef{
			openPR(repo, 10, "a", "main"),
			openPR(repo, 11, "b", "a"),
			openPR(repo, 12, "c", "b"),
		}

		forest, orphans, inactive, err := engine.BuildForest(repo, prs)
		require.NoError(t, err)
		require.Empty(t, orphans)
		require.Empty(t, inactive)

		require.Len(t, forest.Roots, 1)
		root := forest.Node(forest.Roots[0])
		require.Equal(t, "a", root.PR.HeadBranch)
		require.True(t, root.IsRoot())

		require.Len(t, root.Children, 1)
		b := forest.Node(root.Children[0])
		require.Equal(t, "b", b.PR.HeadBranch)
		require.Len(t, b.Children, 1)
		c := forest.Node(b.Children[0])
		require.Equal(t, "c", c.PR.HeadBranch)
		require.Empty(t, c.Children)
	})

	t.Run("supports branching stacks", func(t *testing.T) {
		repo := testRepo("api")
		prs := []engine.PullRequestRef{
			openPR(repo, 10, "a", "main"),
			openPR(repo, 12, "c", "a"),
			openPR(repo, 11, "b", "a"),
		}

		forest, _, _, err := engine.BuildForest(repo, prs)
		require.NoError(t, err)

		root := forest.Node(forest.Roots[0])
		require.Len(t, root.Children, 2)
		// Siblings ordered by pull request number.
		require.Equal(t, "b", forest.Node(root.Children[0]).PR.HeadBranch)
		require.Equal(t, "c", forest.Node(root.Children[1]).PR.HeadBranch)
	})

	t.Run("orders roots by pull request number regardless of input order", func(t *testing.T) {
		repo := testRepo("api")
		prs := []engine.PullRequestRef{
			openPR(repo, 21, "y", "main"),
			openPR(repo, 20, "x", "main"),
		}

		forest, _, _, err := engine.BuildForest(repo, prs)
		require.NoError(t, err)

		require.Len(t, forest.Roots, 2)
		require.Equal(t, "x", forest.Node(forest.Roots[0]).PR.HeadBranch)
		require.Equal(t, "y", forest.Node(forest.Roots[1]).PR.HeadBranch)
	})

	t.Run("filters closed and merged pull requests into the inactive list", func(t *testing.T) {
		repo := testRepo("api")
		merged := openPR(repo, 9, "old", "main")
		merged.State = engine.PRStateMerged
		closed := openPR(repo, 8, "dead", "main")
		closed.State = engine.PRStateClosed
		prs := []engine.PullRequestRef{
			merged,
			closed,
			openPR(repo, 10, "a", "main"),
		}

		forest, orphans, inactive, err := engine.BuildForest(repo, prs)
		require.NoError(t, err)
		require.Empty(t, orphans)
		require.Equal(t, 1, forest.Size())

		require.Len(t, inactive, 2)
		require.Equal(t, 8, inactive[0].Number)
		require.Equal(t, 9, inactive[1].Number)
	})

	t.Run("reports a pull request with an untracked base as an orphan", func(t *testing.T) {
		repo := testRepo("api")
		prs := []engine.PullRequestRef{
			openPR(repo, 10, "a", "main"),
			openPR(repo, 30, "x", "deleted-branch"),
		}

		forest, orphans, _, err := engine.BuildForest(repo, prs)
		require.NoError(t, err)

		require.Equal(t, 1, forest.Size())
		require.Len(t, orphans, 1)
		require.Equal(t, "x", orphans[0].PR.HeadBranch)
		require.Contains(t, orphans[0].Reason, `"deleted-branch"`)
	})

	t.Run("orphans everything stacked on an orphan exactly once", func(t *testing.T) {
		repo := testRepo("api")
		prs := []engine.PullRequestRef{
			openPR(repo, 30, "x", "deleted-branch"),
			openPR(repo, 31, "y", "x"),
			openPR(repo, 32, "z", "y"),
			openPR(repo, 10, "a", "main"),
		}

		forest, orphans, _, err := engine.BuildForest(repo, prs)
		require.NoError(t, err)

		require.Equal(t, 1, forest.Size())
		require.Equal(t, "a", forest.Node(forest.Roots[0]).PR.HeadBranch)

		require.Len(t, orphans, 3)
		seen := make(map[string]int)
		for _, o := range orphans {
			seen[o.PR.HeadBranch]++
		}
		require.Equal(t, map[string]int{"x": 1, "y": 1, "z": 1}, seen)
		require.Contains(t, orphans[1].Reason, `orphaned branch "x"`)
		require.Contains(t, orphans[2].Reason, `orphaned branch "x"`)
	})

	t.Run("detects a two branch cycle", func(t *testing.T) {
		repo := testRepo("api")
		prs := []engine.PullRequestRef{
			openPR(repo, 40, "p", "q"),
			openPR(repo, 41, "q", "p"),
		}

		_, _, _, err := engine.BuildForest(repo, prs)
		require.Error(t, err)
		require.ErrorIs(t, err, quilterrors.ErrStackCycle)

		var cycleErr *quilterrors.CycleError
		require.ErrorAs(t, err, &cycleErr)
		require.ElementsMatch(t, []string{"p", "q"}, cycleErr.Branches)
	})

	t.Run("detects a self referential pull request", func(t *testing.T) {
		repo := testRepo("api")
		prs := []engine.PullRequestRef{
			openPR(repo, 40, "p", "p"),
		}

		_, _, _, err := engine.BuildForest(repo, prs)
		require.Error(t, err)
		require.ErrorIs(t, err, quilterrors.ErrStackCycle)

		var cycleErr *quilterrors.CycleError
		require.ErrorAs(t, err, &cycleErr)
		require.Equal(t, []string{"p"}, cycleErr.Branches)
	})

	t.Run("detects a cycle reachable from a stacked pull request", func(t *testing.T) {
		repo := testRepo("api")
		prs := []engine.PullRequestRef{
			openPR(repo, 40, "p", "q"),
			openPR(repo, 41, "q", "p"),
			openPR(repo, 42, "r", "p"),
		}

		_, _, _, err := engine.BuildForest(repo, prs)
		require.Error(t, err)

		var cycleErr *quilterrors.CycleError
		require.ErrorAs(t, err, &cycleErr)
		// Only the cycle members are named, not the branch stacked on them.
		require.ElementsMatch(t, []string{"p", "q"}, cycleErr.Branches)
	})

	t.Run("handles an empty pull request list", func(t *testing.T) {
		repo := testRepo("api")

		forest, orphans, inactive, err := engine.BuildForest(repo, nil)
		require.NoError(t, err)
		require.Empty(t, orphans)
		require.Empty(t, inactive)
		require.Zero(t, forest.Size())
		require.Empty(t, forest.Roots)
	})

	t.Run("walk visits parents before children", func(t *testing.T) {
		repo := testRepo("api")
		prs := []engine.PullRequestRef{
			openPR(repo, 10, "a", "main"),
			openPR(repo, 11, "b", "a"),
			openPR(repo, 12, "c", "a"),
			openPR(repo, 13, "d", "b"),
		}

		forest, _, _, err := engine.BuildForest(repo, prs)
		require.NoError(t, err)

		var order []string
		forest.Walk(forest.Roots[0], func(i int, n *engine.StackNode) {
			order = append(order, n.PR.HeadBranch)
		})
		require.Equal(t, []string{"a", "b", "d", "c"}, order)
	})
}
