package git_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"quilt.dev/quilt/internal/engine"
	"quilt.dev/quilt/internal/git"
	"quilt.dev/quilt/testhelpers"
)

func TestRefSource(t *testing.T) {
	t.Run("restacks a chain after trunk moves", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		repo := scene.AddRepo(t, "api")
		testhelpers.StackBranch(t, repo, "a")
		testhelpers.StackBranch(t, repo, "b")

		// Trunk moves forward and the move is published.
		require.NoError(t, repo.CheckoutBranch("main"))
		require.NoError(t, repo.CreateChangeAndCommit("main update", "main"))
		require.NoError(t, repo.PushBranch("origin", "main"))

		ctx := context.Background()
		refs := git.NewRefSource()
		engRepo := &engine.Repository{Name: "api", Path: repo.Dir, Remote: "origin", Trunk: "main"}

		// First step: rebase a onto the fetched trunk tip, then push under
		// the lease taken when a itself was fetched.
		mainTip, err := refs.Fetch(ctx, engRepo, "main")
		require.NoError(t, err)

		aLease, err := refs.Fetch(ctx, engRepo, "a")
		require.NoError(t, err)

		rebase, err := refs.Rebase(ctx, engRepo, "a", mainTip)
		require.NoError(t, err)
		require.Equal(t, engine.RebaseDone, rebase)

		push, err := refs.ForcePushIfUnchanged(ctx, engRepo, "a", aLease)
		require.NoError(t, err)
		require.Equal(t, engine.PushDone, push)

		// Second step: b's parent tip is the a that was just pushed.
		aTip, err := refs.Fetch(ctx, engRepo, "a")
		require.NoError(t, err)

		bLease, err := refs.Fetch(ctx, engRepo, "b")
		require.NoError(t, err)

		rebase, err = refs.Rebase(ctx, engRepo, "b", aTip)
		require.NoError(t, err)
		require.Equal(t, engine.RebaseDone, rebase)

		push, err = refs.ForcePushIfUnchanged(ctx, engRepo, "b", bLease)
		require.NoError(t, err)
		require.Equal(t, engine.PushDone, push)

		// Each branch carries exactly its own commit on top of its parent.
		count, err := repo.GetCommitCount("main", "a")
		require.NoError(t, err)
		require.Equal(t, 1, count)

		count, err = repo.GetCommitCount("a", "b")
		require.NoError(t, err)
		require.Equal(t, 1, count)

		bTip, err := refs.CurrentTip(ctx, engRepo, "b")
		require.NoError(t, err)

		ok, err := refs.IsAncestor(ctx, engRepo, mainTip, bTip)
		require.NoError(t, err)
		require.True(t, ok)

		// The pushed remote matches the local result.
		bare := &testhelpers.GitRepo{Dir: scene.Remotes["api"]}
		remoteTip, err := bare.GetBranchSHA("b")
		require.NoError(t, err)
		localTip, err := repo.GetBranchSHA("b")
		require.NoError(t, err)
		require.Equal(t, localTip, remoteTip)
	})

	t.Run("fetch makes unseen branches resolvable", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		repo := scene.AddRepo(t, "api")

		// A branch created in another working copy is unknown here until
		// it is fetched.
		other := scene.CloneRepo(t, "api", "api-other")
		require.NoError(t, other.CreateAndCheckoutBranch("elsewhere"))
		require.NoError(t, other.CreateChangeAndCommit("elsewhere change", "elsewhere"))
		require.NoError(t, other.PushBranch("origin", "elsewhere"))

		ctx := context.Background()
		refs := git.NewRefSource()
		engRepo := &engine.Repository{Name: "api", Path: repo.Dir, Remote: "origin", Trunk: "main"}

		_, err := refs.CurrentTip(ctx, engRepo, "elsewhere")
		require.Error(t, err)

		fetched, err := refs.Fetch(ctx, engRepo, "elsewhere")
		require.NoError(t, err)

		tip, err := refs.CurrentTip(ctx, engRepo, "elsewhere")
		require.NoError(t, err)
		require.Equal(t, fetched, tip)
	})

	t.Run("conflicts are reported as results", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		repo := scene.AddRepo(t, "api")

		require.NoError(t, repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, repo.CreateChangeAndCommit("feature change", "conflict"))
		require.NoError(t, repo.PushBranch("origin", "feature"))

		require.NoError(t, repo.CheckoutBranch("main"))
		require.NoError(t, repo.CreateChangeAndCommit("main change", "conflict"))
		require.NoError(t, repo.PushBranch("origin", "main"))

		ctx := context.Background()
		refs := git.NewRefSource()
		engRepo := &engine.Repository{Name: "api", Path: repo.Dir, Remote: "origin", Trunk: "main"}

		mainTip, err := refs.Fetch(ctx, engRepo, "main")
		require.NoError(t, err)

		result, err := refs.Rebase(ctx, engRepo, "feature", mainTip)
		require.NoError(t, err)
		require.Equal(t, engine.RebaseConflict, result)

		require.False(t, repo.RebaseInProgress())
	})

	t.Run("rejected pushes are results, not errors", func(t *testing.T) {
		scene := testhelpers.NewScene(t)
		repo := scene.AddRepo(t, "api")
		testhelpers.StackBranch(t, repo, "feature")

		lease, err := repo.GetBranchSHA("feature")
		require.NoError(t, err)

		other := scene.CloneRepo(t, "api", "api-other")
		require.NoError(t, other.CheckoutBranch("feature"))
		require.NoError(t, other.CreateChangeAndCommit("other change", "other"))
		require.NoError(t, other.PushBranch("origin", "feature"))

		require.NoError(t, repo.CreateChangeAndAmend("amended", "feature"))

		ctx := context.Background()
		refs := git.NewRefSource()
		engRepo := &engine.Repository{Name: "api", Path: repo.Dir, Remote: "origin", Trunk: "main"}

		result, err := refs.ForcePushIfUnchanged(ctx, engRepo, "feature", lease)
		require.NoError(t, err)
		require.Equal(t, engine.PushRejected, result)
	})
}
