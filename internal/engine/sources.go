package engine

import "context"

// RebaseResult represents the result of a rebase operation
type RebaseResult int

const (
	// RebaseDone indicates the rebase was successful
	RebaseDone RebaseResult = iota
	// RebaseConflict indicates a conflict occurred during rebase
	RebaseConflict
)

// PushResult represents the result of a guarded force push
type PushResult int

const (
	// PushDone indicates the push was accepted by the remote
	PushDone PushResult = iota
	// PushRejected indicates the remote moved since it was last fetched
	PushRejected
)

// PRSource supplies pull request metadata for a repository. Implementations
// must populate head and base branch names and state; missing check
// information maps to ChecksUnknown.
type PRSource interface {
	// ListOpenPullRequests returns the open pull requests of the repository.
	// Closed and merged pull requests may be included; the graph builder
	// filters them.
	ListOpenPullRequests(ctx context.Context, repo *Repository) ([]PullRequestRef, error)
}

// RefSource supplies branch state for a repository and performs the
// fetch/rebase/push primitives. All calls may block on network or disk and
// must honor the context.
type RefSource interface {
	// CurrentTip returns the commit SHA the branch currently points at.
	CurrentTip(ctx context.Context, repo *Repository, branch string) (string, error)

	// IsAncestor reports whether ancestor is reachable from descendant.
	// Both arguments are commit SHAs or ref names.
	IsAncestor(ctx context.Context, repo *Repository, ancestor, descendant string) (bool, error)

	// Fetch updates the remote-tracking ref for the branch and returns the
	// remote tip that was observed. The returned SHA is the precondition
	// for a later ForcePushIfUnchanged of the same branch.
	Fetch(ctx context.Context, repo *Repository, branch string) (string, error)

	// Rebase re-applies the branch's commits onto the given commit or
	// branch. A conflict leaves the working copy as it was before the call.
	Rebase(ctx context.Context, repo *Repository, branch, onto string) (RebaseResult, error)

	// ForcePushIfUnchanged force-pushes the branch only if the remote tip
	// still equals expectedRemoteTip, so concurrent external pushes are
	// never clobbered.
	ForcePushIfUnchanged(ctx context.Context, repo *Repository, branch, expectedRemoteTip string) (PushResult, error)
}
