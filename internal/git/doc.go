// Package git provides low-level Git operations for workspace repositories.
//
// Read-side queries (tips, ancestry, merge bases) go through go-git against
// the on-disk repository; mutations (fetch, rebase, force-push) shell out to
// the git binary, which handles worktree and index state correctly. The
// RefSource type adapts both halves to the engine's interface.
//
// This package should be the only place where direct git commands are executed.
package git
