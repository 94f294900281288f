package git

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"quilt.dev/quilt/internal/engine"
	quilterrors "quilt.dev/quilt/internal/errors"
)

// RefSource adapts local working copies to the engine's RefSource
// interface. Repository handles are opened lazily and cached per path.
//
// It also remembers, for the duration of one run, the tip each rebased
// branch replaced. When a child is rebased onto a parent that this run
// already rebased, the parent's old tip is the correct upstream boundary:
// using it transplants exactly the child's own commits. For parents that
// did not move in this run, the merge base of child and parent serves the
// same purpose.
type RefSource struct {
	mu      sync.Mutex
	repos   map[string]*Repository
	rebased map[string]string // repo path + new tip -> old tip
}

var _ engine.RefSource = (*RefSource)(nil)

// NewRefSource creates a RefSource with no open repositories. One RefSource
// serves one run; the rebase memo must not outlive it.
func NewRefSource() *RefSource {
	return &RefSource{
		repos:   make(map[string]*Repository),
		rebased: make(map[string]string),
	}
}

// open returns the cached handle for the repository, opening it on first use.
func (s *RefSource) open(repo *engine.Repository) (*Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.repos[repo.Path]; ok {
		return r, nil
	}
	r, err := OpenRepository(repo.Path)
	if err != nil {
		return nil, err
	}
	r.remote = remoteName(repo)
	s.repos[repo.Path] = r
	return r, nil
}

// CurrentTip returns the branch's local tip, falling back to its
// remote-tracking ref for branches that were never checked out.
func (s *RefSource) CurrentTip(ctx context.Context, repo *engine.Repository, branch string) (string, error) {
	r, err := s.open(repo)
	if err != nil {
		return "", err
	}
	return r.Tip(branch)
}

// IsAncestor reports whether ancestor is reachable from descendant.
func (s *RefSource) IsAncestor(ctx context.Context, repo *engine.Repository, ancestor, descendant string) (bool, error) {
	r, err := s.open(repo)
	if err != nil {
		return false, err
	}
	return r.IsAncestor(ancestor, descendant)
}

// Fetch updates the branch's remote-tracking ref and returns the observed
// remote tip.
func (s *RefSource) Fetch(ctx context.Context, repo *engine.Repository, branch string) (string, error) {
	r, err := s.open(repo)
	if err != nil {
		return "", err
	}
	return r.FetchBranch(ctx, remoteName(repo), branch)
}

// Rebase re-applies the branch's commits onto the given tip.
func (s *RefSource) Rebase(ctx context.Context, repo *engine.Repository, branch, onto string) (engine.RebaseResult, error) {
	r, err := s.open(repo)
	if err != nil {
		return engine.RebaseConflict, err
	}

	oldTip, err := r.Tip(branch)
	if err != nil {
		return engine.RebaseConflict, err
	}

	from, ok := s.previousTip(repo, onto)
	if !ok {
		from, err = r.MergeBase(branch, onto)
		if err != nil {
			return engine.RebaseConflict, fmt.Errorf("failed to find old base of %s: %w", branch, err)
		}
	}

	result, err := r.Rebase(ctx, branch, onto, from)
	if err != nil || result == RebaseConflict {
		return engine.RebaseConflict, err
	}

	if newTip, tipErr := r.Tip(branch); tipErr == nil && newTip != oldTip {
		s.recordRebase(repo, newTip, oldTip)
	}
	return engine.RebaseDone, nil
}

// ForcePushIfUnchanged force-pushes the branch under a lease on the
// expected remote tip. A lease failure is a rejection, not an error.
func (s *RefSource) ForcePushIfUnchanged(ctx context.Context, repo *engine.Repository, branch, expectedRemoteTip string) (engine.PushResult, error) {
	r, err := s.open(repo)
	if err != nil {
		return engine.PushRejected, err
	}

	result, err := r.ForcePushWithLease(ctx, remoteName(repo), branch, expectedRemoteTip)
	if result == PushDone {
		return engine.PushDone, nil
	}
	if errors.Is(err, quilterrors.ErrStaleRemoteInfo) {
		return engine.PushRejected, nil
	}
	return engine.PushRejected, err
}

func (s *RefSource) previousTip(repo *engine.Repository, tip string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.rebased[repo.Path+" "+tip]
	return old, ok
}

func (s *RefSource) recordRebase(repo *engine.Repository, newTip, oldTip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebased[repo.Path+" "+newTip] = oldTip
}

func remoteName(repo *engine.Repository) string {
	if repo.Remote != "" {
		return repo.Remote
	}
	return "origin"
}
