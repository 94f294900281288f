package git

import (
	"fmt"
	"path/filepath"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	quilterrors "quilt.dev/quilt/internal/errors"
)

// goGitMu synchronizes go-git object reads. go-git is not safe for
// concurrent packfile access, and repositories that share objects via
// alternates can trip over each other.
var goGitMu sync.Mutex

// Repository is one workspace repository's local working copy: a go-git
// handle for read-side queries plus a command runner for mutations.
type Repository struct {
	path   string
	remote string
	repo   *gogit.Repository
	runner *CommandRunner
}

// OpenRepository opens the git repository at the given path.
func OpenRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", absPath, err)
	}

	return &Repository{
		path:   absPath,
		remote: "origin",
		repo:   repo,
		runner: NewCommandRunner(absPath),
	}, nil
}

// Path returns the repository's working copy root.
func (r *Repository) Path() string {
	return r.path
}

// Tip returns the commit SHA the branch currently points at.
func (r *Repository) Tip(branch string) (string, error) {
	hash, err := r.resolveRefHash(branch)
	if err != nil {
		return "", quilterrors.NewBranchNotFoundError(branch)
	}
	return hash.String(), nil
}

// IsAncestor reports whether ancestor is reachable from descendant. Both
// arguments may be SHAs or ref names.
func (r *Repository) IsAncestor(ancestor, descendant string) (bool, error) {
	ancestorHash, err := r.resolveRefHash(ancestor)
	if err != nil {
		return false, fmt.Errorf("failed to resolve ancestor ref: %w", err)
	}
	descendantHash, err := r.resolveRefHash(descendant)
	if err != nil {
		return false, fmt.Errorf("failed to resolve descendant ref: %w", err)
	}

	if ancestorHash == descendantHash {
		return true, nil
	}

	goGitMu.Lock()
	defer goGitMu.Unlock()

	ancestorCommit, err := r.repo.CommitObject(ancestorHash)
	if err != nil {
		return false, fmt.Errorf("failed to get ancestor commit: %w", err)
	}
	descendantCommit, err := r.repo.CommitObject(descendantHash)
	if err != nil {
		return false, fmt.Errorf("failed to get descendant commit: %w", err)
	}

	return ancestorCommit.IsAncestor(descendantCommit)
}

// MergeBase returns the merge base of two refs.
func (r *Repository) MergeBase(ref1, ref2 string) (string, error) {
	hash1, err := r.resolveRefHash(ref1)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", ref1, err)
	}
	hash2, err := r.resolveRefHash(ref2)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", ref2, err)
	}

	goGitMu.Lock()
	defer goGitMu.Unlock()

	commit1, err := r.repo.CommitObject(hash1)
	if err != nil {
		return "", fmt.Errorf("failed to get commit for %s: %w", ref1, err)
	}
	commit2, err := r.repo.CommitObject(hash2)
	if err != nil {
		return "", fmt.Errorf("failed to get commit for %s: %w", ref2, err)
	}

	mergeBases, err := commit1.MergeBase(commit2)
	if err != nil {
		return "", fmt.Errorf("failed to find merge base: %w", err)
	}
	if len(mergeBases) == 0 {
		return "", fmt.Errorf("no merge base between %s and %s", ref1, ref2)
	}
	return mergeBases[0].Hash.String(), nil
}

// CurrentBranch returns the checked-out branch name, or an empty string for
// a detached HEAD.
func (r *Repository) CurrentBranch() (string, error) {
	goGitMu.Lock()
	defer goGitMu.Unlock()

	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// HasBranch reports whether a local branch exists.
func (r *Repository) HasBranch(branch string) bool {
	goGitMu.Lock()
	defer goGitMu.Unlock()

	_, err := r.repo.Reference(plumbing.ReferenceName("refs/heads/"+branch), true)
	return err == nil
}

// resolveRefHash resolves a branch, remote branch, tag, SHA, or revision
// expression to a commit hash.
func (r *Repository) resolveRefHash(ref string) (plumbing.Hash, error) {
	goGitMu.Lock()
	defer goGitMu.Unlock()

	if resolved, err := r.repo.Reference(plumbing.ReferenceName(ref), true); err == nil {
		return resolved.Hash(), nil
	}
	if resolved, err := r.repo.Reference(plumbing.ReferenceName("refs/heads/"+ref), true); err == nil {
		return resolved.Hash(), nil
	}
	if resolved, err := r.repo.Reference(plumbing.ReferenceName("refs/remotes/"+r.remote+"/"+ref), true); err == nil {
		return resolved.Hash(), nil
	}
	if resolved, err := r.repo.Reference(plumbing.ReferenceName("refs/remotes/"+ref), true); err == nil {
		return resolved.Hash(), nil
	}
	if resolved, err := r.repo.Reference(plumbing.ReferenceName("refs/tags/"+ref), true); err == nil {
		return resolved.Hash(), nil
	}

	// Handles SHAs, short SHAs, and expressions like HEAD~1.
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err == nil {
		return *hash, nil
	}
	return plumbing.ZeroHash, fmt.Errorf("failed to resolve ref %s: reference not found", ref)
}
