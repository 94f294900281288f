package engine_test

import (
	"context"
	"fmt"
	"sync"

	"quilt.dev/quilt/internal/engine"
)

// fakeRefs is an in-memory RefSource. Branch state is a tip per branch plus
// an explicit ancestor relation between tips. Every call is recorded so
// tests can assert exactly which operations ran.
type fakeRefs struct {
	mu        sync.Mutex
	tips      map[string]string // branch -> tip
	remote    map[string]string // branch -> remote tip, defaults to tips
	ancestors map[string]bool   // "anc>desc"
	conflicts map[string]bool   // branches whose rebase conflicts
	rejects   map[string]bool   // branches whose push is rejected
	tipErr    map[string]error
	fetchErr  map[string]error

	onRebase func(branch string)

	Fetches    []string
	Mutations  []string // rebase and push calls
	AncQueries []string
	TipQueries []string
}

func newFakeRefs() *fakeRefs {
	return &fakeRefs{
		tips:      make(map[string]string),
		remote:    make(map[string]string),
		ancestors: make(map[string]bool),
		conflicts: make(map[string]bool),
		rejects:   make(map[string]bool),
		tipErr:    make(map[string]error),
		fetchErr:  make(map[string]error),
	}
}

// addBranch registers a branch at the given tip.
func (f *fakeRefs) addBranch(branch, tip string) *fakeRefs {
	f.tips[branch] = tip
	return f
}

// markCurrent declares that child is already based on parent's current tip.
// Both branches must have been added first.
func (f *fakeRefs) markCurrent(parent, child string) *fakeRefs {
	f.ancestors[ancKey(f.tips[parent], f.tips[child])] = true
	return f
}

func (f *fakeRefs) conflictOn(branch string) *fakeRefs {
	f.conflicts[branch] = true
	return f
}

func (f *fakeRefs) rejectPushOf(branch string) *fakeRefs {
	f.rejects[branch] = true
	return f
}

func ancKey(anc, desc string) string {
	return anc + ">" + desc
}

func (f *fakeRefs) CurrentTip(ctx context.Context, repo *engine.Repository, branch string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TipQueries = append(f.TipQueries, branch)
	if err := f.tipErr[branch]; err != nil {
		return "", err
	}
	tip, ok := f.tips[branch]
	if !ok {
		return "", fmt.Errorf("unknown branch %s", branch)
	}
	return tip, nil
}

func (f *fakeRefs) IsAncestor(ctx context.Context, repo *engine.Repository, ancestor, descendant string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AncQueries = append(f.AncQueries, ancKey(ancestor, descendant))
	return f.ancestors[ancKey(ancestor, descendant)], nil
}

func (f *fakeRefs) Fetch(ctx context.Context, repo *engine.Repository, branch string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Fetches = append(f.Fetches, branch)
	if err := f.fetchErr[branch]; err != nil {
		return "", err
	}
	if tip, ok := f.remote[branch]; ok {
		return tip, nil
	}
	tip, ok := f.tips[branch]
	if !ok {
		return "", fmt.Errorf("unknown branch %s", branch)
	}
	return tip, nil
}

func (f *fakeRefs) Rebase(ctx context.Context, repo *engine.Repository, branch, onto string) (engine.RebaseResult, error) {
	f.mu.Lock()
	f.Mutations = append(f.Mutations, "rebase "+branch)
	conflict := f.conflicts[branch]
	if !conflict {
		f.tips[branch] = f.tips[branch] + "'"
	}
	hook := f.onRebase
	f.mu.Unlock()

	if hook != nil {
		hook(branch)
	}
	if conflict {
		return engine.RebaseConflict, nil
	}
	return engine.RebaseDone, nil
}

func (f *fakeRefs) ForcePushIfUnchanged(ctx context.Context, repo *engine.Repository, branch, expectedRemoteTip string) (engine.PushResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Mutations = append(f.Mutations, "push "+branch)
	if f.rejects[branch] {
		return engine.PushRejected, nil
	}
	f.remote[branch] = f.tips[branch]
	return engine.PushDone, nil
}

func (f *fakeRefs) mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Mutations...)
}

// fakePRs is an in-memory PRSource keyed by repository name.
type fakePRs struct {
	prs  map[string][]engine.PullRequestRef
	errs map[string]error
}

func newFakePRs() *fakePRs {
	return &fakePRs{
		prs:  make(map[string][]engine.PullRequestRef),
		errs: make(map[string]error),
	}
}

func (f *fakePRs) add(repo *engine.Repository, prs ...engine.PullRequestRef) *fakePRs {
	f.prs[repo.Name] = append(f.prs[repo.Name], prs...)
	return f
}

func (f *fakePRs) failFor(repo *engine.Repository, err error) *fakePRs {
	f.errs[repo.Name] = err
	return f
}

func (f *fakePRs) ListOpenPullRequests(ctx context.Context, repo *engine.Repository) ([]engine.PullRequestRef, error) {
	if err := f.errs[repo.Name]; err != nil {
		return nil, err
	}
	return f.prs[repo.Name], nil
}

func testRepo(name string) *engine.Repository {
	return &engine.Repository{
		Name:   name,
		Path:   "/tmp/" + name,
		Remote: "origin",
		Trunk:  "main",
	}
}

func openPR(repo *engine.Repository, number int, head, base string) engine.PullRequestRef {
	return engine.PullRequestRef{
		Number:     number,
		Title:      fmt.Sprintf("change %d", number),
		HeadBranch: head,
		BaseBranch: base,
		State:      engine.PRStateOpen,
		Checks:     engine.ChecksUnknown,
		Repo:       repo,
	}
}

// stackRefs builds a fakeRefs where every branch of the stack exists and,
// unless listed in stale, is already based on its parent.
func stackRefs(repo *engine.Repository, prs []engine.PullRequestRef, stale ...string) *fakeRefs {
	refs := newFakeRefs().addBranch(repo.Trunk, "sha-"+repo.Trunk)
	for _, pr := range prs {
		refs.addBranch(pr.HeadBranch, "sha-"+pr.HeadBranch)
	}
	staleSet := make(map[string]bool, len(stale))
	for _, branch := range stale {
		staleSet[branch] = true
	}
	for _, pr := range prs {
		if !staleSet[pr.HeadBranch] {
			refs.markCurrent(pr.BaseBranch, pr.HeadBranch)
		}
	}
	return refs
}
