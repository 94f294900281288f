package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultWorkers bounds how many repositories are processed concurrently.
const DefaultWorkers = 4

// Options controls an Execute run.
type Options struct {
	// DryRun previews the plan: fetches and staleness checks happen,
	// rebases and pushes do not.
	DryRun bool
	// Workers bounds repository-level concurrency. Zero means
	// DefaultWorkers. Chains within one repository always run
	// sequentially because they share its working copy.
	Workers int
	// OnRepo, when set, is called from the collecting goroutine as each
	// repository finishes. Calls are serialized.
	OnRepo func(RepoReport)
}

// Engine ties the pull request and git ref sources to the graph builder,
// planner and executor. It holds no state between runs; every Plan or
// Execute call starts from live queries.
type Engine struct {
	refs RefSource
	prs  PRSource
}

// New creates an Engine over the given sources.
func New(refs RefSource, prs PRSource) *Engine {
	return &Engine{refs: refs, prs: prs}
}

// Plan builds and classifies every repository's chains without touching
// the network beyond ref and pull request queries. All outcomes are
// not-attempted.
func (e *Engine) Plan(ctx context.Context, repos []*Repository) *Report {
	report := newReport(true)
	for _, repo := range repos {
		report.Repos = append(report.Repos, e.planRepo(ctx, repo))
	}
	report.FinishedAt = time.Now()
	return report
}

// Execute plans and restacks every repository. Repositories are independent
// units of work: they run on a bounded pool of workers and a failure in one
// never blocks the others. The run always completes and returns a report;
// failures are captured in it rather than returned.
func (e *Engine) Execute(ctx context.Context, repos []*Repository, opts Options) *Report {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	report := newReport(opts.DryRun)
	report.Repos = make([]RepoReport, len(repos))

	type indexed struct {
		i  int
		rr RepoReport
	}
	sem := make(chan struct{}, workers)
	out := make(chan indexed)

	for i, repo := range repos {
		go func(i int, repo *Repository) {
			sem <- struct{}{}
			defer func() { <-sem }()
			out <- indexed{i: i, rr: e.processRepo(ctx, repo, opts.DryRun)}
		}(i, repo)
	}

	// Collect in completion order, store in input order. No shared state:
	// each worker hands over a self-contained result.
	for range repos {
		res := <-out
		report.Repos[res.i] = res.rr
		if opts.OnRepo != nil {
			opts.OnRepo(res.rr)
		}
	}

	report.FinishedAt = time.Now()
	return report
}

// planRepo lists the repository's pull requests, builds the forest and
// classifies every chain. Listing and structural failures are attributed
// to the repository.
func (e *Engine) planRepo(ctx context.Context, repo *Repository) RepoReport {
	rr := RepoReport{Repo: repo}

	prs, err := e.prs.ListOpenPullRequests(ctx, repo)
	if err != nil {
		rr.Err = fmt.Sprintf("listing pull requests: %v", err)
		return rr
	}

	forest, orphans, inactive, err := BuildForest(repo, prs)
	rr.Orphans = orphans
	rr.Inactive = inactive
	if err != nil {
		rr.Err = err.Error()
		return rr
	}

	rr.Chains = PlanForest(ctx, e.refs, forest)
	return rr
}

// processRepo plans the repository and executes its chains one after
// another; the working copy is an exclusive resource, so chains of the same
// repository never run concurrently.
func (e *Engine) processRepo(ctx context.Context, repo *Repository, dryRun bool) RepoReport {
	rr := e.planRepo(ctx, repo)
	if rr.Failed() {
		return rr
	}
	for i, chain := range rr.Chains {
		rr.Chains[i] = ExecuteChain(ctx, e.refs, chain, dryRun)
	}
	return rr
}

func newReport(dryRun bool) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		DryRun:    dryRun,
	}
}
