package github

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/go-github/v62/github"

	"quilt.dev/quilt/internal/engine"
)

const (
	// GitHub check conclusion and status constants
	checkConclusionSuccess        = "SUCCESS"
	checkConclusionFailure        = "FAILURE"
	checkConclusionCanceled       = "CANCELLED"
	checkConclusionTimedOut       = "TIMED_OUT"
	checkConclusionActionRequired = "ACTION_REQUIRED"
	checkStateSuccess             = "SUCCESS"
	checkStateFailure             = "FAILURE"
	checkStateError               = "ERROR"
	checkStatePending             = "PENDING"
)

// Source lists pull requests from GitHub. It serves every repository in a
// workspace, creating one API client per hostname so github.com and GitHub
// Enterprise repositories can be mixed freely.
type Source struct {
	mu         sync.Mutex
	clients    map[string]*github.Client
	withChecks bool
}

var _ engine.PRSource = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithCheckRollups makes the source fetch CI check results for every listed
// pull request. Listing is slower with this on; restacking does not need it.
func WithCheckRollups() Option {
	return func(s *Source) {
		s.withChecks = true
	}
}

// WithClient pre-seeds the client for a hostname, bypassing token discovery.
func WithClient(hostname string, client *github.Client) Option {
	return func(s *Source) {
		s.clients[hostname] = client
	}
}

// NewSource creates a Source. Clients are created lazily on first use of
// each hostname, authenticated via GITHUB_TOKEN or the gh CLI.
func NewSource(opts ...Option) *Source {
	s := &Source{
		clients: make(map[string]*github.Client),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// clientFor returns the API client for a hostname, creating it on first use.
func (s *Source) clientFor(ctx context.Context, hostname string) (*github.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if client, ok := s.clients[hostname]; ok {
		return client, nil
	}

	token, err := GetToken(ctx)
	if err != nil {
		return nil, err
	}
	client, err := createGitHubClient(ctx, hostname, token)
	if err != nil {
		return nil, err
	}
	s.clients[hostname] = client
	return client, nil
}

// ListOpenPullRequests returns every open pull request of the repository's
// GitHub project.
func (s *Source) ListOpenPullRequests(ctx context.Context, repo *engine.Repository) ([]engine.PullRequestRef, error) {
	info, err := ParseGitHubRemoteURL(repo.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("cannot determine GitHub project for %s: %w", repo.Name, err)
	}

	client, err := s.clientFor(ctx, info.Hostname)
	if err != nil {
		return nil, err
	}

	listOpts := &github.PullRequestListOptions{
		State: "open",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var prs []*github.PullRequest
	for {
		page, resp, err := client.PullRequests.List(ctx, info.Owner, info.Repo, listOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests for %s: %w", repo.Name, err)
		}
		prs = append(prs, page...)
		if resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}

	refs := make([]engine.PullRequestRef, len(prs))
	for i, pr := range prs {
		refs[i] = toPullRequestRef(pr, repo)
	}

	if s.withChecks {
		s.attachCheckRollups(ctx, client, info, prs, refs)
	}
	return refs, nil
}

// attachCheckRollups fills in the check status of each pull request. Results
// are fetched in parallel; a branch whose checks cannot be read keeps
// ChecksUnknown rather than failing the listing.
func (s *Source) attachCheckRollups(ctx context.Context, client *github.Client, info *RepoInfo, prs []*github.PullRequest, refs []engine.PullRequestRef) {
	var wg sync.WaitGroup
	for i, pr := range prs {
		if pr.Head == nil || pr.Head.SHA == nil {
			continue
		}
		wg.Add(1)
		go func(i int, sha string) {
			defer wg.Done()
			refs[i].Checks = checksForRef(ctx, client, info, sha)
		}(i, *pr.Head.SHA)
	}
	wg.Wait()
}

// checksForRef rolls the check runs and commit statuses for a ref up into a
// single status: failing beats pending, pending beats passing, and a ref
// with no readable check data is unknown.
func checksForRef(ctx context.Context, client *github.Client, info *RepoInfo, ref string) engine.CheckStatus {
	var hasFailing, hasPending bool
	total := 0
	succeeded := 0

	checkRuns, _, err := client.Checks.ListCheckRunsForRef(ctx, info.Owner, info.Repo, ref, &github.ListCheckRunsOptions{
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	})
	if err == nil && checkRuns != nil {
		for _, run := range checkRuns.CheckRuns {
			total++
			if run.Status != nil {
				status := strings.ToUpper(*run.Status)
				if status == "QUEUED" || status == "IN_PROGRESS" {
					hasPending = true
				}
			}
			if run.Conclusion != nil {
				switch strings.ToUpper(*run.Conclusion) {
				case checkConclusionFailure, checkConclusionCanceled, checkConclusionTimedOut, checkConclusionActionRequired:
					hasFailing = true
				case checkConclusionSuccess:
					succeeded++
				}
			}
		}
	}

	combined, _, err := client.Repositories.GetCombinedStatus(ctx, info.Owner, info.Repo, ref, nil)
	if err == nil && combined != nil && len(combined.Statuses) > 0 && combined.State != nil {
		total++
		switch strings.ToUpper(*combined.State) {
		case checkStateFailure, checkStateError:
			hasFailing = true
		case checkStatePending:
			hasPending = true
		case checkStateSuccess:
			succeeded++
		}
	}

	switch {
	case hasFailing:
		return engine.ChecksFailing
	case hasPending:
		return engine.ChecksPending
	case total > 0 && succeeded == total:
		return engine.ChecksPassing
	default:
		return engine.ChecksUnknown
	}
}

// toPullRequestRef converts a GitHub pull request to the engine's view of it.
func toPullRequestRef(pr *github.PullRequest, repo *engine.Repository) engine.PullRequestRef {
	ref := engine.PullRequestRef{
		State:  prState(pr),
		Checks: engine.ChecksUnknown,
		Repo:   repo,
	}
	if pr.Number != nil {
		ref.Number = *pr.Number
	}
	if pr.Title != nil {
		ref.Title = *pr.Title
	}
	if pr.Head != nil && pr.Head.Ref != nil {
		ref.HeadBranch = *pr.Head.Ref
	}
	if pr.Base != nil && pr.Base.Ref != nil {
		ref.BaseBranch = *pr.Base.Ref
	}
	if pr.HTMLURL != nil {
		ref.URL = *pr.HTMLURL
	}
	return ref
}

// prState maps GitHub's state plus merge flags to a pull request state.
// GitHub reports merged pull requests as closed; the merge fields tell the
// two apart.
func prState(pr *github.PullRequest) engine.PRState {
	if pr.Merged != nil && *pr.Merged {
		return engine.PRStateMerged
	}
	if pr.MergedAt != nil {
		return engine.PRStateMerged
	}
	if pr.State != nil && strings.EqualFold(*pr.State, "closed") {
		return engine.PRStateClosed
	}
	return engine.PRStateOpen
}
