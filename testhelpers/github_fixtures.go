package testhelpers

import (
	"fmt"
	"time"

	"github.com/google/go-github/v62/github"
)

// HeadSHA returns the fake head commit SHA used for a branch in fixtures,
// so check run fixtures can reference a listed pull request's head.
func HeadSHA(branch string) string {
	return "sha-" + branch
}

// NewOpenPullRequest builds an open pull request the way the list endpoint
// returns it.
func NewOpenPullRequest(number int, head, base string) *github.PullRequest {
	return &github.PullRequest{
		Number: github.Int(number),
		Title:  github.String(head + " changes"),
		State:  github.String("open"),
		Head: &github.PullRequestBranch{
			Ref: github.String(head),
			SHA: github.String(HeadSHA(head)),
		},
		Base: &github.PullRequestBranch{
			Ref: github.String(base),
		},
		HTMLURL: github.String(fmt.Sprintf("https://github.com/owner/repo/pull/%d", number)),
	}
}

// NewMergedPullRequest builds a pull request that GitHub reports as closed
// with a merge timestamp.
func NewMergedPullRequest(number int, head, base string) *github.PullRequest {
	pr := NewOpenPullRequest(number, head, base)
	pr.State = github.String("closed")
	pr.MergedAt = &github.Timestamp{Time: time.Now()}
	return pr
}

// NewClosedPullRequest builds a pull request that was closed without
// merging.
func NewClosedPullRequest(number int, head, base string) *github.PullRequest {
	pr := NewOpenPullRequest(number, head, base)
	pr.State = github.String("closed")
	return pr
}

// CompletedCheckRun builds a check run that finished with the given
// conclusion.
func CompletedCheckRun(name, conclusion string) *github.CheckRun {
	return &github.CheckRun{
		Name:       github.String(name),
		Status:     github.String("completed"),
		Conclusion: github.String(conclusion),
	}
}

// QueuedCheckRun builds a check run that has not started yet.
func QueuedCheckRun(name string) *github.CheckRun {
	return &github.CheckRun{
		Name:   github.String(name),
		Status: github.String("queued"),
	}
}

// CombinedStatusOf builds a legacy combined commit status with one entry.
func CombinedStatusOf(state string) *github.CombinedStatus {
	return &github.CombinedStatus{
		State: github.String(state),
		Statuses: []*github.RepoStatus{
			{
				Context: github.String("legacy-ci"),
				State:   github.String(state),
			},
		},
	}
}
