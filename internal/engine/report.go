package engine

import "time"

// Report aggregates a whole run: every repository, every chain, every step
// outcome, plus the orphan warnings and structural errors. It is the sole
// handoff to presentation and carries no behavior beyond read helpers.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Repos      []RepoReport
}

// RepoReport holds one repository's results. Err is set when the whole
// repository failed before any chain ran: pull request listing was
// unreachable or the graph had a structural problem such as a cycle. Other
// repositories are unaffected.
type RepoReport struct {
	Repo     *Repository
	Chains   []ChainPlan
	Orphans  []Orphan
	Inactive []PullRequestRef
	Err      string
}

// Failed reports whether the repository failed as a whole.
func (rr *RepoReport) Failed() bool {
	return rr.Err != ""
}

// Steps returns the total number of steps across the repository's chains.
func (rr *RepoReport) Steps() int {
	total := 0
	for _, chain := range rr.Chains {
		total += len(chain.Steps)
	}
	return total
}

// HasFailures reports whether any repository failed structurally or any
// step ended in conflict, push-rejected, or was skipped because an
// ancestor failed.
func (r *Report) HasFailures() bool {
	for i := range r.Repos {
		if r.Repos[i].Failed() {
			return true
		}
	}
	counts := r.OutcomeCounts()
	return counts[OutcomeConflict] > 0 ||
		counts[OutcomePushRejected] > 0 ||
		counts[OutcomeSkippedAncestorFailure] > 0
}

// OutcomeCounts tallies step outcomes across all repositories and chains.
func (r *Report) OutcomeCounts() map[StepOutcome]int {
	counts := make(map[StepOutcome]int)
	for _, rr := range r.Repos {
		for _, chain := range rr.Chains {
			for _, step := range chain.Steps {
				counts[step.Outcome]++
			}
		}
	}
	return counts
}

// Duration returns the wall-clock time the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
