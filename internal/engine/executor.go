package engine

import (
	"context"
	"fmt"
)

// ExecuteChain runs one chain's steps strictly in order and returns the
// plan with outcomes filled in.
//
// Each step fetches the parent branch and its own branch first; the fetched
// tip of the branch itself becomes the force-push precondition. A conflict
// or rejected push fails the step and every remaining descendant of that
// node is marked skipped-due-to-ancestor-failure; siblings and other chains
// are unaffected. In dry-run mode only the fetches happen and every outcome
// stays not-attempted.
//
// Cancellation applies between steps: remaining steps keep their
// not-attempted outcome. A started rebase always runs to its push or abort;
// that unit is shielded from cancellation and bounded by the RefSource's
// own command timeouts.
func ExecuteChain(ctx context.Context, refs RefSource, plan ChainPlan, dryRun bool) ChainPlan {
	// node index -> branch whose failure poisoned the subtree
	failedBy := make(map[int]string)

	for i := range plan.Steps {
		step := &plan.Steps[i]
		if ctx.Err() != nil {
			break
		}

		if step.ParentIndex != -1 {
			if cause, ok := failedBy[step.ParentIndex]; ok {
				step.Action = ActionSkippedAncestorFailure
				step.Outcome = OutcomeSkippedAncestorFailure
				step.Detail = fmt.Sprintf("ancestor %s failed", cause)
				failedBy[step.NodeIndex] = cause
				continue
			}
		}

		if canceled := executeStep(ctx, refs, step, dryRun); canceled {
			break
		}
		if step.Outcome == OutcomeConflict || step.Outcome == OutcomePushRejected {
			failedBy[step.NodeIndex] = step.PR.HeadBranch
		}
	}
	return plan
}

// executeStep performs one step against the RefSource. It returns true when
// the run was canceled mid-fetch and the chain should stop with this step
// left not-attempted.
func executeStep(ctx context.Context, refs RefSource, step *RestackStep, dryRun bool) bool {
	repo := step.PR.Repo
	branch := step.PR.HeadBranch

	parentTip, err := refs.Fetch(ctx, repo, step.ParentBranch)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		recordFetchFailure(step, step.ParentBranch, err, dryRun)
		return false
	}
	remoteTip, err := refs.Fetch(ctx, repo, branch)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		recordFetchFailure(step, branch, err, dryRun)
		return false
	}

	if dryRun {
		return false
	}

	if step.Action == ActionAlreadyCurrent {
		// Idempotent: nothing to rebase, nothing to push.
		step.Outcome = OutcomeSucceeded
		return false
	}

	// The rebase and its push (or abort) are atomic from the caller's
	// perspective; command-level timeouts still apply inside the RefSource.
	unitCtx := context.WithoutCancel(ctx)

	result, err := refs.Rebase(unitCtx, repo, branch, parentTip)
	if err != nil {
		step.Outcome = OutcomeConflict
		step.Detail = fmt.Sprintf("rebasing %s onto %s: %v", branch, step.ParentBranch, err)
		return false
	}
	if result == RebaseConflict {
		step.Outcome = OutcomeConflict
		step.Detail = fmt.Sprintf("conflicts rebasing %s onto %s", branch, step.ParentBranch)
		return false
	}

	push, err := refs.ForcePushIfUnchanged(unitCtx, repo, branch, remoteTip)
	if err != nil {
		step.Outcome = OutcomePushRejected
		step.Detail = fmt.Sprintf("pushing %s: %v", branch, err)
		return false
	}
	if push == PushRejected {
		step.Outcome = OutcomePushRejected
		step.Detail = fmt.Sprintf("remote %s changed since it was fetched", branch)
		return false
	}

	step.Outcome = OutcomeSucceeded
	return false
}

// recordFetchFailure attributes a fetch-phase failure to a step. Without
// fresh remote state the branch cannot be rebased safely, so a live run
// records a conflict-class outcome; a dry-run keeps not-attempted.
func recordFetchFailure(step *RestackStep, branch string, err error, dryRun bool) {
	step.Detail = fmt.Sprintf("fetching %s: %v", branch, err)
	if !dryRun {
		step.Outcome = OutcomeConflict
	}
}
