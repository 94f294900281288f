package output

import (
	"fmt"
	"strings"
	"time"

	"quilt.dev/quilt/internal/engine"
)

// RenderRepoReport renders one repository's section of a restack report:
// a heading and one line per step. Structural failures replace the step
// list, because nothing ran.
func RenderRepoReport(rr *engine.RepoReport, dryRun bool) []string {
	lines := []string{ColorRepoName(rr.Repo.Name)}

	if rr.Failed() {
		lines = append(lines, "  "+OutcomeGlyph(engine.OutcomeConflict)+" "+rr.Err)
		return lines
	}
	if rr.Steps() == 0 {
		lines = append(lines, "  "+ColorDim("no stacked pull requests"))
		return lines
	}

	for _, chain := range rr.Chains {
		for i := range chain.Steps {
			lines = append(lines, stepLine(&chain.Steps[i], dryRun))
		}
	}
	return lines
}

func stepLine(step *engine.RestackStep, dryRun bool) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(OutcomeGlyph(step.Outcome))
	b.WriteString(" ")
	b.WriteString(ColorBranchName(step.PR.HeadBranch, false))
	b.WriteString(" ")
	b.WriteString(ColorPRNumber(step.PR.Number))
	b.WriteString(" ")
	b.WriteString(stepMessage(step, dryRun))
	return b.String()
}

// stepMessage phrases what happened to a step, or what would happen in a
// dry run.
func stepMessage(step *engine.RestackStep, dryRun bool) string {
	if dryRun {
		switch step.Action {
		case engine.ActionAlreadyCurrent:
			return fmt.Sprintf("already based on %s", step.ParentBranch)
		case engine.ActionSkippedAncestorFailure:
			return "skipped: " + step.Detail
		default:
			msg := fmt.Sprintf("would rebase onto %s", step.ParentBranch)
			if step.Detail != "" {
				msg += " " + ColorDim("("+step.Detail+")")
			}
			return msg
		}
	}

	switch step.Outcome {
	case engine.OutcomeSucceeded:
		if step.Action == engine.ActionAlreadyCurrent {
			return fmt.Sprintf("already based on %s", step.ParentBranch)
		}
		return fmt.Sprintf("rebased onto %s and pushed", step.ParentBranch)
	case engine.OutcomeSkippedAncestorFailure:
		return "skipped: " + step.Detail
	case engine.OutcomeNotAttempted:
		return ColorDim("not attempted")
	default:
		return step.Detail
	}
}

// RenderRunSummary renders the one-line roll-up printed after all
// repositories have been reported.
func RenderRunSummary(r *engine.Report) string {
	var parts []string

	if r.DryRun {
		actions := actionCounts(r)
		if n := actions[engine.ActionRebaseRequired]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d to rebase", n))
		}
		if n := actions[engine.ActionAlreadyCurrent]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d already current", n))
		}
	} else {
		outcomes := r.OutcomeCounts()
		if n := outcomes[engine.OutcomeSucceeded]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d restacked", n))
		}
		if n := outcomes[engine.OutcomeConflict]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d conflicted", n))
		}
		if n := outcomes[engine.OutcomePushRejected]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d rejected", n))
		}
		if n := outcomes[engine.OutcomeSkippedAncestorFailure]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d skipped", n))
		}
		if n := outcomes[engine.OutcomeNotAttempted]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d not attempted", n))
		}
	}

	if n := failedRepos(r); n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s failed", n, plural(n, "repository", "repositories")))
	}
	if len(parts) == 0 {
		parts = append(parts, "nothing to do")
	}

	verb := "Restacked"
	if r.DryRun {
		verb = "Planned"
	}
	return fmt.Sprintf("%s %d %s in %s: %s",
		verb, len(r.Repos), plural(len(r.Repos), "repository", "repositories"),
		r.Duration().Round(time.Millisecond), strings.Join(parts, ", "))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func actionCounts(r *engine.Report) map[engine.StepAction]int {
	counts := make(map[engine.StepAction]int)
	for _, rr := range r.Repos {
		for _, chain := range rr.Chains {
			for _, step := range chain.Steps {
				counts[step.Action]++
			}
		}
	}
	return counts
}

func failedRepos(r *engine.Report) int {
	n := 0
	for i := range r.Repos {
		if r.Repos[i].Failed() {
			n++
		}
	}
	return n
}
