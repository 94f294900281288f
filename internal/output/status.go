package output

import (
	"fmt"
	"strings"

	"quilt.dev/quilt/internal/engine"
)

// RenderPRStatus renders one repository's open pull requests: one line per
// pull request with state and check roll-up, then a summary count line.
// Verbose adds the pull request URL under each line.
func RenderPRStatus(repo *engine.Repository, prs []engine.PullRequestRef, verbose bool) []string {
	lines := []string{ColorRepoName(repo.Name)}

	if len(prs) == 0 {
		lines = append(lines, "  "+ColorDim("no open pull requests"))
		return lines
	}

	for _, pr := range prs {
		lines = append(lines, statusLine(pr))
		if verbose && pr.URL != "" {
			lines = append(lines, "      "+ColorDim(pr.URL))
		}
	}

	lines = append(lines, "  "+summaryLine(prs))
	return lines
}

func statusLine(pr engine.PullRequestRef) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(CheckGlyph(pr.Checks))
	b.WriteString(" ")
	b.WriteString(ColorPRNumber(pr.Number))
	b.WriteString(" ")
	b.WriteString(ColorBranchName(pr.HeadBranch, false))
	b.WriteString(" → ")
	b.WriteString(pr.BaseBranch)
	b.WriteString("  ")
	b.WriteString(ColorPRState(pr.State))
	if pr.Title != "" {
		b.WriteString("  ")
		b.WriteString(pr.Title)
	}
	return b.String()
}

// summaryLine counts pull requests by check roll-up, skipping empty
// buckets.
func summaryLine(prs []engine.PullRequestRef) string {
	counts := make(map[engine.CheckStatus]int)
	for _, pr := range prs {
		counts[pr.Checks]++
	}

	var parts []string
	for _, status := range []engine.CheckStatus{
		engine.ChecksPassing,
		engine.ChecksPending,
		engine.ChecksFailing,
		engine.ChecksUnknown,
	} {
		if n := counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}

	noun := plural(len(prs), "pull request", "pull requests")
	return ColorDim(fmt.Sprintf("%d open %s: %s", len(prs), noun, strings.Join(parts, ", ")))
}
