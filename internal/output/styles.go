package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"quilt.dev/quilt/internal/engine"
)

// LanePalette defines the color palette for stack lane visualization
var LanePalette = [][]int{
	{76, 203, 241},  // Light blue
	{77, 202, 125},  // Green
	{110, 173, 38},  // Dark green
	{245, 200, 0},   // Yellow
	{248, 144, 72},  // Orange
	{244, 98, 81},   // Red
	{235, 130, 188}, // Pink
	{159, 131, 228}, // Purple
	{80, 132, 243},  // Blue
}

// LaneColor returns a styled string tinted with the lane's palette color
func LaneColor(text string, lane int) string {
	if len(LanePalette) == 0 || lane < 0 {
		return text
	}

	color := LanePalette[lane%len(LanePalette)]

	// Convert RGB to hex color
	hexColor := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", color[0], color[1], color[2]))

	style := lipgloss.NewStyle().
		Foreground(hexColor)

	return style.Render(text)
}

// ColorDim makes text dim/gray
func ColorDim(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(text)
}

// ColorBranchName colors a branch name based on whether it's checked out
func ColorBranchName(branchName string, isCurrent bool) string {
	if isCurrent {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Render(branchName)
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Render(branchName)
}

// ColorPRNumber colors a pull request number (yellow)
func ColorPRNumber(prNumber int) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("3")).
		Render(fmt.Sprintf("#%d", prNumber))
}

// ColorRepoName colors a repository heading
func ColorRepoName(name string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Render(name)
}

// ColorPRState colors a pull request state label
func ColorPRState(state engine.PRState) string {
	switch state {
	case engine.PRStateOpen:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Render("open")
	case engine.PRStateMerged:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Render("merged")
	case engine.PRStateClosed:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Render("closed")
	default:
		return string(state)
	}
}

// CheckGlyph renders an aggregate check status as a single styled glyph
func CheckGlyph(checks engine.CheckStatus) string {
	switch checks {
	case engine.ChecksPassing:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Render("✓")
	case engine.ChecksFailing:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Render("✗")
	case engine.ChecksPending:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
			Render("⋯")
	default:
		return ColorDim("?")
	}
}

// OutcomeGlyph renders a restack step outcome as a single styled glyph
func OutcomeGlyph(outcome engine.StepOutcome) string {
	switch outcome {
	case engine.OutcomeSucceeded:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Render("✓")
	case engine.OutcomeConflict, engine.OutcomePushRejected:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Render("✗")
	case engine.OutcomeSkippedAncestorFailure:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
			Render("−")
	default: // not attempted
		return ColorDim("⋯")
	}
}
