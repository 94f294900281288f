package cli

import (
	"os"

	"github.com/mattn/go-isatty"

	"quilt.dev/quilt/internal/engine"
	"quilt.dev/quilt/internal/git"
)

// isTTY returns true if stdin and stdout are attached to a terminal
func isTTY() bool {
	// First check if stdin/stdout are terminals
	if !((isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))) {
		return false
	}
	// Also try to open /dev/tty to verify it's actually available
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// currentBranch returns the checked-out branch of the repository's working
// copy, or "" when it cannot be determined. Display-only.
func currentBranch(repo *engine.Repository) string {
	r, err := git.OpenRepository(repo.Path)
	if err != nil {
		return ""
	}
	branch, err := r.CurrentBranch()
	if err != nil {
		return ""
	}
	return branch
}
