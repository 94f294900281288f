// Package testhelpers provides the fixtures shared by quilt's tests: a
// multi-repository scene backed by bare origins, git repository helpers, a
// mock GitHub API server, and assertions over git state.
package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// ExpectCommits asserts the exact commit subjects reachable from a branch,
// newest first. Rebases change every SHA on a branch, so subjects are the
// stable way to assert where its commits ended up.
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected []string) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("log", "--format=%s", branch)
	require.NoError(t, err, "failed to list commits of %s", branch)

	var subjects []string
	for _, line := range splitLines(output) {
		if line != "" {
			subjects = append(subjects, line)
		}
	}
	require.Equal(t, expected, subjects, "commits of %s do not match", branch)
}
