// Package scenario combines a multi-repository Scene, a workspace manifest
// and a mock GitHub API into a terse fixture for command-level tests.
package scenario

import (
	"bytes"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-github/v62/github"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"quilt.dev/quilt/internal/cli"
	"quilt.dev/quilt/testhelpers"
)

// Scenario is a workspace of real git repositories backed by a mock GitHub
// API, with the working directory and environment pointed at it.
type Scenario struct {
	T      *testing.T
	Scene  *testhelpers.Scene
	Server *httptest.Server
	Owner  string

	mocks map[string]*testhelpers.MockGitHubServerConfig
}

// New creates a scenario with one repository per name. Each repository gets
// an initial commit on main pushed to its own bare origin, a mock GitHub
// endpoint, and a manifest entry under a shared owner.
// NOTE: not safe for parallel tests; it changes directory and environment.
func New(t *testing.T, repoNames ...string) *Scenario {
	t.Helper()

	// Styled output would garble assertions; render plain.
	lipgloss.SetColorProfile(termenv.Ascii)

	scene := testhelpers.NewScene(t)
	s := &Scenario{
		T:     t,
		Scene: scene,
		Owner: "acme",
		mocks: make(map[string]*testhelpers.MockGitHubServerConfig),
	}

	var configs []*testhelpers.MockGitHubServerConfig
	var manifest strings.Builder
	manifest.WriteString("workspace: test\nrepos:\n")
	for _, name := range repoNames {
		scene.AddRepo(t, name)

		config := testhelpers.NewMockGitHubServerConfig()
		config.Owner = s.Owner
		config.Repo = name
		s.mocks[name] = config
		configs = append(configs, config)

		fmt.Fprintf(&manifest, "  - name: %s\n    url: https://github.com/%s/%s.git\n", name, s.Owner, name)
	}
	scene.WriteFile(t, "quilt.yaml", manifest.String())

	s.Server = testhelpers.NewMockGitHubWorkspaceServer(t, configs...)

	scene.Chdir(t)
	t.Setenv("QUILT_GITHUB_API_URL", s.Server.URL+"/")
	t.Setenv("GITHUB_TOKEN", "test-token")

	return s
}

// Repo returns the working copy for a repository name.
func (s *Scenario) Repo(name string) *testhelpers.GitRepo {
	repo, ok := s.Scene.Repos[name]
	require.True(s.T, ok, "no repository named %s in scenario", name)
	return repo
}

// Mock returns the mock GitHub configuration for a repository name.
func (s *Scenario) Mock(name string) *testhelpers.MockGitHubServerConfig {
	config, ok := s.mocks[name]
	require.True(s.T, ok, "no repository named %s in scenario", name)
	return config
}

// AddOpenPR registers an open pull request for a repository without
// touching git.
func (s *Scenario) AddOpenPR(repoName string, number int, head, base string) *github.PullRequest {
	pr := testhelpers.NewOpenPullRequest(number, head, base)
	mock := s.Mock(repoName)
	mock.PRs = append(mock.PRs, pr)
	return pr
}

// StackPR creates a pushed branch with one commit on top of the current
// HEAD and registers an open pull request from it onto base. The working
// copy is left on the new branch.
func (s *Scenario) StackPR(repoName string, number int, head, base string) *github.PullRequest {
	s.T.Helper()
	testhelpers.StackBranch(s.T, s.Repo(repoName), head)
	return s.AddOpenPR(repoName, number, head, base)
}

// AdvanceTrunk adds a commit to the repository's main branch and pushes it,
// making every root pull request stale.
func (s *Scenario) AdvanceTrunk(repoName string) {
	s.T.Helper()
	repo := s.Repo(repoName)
	require.NoError(s.T, repo.CheckoutBranch("main"))
	require.NoError(s.T, repo.CreateChangeAndCommit("trunk change", "trunk"))
	require.NoError(s.T, repo.PushBranch("origin", "main"))
}

// Run executes the quilt root command in-process and returns everything
// written to stdout, plus the command's execution error.
func (s *Scenario) Run(args ...string) (string, error) {
	s.T.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(s.T, err)
	os.Stdout = w

	captured := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		captured <- buf.String()
	}()

	cmd := cli.NewRootCmd("test", "none", "unknown")
	cmd.SetArgs(args)
	cmd.SetOut(w)
	cmd.SetErr(w)
	execErr := cmd.Execute()

	require.NoError(s.T, w.Close())
	os.Stdout = oldStdout
	return <-captured, execErr
}
