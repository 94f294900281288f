package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Scene is a temporary multi-repository workspace for integration tests.
// Every repository added to the scene gets its own bare origin, so fetch and
// push behave the way they would against a real remote.
type Scene struct {
	Dir     string
	Repos   map[string]*GitRepo
	Remotes map[string]string
}

// NewScene creates an empty workspace in a temporary directory. The
// directory is removed on cleanup unless DEBUG is set.
func NewScene(t *testing.T) *Scene {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "quilt-test-*")
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("DEBUG") == "" {
			os.RemoveAll(tmpDir)
		}
	})

	return &Scene{
		Dir:     tmpDir,
		Repos:   make(map[string]*GitRepo),
		Remotes: make(map[string]string),
	}
}

// AddRepo creates a repository with one commit on main, pushed to a fresh
// bare origin.
func (s *Scene) AddRepo(t *testing.T, name string) *GitRepo {
	t.Helper()

	repo, err := NewGitRepo(filepath.Join(s.Dir, name))
	require.NoError(t, err)
	require.NoError(t, repo.CreateChangeAndCommit("initial", "init"))

	remote, err := repo.CreateBareRemote("origin")
	require.NoError(t, err)
	require.NoError(t, repo.PushBranch("origin", "main"))

	s.Repos[name] = repo
	s.Remotes[name] = remote
	return repo
}

// CloneRepo makes an additional working copy of a repository's origin, for
// simulating pushes from another machine.
func (s *Scene) CloneRepo(t *testing.T, name, as string) *GitRepo {
	t.Helper()

	remote, ok := s.Remotes[name]
	require.True(t, ok, "no repository named %s in scene", name)

	repo, err := CloneGitRepo(filepath.Join(s.Dir, as), remote)
	require.NoError(t, err)
	return repo
}

// WriteFile writes a file relative to the workspace root.
func (s *Scene) WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(s.Dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// Chdir changes the working directory to the workspace root for the duration
// of the test. Not safe for parallel tests.
func (s *Scene) Chdir(t *testing.T) {
	t.Helper()

	oldDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(s.Dir))

	t.Cleanup(func() {
		_ = os.Chdir(oldDir)
	})
}

// StackBranch creates a branch on top of the current HEAD with one commit
// and pushes it to origin. The working copy is left on the new branch.
func StackBranch(t *testing.T, repo *GitRepo, name string) {
	t.Helper()

	require.NoError(t, repo.CreateAndCheckoutBranch(name))
	require.NoError(t, repo.CreateChangeAndCommit(name+" change", name))
	require.NoError(t, repo.PushBranch("origin", name))
}
