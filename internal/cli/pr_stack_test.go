package cli_test

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"quilt.dev/quilt/internal/cli"
	"quilt.dev/quilt/testhelpers/scenario"
)

func TestPRStack(t *testing.T) {
	t.Run("draws the forest with the checked-out branch marked", func(t *testing.T) {
		s := scenario.New(t, "api", "web")
		s.StackPR("api", 1, "a", "main")
		s.StackPR("api", 2, "b", "a") // leaves the working copy on b

		out, err := s.Run("pr", "stack")
		require.NoError(t, err)

		require.Contains(t, out, "◉▸b #2\n◯▸a #1\n◯▸main\n")
		require.Contains(t, out, "no open pull requests") // web
	})

	t.Run("lays sibling branches out in their own lanes", func(t *testing.T) {
		s := scenario.New(t, "api")
		s.AddOpenPR("api", 1, "a", "main")
		s.AddOpenPR("api", 2, "b", "a")
		s.AddOpenPR("api", 3, "c", "a")

		out, err := s.Run("pr", "stack")
		require.NoError(t, err)

		require.Contains(t, out, "◯▸b #2\n│ ◯▸c #3\n├─┘\n◯▸a #1\n◉▸main\n")
	})

	t.Run("warns about orphaned pull requests", func(t *testing.T) {
		s := scenario.New(t, "api")
		s.AddOpenPR("api", 1, "a", "main")
		s.AddOpenPR("api", 20, "zombie", "ghost")

		out, err := s.Run("pr", "stack")
		require.NoError(t, err)

		require.Contains(t, out, "◯▸a #1")
		require.Contains(t, out, "cannot stack #20 (zombie -> ghost)")
		require.Contains(t, out, `base branch "ghost"`)
	})

	t.Run("reports a cycle instead of a forest", func(t *testing.T) {
		s := scenario.New(t, "api")
		s.AddOpenPR("api", 1, "a", "b")
		s.AddOpenPR("api", 2, "b", "a")

		out, err := s.Run("pr", "stack")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to read 1 of 1 repositories")
		require.Contains(t, out, "cycle in pull request stack for api")
	})
}

func TestPRStackOutsideWorkspace(t *testing.T) {
	dir := t.TempDir()
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldDir) })

	cmd := cli.NewRootCmd("test", "none", "unknown")
	cmd.SetArgs([]string{"pr", "stack"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err = cmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "no quilt.yaml found in")
}
