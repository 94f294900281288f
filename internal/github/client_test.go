package github_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"quilt.dev/quilt/internal/github"
)

func TestParseGitHubRemoteURL(t *testing.T) {
	t.Run("parses HTTPS github.com URL", func(t *testing.T) {
		info, err := github.ParseGitHubRemoteURL("https://github.com/owner/repo.git")
		require.NoError(t, err)
		require.Equal(t, "github.com", info.Hostname)
		require.Equal(t, "owner", info.Owner)
		require.Equal(t, "repo", info.Repo)
	})

	t.Run("parses SSH github.com URL", func(t *testing.T) {
		info, err := github.ParseGitHubRemoteURL("git@github.com:owner/repo.git")
		require.NoError(t, err)
		require.Equal(t, "github.com", info.Hostname)
		require.Equal(t, "owner", info.Owner)
		require.Equal(t, "repo", info.Repo)
	})

	t.Run("parses URLs without the .git suffix", func(t *testing.T) {
		info, err := github.ParseGitHubRemoteURL("https://github.com/owner/repo")
		require.NoError(t, err)
		require.Equal(t, "repo", info.Repo)
	})

	t.Run("parses GitHub Enterprise URLs", func(t *testing.T) {
		info, err := github.ParseGitHubRemoteURL("git@github.company.com:owner/repo.git")
		require.NoError(t, err)
		require.Equal(t, "github.company.com", info.Hostname)
		require.Equal(t, "owner", info.Owner)
		require.Equal(t, "repo", info.Repo)

		info, err = github.ParseGitHubRemoteURL("https://github.company.com/owner/repo.git")
		require.NoError(t, err)
		require.Equal(t, "github.company.com", info.Hostname)
	})

	t.Run("handles URLs with whitespace", func(t *testing.T) {
		info, err := github.ParseGitHubRemoteURL("  https://github.com/owner/repo.git  ")
		require.NoError(t, err)
		require.Equal(t, "owner", info.Owner)
	})

	t.Run("returns error for invalid SSH URL format", func(t *testing.T) {
		info, err := github.ParseGitHubRemoteURL("git@github.com")
		require.Error(t, err)
		require.Nil(t, info)
		require.Contains(t, err.Error(), "invalid SSH remote URL")
	})

	t.Run("returns error for invalid HTTPS URL format", func(t *testing.T) {
		info, err := github.ParseGitHubRemoteURL("https://github.com")
		require.Error(t, err)
		require.Nil(t, info)
		require.Contains(t, err.Error(), "invalid HTTPS remote URL")
	})

	t.Run("returns error for empty URL", func(t *testing.T) {
		info, err := github.ParseGitHubRemoteURL("")
		require.Error(t, err)
		require.Nil(t, info)
	})
}

func TestGetToken(t *testing.T) {
	t.Run("prefers the GITHUB_TOKEN environment variable", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "env-token")

		token, err := github.GetToken(context.Background())
		require.NoError(t, err)
		require.Equal(t, "env-token", token)
	})
}
