package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-github/v62/github"
)

// MockGitHubServerConfig configures the behavior of a mock GitHub server.
type MockGitHubServerConfig struct {
	Owner string
	Repo  string
	// PRs are returned by the pull request list endpoint, in order.
	PRs []*github.PullRequest
	// CheckRuns maps head SHAs to check runs for that commit.
	CheckRuns map[string][]*github.CheckRun
	// CombinedStatuses maps head SHAs to legacy commit statuses.
	CombinedStatuses map[string]*github.CombinedStatus
	// FailList makes the list endpoint return a server error.
	FailList bool
}

// NewMockGitHubServerConfig creates a mock server config with defaults.
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		Owner:            "owner",
		Repo:             "repo",
		CheckRuns:        make(map[string][]*github.CheckRun),
		CombinedStatuses: make(map[string]*github.CombinedStatus),
	}
}

// NewMockGitHubServer creates an httptest server that mocks the GitHub API
// endpoints used for listing pull requests and reading their check results.
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	if config == nil {
		config = NewMockGitHubServerConfig()
	}
	return NewMockGitHubWorkspaceServer(t, config)
}

// NewMockGitHubWorkspaceServer serves several repositories' endpoints from
// one server, for tests that drive commands across a whole workspace.
func NewMockGitHubWorkspaceServer(t *testing.T, configs ...*MockGitHubServerConfig) *httptest.Server {
	mux := http.NewServeMux()
	for _, config := range configs {
		registerMockRepo(mux, config)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, fmt.Sprintf("unhandled path: %s (method: %s)", r.URL.Path, r.Method), http.StatusNotFound)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(func() { server.Close() })
	return server
}

func registerMockRepo(mux *http.ServeMux, config *MockGitHubServerConfig) {
	pullsPath := "/repos/" + config.Owner + "/" + config.Repo + "/pulls"
	commitsPath := "/repos/" + config.Owner + "/" + config.Repo + "/commits/"

	mux.HandleFunc(pullsPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if config.FailList {
			http.Error(w, "server on fire", http.StatusInternalServerError)
			return
		}

		// Everything fits on one page; no Link header means no next page.
		w.Header().Set("Content-Type", "application/json")
		prs := config.PRs
		if prs == nil {
			prs = []*github.PullRequest{}
		}
		_ = json.NewEncoder(w).Encode(prs)
	})

	mux.HandleFunc(commitsPath, func(w http.ResponseWriter, r *http.Request) {
		// Paths look like /repos/{owner}/{repo}/commits/{sha}/check-runs
		// or /repos/{owner}/{repo}/commits/{sha}/status.
		rest := strings.TrimPrefix(r.URL.Path, commitsPath)
		parts := strings.Split(rest, "/")
		if len(parts) != 2 {
			http.Error(w, fmt.Sprintf("unhandled commits path: %s", r.URL.Path), http.StatusNotFound)
			return
		}
		sha, endpoint := parts[0], parts[1]

		w.Header().Set("Content-Type", "application/json")
		switch endpoint {
		case "check-runs":
			runs := config.CheckRuns[sha]
			_ = json.NewEncoder(w).Encode(&github.ListCheckRunsResults{
				Total:     github.Int(len(runs)),
				CheckRuns: runs,
			})
		case "status":
			status := config.CombinedStatuses[sha]
			if status == nil {
				status = &github.CombinedStatus{}
			}
			_ = json.NewEncoder(w).Encode(status)
		default:
			http.Error(w, fmt.Sprintf("unhandled commits endpoint: %s", endpoint), http.StatusNotFound)
		}
	})
}

// NewMockGitHubClient creates a GitHub client configured to use a mock
// server, plus the owner and repo the server answers for.
func NewMockGitHubClient(t *testing.T, config *MockGitHubServerConfig) (*github.Client, string, string) {
	server := NewMockGitHubServer(t, config)
	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL
	client.UploadURL = baseURL

	return client, config.Owner, config.Repo
}
