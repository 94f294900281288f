package git

import (
	"context"
	"fmt"
)

// FetchBranch updates the remote-tracking ref for one branch and returns
// the remote tip that was observed. The returned SHA is the lease for a
// later force-push of the same branch.
func (r *Repository) FetchBranch(ctx context.Context, remote, branch string) (string, error) {
	if _, err := r.runner.Run(ctx, "fetch", remote, branch); err != nil {
		return "", fmt.Errorf("failed to fetch %s from %s: %w", branch, remote, err)
	}

	tip, err := r.runner.Run(ctx, "rev-parse", fmt.Sprintf("refs/remotes/%s/%s", remote, branch))
	if err != nil {
		return "", fmt.Errorf("failed to resolve fetched tip of %s: %w", branch, err)
	}
	return tip, nil
}
