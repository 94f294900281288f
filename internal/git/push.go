package git

import (
	"context"
	"errors"
	"strings"

	quilterrors "quilt.dev/quilt/internal/errors"
)

// PushResult represents the result of a guarded force push
type PushResult int

const (
	// PushDone indicates the push was accepted
	PushDone PushResult = iota
	// PushRejected indicates the remote moved since it was last fetched
	PushRejected
)

// ForcePushWithLease force-pushes the branch, but only if the remote still
// points at expectedTip. A lease failure means someone else pushed since the
// last fetch; the push is rejected rather than clobbering their work.
func (r *Repository) ForcePushWithLease(ctx context.Context, remote, branch, expectedTip string) (PushResult, error) {
	lease := "--force-with-lease=" + branch + ":" + expectedTip
	_, err := r.runner.Run(ctx, "push", remote, lease, branch)
	if err == nil {
		return PushDone, nil
	}

	var cmdErr *quilterrors.GitCommandError
	if errors.As(err, &cmdErr) {
		output := cmdErr.Stdout + cmdErr.Stderr
		if strings.Contains(output, "stale info") ||
			strings.Contains(output, "[rejected]") ||
			strings.Contains(output, "[remote rejected]") {
			return PushRejected, quilterrors.ErrStaleRemoteInfo
		}
	}
	return PushRejected, err
}
