package engine

import (
	"fmt"
	"sort"

	quilterrors "quilt.dev/quilt/internal/errors"
)

// BuildForest converts a repository's pull requests into a stack forest.
// Closed and merged pull requests are filtered out and returned as the
// inactive list. Open pull requests whose base branch is neither the trunk
// nor the head of another open pull request become orphans, together with
// everything stacked on top of them; orphans are excluded from the forest
// but always reported. A cycle in the base references fails the whole
// repository with a *errors.CycleError.
func BuildForest(repo *Repository, prs []PullRequestRef) (*StackForest, []Orphan, []PullRequestRef, error) {
	var open, inactive []PullRequestRef
	for _, pr := range prs {
		if pr.State == PRStateOpen {
			open = append(open, pr)
		} else {
			inactive = append(inactive, pr)
		}
	}
	// Number order keeps sibling and root ordering stable across runs.
	sort.Slice(open, func(i, j int) bool { return open[i].Number < open[j].Number })
	sort.Slice(inactive, func(i, j int) bool { return inactive[i].Number < inactive[j].Number })

	byHead := make(map[string]int, len(open))
	nodes := make([]StackNode, len(open))
	for i, pr := range open {
		nodes[i] = StackNode{PR: pr, Parent: -1}
		byHead[pr.HeadBranch] = i
	}

	// Resolve parents. Orphan reasons are recorded now, membership of
	// orphan subtrees below.
	orphanReason := make(map[int]string)
	for i := range nodes {
		base := nodes[i].PR.BaseBranch
		if base == repo.Trunk {
			continue
		}
		if parent, ok := byHead[base]; ok {
			nodes[i].Parent = parent
			nodes[parent].Children = append(nodes[parent].Children, i)
			continue
		}
		orphanReason[i] = fmt.Sprintf("base branch %q is neither trunk %q nor an open pull request head", base, repo.Trunk)
	}

	if err := detectCycles(repo, nodes); err != nil {
		return nil, nil, inactive, err
	}

	// A pull request stacked on an orphan cannot be restacked either; the
	// whole subtree is orphaned so nothing is silently dropped.
	excluded := make([]bool, len(nodes))
	var orphans []Orphan
	for i := range nodes {
		reason, ok := orphanReason[i]
		if !ok {
			continue
		}
		walkSubtree(nodes, i, func(j int) {
			if excluded[j] {
				return
			}
			excluded[j] = true
			if j != i {
				reason = fmt.Sprintf("stacked on orphaned branch %q", nodes[i].PR.HeadBranch)
			}
			orphans = append(orphans, Orphan{PR: nodes[j].PR, Reason: reason})
		})
	}

	forest := compactForest(repo, nodes, excluded)
	return forest, orphans, inactive, nil
}

// detectCycles walks upward from every node with a per-walk visited set.
// Nodes proven acyclic in an earlier walk are skipped. A revisit within one
// walk is a cycle; the error names the cycle members in walk order.
func detectCycles(repo *Repository, nodes []StackNode) error {
	done := make([]bool, len(nodes))
	for start := range nodes {
		if done[start] {
			continue
		}
		visited := make(map[int]int) // node index -> position in path
		var path []int
		for i := start; i != -1; i = nodes[i].Parent {
			if done[i] {
				break
			}
			if at, seen := visited[i]; seen {
				branches := make([]string, 0, len(path)-at)
				for _, j := range path[at:] {
					branches = append(branches, nodes[j].PR.HeadBranch)
				}
				return quilterrors.NewCycleError(repo.Name, branches)
			}
			visited[i] = len(path)
			path = append(path, i)
		}
		for _, i := range path {
			done[i] = true
		}
	}
	return nil
}

// walkSubtree visits i and all its descendants in pre-order.
func walkSubtree(nodes []StackNode, i int, visit func(int)) {
	visit(i)
	for _, child := range nodes[i].Children {
		walkSubtree(nodes, child, visit)
	}
}

// compactForest drops excluded nodes and remaps parent/child indices onto
// the surviving node table. Input order is preserved, so roots and sibling
// lists stay sorted by pull request number.
func compactForest(repo *Repository, nodes []StackNode, excluded []bool) *StackForest {
	remap := make([]int, len(nodes))
	forest := &StackForest{Repo: repo}
	for i := range nodes {
		if excluded[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(forest.Nodes)
		forest.Nodes = append(forest.Nodes, StackNode{PR: nodes[i].PR, Parent: -1})
	}
	for i := range nodes {
		if excluded[i] {
			continue
		}
		n := &forest.Nodes[remap[i]]
		if parent := nodes[i].Parent; parent != -1 {
			n.Parent = remap[parent]
		} else {
			forest.Roots = append(forest.Roots, remap[i])
		}
		for _, child := range nodes[i].Children {
			if !excluded[child] {
				n.Children = append(n.Children, remap[child])
			}
		}
	}
	return forest
}
