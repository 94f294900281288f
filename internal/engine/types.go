package engine

import "fmt"

// Repository identifies one sub-project inside a workspace. It is immutable
// for the duration of a run and owned by the caller.
type Repository struct {
	Name      string
	Path      string // local working copy
	RemoteURL string
	Remote    string // remote name, usually "origin"
	Trunk     string // default integration branch, usually "main"
}

func (r *Repository) String() string {
	return r.Name
}

// PRState represents the review state of a pull request
type PRState string

const (
	// PRStateOpen indicates the pull request is open
	PRStateOpen PRState = "open"
	// PRStateClosed indicates the pull request was closed without merging
	PRStateClosed PRState = "closed"
	// PRStateMerged indicates the pull request was merged
	PRStateMerged PRState = "merged"
)

// CheckStatus represents the aggregate check status of a pull request
type CheckStatus string

const (
	// ChecksPassing indicates every check run concluded successfully
	ChecksPassing CheckStatus = "passing"
	// ChecksFailing indicates at least one check run failed or errored
	ChecksFailing CheckStatus = "failing"
	// ChecksPending indicates at least one check run has not concluded
	ChecksPending CheckStatus = "pending"
	// ChecksUnknown indicates no check information was available
	ChecksUnknown CheckStatus = "unknown"
)

// PullRequestRef is a point-in-time snapshot of one pull request. It is
// fetched fresh at the start of each run and never mutated afterwards.
type PullRequestRef struct {
	Number     int
	Title      string
	HeadBranch string
	BaseBranch string
	State      PRState
	Checks     CheckStatus
	URL        string
	Repo       *Repository
}

func (pr PullRequestRef) String() string {
	return fmt.Sprintf("#%d (%s -> %s)", pr.Number, pr.HeadBranch, pr.BaseBranch)
}

// StackNode wraps one pull request inside a stack forest. Parent and
// Children hold indices into the owning forest's node table; Parent is -1
// for roots, whose base branch is the repository trunk.
type StackNode struct {
	PR       PullRequestRef
	Parent   int
	Children []int
}

// IsRoot returns true if the node's base branch is the repository trunk.
func (n *StackNode) IsRoot() bool {
	return n.Parent == -1
}

// StackForest holds the dependency forest of one repository's open pull
// requests. Nodes is an index-addressed table; Roots lists the indices of
// nodes whose base branch is the trunk. Node references are indices rather
// than pointers so the structure stays acyclic and cheap to copy.
type StackForest struct {
	Repo  *Repository
	Nodes []StackNode
	Roots []int
}

// Node returns the node at the given index.
func (f *StackForest) Node(i int) *StackNode {
	return &f.Nodes[i]
}

// Size returns the number of nodes in the forest.
func (f *StackForest) Size() int {
	return len(f.Nodes)
}

// Walk visits every node of the subtree rooted at the given index in
// pre-order, parents before children.
func (f *StackForest) Walk(root int, visit func(i int, n *StackNode)) {
	visit(root, &f.Nodes[root])
	for _, child := range f.Nodes[root].Children {
		f.Walk(child, visit)
	}
}

// Orphan records an open pull request whose base branch is neither the
// trunk nor the head of another tracked open pull request. Orphans are
// excluded from the forest but always surfaced as warnings.
type Orphan struct {
	PR     PullRequestRef
	Reason string
}

func (o Orphan) String() string {
	return fmt.Sprintf("%s: %s", o.PR, o.Reason)
}
