package engine

import (
	"context"
	"fmt"
)

// StepAction classifies what a restack step needs to do
type StepAction string

const (
	// ActionRebaseRequired indicates the branch must be rebased onto its parent
	ActionRebaseRequired StepAction = "rebase-required"
	// ActionAlreadyCurrent indicates the branch is already based on its parent's tip
	ActionAlreadyCurrent StepAction = "already-current"
	// ActionSkippedAncestorFailure indicates the step was abandoned because an
	// ancestor in the same chain failed
	ActionSkippedAncestorFailure StepAction = "skipped-due-to-ancestor-failure"
)

// StepOutcome records what happened to a restack step. Outcomes are
// terminal; a failed step is only reconciled by a later run.
type StepOutcome string

const (
	// OutcomeNotAttempted indicates the step was never executed
	OutcomeNotAttempted StepOutcome = "not-attempted"
	// OutcomeSucceeded indicates the step completed, including the no-op
	// case for already-current branches
	OutcomeSucceeded StepOutcome = "succeeded"
	// OutcomeConflict indicates the rebase could not complete cleanly
	OutcomeConflict StepOutcome = "conflict"
	// OutcomePushRejected indicates the remote moved since it was fetched
	OutcomePushRejected StepOutcome = "push-rejected"
	// OutcomeSkippedAncestorFailure indicates an ancestor's failure made the
	// step pointless
	OutcomeSkippedAncestorFailure StepOutcome = "skipped-due-to-ancestor-failure"
)

// RestackStep is one planned rebase operation. NodeIndex and ParentIndex
// address the owning forest's node table; ParentIndex is -1 for roots.
// Detail carries failure attribution for display.
type RestackStep struct {
	NodeIndex    int
	ParentIndex  int
	PR           PullRequestRef
	ParentBranch string // trunk for roots
	Action       StepAction
	Outcome      StepOutcome
	Detail       string
}

// ChainPlan is the ordered step list for one root's subtree, strictly
// parent-before-child. The executor fills in outcomes; independent chains
// carry no relative order.
type ChainPlan struct {
	RootBranch string
	Steps      []RestackStep
}

// PlanForest computes one ChainPlan per root of the forest. Every node of
// a subtree gets a step. A branch is already-current when its parent's tip
// is an ancestor of its own tip; that test is a single RefSource query per
// node. All descendants of a stale node are scheduled without further
// queries, because their base commits move once the ancestor is rebased.
// Staleness query failures schedule a rebase rather than skip work.
func PlanForest(ctx context.Context, refs RefSource, forest *StackForest) []ChainPlan {
	tips := &tipCache{refs: refs, repo: forest.Repo, tips: make(map[string]string)}
	plans := make([]ChainPlan, 0, len(forest.Roots))
	for _, root := range forest.Roots {
		plan := ChainPlan{RootBranch: forest.Nodes[root].PR.HeadBranch}
		planSubtree(ctx, tips, forest, root, "", &plan)
		plans = append(plans, plan)
	}
	return plans
}

// planSubtree appends the step for node i and recurses into its children in
// pre-order. staleAncestor names the nearest ancestor already scheduled for
// rebase, or is empty.
func planSubtree(ctx context.Context, tips *tipCache, forest *StackForest, i int, staleAncestor string, plan *ChainPlan) {
	n := forest.Node(i)
	parentBranch := forest.Repo.Trunk
	if n.Parent != -1 {
		parentBranch = forest.Nodes[n.Parent].PR.HeadBranch
	}

	step := RestackStep{
		NodeIndex:    i,
		ParentIndex:  n.Parent,
		PR:           n.PR,
		ParentBranch: parentBranch,
		Outcome:      OutcomeNotAttempted,
	}

	switch {
	case staleAncestor != "":
		step.Action = ActionRebaseRequired
		step.Detail = fmt.Sprintf("ancestor %s requires rebase", staleAncestor)
	default:
		current, err := tips.isCurrent(ctx, parentBranch, n.PR.HeadBranch)
		switch {
		case err != nil:
			step.Action = ActionRebaseRequired
			step.Detail = fmt.Sprintf("staleness check failed, scheduling rebase: %v", err)
		case current:
			step.Action = ActionAlreadyCurrent
		default:
			step.Action = ActionRebaseRequired
		}
	}
	plan.Steps = append(plan.Steps, step)

	if step.Action == ActionRebaseRequired && staleAncestor == "" {
		staleAncestor = n.PR.HeadBranch
	}
	for _, child := range n.Children {
		planSubtree(ctx, tips, forest, child, staleAncestor, plan)
	}
}

// tipCache memoizes CurrentTip per branch so a branch shared by several
// staleness checks is resolved once per run.
type tipCache struct {
	refs RefSource
	repo *Repository
	tips map[string]string
}

func (c *tipCache) tip(ctx context.Context, branch string) (string, error) {
	if sha, ok := c.tips[branch]; ok {
		return sha, nil
	}
	sha, err := c.refs.CurrentTip(ctx, c.repo, branch)
	if err != nil {
		return "", err
	}
	c.tips[branch] = sha
	return sha, nil
}

// isCurrent reports whether branch is already based on parent's tip.
func (c *tipCache) isCurrent(ctx context.Context, parent, branch string) (bool, error) {
	parentTip, err := c.tip(ctx, parent)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", parent, err)
	}
	branchTip, err := c.tip(ctx, branch)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", branch, err)
	}
	return c.refs.IsAncestor(ctx, c.repo, parentTip, branchTip)
}
