package output

import (
	"strconv"
	"strings"

	"quilt.dev/quilt/internal/engine"
)

// TreeRenderOptions controls stack forest rendering
type TreeRenderOptions struct {
	// CurrentBranch is drawn with a filled circle
	CurrentBranch string
	// Labels holds extra per-branch annotations, keyed by head branch
	Labels map[string]string
	// Plain disables glyph and name styling
	Plain bool
}

// RenderStackForest renders one repository's pull request forest as a
// vertical tree: children above their parents, the trunk on the last line.
// A node's first child continues its lane; later siblings open lanes to
// the right and are joined back on a branching line above the parent.
func RenderStackForest(f *engine.StackForest, opts TreeRenderOptions) []string {
	r := &forestRenderer{forest: f, opts: opts}

	var lines []string
	for i, root := range f.Roots {
		lines = append(lines, r.subtreeLines(root, i)...)
	}
	if len(f.Roots) > 1 {
		lines = append(lines, r.branchingLine(0, len(f.Roots)))
	}
	lines = append(lines, r.trunkLine())
	return lines
}

type forestRenderer struct {
	forest *engine.StackForest
	opts   TreeRenderOptions
}

// subtreeLines renders the node's children above the node itself. Sibling
// lanes are positional: child i sits at indent+i, which keeps the layout
// identical across runs because children are ordered by pull request
// number.
func (r *forestRenderer) subtreeLines(i, indent int) []string {
	n := r.forest.Node(i)

	var lines []string
	for c, child := range n.Children {
		lines = append(lines, r.subtreeLines(child, indent+c)...)
	}
	if len(n.Children) > 1 {
		lines = append(lines, r.branchingLine(indent, len(n.Children)))
	}
	lines = append(lines, r.branchLine(n, indent))
	return lines
}

// branchingLine joins count sibling lanes back into the parent lane.
func (r *forestRenderer) branchingLine(indent, count int) string {
	var b strings.Builder
	b.WriteString(r.lanePrefix(indent))
	b.WriteString(r.lane("├─", indent))
	for lane := 1; lane < count-1; lane++ {
		b.WriteString(r.lane("┴─", indent+lane))
	}
	b.WriteString(r.lane("┘", indent+count-1))
	return b.String()
}

func (r *forestRenderer) branchLine(n *engine.StackNode, indent int) string {
	branch := n.PR.HeadBranch

	var b strings.Builder
	b.WriteString(r.lanePrefix(indent))
	b.WriteString(r.lane(r.circle(branch)+"▸", indent))
	b.WriteString(r.name(branch))
	b.WriteString(" ")
	b.WriteString(r.prNumber(n.PR.Number))
	if n.PR.Checks != engine.ChecksUnknown {
		b.WriteString(" ")
		b.WriteString(r.checks(n.PR.Checks))
	}
	if label := r.opts.Labels[branch]; label != "" {
		b.WriteString(" ")
		b.WriteString(r.dim("(" + label + ")"))
	}
	return b.String()
}

func (r *forestRenderer) trunkLine() string {
	trunk := r.forest.Repo.Trunk
	return r.lane(r.circle(trunk)+"▸", 0) + r.name(trunk)
}

// lanePrefix draws the pass-through lanes left of a node at the given
// indent, one two-cell column per lane.
func (r *forestRenderer) lanePrefix(indent int) string {
	var b strings.Builder
	for lane := 0; lane < indent; lane++ {
		b.WriteString(r.lane("│ ", lane))
	}
	return b.String()
}

func (r *forestRenderer) circle(branch string) string {
	if branch == r.opts.CurrentBranch {
		return "◉"
	}
	return "◯"
}

func (r *forestRenderer) lane(text string, lane int) string {
	if r.opts.Plain {
		return text
	}
	return LaneColor(text, lane)
}

func (r *forestRenderer) name(branch string) string {
	if r.opts.Plain {
		return branch
	}
	return ColorBranchName(branch, branch == r.opts.CurrentBranch)
}

func (r *forestRenderer) prNumber(number int) string {
	if r.opts.Plain {
		return "#" + strconv.Itoa(number)
	}
	return ColorPRNumber(number)
}

func (r *forestRenderer) checks(checks engine.CheckStatus) string {
	if r.opts.Plain {
		return string(checks)
	}
	return CheckGlyph(checks)
}

func (r *forestRenderer) dim(text string) string {
	if r.opts.Plain {
		return text
	}
	return ColorDim(text)
}

