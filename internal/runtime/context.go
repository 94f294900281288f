package runtime

import (
	"errors"
	"fmt"
	"os"

	"quilt.dev/quilt/internal/config"
	"quilt.dev/quilt/internal/engine"
	quilterrors "quilt.dev/quilt/internal/errors"
	"quilt.dev/quilt/internal/git"
	"quilt.dev/quilt/internal/github"
	"quilt.dev/quilt/internal/output"
)

// Context provides access to the workspace, output and engine wiring for
// commands.
type Context struct {
	Workspace *config.Workspace
	Splog     *output.Splog
}

// NewContext creates a context over an already-loaded workspace.
func NewContext(ws *config.Workspace) *Context {
	return &Context{
		Workspace: ws,
		Splog:     output.NewSplog(),
	}
}

// GetContext discovers the workspace by walking up from the current
// directory and wires the logger.
func GetContext() (*Context, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	ws, err := config.Discover(cwd)
	if err != nil {
		if errors.Is(err, quilterrors.ErrNoWorkspace) {
			return nil, fmt.Errorf("no %s found in %s or any parent directory", config.ManifestName, cwd)
		}
		return nil, err
	}

	return NewContext(ws), nil
}

// NewEngine wires an engine over fresh sources. The git source carries a
// per-run rebase memo, so one engine serves exactly one run.
func (c *Context) NewEngine() *engine.Engine {
	return engine.New(git.NewRefSource(), github.NewSource())
}

// NewPRSource creates a GitHub source for read-only listing commands.
func (c *Context) NewPRSource(opts ...github.Option) engine.PRSource {
	return github.NewSource(opts...)
}
