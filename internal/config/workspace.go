// Package config loads the workspace manifest that names the repositories
// quilt manages.
//
// A workspace is a directory with a quilt.yaml at its root:
//
//	workspace: platform
//	trunk: main
//	repos:
//	  - name: api
//	    url: git@github.com:acme/api.git
//	  - name: web
//	    path: frontends/web
//	    url: https://github.com/acme/web.git
//	    trunk: master
//
// Repository paths are relative to the workspace root and default to the
// repository name. The manifest is discovered by walking up from the
// current directory, so commands work from anywhere inside the workspace.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"quilt.dev/quilt/internal/engine"
	quilterrors "quilt.dev/quilt/internal/errors"
)

// ManifestName is the file that marks a workspace root.
const ManifestName = "quilt.yaml"

// defaultTrunk is assumed when neither the workspace nor the repository
// names one.
const defaultTrunk = "main"

// RepoEntry is one repository in the manifest.
type RepoEntry struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path,omitempty"`
	URL    string `yaml:"url"`
	Trunk  string `yaml:"trunk,omitempty"`
	Remote string `yaml:"remote,omitempty"`
}

// Workspace is the parsed manifest plus the directory it was loaded from.
type Workspace struct {
	Name  string      `yaml:"workspace,omitempty"`
	Trunk string      `yaml:"trunk,omitempty"`
	Repos []RepoEntry `yaml:"repos"`

	root string
}

// Load reads and validates a manifest file.
func Load(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace manifest: %w", err)
	}

	var ws Workspace
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ws); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	ws.root = filepath.Dir(absPath)

	ws.applyDefaults()
	if err := ws.validate(); err != nil {
		return nil, err
	}
	return &ws, nil
}

// FindWorkspaceRoot walks up from startDir looking for a manifest and
// returns the directory containing it.
func FindWorkspaceRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ManifestName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", quilterrors.ErrNoWorkspace
		}
		dir = parent
	}
}

// Discover finds the workspace containing startDir and loads its manifest.
func Discover(startDir string) (*Workspace, error) {
	root, err := FindWorkspaceRoot(startDir)
	if err != nil {
		return nil, err
	}
	return Load(filepath.Join(root, ManifestName))
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

func (w *Workspace) applyDefaults() {
	if w.Trunk == "" {
		w.Trunk = defaultTrunk
	}
	for i := range w.Repos {
		repo := &w.Repos[i]
		if repo.Path == "" {
			repo.Path = repo.Name
		}
		if repo.Trunk == "" {
			repo.Trunk = w.Trunk
		}
		if repo.Remote == "" {
			repo.Remote = "origin"
		}
	}
}

func (w *Workspace) validate() error {
	if len(w.Repos) == 0 {
		return fmt.Errorf("workspace manifest has no repositories")
	}

	seen := make(map[string]bool, len(w.Repos))
	for _, repo := range w.Repos {
		if repo.Name == "" {
			return fmt.Errorf("workspace manifest has a repository without a name")
		}
		if seen[repo.Name] {
			return fmt.Errorf("duplicate repository name %q in workspace manifest", repo.Name)
		}
		seen[repo.Name] = true

		if repo.URL == "" {
			return fmt.Errorf("repository %q has no url", repo.Name)
		}
	}
	return nil
}

// Repositories returns every repository in manifest order, with paths
// resolved against the workspace root.
func (w *Workspace) Repositories() []*engine.Repository {
	repos := make([]*engine.Repository, len(w.Repos))
	for i, entry := range w.Repos {
		repos[i] = &engine.Repository{
			Name:      entry.Name,
			Path:      filepath.Join(w.root, entry.Path),
			RemoteURL: entry.URL,
			Remote:    entry.Remote,
			Trunk:     entry.Trunk,
		}
	}
	return repos
}

// Select returns the named repositories in manifest order; with no names it
// returns all of them.
func (w *Workspace) Select(names []string) ([]*engine.Repository, error) {
	all := w.Repositories()
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]*engine.Repository, len(all))
	for _, repo := range all {
		byName[repo.Name] = repo
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("no repository named %q in workspace", name)
		}
		wanted[name] = true
	}

	var selected []*engine.Repository
	for _, repo := range all {
		if wanted[repo.Name] {
			selected = append(selected, repo)
		}
	}
	return selected, nil
}
