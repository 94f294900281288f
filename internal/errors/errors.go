// Package errors provides sentinel errors and custom error types for the quilt application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrStaleRemoteInfo indicates that a force push was rejected because the
	// remote branch moved since it was last fetched
	ErrStaleRemoteInfo = errors.New("remote branch has newer commits")

	// ErrNoWorkspace indicates that no workspace manifest was found in the
	// current directory or any of its parents
	ErrNoWorkspace = errors.New("no quilt workspace found")

	// ErrStackCycle indicates that pull request base references form a cycle
	ErrStackCycle = errors.New("pull request stack contains a cycle")
)

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// CycleError represents a structural error where pull request base branches
// refer back to one of their own descendants. Branches lists the members of
// the cycle in the order they were discovered.
type CycleError struct {
	Repo     string
	Branches []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle in pull request stack for %s: %s",
		e.Repo, strings.Join(e.Branches, " -> "))
}

// Is returns true if the target error is ErrStackCycle
func (e *CycleError) Is(target error) bool {
	return target == ErrStackCycle
}

// NewCycleError creates a new CycleError
func NewCycleError(repo string, branches []string) *CycleError {
	return &CycleError{Repo: repo, Branches: branches}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
