// Package runtime provides the execution context for quilt commands.
//
// It encapsulates shared dependencies needed by commands, such as the
// discovered workspace, the logger, and engine wiring.
package runtime
