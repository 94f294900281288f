// Package engine builds pull request stack graphs and restacks them.
//
// It is the core of quilt, responsible for:
//   - Converting each repository's open pull requests into a forest of
//     dependency chains (Stack Graph Builder)
//   - Computing the ordered rebase operations each chain needs, including
//     no-op detection (Restack Planner)
//   - Executing those operations with strict ordering and failure
//     containment (Restack Executor)
//   - Aggregating per-repository, per-chain outcomes into a single report
//
// The engine holds no durable state: every run starts from live pull
// request and git ref queries, provided through the PRSource and RefSource
// interfaces, and ends with a Report. Git and GitHub access live in their
// own packages; the engine is testable with in-memory fakes.
package engine
