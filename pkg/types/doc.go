// Package types defines the page model, snapshot and history-task values,
// the PageStore interface, and standard error types for the boardtree
// editor core.
// See docs/ARCHITECTURE.md § Package layout.
package types
