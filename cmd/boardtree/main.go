// Command boardtree is the CLI entry point for inspecting and maintaining
// page-tree documents.
package main

import "github.com/dukaforge/boardtree/internal/cli"

func main() {
	cli.Execute()
}
