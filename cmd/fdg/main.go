// Package main implements the flow-dep-graph CLI (fdg).
// It renders a module dependency graph as a lazily expanded tree, either
// interactively or as plain text.
package main

import (
	"os"

	"github.com/l3aro/flow-dep-graph/cmd/fdg/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Flags().BoolP("version", "V", false, "Print version information")
	commands.RootCmd.SetVersionTemplate(`fdg version {{.Version}}
`)
	commands.RootCmd.Version = version

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
