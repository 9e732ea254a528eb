package main

import (
	"os"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/commands"
)

func main() {
	root := commands.RootCmd()
	root.AddCommand(commands.NewCmd())
	root.AddCommand(commands.AddCmd())
	root.AddCommand(commands.SnapshotsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
