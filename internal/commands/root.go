package commands

import (
	"github.com/spf13/cobra"

	mcpkit "github.com/mikec-ai/mcp-server-kit-sub002"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/output"
)

// RootCmd creates and returns the root command for the mcpkit CLI.
func RootCmd() *cobra.Command {
	var verbose bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "mcpkit",
		Short: "Scaffold and evolve MCP server projects",
		Long: `mcpkit generates TypeScript MCP server projects and safely evolves them.

Every mutating command is transactional: it either lands cleanly and passes
post-mutation validation, or your project is restored byte-for-byte.

• Scaffold a server with sensible defaults
• Add tools, resources, auth and bindings incrementally
• Inspect and recover from snapshots when something goes wrong`,
		Version:       mcpkit.Version,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
			output.SetJSON(jsonOut)
			if jsonOut {
				cmd.Root().SilenceErrors = true
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit a machine-readable result object")

	return cmd
}
