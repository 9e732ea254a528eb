package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/output"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/project"
)

// NewCmd creates and returns the 'new' command for scaffolding projects.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Create a new MCP server project",
		Long: `Creates a new MCP server project with:
• Project manifest (mcpkit.yml)
• TypeScript entry point with managed anchor sections
• Env typing for runtime bindings
• package.json and tsconfig.json

Example:
  mcpkit new myserver`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}

			output.Verbose(fmt.Sprintf("creating MCP server project: %s", name))

			scaffolder := project.NewScaffolder()
			if err := scaffolder.Scaffold(cmd.Context(), cwd, name); err != nil {
				return err
			}

			output.Success(fmt.Sprintf("Created MCP server project: %s", name))
			output.Info("Next steps:")
			output.Step(fmt.Sprintf("cd %s", name))
			output.Step("npm install")
			output.Step("mcpkit add tool my_first_tool")
			return nil
		},
	}

	return cmd
}
