package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/conflict"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/engine"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/output"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/strategies/auth"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/strategies/binding"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/strategies/resource"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/strategies/tool"
)

// AddCmd creates the `add` command group: incremental, transactional
// additions to an existing project.
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a capability to an existing project",
		Long: `Add tools, resources, authentication or bindings to an existing project.

Each subcommand runs as a transaction: the project is snapshotted first,
the change is applied and validated, and on any failure the snapshot is
restored byte-for-byte.`,
	}

	cmd.AddCommand(addToolCmd())
	cmd.AddCommand(addResourceCmd())
	cmd.AddCommand(addAuthCmd())
	cmd.AddCommand(addBindingCmd())
	return cmd
}

// mutationFlags are the flags shared by every add subcommand.
type mutationFlags struct {
	skipBackup bool
	dryRun     bool
	force      bool
	skip       bool
	diff       bool
}

func (f *mutationFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.skipBackup, "skip-backup", false, "Do not snapshot before mutating (no rollback on failure)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Validate the request without writing anything")
}

// registerConflict adds the conflict flag triple. Only subcommands that
// generate a module file and run the conflict flow get these.
func (f *mutationFlags) registerConflict(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.force, "force", false, "Overwrite an existing file without prompting")
	cmd.Flags().BoolVar(&f.skip, "skip", false, "Keep an existing file without prompting")
	cmd.Flags().BoolVar(&f.diff, "diff", false, "Show a diff before the conflict prompt")
}

func (f *mutationFlags) engineOptions() engine.Options {
	return engine.Options{SkipBackup: f.skipBackup, DryRun: f.dryRun}
}

// resolveConflict runs the pre-transaction conflict flow for one target
// file. It returns (proceed, force): proceed false means the user chose
// to keep the existing file or cancelled, and the command should exit
// cleanly without mutating anything.
func resolveConflict(flags *mutationFlags, fileRel string, generated []byte) (bool, bool, error) {
	root, err := os.Getwd()
	if err != nil {
		return false, false, err
	}
	path := filepath.Join(root, fileRel)

	existing, exists, err := conflict.ReadExisting(path)
	if err != nil {
		return false, false, fmt.Errorf("reading %s: %w", fileRel, err)
	}
	if !exists {
		return true, flags.force, nil
	}

	resolver, err := conflict.NewResolver(flags.force, flags.skip, flags.diff)
	if err != nil {
		return false, false, err
	}
	res, err := resolver.Resolve(fileRel, existing, generated)
	if err != nil {
		return false, false, err
	}
	switch res {
	case conflict.Overwrite:
		return true, true, nil
	case conflict.Skip:
		output.Info(fmt.Sprintf("keeping existing %s", fileRel))
		return false, false, nil
	default:
		output.Info("cancelled, nothing was changed")
		return false, false, nil
	}
}

func addToolCmd() *cobra.Command {
	var flags mutationFlags
	var description string
	var params []string

	cmd := &cobra.Command{
		Use:   "tool [name]",
		Short: "Generate a tool and register it with the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := tool.Config{Name: args[0], Description: description}
			for _, raw := range params {
				name, typ, optional, err := parseParam(raw)
				if err != nil {
					return err
				}
				cfg.Params = append(cfg.Params, tool.Param{Name: name, Type: typ, Optional: optional})
			}

			s := tool.New()
			if !flags.dryRun {
				generated, err := s.Preview(cfg)
				if err != nil {
					return err
				}
				proceed, force, err := resolveConflict(&flags, s.FileRel(cfg), generated)
				if err != nil {
					return err
				}
				if !proceed {
					return nil
				}
				cfg.Force = force
			}

			return runStrategy(cmd.Context(), cfg, s, flags.engineOptions())
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Tool description shown to MCP clients")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Tool parameter as name:type (append ? for optional), repeatable")
	flags.register(cmd)
	flags.registerConflict(cmd)
	return cmd
}

func addResourceCmd() *cobra.Command {
	var flags mutationFlags
	var description string
	var uri string

	cmd := &cobra.Command{
		Use:   "resource [name]",
		Short: "Generate a resource and register it with the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resource.Config{Name: args[0], Description: description, URITemplate: uri}

			s := resource.New()
			if !flags.dryRun {
				generated, err := s.Preview(cfg)
				if err != nil {
					return err
				}
				proceed, force, err := resolveConflict(&flags, s.FileRel(cfg), generated)
				if err != nil {
					return err
				}
				if !proceed {
					return nil
				}
				cfg.Force = force
			}

			return runStrategy(cmd.Context(), cfg, s, flags.engineOptions())
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Resource description shown to MCP clients")
	cmd.Flags().StringVar(&uri, "uri", "", "Resource URI template (default <name>://{id})")
	flags.register(cmd)
	flags.registerConflict(cmd)
	return cmd
}

func addAuthCmd() *cobra.Command {
	var flags mutationFlags
	var scheme string
	var skipWiring bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Generate authentication middleware and guard the server",
		Long: `Generate src/auth/middleware.ts and wire the auth guard into the entry
point. With --skip-wiring only the middleware file is created, which
needs no snapshot: nothing existing is touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := auth.Config{Scheme: scheme, SkipWiring: skipWiring, Force: flags.force}
			return runStrategy(cmd.Context(), cfg, auth.New(cfg), flags.engineOptions())
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", "bearer", "Auth scheme: bearer or apikey")
	cmd.Flags().BoolVar(&skipWiring, "skip-wiring", false, "Create the middleware file only, without touching the entry point")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Replace an existing middleware file")
	flags.register(cmd)
	return cmd
}

func addBindingCmd() *cobra.Command {
	var flags mutationFlags
	var bindingType string

	cmd := &cobra.Command{
		Use:   "binding [NAME]",
		Short: "Declare a typed environment binding",
		Long: `Declare a binding in mcpkit.yml and expose it through the typed Env
accessors in src/types.ts. Binding names are SCREAMING_SNAKE_CASE; the
same name cannot be declared twice.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := binding.Config{Name: args[0], Type: bindingType}
			return runStrategy(cmd.Context(), cfg, binding.New(), flags.engineOptions())
		},
	}

	cmd.Flags().StringVarP(&bindingType, "type", "t", "kv", "Binding type: kv, queue, d1, r2 or secret")
	flags.register(cmd)
	return cmd
}
