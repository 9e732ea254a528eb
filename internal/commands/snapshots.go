package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/output"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/snapshot"
)

// SnapshotsCmd creates the `snapshots` command group for forensic
// recovery: listing, restoring and deleting snapshots left behind by
// failed rollbacks or --skip-backup runs interrupted midway.
func SnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snapshot"},
		Short:   "Inspect and recover from leftover snapshots",
		Long: `Snapshots are plain directories named .backup-<operation>-<timestamp> at
the project root. A successful operation removes its snapshot; one left
behind means an operation failed in a way that needs attention.`,
	}

	cmd.AddCommand(snapshotsListCmd())
	cmd.AddCommand(snapshotsRestoreCmd())
	cmd.AddCommand(snapshotsDeleteCmd())
	return cmd
}

func snapshotsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots at the project root, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}
			handles, err := snapshot.List(root)
			if err != nil {
				return err
			}
			if len(handles) == 0 {
				output.Info("no snapshots found")
				return nil
			}
			output.Info(fmt.Sprintf("%d snapshot(s):", len(handles)))
			for i, h := range handles {
				output.Step(fmt.Sprintf("[%d] %s  %s  %s", i, h.CreatedAt.Format("2006-01-02 15:04:05"), h.Purpose, h.Path))
			}
			return nil
		},
	}
}

func snapshotsRestoreCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore [index]",
		Short: "Restore the project from a snapshot",
		Long: `Restore the project from the snapshot at the given index (from
"snapshots list", default 0 = newest). Restore replaces src/ wholesale:
changes made after the snapshot was taken are lost.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}
			h, err := pickSnapshot(root, args)
			if err != nil {
				return err
			}

			if !yes {
				confirmed := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Restore from %s? This replaces src/ with the snapshot contents.", h.Path),
					Default: false,
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					output.Info("restore cancelled")
					return nil
				}
			}

			store := snapshot.NewStore(h.Purpose)
			if err := store.Restore(h, root); err != nil {
				return err
			}
			output.Success("project restored from " + h.Path)
			output.Info("the snapshot was kept; delete it with `mcpkit snapshots delete` once verified")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func snapshotsDeleteCmd() *cobra.Command {
	var yes bool
	var all bool

	cmd := &cobra.Command{
		Use:   "delete [index]",
		Short: "Delete a snapshot (or all of them with --all)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}

			var targets []snapshot.Handle
			if all {
				handles, err := snapshot.List(root)
				if err != nil {
					return err
				}
				if len(handles) == 0 {
					output.Info("no snapshots found")
					return nil
				}
				targets = handles
			} else {
				h, err := pickSnapshot(root, args)
				if err != nil {
					return err
				}
				targets = []snapshot.Handle{*h}
			}

			if !yes {
				confirmed := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Delete %d snapshot(s)? Rollback to them becomes impossible.", len(targets)),
					Default: false,
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					output.Info("delete cancelled")
					return nil
				}
			}

			for _, h := range targets {
				store := snapshot.NewStore(h.Purpose)
				if err := store.Remove(&h); err != nil {
					return err
				}
				output.Step("deleted " + h.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&all, "all", false, "Delete every snapshot at the project root")
	return cmd
}

// pickSnapshot resolves an optional index argument against the snapshot
// list, defaulting to the newest.
func pickSnapshot(root string, args []string) (*snapshot.Handle, error) {
	handles, err := snapshot.List(root)
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, fmt.Errorf("no snapshots found at %s", root)
	}

	idx := 0
	if len(args) == 1 {
		idx, err = strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot index %q", args[0])
		}
	}
	if idx < 0 || idx >= len(handles) {
		return nil, fmt.Errorf("snapshot index %d out of range (0..%d)", idx, len(handles)-1)
	}
	return &handles[idx], nil
}
