package engine

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ExecuteOptions configures operation execution.
type ExecuteOptions struct {
	DryRun bool
	Force  bool
	Writer io.Writer // Where to report progress (defaults to os.Stdout)
}

// ExecuteOps runs operations with two-phase semantics: validate everything
// first, then execute in order. Strategies use this inside Execute so a
// doomed batch fails before the first write.
func ExecuteOps(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	for _, op := range ops {
		if err := op.Validate(ctx, opts.Force); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	for _, op := range ops {
		if opts.DryRun {
			fmt.Fprintf(opts.Writer, "  [dry run] %s\n", op.Description())
			continue
		}
		if err := op.Execute(ctx); err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
	}

	return nil
}
