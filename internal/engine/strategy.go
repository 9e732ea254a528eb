package engine

import (
	"context"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/gate"
)

// Strategy supplies the domain-specific half of a scaffolding operation.
// The orchestrator owns sequencing, backup and rollback; the strategy owns
// what gets validated and which files get created or edited.
type Strategy interface {
	// Name identifies the strategy; it becomes the snapshot purpose and
	// appears in errors and results.
	Name() string

	// Validate checks the config against the current project state before
	// any mutation. An error here rejects the run with nothing touched.
	Validate(ctx context.Context, projectRoot string, cfg Config) error

	// Execute performs the mutation, recording what it did in sc.Result.
	// An error here triggers rollback when a snapshot exists.
	Execute(ctx context.Context, sc *Context) error

	// NeedsBackup reports whether Execute modifies existing files. A
	// strategy returning false must guarantee its mutations cannot corrupt
	// existing content (pure file creation).
	NeedsBackup() bool

	// NewResult returns the strategy's empty initial result, also used as
	// the dry-run preview of acceptance.
	NewResult() *Result
}

// PostChecker is implemented by strategies that want post-mutation
// validation. A critical check failure is treated like an execution
// failure and triggers the orchestrator's rollback path.
type PostChecker interface {
	PostChecks(projectRoot string, cfg Config) []gate.Check
}
