package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/anchor"
)

// Operation is a single file-system mutation that can be validated before
// it runs.
//
// Validate checks whether the operation would succeed without executing it;
// force=true skips conflict checks (file already exists).
// Execute performs the mutation and should only run after Validate passes.
// Description returns a human-readable summary for command output.
type Operation interface {
	Validate(ctx context.Context, force bool) error
	Execute(ctx context.Context) error
	Description() string
}

// WriteFileOp creates a new file with rendered content.
type WriteFileOp struct {
	Path    string      // Absolute file path to create
	Content []byte      // File content (may be empty, must not be nil)
	Mode    fs.FileMode // File permissions, e.g. 0644
}

func (op *WriteFileOp) Validate(ctx context.Context, force bool) error {
	dir := filepath.Dir(op.Path)

	// Creating the parent directory here is a side effect, but idempotent
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}

	if !force {
		if _, err := os.Stat(op.Path); err == nil {
			return fmt.Errorf("file already exists: %s", op.Path)
		}
	}

	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}

	return nil
}

func (op *WriteFileOp) Execute(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(op.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(op.Path, op.Content, op.Mode)
}

func (op *WriteFileOp) Description() string {
	return fmt.Sprintf("Create %s (%d bytes)", op.Path, len(op.Content))
}

// AnchorInsertOp inserts content at a named anchor in an existing file,
// idempotently. AnchorMissing from the resolver is an execution error, not
// a silent no-op.
type AnchorInsertOp struct {
	Resolver  *anchor.Resolver
	Path      string // Absolute path of the target file
	Category  anchor.Category
	Content   string
	DedupeKey string // Unique substring detecting a previous insertion

	// Outcome is filled during Execute so callers can distinguish
	// inserted from already-present.
	Outcome anchor.Result
}

func (op *AnchorInsertOp) Validate(ctx context.Context, force bool) error {
	if _, err := os.Stat(op.Path); err != nil {
		return fmt.Errorf("anchor target missing: %s", op.Path)
	}
	return nil
}

func (op *AnchorInsertOp) Execute(ctx context.Context) error {
	res, err := op.Resolver.Insert(op.Path, op.Category, op.Content, op.DedupeKey)
	if err != nil {
		return err
	}
	op.Outcome = res
	if res == anchor.AnchorMissing {
		return fmt.Errorf("no %q anchor found in %s", op.Category, op.Path)
	}
	return nil
}

func (op *AnchorInsertOp) Description() string {
	return fmt.Sprintf("Insert %s block into %s", op.Category, op.Path)
}
