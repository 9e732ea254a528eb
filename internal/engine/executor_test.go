package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteOpsTwoPhase(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "taken.ts")
	require.NoError(t, os.WriteFile(blocker, []byte("existing"), 0644))

	ops := []Operation{
		&WriteFileOp{Path: filepath.Join(dir, "first.ts"), Content: []byte("a"), Mode: 0644},
		&WriteFileOp{Path: blocker, Content: []byte("b"), Mode: 0644},
	}

	err := ExecuteOps(context.Background(), ops, ExecuteOptions{Writer: io.Discard})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// Validation runs for the whole batch before any execution
	_, statErr := os.Stat(filepath.Join(dir, "first.ts"))
	assert.True(t, os.IsNotExist(statErr), "no op may execute when a later one cannot validate")

	content, _ := os.ReadFile(blocker)
	assert.Equal(t, "existing", string(content))
}

func TestExecuteOpsForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taken.ts")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	ops := []Operation{
		&WriteFileOp{Path: path, Content: []byte("new"), Mode: 0644},
	}

	require.NoError(t, ExecuteOps(context.Background(), ops, ExecuteOptions{Force: true, Writer: io.Discard}))
	content, _ := os.ReadFile(path)
	assert.Equal(t, "new", string(content))
}

func TestExecuteOpsDryRun(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "new.ts")

	ops := []Operation{
		&WriteFileOp{Path: target, Content: []byte("x"), Mode: 0644},
	}

	require.NoError(t, ExecuteOps(context.Background(), ops, ExecuteOptions{DryRun: true, Writer: io.Discard}))
	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err), "dry run must not write")
}

func TestAnchorInsertOpMissingTarget(t *testing.T) {
	op := &AnchorInsertOp{Path: filepath.Join(t.TempDir(), "absent.ts")}
	err := op.Validate(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anchor target missing")
}
