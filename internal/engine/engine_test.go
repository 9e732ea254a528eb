package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/fsutil"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/gate"
)

type fakeConfig struct{}

func (fakeConfig) Kind() string { return "fake" }

// fakeStrategy drives the orchestrator through every path via function
// fields, defaulting to a no-op success.
type fakeStrategy struct {
	name        string
	needsBackup bool
	validate    func(projectRoot string) error
	execute     func(sc *Context) error
	checks      []gate.Check
}

func (s *fakeStrategy) Name() string {
	if s.name == "" {
		return "fake"
	}
	return s.name
}

func (s *fakeStrategy) NeedsBackup() bool { return s.needsBackup }

func (s *fakeStrategy) NewResult() *Result { return &Result{} }

func (s *fakeStrategy) Validate(ctx context.Context, projectRoot string, cfg Config) error {
	if s.validate != nil {
		return s.validate(projectRoot)
	}
	return nil
}

func (s *fakeStrategy) Execute(ctx context.Context, sc *Context) error {
	if s.execute != nil {
		return s.execute(sc)
	}
	return nil
}

func (s *fakeStrategy) PostChecks(projectRoot string, cfg Config) []gate.Check {
	return s.checks
}

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "index.ts"), []byte("original"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "mcpkit.yml"), []byte("name: demo\n"), 0644))
	return root
}

func listSnapshots(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		if e.IsDir() && len(e.Name()) > 8 && e.Name()[:8] == ".backup-" {
			out = append(out, e.Name())
		}
	}
	return out
}

func TestRunSuccessRemovesSnapshot(t *testing.T) {
	root := newProject(t)

	s := &fakeStrategy{needsBackup: true, execute: func(sc *Context) error {
		sc.Result.AddCreated("src/tools/x.ts")
		return os.WriteFile(filepath.Join(sc.ProjectRoot, "src", "tools.ts"), []byte("x"), 0644)
	}}

	result, err := Run(context.Background(), root, fakeConfig{}, s, Options{})
	require.NoError(t, err)
	assert.Equal(t, "fake", result.Strategy)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []string{"src/tools/x.ts"}, result.CreatedFiles)
	assert.Empty(t, listSnapshots(t, root), "commit must remove the snapshot")
}

func TestRunValidationFailureTouchesNothing(t *testing.T) {
	root := newProject(t)
	before, err := fsutil.HashTree(root)
	require.NoError(t, err)

	s := &fakeStrategy{needsBackup: true, validate: func(string) error {
		return errors.New("bad name")
	}}

	_, err = Run(context.Background(), root, fakeConfig{}, s, Options{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "fake", ve.Strategy)

	after, err := fsutil.HashTree(root)
	require.NoError(t, err)
	assert.Equal(t, before, after, "validation failure must leave the tree byte-identical")
}

func TestRunExecutionFailureRollsBack(t *testing.T) {
	root := newProject(t)
	before, err := fsutil.HashTree(root)
	require.NoError(t, err)

	s := &fakeStrategy{needsBackup: true, execute: func(sc *Context) error {
		// Mutate, then fail partway
		if err := os.WriteFile(filepath.Join(sc.ProjectRoot, "src", "index.ts"), []byte("broken"), 0644); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(sc.ProjectRoot, "src", "orphan.ts"), []byte("x"), 0644); err != nil {
			return err
		}
		return errors.New("disk full")
	}}

	_, err = Run(context.Background(), root, fakeConfig{}, s, Options{})
	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.True(t, ee.RolledBack)

	after, err := fsutil.HashTree(root)
	require.NoError(t, err)
	assert.Equal(t, before, after, "rollback must restore the tree byte-identical")
	assert.Empty(t, listSnapshots(t, root), "rollback must not leave an orphan snapshot")
}

func TestRunRollbackPreservesIgnoredNameDirs(t *testing.T) {
	root := newProject(t)
	artifact := filepath.Join(root, "src", "dist", "keep.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(artifact), 0755))
	require.NoError(t, os.WriteFile(artifact, []byte("built artifact"), 0644))

	before, err := fsutil.HashTree(root)
	require.NoError(t, err)

	s := &fakeStrategy{needsBackup: true, execute: func(sc *Context) error {
		if err := os.WriteFile(artifact, []byte("clobbered"), 0644); err != nil {
			return err
		}
		return errors.New("midway failure")
	}}

	_, err = Run(context.Background(), root, fakeConfig{}, s, Options{})
	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
	require.True(t, ee.RolledBack)

	content, err := os.ReadFile(artifact)
	require.NoError(t, err, "src/dist must survive the rollback round-trip")
	assert.Equal(t, "built artifact", string(content))

	after, err := fsutil.HashTree(root)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunCriticalGateFailureRollsBack(t *testing.T) {
	root := newProject(t)
	before, err := fsutil.HashTree(root)
	require.NoError(t, err)

	s := &fakeStrategy{
		needsBackup: true,
		execute: func(sc *Context) error {
			return os.WriteFile(filepath.Join(sc.ProjectRoot, "src", "index.ts"), []byte("mutated"), 0644)
		},
		checks: []gate.Check{{
			Name:     "syntax",
			Critical: true,
			Fn:       func(ctx context.Context) error { return errors.New("unbalanced braces") },
		}},
	}

	_, err = Run(context.Background(), root, fakeConfig{}, s, Options{})
	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Error(), "syntax")

	after, err := fsutil.HashTree(root)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunAdvisoryGateFailureCommits(t *testing.T) {
	root := newProject(t)

	s := &fakeStrategy{
		needsBackup: true,
		checks: []gate.Check{{
			Name:     "typecheck",
			Critical: false,
			Fn:       func(ctx context.Context) error { return errors.New("tsc not found") },
		}},
	}

	result, err := Run(context.Background(), root, fakeConfig{}, s, Options{})
	require.NoError(t, err)
	require.NotNil(t, result.Gate)
	assert.True(t, result.Gate.Passed)
	assert.Len(t, result.Gate.Failures, 1)
}

func TestRunDryRunStopsAfterValidation(t *testing.T) {
	root := newProject(t)
	executed := false
	s := &fakeStrategy{needsBackup: true, execute: func(sc *Context) error {
		executed = true
		return nil
	}}

	result, err := Run(context.Background(), root, fakeConfig{}, s, Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.False(t, executed, "dry run must not execute")
	assert.Empty(t, listSnapshots(t, root), "dry run must not snapshot")
}

func TestRunSkipBackupFailurePropagatesWithoutRollback(t *testing.T) {
	root := newProject(t)

	s := &fakeStrategy{needsBackup: true, execute: func(sc *Context) error {
		if err := os.WriteFile(filepath.Join(sc.ProjectRoot, "src", "index.ts"), []byte("mutated"), 0644); err != nil {
			return err
		}
		return errors.New("midway failure")
	}}

	_, err := Run(context.Background(), root, fakeConfig{}, s, Options{SkipBackup: true})
	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.False(t, ee.RolledBack)

	content, _ := os.ReadFile(filepath.Join(root, "src", "index.ts"))
	assert.Equal(t, "mutated", string(content), "without a snapshot the mutation stands")
}

func TestRunNoBackupStrategySkipsSnapshot(t *testing.T) {
	root := newProject(t)

	s := &fakeStrategy{needsBackup: false, execute: func(sc *Context) error {
		return os.WriteFile(filepath.Join(sc.ProjectRoot, "src", "new.ts"), []byte("x"), 0644)
	}}

	_, err := Run(context.Background(), root, fakeConfig{}, s, Options{})
	require.NoError(t, err)
	assert.Empty(t, listSnapshots(t, root))
}

func TestRunRollbackFailureKeepsSnapshot(t *testing.T) {
	root := newProject(t)

	s := &fakeStrategy{needsBackup: true, execute: func(sc *Context) error {
		// Sabotage the snapshot so restore cannot succeed
		require.NoError(t, os.RemoveAll(sc.Snapshot.Path))
		return errors.New("midway failure")
	}}

	_, err := Run(context.Background(), root, fakeConfig{}, s, Options{})
	var rbe *RollbackError
	require.ErrorAs(t, err, &rbe)
	assert.NotEmpty(t, rbe.SnapshotPath)

	var ee *ExecutionError
	assert.ErrorAs(t, rbe.Original, &ee, "the original execution error is preserved")
}
