// Package engine is the transactional scaffolding orchestrator. It drives
// every mutating mcpkit operation through the same template method:
// validate → snapshot → execute → gate → commit or rollback. An operation
// either lands cleanly and passes its post-mutation checks, or the project
// is restored byte-for-byte to its pre-run state.
package engine

import (
	"context"
	"fmt"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/gate"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/output"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/snapshot"
)

// Options tune a single Run invocation.
type Options struct {
	// SkipBackup disables snapshot creation even when the strategy asks
	// for one. Execution failures then propagate without rollback.
	SkipBackup bool
	// DryRun stops after validation and returns the strategy's empty
	// initial result — a preview of acceptance.
	DryRun bool
}

// Run executes one scaffolding operation against projectRoot.
//
// Failure semantics:
//   - validation or backup failure: nothing was mutated, nothing to roll
//     back; a ValidationError or BackupError propagates.
//   - execution failure with a snapshot: the snapshot is restored and
//     removed, then the ExecutionError propagates.
//   - execution failure without a snapshot: the ExecutionError propagates
//     as-is; the strategy vouched that its mutations are pure creation.
//   - restore failure: a RollbackError carrying both causes propagates and
//     the snapshot stays on disk, its path named in the error.
func Run(ctx context.Context, projectRoot string, cfg Config, s Strategy, opts Options) (*Result, error) {
	if err := s.Validate(ctx, projectRoot, cfg); err != nil {
		return nil, &ValidationError{Strategy: s.Name(), Err: err}
	}

	result := s.NewResult()
	result.Strategy = s.Name()

	if opts.DryRun {
		result.DryRun = true
		return result, nil
	}

	sc := newContext(projectRoot, cfg, result)
	result.RunID = sc.RunID

	var store *snapshot.Store
	if s.NeedsBackup() && !opts.SkipBackup {
		store = snapshot.NewStore(s.Name())
		handle, err := store.Create(projectRoot)
		if err != nil {
			return nil, &BackupError{Err: err}
		}
		sc.Snapshot = handle
		output.Verbose(fmt.Sprintf("snapshot created at %s", handle.Path))
	}

	execErr := s.Execute(ctx, sc)

	if execErr == nil {
		if pc, ok := s.(PostChecker); ok {
			checks := pc.PostChecks(projectRoot, cfg)
			if len(checks) > 0 {
				// Rollback stays with the orchestrator, so the gate runs
				// without a handle of its own.
				gres := gate.Run(ctx, checks, gate.Options{})
				result.Gate = gres
				if !gres.Passed {
					execErr = gateFailure(gres)
				}
			}
		}
	}

	if execErr != nil {
		wrapped := asExecutionError(s.Name(), execErr)
		if sc.Snapshot == nil {
			return nil, wrapped
		}
		if err := store.Restore(sc.Snapshot, projectRoot); err != nil {
			return nil, &RollbackError{Original: wrapped, Cause: err, SnapshotPath: sc.Snapshot.Path}
		}
		if err := store.Remove(sc.Snapshot); err != nil {
			return nil, &RollbackError{Original: wrapped, Cause: err, SnapshotPath: sc.Snapshot.Path}
		}
		sc.Snapshot = nil
		wrapped.RolledBack = true
		output.Verbose("project restored to pre-run state")
		return nil, wrapped
	}

	if sc.Snapshot != nil {
		if err := store.Remove(sc.Snapshot); err != nil {
			return nil, fmt.Errorf("removing snapshot after successful run: %w", err)
		}
		sc.Snapshot = nil
	}

	return result, nil
}

// gateFailure converts failed critical checks into an execution-shaped
// error naming every failed check.
func gateFailure(res *gate.Result) error {
	failures := res.CriticalFailures()
	if len(failures) == 1 {
		return fmt.Errorf("post-mutation check %q failed: %s", failures[0].Name, failures[0].Message)
	}
	names := make([]string, 0, len(failures))
	for _, f := range failures {
		names = append(names, f.Name)
	}
	return fmt.Errorf("%d post-mutation checks failed: %v", len(failures), names)
}

func asExecutionError(strategy string, err error) *ExecutionError {
	if ee, ok := err.(*ExecutionError); ok {
		return ee
	}
	return &ExecutionError{Strategy: strategy, Err: err}
}
