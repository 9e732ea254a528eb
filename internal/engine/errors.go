package engine

import "fmt"

// The engine surfaces a fixed, typed error taxonomy so callers can match on
// kind with errors.As instead of message text.
//
//   - ValidationError: pre-condition failed, no mutation attempted
//   - BackupError: snapshot could not be created, no mutation attempted
//   - ExecutionError: mutation failed partway; rollback was attempted if a
//     snapshot existed
//   - RollbackError: restore itself failed after an execution error; the
//     only case leaving the project mutated

// ValidationError means a strategy rejected its config or the project
// state before any mutation. Safe to retry after fixing the input.
type ValidationError struct {
	Strategy string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed: %v", e.Strategy, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BackupError means the pre-mutation snapshot could not be created.
// Nothing was mutated and there is nothing to roll back.
type BackupError struct {
	Err error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("backup creation failed: %v", e.Err)
}

func (e *BackupError) Unwrap() error { return e.Err }

// ExecutionError means the strategy's mutation failed partway. If a
// snapshot existed, rollback was performed and the project is back in its
// pre-run state.
type ExecutionError struct {
	Strategy string
	Err      error
	// RolledBack is true when the snapshot was restored successfully and
	// the project is back in its pre-run state.
	RolledBack bool
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: execution failed: %v", e.Strategy, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// RollbackError means restore failed after an execution error. The project
// is in an inconsistent state; the snapshot is deliberately left on disk at
// SnapshotPath for manual recovery. Never auto-retried.
type RollbackError struct {
	Original     error
	Cause        error
	SnapshotPath string
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback failed: %v (original error: %v); snapshot kept at %s for manual recovery",
		e.Cause, e.Original, e.SnapshotPath)
}

// Unwrap exposes the original execution error for errors.Is/As chains.
func (e *RollbackError) Unwrap() error { return e.Original }
