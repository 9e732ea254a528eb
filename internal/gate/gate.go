// Package gate runs ordered post-mutation validation checks and decides
// whether a scaffolding operation is allowed to stand.
//
// A critical check failure blocks success and may trigger rollback through a
// supplied snapshot handle. Advisory failures are reported but never block.
// Run never returns an error and never panics outward: a misbehaving
// predicate is just a failed check.
package gate

import (
	"context"
	"fmt"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/snapshot"
)

// Check is one stateless post-mutation validation.
type Check struct {
	Name        string
	Description string
	// Critical failures flip the overall result to failed; advisory
	// (non-critical) failures are recorded only.
	Critical bool
	// Fn returns nil when the check passes. Predicates may call opaque
	// external tooling; a tool that enforces its own timeout produces a
	// failed check, not a hang.
	Fn func(ctx context.Context) error
}

// Options configures a gate run.
type Options struct {
	// Snapshot and Store enable rollback when a critical check fails.
	Snapshot *snapshot.Handle
	Store    *snapshot.Store
	// ProjectRoot is the tree to restore on rollback.
	ProjectRoot string
	// RollbackOnFailure restores and removes the snapshot when the gate
	// fails. Ignored if Snapshot or Store is nil.
	RollbackOnFailure bool
}

// CheckFailure records one failed check.
type CheckFailure struct {
	Name     string
	Critical bool
	Message  string
}

// Result aggregates a gate run. Immutable once returned.
type Result struct {
	Passed     bool
	PassedList []string
	Failures   []CheckFailure
	RolledBack bool
	// Errors collects problems with the gate run itself, e.g. a restore
	// failure during rollback.
	Errors []string
}

// CriticalFailures returns only the blocking failures.
func (r *Result) CriticalFailures() []CheckFailure {
	var out []CheckFailure
	for _, f := range r.Failures {
		if f.Critical {
			out = append(out, f)
		}
	}
	return out
}

// Run executes checks in declared order and aggregates the outcome.
// It always returns a result object, never an error.
func Run(ctx context.Context, checks []Check, opts Options) *Result {
	res := &Result{Passed: true}

	for _, c := range checks {
		if err := runCheck(ctx, c); err != nil {
			res.Failures = append(res.Failures, CheckFailure{
				Name:     c.Name,
				Critical: c.Critical,
				Message:  err.Error(),
			})
			if c.Critical {
				res.Passed = false
			}
			continue
		}
		res.PassedList = append(res.PassedList, c.Name)
	}

	if !res.Passed && opts.RollbackOnFailure && opts.Snapshot != nil && opts.Store != nil {
		if err := opts.Store.Restore(opts.Snapshot, opts.ProjectRoot); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("rollback failed: %v (snapshot kept at %s)", err, opts.Snapshot.Path))
		} else {
			res.RolledBack = true
			if err := opts.Store.Remove(opts.Snapshot); err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("removing snapshot after rollback: %v", err))
			}
		}
	}

	return res
}

// ValidateCritical runs only the critical checks, a fast pre-flight before
// any mutation happens.
func ValidateCritical(ctx context.Context, checks []Check) *Result {
	var critical []Check
	for _, c := range checks {
		if c.Critical {
			critical = append(critical, c)
		}
	}
	return Run(ctx, critical, Options{})
}

// QuickValidate runs all checks with rollback disabled, for dry-run
// feedback.
func QuickValidate(ctx context.Context, checks []Check) *Result {
	return Run(ctx, checks, Options{})
}

// runCheck isolates a predicate so a panic counts as that check failing
// instead of crashing the gate.
func runCheck(ctx context.Context, c Check) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()
	return c.Fn(ctx)
}
