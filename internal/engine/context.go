package engine

import (
	"github.com/google/uuid"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/gate"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/snapshot"
)

// Config is a strategy-specific, immutable description of one requested
// operation. The set of configs is closed: each strategy defines exactly
// one concrete type and Kind ties it back to the strategy that owns it.
type Config interface {
	Kind() string
}

// Context carries the state of a single Run invocation. It is created at
// Run start, discarded at Run end, and never shared between invocations.
type Context struct {
	RunID       string
	ProjectRoot string
	Config      Config
	Result      *Result

	// Snapshot is the at-most-one live snapshot handle for this
	// invocation. The orchestrator resolves it (commit-delete or
	// rollback-restore-then-delete) before Run returns on every path.
	Snapshot *snapshot.Handle

	// Metadata holds intra-invocation strategy state.
	Metadata map[string]any
}

func newContext(projectRoot string, cfg Config, result *Result) *Context {
	return &Context{
		RunID:       uuid.NewString(),
		ProjectRoot: projectRoot,
		Config:      cfg,
		Result:      result,
		Metadata:    make(map[string]any),
	}
}

// Result accumulates what a strategy did during one invocation.
type Result struct {
	Strategy      string       `json:"strategy"`
	RunID         string       `json:"run_id,omitempty"`
	CreatedFiles  []string     `json:"created_files,omitempty"`
	ModifiedFiles []string     `json:"modified_files,omitempty"`
	SkippedFiles  []string     `json:"skipped_files,omitempty"`
	Notes         []string     `json:"notes,omitempty"`
	Gate          *gate.Result `json:"gate,omitempty"`
	DryRun        bool         `json:"dry_run,omitempty"`
}

// AddCreated records a newly created file, project-relative.
func (r *Result) AddCreated(path string) {
	r.CreatedFiles = append(r.CreatedFiles, path)
}

// AddModified records an edited file, project-relative.
func (r *Result) AddModified(path string) {
	r.ModifiedFiles = append(r.ModifiedFiles, path)
}

// AddSkipped records a file intentionally left alone.
func (r *Result) AddSkipped(path string) {
	r.SkippedFiles = append(r.SkippedFiles, path)
}

// AddNote records a human-readable remark surfaced in command output.
func (r *Result) AddNote(note string) {
	r.Notes = append(r.Notes, note)
}
