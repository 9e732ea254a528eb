package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/engine"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/output"
)

// runStrategy drives one transactional operation and reports the outcome
// in either styled or JSON form. JSON mode always emits a well-formed
// object, including on rollback failure.
func runStrategy(ctx context.Context, cfg engine.Config, s engine.Strategy, opts engine.Options) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	result, runErr := engine.Run(ctx, root, cfg, s, opts)

	if output.JSONEnabled() {
		emitJSON(result, runErr)
		return runErr
	}

	if runErr != nil {
		reportError(runErr)
		return runErr
	}

	reportResult(result)
	return nil
}

// jsonEnvelope is the structured-output shape shared by all mutating
// commands.
type jsonEnvelope struct {
	OK     bool           `json:"ok"`
	Result *engine.Result `json:"result,omitempty"`
	Error  *jsonError     `json:"error,omitempty"`
}

type jsonError struct {
	Kind         string `json:"kind"`
	Message      string `json:"message"`
	SnapshotPath string `json:"snapshot_path,omitempty"`
}

func emitJSON(result *engine.Result, runErr error) {
	env := jsonEnvelope{OK: runErr == nil, Result: result}
	if runErr != nil {
		env.Error = &jsonError{Kind: errorKind(runErr), Message: runErr.Error()}
		var rb *engine.RollbackError
		if errors.As(runErr, &rb) {
			env.Error.SnapshotPath = rb.SnapshotPath
		}
	}
	data, err := json.Marshal(env)
	if err != nil {
		// Last resort: a hand-built minimal object is still well-formed
		fmt.Printf("{\"ok\":false,\"error\":{\"kind\":\"internal\",\"message\":%q}}\n", err.Error())
		return
	}
	fmt.Println(string(data))
}

// errorKind maps the engine's typed taxonomy to stable JSON identifiers.
func errorKind(err error) string {
	var (
		ve *engine.ValidationError
		be *engine.BackupError
		re *engine.RollbackError
		ee *engine.ExecutionError
	)
	switch {
	case errors.As(err, &ve):
		return "config_validation"
	case errors.As(err, &be):
		return "backup_creation"
	case errors.As(err, &re):
		return "rollback_failed"
	case errors.As(err, &ee):
		return "execution"
	default:
		return "internal"
	}
}

func reportResult(result *engine.Result) {
	if result.DryRun {
		output.Success(fmt.Sprintf("%s: configuration accepted (dry run, nothing written)", result.Strategy))
		return
	}

	output.Success(fmt.Sprintf("%s completed", result.Strategy))
	for _, f := range result.CreatedFiles {
		output.Step("created  " + f)
	}
	for _, f := range result.ModifiedFiles {
		output.Step("modified " + f)
	}
	for _, f := range result.SkippedFiles {
		output.Step("skipped  " + f)
	}
	for _, n := range result.Notes {
		output.Info(n)
	}
	if result.Gate != nil {
		for _, f := range result.Gate.Failures {
			if !f.Critical {
				output.Warn(fmt.Sprintf("advisory check %s: %s", f.Name, f.Message))
			}
		}
	}
}

func reportError(err error) {
	var rb *engine.RollbackError
	if errors.As(err, &rb) {
		output.Error("operation failed AND rollback failed — manual recovery needed")
		output.Step("snapshot: " + rb.SnapshotPath)
		output.Step("original: " + rb.Original.Error())
		output.Step("rollback: " + rb.Cause.Error())
		return
	}

	var ee *engine.ExecutionError
	if errors.As(err, &ee) {
		output.Error(ee.Error())
		if ee.RolledBack {
			output.Info("project restored to its pre-run state")
		}
		return
	}

	output.Error(err.Error())
}

// parseParam parses a --param value of the form name:type or name:type?
// (trailing ? marks the parameter optional).
func parseParam(raw string) (name, typ string, optional bool, err error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false, fmt.Errorf("invalid param %q: want name:type", raw)
	}
	name, typ = parts[0], parts[1]
	if strings.HasSuffix(typ, "?") {
		optional = true
		typ = strings.TrimSuffix(typ, "?")
	}
	return name, typ, optional, nil
}
