// Package binding implements the add-binding strategy: declare a runtime
// binding (KV cache, queue, database, bucket or secret) in mcpkit.yml and
// expose a typed accessor for it in src/types.ts. No new source module is
// created; both edits are anchor insertions into existing files.
package binding

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/anchor"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/engine"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/gate"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/project"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/render"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/strategies/anchors"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/strategies/checks"
)

var nameRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// tsTypes maps binding types to the TypeScript type of their Env field.
var tsTypes = map[string]string{
	"kv":     "KVNamespace",
	"queue":  "Queue",
	"d1":     "D1Database",
	"r2":     "R2Bucket",
	"secret": "string",
}

// Config describes one add-binding request.
type Config struct {
	Name string // SCREAMING_SNAKE_CASE binding name, e.g. MY_CACHE
	Type string // kv, queue, d1, r2 or secret
}

// Kind identifies the strategy this config belongs to.
func (Config) Kind() string { return "add-binding" }

// Strategy wires a binding into the manifest and the Env typing.
type Strategy struct {
	resolver *anchor.Resolver
}

// New creates the add-binding strategy.
func New() *Strategy {
	return &Strategy{resolver: anchors.NewResolver()}
}

func (s *Strategy) Name() string { return "add-binding" }

// NeedsBackup is true: both edits mutate existing files.
func (s *Strategy) NeedsBackup() bool { return true }

func (s *Strategy) NewResult() *engine.Result { return &engine.Result{} }

// Validate rejects bad names and types, duplicate bindings, and projects
// whose binding anchors are missing — all before any file is touched.
func (s *Strategy) Validate(ctx context.Context, projectRoot string, cfg engine.Config) error {
	c, ok := cfg.(Config)
	if !ok {
		return fmt.Errorf("expected binding.Config, got %T", cfg)
	}
	if !nameRe.MatchString(c.Name) {
		return fmt.Errorf("invalid binding name %q: must be SCREAMING_SNAKE_CASE", c.Name)
	}
	if _, ok := tsTypes[c.Type]; !ok {
		return fmt.Errorf("unsupported binding type %q (want kv, queue, d1, r2 or secret)", c.Type)
	}

	m, err := project.LoadManifest(projectRoot)
	if err != nil {
		return err
	}
	if m.HasBinding(c.Name) {
		return fmt.Errorf("binding %s already declared in %s", c.Name, project.ManifestName)
	}

	for _, target := range []struct {
		file     string
		category anchor.Category
	}{
		{anchors.ManifestFile, anchors.BindingList},
		{anchors.TypesFile, anchors.BindingEnv},
		{anchors.TypesFile, anchors.BindingAccessors},
	} {
		path := filepath.Join(projectRoot, target.file)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s not found: %w", target.file, err)
		}
		has, err := s.resolver.HasAnchor(path, target.category)
		if err != nil {
			return err
		}
		if !has {
			return fmt.Errorf("%s anchor %q not found in %s", target.category, markerHint(target.category), target.file)
		}
	}
	return nil
}

// Execute inserts the binding stanza and its typed accessor. Each
// insertion is idempotent, keyed on the binding name.
func (s *Strategy) Execute(ctx context.Context, sc *engine.Context) error {
	c := sc.Config.(Config)

	manifestPath := filepath.Join(sc.ProjectRoot, anchors.ManifestFile)
	typesPath := filepath.Join(sc.ProjectRoot, anchors.TypesFile)
	accessor := render.CamelCase(c.Name)

	stanzaOp := &engine.AnchorInsertOp{
		Resolver:  s.resolver,
		Path:      manifestPath,
		Category:  anchors.BindingList,
		Content:   fmt.Sprintf("- name: %s\n  type: %s", c.Name, c.Type),
		DedupeKey: fmt.Sprintf("name: %s", c.Name),
	}
	envOp := &engine.AnchorInsertOp{
		Resolver:  s.resolver,
		Path:      typesPath,
		Category:  anchors.BindingEnv,
		Content:   fmt.Sprintf("%s: %s;", c.Name, tsTypes[c.Type]),
		DedupeKey: fmt.Sprintf("%s: %s", c.Name, tsTypes[c.Type]),
	}
	accessorOp := &engine.AnchorInsertOp{
		Resolver:  s.resolver,
		Path:      typesPath,
		Category:  anchors.BindingAccessors,
		Content:   fmt.Sprintf("export const %s = (env: Env) => env.%s;", accessor, c.Name),
		DedupeKey: fmt.Sprintf("env.%s", c.Name),
	}

	ops := []engine.Operation{stanzaOp, envOp, accessorOp}
	if err := engine.ExecuteOps(ctx, ops, engine.ExecuteOptions{Writer: io.Discard}); err != nil {
		return err
	}

	if stanzaOp.Outcome == anchor.Inserted {
		sc.Result.AddModified(anchors.ManifestFile)
	}
	if envOp.Outcome == anchor.Inserted || accessorOp.Outcome == anchor.Inserted {
		sc.Result.AddModified(anchors.TypesFile)
	}
	if stanzaOp.Outcome == anchor.AlreadyPresent {
		sc.Result.AddNote(fmt.Sprintf("binding %s was already declared", c.Name))
	}
	return nil
}

// PostChecks confirms the manifest still parses with no duplicates and
// the typing file holds the new accessor.
func (s *Strategy) PostChecks(projectRoot string, cfg engine.Config) []gate.Check {
	c := cfg.(Config)
	return []gate.Check{
		checks.ManifestValid(projectRoot),
		checks.FileContains(projectRoot, anchors.TypesFile, "env."+c.Name),
		checks.BalancedBraces(projectRoot, anchors.TypesFile),
	}
}

func markerHint(c anchor.Category) string {
	switch c {
	case anchors.BindingList:
		return "# mcpkit:bindings"
	default:
		return "// mcpkit:" + string(c)
	}
}
