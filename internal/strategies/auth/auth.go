// Package auth implements the add-authentication strategy: generate an
// auth guard under src/auth/ and optionally wire it into the server entry
// point.
package auth

import (
	"context"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/anchor"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/engine"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/gate"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/project"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/render"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/strategies/anchors"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/strategies/checks"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// MiddlewareFile is the generated auth guard module, project-relative.
var MiddlewareFile = filepath.Join("src", "auth", "middleware.ts")

// Config describes one add-authentication request.
type Config struct {
	// Scheme selects the guard flavor: "bearer" or "apikey".
	Scheme string
	// SkipWiring creates the middleware file without touching index.ts.
	// With wiring disabled the strategy is pure file creation and runs
	// without a snapshot.
	SkipWiring bool
	Force      bool
}

// Kind identifies the strategy this config belongs to.
func (Config) Kind() string { return "add-authentication" }

// Strategy generates the auth guard.
type Strategy struct {
	renderer   *render.Renderer
	resolver   *anchor.Resolver
	skipWiring bool
}

// New creates the add-authentication strategy for the given config.
func New(cfg Config) *Strategy {
	return &Strategy{
		renderer:   render.New(),
		resolver:   anchors.NewResolver(),
		skipWiring: cfg.SkipWiring,
	}
}

func (s *Strategy) Name() string { return "add-authentication" }

// NeedsBackup is false when wiring is skipped: creating src/auth/middleware.ts
// cannot corrupt existing content.
func (s *Strategy) NeedsBackup() bool { return !s.skipWiring }

func (s *Strategy) NewResult() *engine.Result { return &engine.Result{} }

func (s *Strategy) Validate(ctx context.Context, projectRoot string, cfg engine.Config) error {
	c, ok := cfg.(Config)
	if !ok {
		return fmt.Errorf("expected auth.Config, got %T", cfg)
	}
	switch c.Scheme {
	case "bearer", "apikey":
	default:
		return fmt.Errorf("unsupported auth scheme %q (want bearer or apikey)", c.Scheme)
	}

	if _, err := project.LoadManifest(projectRoot); err != nil {
		return err
	}
	if !c.SkipWiring {
		if _, err := os.Stat(filepath.Join(projectRoot, anchors.EntryFile)); err != nil {
			return fmt.Errorf("%s not found: %w", anchors.EntryFile, err)
		}
	}

	target := filepath.Join(projectRoot, MiddlewareFile)
	if _, err := os.Stat(target); err == nil && !c.Force {
		return fmt.Errorf("auth middleware already exists: %s", target)
	}
	return nil
}

func (s *Strategy) Execute(ctx context.Context, sc *engine.Context) error {
	c := sc.Config.(Config)

	content, err := s.renderer.RenderFS(templatesFS, "templates/middleware.ts.tmpl", map[string]any{
		"Scheme": c.Scheme,
	})
	if err != nil {
		return err
	}

	ops := []engine.Operation{
		&engine.WriteFileOp{Path: filepath.Join(sc.ProjectRoot, MiddlewareFile), Content: content, Mode: 0644},
	}

	var importOp, registerOp *engine.AnchorInsertOp
	if !c.SkipWiring {
		entryPath := filepath.Join(sc.ProjectRoot, anchors.EntryFile)
		importOp = &engine.AnchorInsertOp{
			Resolver:  s.resolver,
			Path:      entryPath,
			Category:  anchors.AuthImports,
			Content:   "import { installAuthGuard } from \"./auth/middleware.js\";",
			DedupeKey: "from \"./auth/middleware.js\"",
		}
		registerOp = &engine.AnchorInsertOp{
			Resolver:  s.resolver,
			Path:      entryPath,
			Category:  anchors.AuthRegister,
			Content:   "installAuthGuard(server);",
			DedupeKey: "installAuthGuard(server)",
		}
		ops = append(ops, importOp, registerOp)
	}

	if err := engine.ExecuteOps(ctx, ops, engine.ExecuteOptions{Force: c.Force, Writer: io.Discard}); err != nil {
		return err
	}

	sc.Result.AddCreated(MiddlewareFile)
	if c.SkipWiring {
		sc.Result.AddNote("wiring skipped: call installAuthGuard(server) yourself")
	} else if importOp.Outcome == anchor.Inserted || registerOp.Outcome == anchor.Inserted {
		sc.Result.AddModified(anchors.EntryFile)
	} else {
		sc.Result.AddSkipped(anchors.EntryFile)
	}
	return nil
}

func (s *Strategy) PostChecks(projectRoot string, cfg engine.Config) []gate.Check {
	c := cfg.(Config)
	out := []gate.Check{
		checks.FileExists(projectRoot, MiddlewareFile),
		checks.BalancedBraces(projectRoot, MiddlewareFile),
	}
	if !c.SkipWiring {
		out = append(out,
			checks.FileContains(projectRoot, anchors.EntryFile, "installAuthGuard(server)"),
			checks.Typecheck(projectRoot),
		)
	}
	return out
}
