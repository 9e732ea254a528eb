// Package resource implements the add-resource strategy: generate a
// resource module under src/resources/ and wire it into the server entry
// point. When the entry point predates resource support and lacks the
// resources anchors, insertions fall back to just after the tool sections.
package resource

import (
	"context"
	"embed"
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

//go:embed templates/*.tmpl
var templatesFS embed.FS

var nameRe = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Config describes one add-resource request.
type Config struct {
	Name        string
	Description string
	// URITemplate is the resource URI pattern, e.g. "docs://{slug}".
	URITemplate string
	Force       bool
}

// Kind identifies the strategy this config belongs to.
func (Config) Kind() string { return "add-resource" }

// Strategy generates and wires a resource module.
type Strategy struct {
	renderer *render.Renderer
	resolver *anchor.Resolver
}

// New creates the add-resource strategy.
func New() *Strategy {
	return &Strategy{
		renderer: render.New(),
		resolver: anchors.NewResolver(),
	}
}

func (s *Strategy) Name() string { return "add-resource" }

func (s *Strategy) NeedsBackup() bool { return true }

func (s *Strategy) NewResult() *engine.Result { return &engine.Result{} }

func (s *Strategy) Validate(ctx context.Context, projectRoot string, cfg engine.Config) error {
	c, ok := cfg.(Config)
	if !ok {
		return fmt.Errorf("expected resource.Config, got %T", cfg)
	}
	if !nameRe.MatchString(c.Name) {
		return fmt.Errorf("invalid resource name %q: must match %s", c.Name, nameRe)
	}

	if _, err := project.LoadManifest(projectRoot); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(projectRoot, anchors.EntryFile)); err != nil {
		return fmt.Errorf("%s not found: %w", anchors.EntryFile, err)
	}

	target := filepath.Join(projectRoot, s.fileRel(c))
	if _, err := os.Stat(target); err == nil && !c.Force {
		return fmt.Errorf("resource file already exists: %s", target)
	}
	return nil
}

// Preview renders the resource module without writing anything, for
// conflict diffs and dry-run inspection.
func (s *Strategy) Preview(c Config) ([]byte, error) {
	return s.renderModule(c)
}

// FileRel returns the project-relative path the resource module lands at.
func (s *Strategy) FileRel(c Config) string { return s.fileRel(c) }

func (s *Strategy) renderModule(c Config) ([]byte, error) {
	data := map[string]any{
		"Name":        c.Name,
		"Description": c.Description,
		"URITemplate": c.URITemplate,
	}
	if c.Description == "" {
		data["Description"] = render.PascalCase(c.Name) + " resource."
	}
	if c.URITemplate == "" {
		data["URITemplate"] = render.KebabCase(c.Name) + "://{id}"
	}
	return s.renderer.RenderFS(templatesFS, "templates/resource.ts.tmpl", data)
}

// Execute creates the resource module and inserts its import and
// registration into the entry point, falling back to the tool sections
// when the resource anchors are absent.
func (s *Strategy) Execute(ctx context.Context, sc *engine.Context) error {
	c := sc.Config.(Config)

	content, err := s.renderModule(c)
	if err != nil {
		return err
	}

	fileRel := s.fileRel(c)
	entryPath := filepath.Join(sc.ProjectRoot, anchors.EntryFile)
	ident := registerIdent(c.Name)

	importOp := &engine.AnchorInsertOp{
		Resolver:  s.resolver,
		Path:      entryPath,
		Category:  anchors.ResourceImports,
		Content:   fmt.Sprintf("import { %s } from \"./resources/%s.js\";", ident, render.KebabCase(c.Name)),
		DedupeKey: fmt.Sprintf("from \"./resources/%s.js\"", render.KebabCase(c.Name)),
	}
	registerOp := &engine.AnchorInsertOp{
		Resolver:  s.resolver,
		Path:      entryPath,
		Category:  anchors.ResourceRegister,
		Content:   fmt.Sprintf("%s(server);", ident),
		DedupeKey: fmt.Sprintf("%s(server)", ident),
	}

	ops := []engine.Operation{
		&engine.WriteFileOp{Path: filepath.Join(sc.ProjectRoot, fileRel), Content: content, Mode: 0644},
		importOp,
		registerOp,
	}

	if err := engine.ExecuteOps(ctx, ops, engine.ExecuteOptions{Force: c.Force, Writer: io.Discard}); err != nil {
		return err
	}

	sc.Result.AddCreated(fileRel)
	if importOp.Outcome == anchor.Inserted || registerOp.Outcome == anchor.Inserted {
		sc.Result.AddModified(anchors.EntryFile)
	} else {
		sc.Result.AddSkipped(anchors.EntryFile)
		sc.Result.AddNote(fmt.Sprintf("resource %s was already wired", c.Name))
	}
	return nil
}

func (s *Strategy) PostChecks(projectRoot string, cfg engine.Config) []gate.Check {
	c := cfg.(Config)
	return []gate.Check{
		checks.FileExists(projectRoot, s.fileRel(c)),
		checks.FileContains(projectRoot, anchors.EntryFile, registerIdent(c.Name)+"(server)"),
		checks.BalancedBraces(projectRoot, anchors.EntryFile),
		checks.Typecheck(projectRoot),
	}
}

func (s *Strategy) fileRel(c Config) string {
	return filepath.Join("src", "resources", render.KebabCase(c.Name)+".ts")
}

func registerIdent(name string) string {
	return "register" + render.PascalCase(name) + "Resource"
}
