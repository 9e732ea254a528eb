// Package tool implements the add-tool strategy: generate a tool module
// under src/tools/ and wire it into the server entry point.
package tool

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

// Param is one tool input parameter.
type Param struct {
	Name     string
	Type     string // string, number or boolean
	Optional bool
}

// Config describes one add-tool request.
type Config struct {
	Name        string
	Description string
	Params      []Param
	Force       bool // overwrite an existing tool file
}

// Kind identifies the strategy this config belongs to.
func (Config) Kind() string { return "add-tool" }

// Strategy generates and wires a tool module.
type Strategy struct {
	renderer *render.Renderer
	resolver *anchor.Resolver
}

// New creates the add-tool strategy.
func New() *Strategy {
	return &Strategy{
		renderer: render.New(),
		resolver: anchors.NewResolver(),
	}
}

func (s *Strategy) Name() string { return "add-tool" }

// NeedsBackup is true: wiring edits touch existing files.
func (s *Strategy) NeedsBackup() bool { return true }

func (s *Strategy) NewResult() *engine.Result { return &engine.Result{} }

// Validate rejects the request before any mutation: bad names, missing
// project files, or an already-existing tool module.
func (s *Strategy) Validate(ctx context.Context, projectRoot string, cfg engine.Config) error {
	c, ok := cfg.(Config)
	if !ok {
		return fmt.Errorf("expected tool.Config, got %T", cfg)
	}
	if !nameRe.MatchString(c.Name) {
		return fmt.Errorf("invalid tool name %q: must match %s", c.Name, nameRe)
	}
	for _, p := range c.Params {
		switch p.Type {
		case "string", "number", "boolean":
		default:
			return fmt.Errorf("param %s: unsupported type %q (want string, number or boolean)", p.Name, p.Type)
		}
	}

	if _, err := project.LoadManifest(projectRoot); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(projectRoot, anchors.EntryFile)); err != nil {
		return fmt.Errorf("%s not found: %w", anchors.EntryFile, err)
	}

	target := filepath.Join(projectRoot, s.fileRel(c))
	if _, err := os.Stat(target); err == nil && !c.Force {
		return fmt.Errorf("tool file already exists: %s", target)
	}
	return nil
}

// Preview renders the tool module without writing anything, for conflict
// diffs and dry-run inspection.
func (s *Strategy) Preview(c Config) ([]byte, error) {
	return s.renderer.RenderFS(templatesFS, "templates/tool.ts.tmpl", templateData(c))
}

// FileRel returns the project-relative path the tool module lands at.
func (s *Strategy) FileRel(c Config) string { return s.fileRel(c) }

// Execute creates the tool module and inserts its import and registration
// into the entry point.
func (s *Strategy) Execute(ctx context.Context, sc *engine.Context) error {
	c := sc.Config.(Config)

	content, err := s.Preview(c)
	if err != nil {
		return err
	}

	fileRel := s.fileRel(c)
	entryPath := filepath.Join(sc.ProjectRoot, anchors.EntryFile)
	ident := registerIdent(c.Name)

	importOp := &engine.AnchorInsertOp{
		Resolver:  s.resolver,
		Path:      entryPath,
		Category:  anchors.ToolImports,
		Content:   fmt.Sprintf("import { %s } from \"./tools/%s.js\";", ident, render.KebabCase(c.Name)),
		DedupeKey: fmt.Sprintf("from \"./tools/%s.js\"", render.KebabCase(c.Name)),
	}
	registerOp := &engine.AnchorInsertOp{
		Resolver:  s.resolver,
		Path:      entryPath,
		Category:  anchors.ToolRegister,
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
		sc.Result.AddNote(fmt.Sprintf("tool %s was already wired", c.Name))
	}
	return nil
}

// PostChecks verifies the mutation landed: the module exists, the entry
// point references it, and the tree still typechecks if tsc is around.
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
	return filepath.Join("src", "tools", render.KebabCase(c.Name)+".ts")
}

func registerIdent(name string) string {
	return "register" + render.PascalCase(name) + "Tool"
}

type toolTemplateData struct {
	Name        string
	Description string
	Params      []paramData
}

type paramData struct {
	Name     string
	ZodType  string
	Optional bool
}

func templateData(c Config) toolTemplateData {
	d := toolTemplateData{Name: c.Name, Description: c.Description}
	if d.Description == "" {
		d.Description = render.PascalCase(c.Name) + " tool."
	}
	for _, p := range c.Params {
		d.Params = append(d.Params, paramData{Name: p.Name, ZodType: p.Type, Optional: p.Optional})
	}
	return d
}
