// Package project scaffolds new mcpkit projects and owns the project
// manifest. A fresh project carries every anchor marker the add commands
// rely on, so incremental mutations always have a home.
package project

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/engine"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/render"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Scaffolder creates new MCP server projects.
type Scaffolder struct {
	renderer *render.Renderer
}

// NewScaffolder creates a project scaffolder.
func NewScaffolder() *Scaffolder {
	return &Scaffolder{renderer: render.New()}
}

// templateData is passed to every project template.
type templateData struct {
	Name      string
	Version   string
	Transport string
}

// scaffoldFiles maps template names to project-relative output paths.
var scaffoldFiles = []struct {
	template string
	path     string
}{
	{"mcpkit.yml.tmpl", ManifestName},
	{"package.json.tmpl", "package.json"},
	{"tsconfig.json.tmpl", "tsconfig.json"},
	{"index.ts.tmpl", filepath.Join("src", "index.ts")},
	{"types.ts.tmpl", filepath.Join("src", "types.ts")},
}

// Scaffold creates a new project directory with the given name under
// parentDir and fills it with the starter tree.
func (s *Scaffolder) Scaffold(ctx context.Context, parentDir, name string) error {
	root := filepath.Join(parentDir, name)
	if _, err := os.Stat(root); err == nil {
		return fmt.Errorf("directory %s already exists", root)
	}

	data := templateData{Name: name, Version: "0.1.0", Transport: "stdio"}

	var ops []engine.Operation
	for _, f := range scaffoldFiles {
		content, err := s.renderer.RenderFS(templatesFS, "templates/"+f.template, data)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", f.template, err)
		}
		ops = append(ops, &engine.WriteFileOp{
			Path:    filepath.Join(root, f.path),
			Content: content,
			Mode:    0644,
		})
	}

	return engine.ExecuteOps(ctx, ops, engine.ExecuteOptions{})
}
