package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestProject is a temporary mcpkit project on disk for testing
type TestProject struct {
	Root string
	Name string
	t    *testing.T
}

const indexFixture = `import { McpServer } from "@modelcontextprotocol/sdk/server/mcp.js";
import { StdioServerTransport } from "@modelcontextprotocol/sdk/server/stdio.js";
// mcpkit:imports:tools
// mcpkit:imports:resources
// mcpkit:imports:auth

const server = new McpServer({
  name: "%NAME%",
  version: "0.1.0",
});

// mcpkit:register:tools

// mcpkit:register:resources

// mcpkit:register:auth

const transport = new StdioServerTransport();
await server.connect(transport);
`

const typesFixture = `export interface Env {
  // mcpkit:bindings:env
}

// mcpkit:bindings:accessors
`

const manifestFixture = `name: %NAME%
version: 0.1.0
transport: stdio
bindings:
  # mcpkit:bindings
`

// NewTestProject lays out a minimal scaffolded project in a temp
// directory: manifest, entry point and types file with all anchors.
func NewTestProject(t *testing.T, name string) *TestProject {
	t.Helper()

	p := &TestProject{Root: t.TempDir(), Name: name, t: t}

	p.WriteFile("mcpkit.yml", strings.ReplaceAll(manifestFixture, "%NAME%", name))
	p.WriteFile(filepath.Join("src", "index.ts"), strings.ReplaceAll(indexFixture, "%NAME%", name))
	p.WriteFile(filepath.Join("src", "types.ts"), typesFixture)
	return p
}

// NewEmptyProject creates a bare temp directory with no project files.
func NewEmptyProject(t *testing.T) *TestProject {
	t.Helper()
	return &TestProject{Root: t.TempDir(), t: t}
}

// WriteFile writes a file relative to the project root, creating parent
// directories as needed.
func (p *TestProject) WriteFile(rel, content string) {
	p.t.Helper()

	full := filepath.Join(p.Root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		p.t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		p.t.Fatalf("writing %s: %v", rel, err)
	}
}

// FileExists checks if a file exists in the project
func (p *TestProject) FileExists(rel string) bool {
	p.t.Helper()
	_, err := os.Stat(filepath.Join(p.Root, rel))
	return err == nil
}

// ReadFile reads a file from the project and fails the test if missing.
func (p *TestProject) ReadFile(rel string) string {
	p.t.Helper()

	content, err := os.ReadFile(filepath.Join(p.Root, rel))
	if err != nil {
		p.t.Fatalf("reading %s: %v", rel, err)
	}
	return string(content)
}

// Path returns the absolute path of a project-relative file.
func (p *TestProject) Path(rel string) string {
	return filepath.Join(p.Root, rel)
}

// Snapshots lists .backup-* directories at the project root.
func (p *TestProject) Snapshots() []string {
	p.t.Helper()

	entries, err := os.ReadDir(p.Root)
	if err != nil {
		p.t.Fatalf("reading project root: %v", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), ".backup-") {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs
}
