// Package anchors declares the insertion-point conventions of generated
// MCP server projects. Each strategy family consumes these tables through
// an anchor.Resolver; the categories and fallback chains are fixed at
// compile time rather than ad hoc string matching per call site.
package anchors

import (
	"path/filepath"
	"regexp"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/anchor"
)

// Categories, in logical file order. Fallback chains always point at
// logically prior categories.
const (
	ToolImports      anchor.Category = "imports:tools"
	ResourceImports  anchor.Category = "imports:resources"
	AuthImports      anchor.Category = "imports:auth"
	ToolRegister     anchor.Category = "register:tools"
	ResourceRegister anchor.Category = "register:resources"
	AuthRegister     anchor.Category = "register:auth"
	BindingList      anchor.Category = "bindings"
	BindingEnv       anchor.Category = "bindings:env"
	BindingAccessors anchor.Category = "bindings:accessors"
)

// File targets, project-relative.
var (
	EntryFile    = filepath.Join("src", "index.ts")
	TypesFile    = filepath.Join("src", "types.ts")
	ManifestFile = "mcpkit.yml"
)

// Table returns the full anchor table for an MCP server project.
func Table() []anchor.Anchor {
	return []anchor.Anchor{
		{
			Category:       ToolImports,
			File:           EntryFile,
			Marker:         regexp.MustCompile(`^\s*// mcpkit:imports:tools\b`),
			Block:          regexp.MustCompile(`^\s*import\b.*from\s+["']\./tools/`),
			Header:         "// tool imports",
			ImportFallback: true,
		},
		{
			Category:       ResourceImports,
			File:           EntryFile,
			Marker:         regexp.MustCompile(`^\s*// mcpkit:imports:resources\b`),
			Block:          regexp.MustCompile(`^\s*import\b.*from\s+["']\./resources/`),
			Fallbacks:      []anchor.Category{ToolImports},
			Header:         "// resource imports",
			ImportFallback: true,
		},
		{
			Category:       AuthImports,
			File:           EntryFile,
			Marker:         regexp.MustCompile(`^\s*// mcpkit:imports:auth\b`),
			Block:          regexp.MustCompile(`^\s*import\b.*from\s+["']\./auth/`),
			Fallbacks:      []anchor.Category{ResourceImports, ToolImports},
			Header:         "// auth imports",
			ImportFallback: true,
		},
		{
			Category:       ToolRegister,
			File:           EntryFile,
			Marker:         regexp.MustCompile(`^\s*// mcpkit:register:tools\b`),
			Block:          regexp.MustCompile(`^\s*register\w+Tool\(server\)`),
			Header:         "// tool registrations",
			ImportFallback: true,
		},
		{
			Category:       ResourceRegister,
			File:           EntryFile,
			Marker:         regexp.MustCompile(`^\s*// mcpkit:register:resources\b`),
			Block:          regexp.MustCompile(`^\s*register\w+Resource\(server\)`),
			Fallbacks:      []anchor.Category{ToolRegister},
			Header:         "// resource registrations",
			ImportFallback: true,
		},
		{
			Category:       AuthRegister,
			File:           EntryFile,
			Marker:         regexp.MustCompile(`^\s*// mcpkit:register:auth\b`),
			Block:          regexp.MustCompile(`^\s*installAuthGuard\(server`),
			Fallbacks:      []anchor.Category{ResourceRegister, ToolRegister},
			Header:         "// auth",
			ImportFallback: true,
		},
		{
			// YAML target: the import-statement tier makes no sense here,
			// so a missing marker is AnchorMissing outright.
			Category: BindingList,
			File:     ManifestFile,
			Marker:   regexp.MustCompile(`^\s*# mcpkit:bindings\b`),
			// Matches every line of a stanza, not just its first, so the
			// next binding lands after the whole previous one.
			Block: regexp.MustCompile(`^\s*(-\s+name|type):\s`),
		},
		{
			Category: BindingEnv,
			File:     TypesFile,
			Marker:   regexp.MustCompile(`^\s*// mcpkit:bindings:env\b`),
			Block:    regexp.MustCompile(`^\s*[A-Z][A-Z0-9_]*:\s`),
		},
		{
			Category: BindingAccessors,
			File:     TypesFile,
			Marker:   regexp.MustCompile(`^\s*// mcpkit:bindings:accessors\b`),
			Block:    regexp.MustCompile(`^\s*export const \w+ = \(env: Env\)`),
		},
	}
}

// NewResolver builds a resolver over the project anchor table.
func NewResolver() *anchor.Resolver {
	return anchor.NewResolver(Table())
}
