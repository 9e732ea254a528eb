// Package checks provides the gate checks shared by mcpkit strategies.
package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/gate"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/project"
	"github.com/mikec-ai/mcp-server-kit-sub002/internal/toolexec"
)

// FileExists is a critical check that a generated file landed and is
// non-empty.
func FileExists(projectRoot, relPath string) gate.Check {
	return gate.Check{
		Name:        "file-exists:" + relPath,
		Description: fmt.Sprintf("%s exists and is non-empty", relPath),
		Critical:    true,
		Fn: func(ctx context.Context) error {
			info, err := os.Stat(filepath.Join(projectRoot, relPath))
			if err != nil {
				return fmt.Errorf("%s missing: %w", relPath, err)
			}
			if info.Size() == 0 {
				return fmt.Errorf("%s is empty", relPath)
			}
			return nil
		},
	}
}

// FileContains is a critical check that a wiring edit actually landed.
func FileContains(projectRoot, relPath, needle string) gate.Check {
	return gate.Check{
		Name:        "wired:" + relPath,
		Description: fmt.Sprintf("%s contains %q", relPath, needle),
		Critical:    true,
		Fn: func(ctx context.Context) error {
			data, err := os.ReadFile(filepath.Join(projectRoot, relPath))
			if err != nil {
				return fmt.Errorf("reading %s: %w", relPath, err)
			}
			if !strings.Contains(string(data), needle) {
				return fmt.Errorf("%s does not contain %q", relPath, needle)
			}
			return nil
		},
	}
}

// ManifestValid is a critical check that mcpkit.yml still parses and has a
// sane shape after an edit.
func ManifestValid(projectRoot string) gate.Check {
	return gate.Check{
		Name:        "manifest-valid",
		Description: "mcpkit.yml parses and has no duplicate bindings",
		Critical:    true,
		Fn: func(ctx context.Context) error {
			return project.ValidateManifest(projectRoot)
		},
	}
}

// BalancedBraces is an advisory check that a TypeScript file has balanced
// braces — a cheap smoke test for a botched insertion, not a parser.
func BalancedBraces(projectRoot, relPath string) gate.Check {
	return gate.Check{
		Name:        "braces:" + relPath,
		Description: fmt.Sprintf("%s has balanced braces", relPath),
		Critical:    false,
		Fn: func(ctx context.Context) error {
			data, err := os.ReadFile(filepath.Join(projectRoot, relPath))
			if err != nil {
				return fmt.Errorf("reading %s: %w", relPath, err)
			}
			depth := 0
			for _, r := range string(data) {
				switch r {
				case '{':
					depth++
				case '}':
					depth--
				}
			}
			if depth != 0 {
				return fmt.Errorf("%s has unbalanced braces (depth %d)", relPath, depth)
			}
			return nil
		},
	}
}

// Typecheck is an advisory check that runs the project's TypeScript
// compiler when one is installed. Projects without tsc pass trivially —
// the check validates mcpkit's output, not the user's toolchain.
func Typecheck(projectRoot string) gate.Check {
	return gate.Check{
		Name:        "typecheck",
		Description: "tsc --noEmit succeeds",
		Critical:    false,
		Fn: func(ctx context.Context) error {
			tsc := filepath.Join(projectRoot, "node_modules", ".bin", "tsc")
			if _, err := os.Stat(tsc); err != nil {
				if !toolexec.Available("tsc") {
					return nil
				}
				tsc = "tsc"
			}
			ex := toolexec.New(&toolexec.Options{Dir: projectRoot})
			out, err := ex.RunCapture(ctx, tsc, "--noEmit")
			if err != nil {
				return fmt.Errorf("tsc --noEmit failed: %s", firstLines(out, 5))
			}
			return nil
		},
	}
}

func firstLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "; ")
}
