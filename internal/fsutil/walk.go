package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultIgnoreDirs are directories never traversed when walking a project tree.
// Snapshot side directories (.backup-*) are handled separately because they are
// matched by prefix, not by exact name.
var DefaultIgnoreDirs = []string{
	"node_modules", ".git", ".svn", ".hg",
	"dist", "build", ".wrangler", ".idea", ".vscode",
}

// WalkOptions configures directory traversal behavior.
type WalkOptions struct {
	IgnoreDirs     []string // Directories to skip (default: DefaultIgnoreDirs)
	IgnorePatterns []string // File patterns to skip (e.g., "*.tmp")
	IncludeHidden  bool     // Include hidden files/dirs (default: false)
	// NoIgnores disables the directory ignore list entirely, so a
	// directory named node_modules or dist inside the tree is traversed
	// like any other. Snapshot side directories (.backup-*) are still
	// skipped. Required by snapshot copies and tree hashing, where
	// dropping anything would corrupt a later restore.
	NoIgnores bool
}

// Walk traverses a directory tree with configurable ignore patterns.
// The visitor is called for each file and directory. Return filepath.SkipDir
// from the visitor to skip a directory.
func Walk(rootPath string, opts WalkOptions, visitor func(path string, info os.FileInfo) error) error {
	ignoreDirs := opts.IgnoreDirs
	if opts.NoIgnores {
		ignoreDirs = nil
	} else if len(ignoreDirs) == 0 {
		ignoreDirs = DefaultIgnoreDirs
	}

	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden files/directories unless explicitly included
		if !opts.IncludeHidden && strings.HasPrefix(info.Name(), ".") && path != rootPath {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			// Snapshot side directories must never be captured inside a snapshot
			if strings.HasPrefix(info.Name(), ".backup-") {
				return filepath.SkipDir
			}
			for _, ignore := range ignoreDirs {
				if info.Name() == ignore {
					return filepath.SkipDir
				}
			}
		}

		if !info.IsDir() && len(opts.IgnorePatterns) > 0 {
			for _, pattern := range opts.IgnorePatterns {
				if matched, _ := filepath.Match(pattern, info.Name()); matched {
					return nil
				}
			}
		}

		return visitor(path, info)
	})
}

// WalkWithDefaults walks a directory tree with default ignore patterns.
func WalkWithDefaults(rootPath string, visitor func(path string, info os.FileInfo) error) error {
	return Walk(rootPath, WalkOptions{}, visitor)
}
