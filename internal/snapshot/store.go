// Package snapshot implements point-in-time filesystem copies used by the
// scaffolding engine for rollback.
//
// A snapshot is a plain directory copy named .backup-<purpose>-<epoch-millis>
// at the project root, safe to inspect or delete manually. Restore replaces
// the source subtree wholesale (delete-then-copy-back): a file added to src/
// by anything other than mcpkit between snapshot and rollback is destroyed.
// That is a deliberate consequence of the single-invoker model — mcpkit
// assumes it is the only writer while an operation is in flight.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/fsutil"
)

// ErrBackupMissing is returned by Restore when the snapshot directory no
// longer exists on disk.
var ErrBackupMissing = errors.New("backup directory missing")

const dirPrefix = ".backup-"

// DefaultAllowList is the set of top-level files captured alongside the
// source subtree. Files that don't exist are silently skipped.
var DefaultAllowList = []string{"mcpkit.yml", "package.json", "tsconfig.json"}

// Store creates, restores and removes snapshots for one purpose
// (e.g. "add-tool"). The purpose becomes part of the directory name so
// abandoned snapshots can be attributed to the operation that made them.
type Store struct {
	purpose   string
	sourceDir string
	allowList []string
}

// Handle identifies one snapshot directory on disk.
type Handle struct {
	Path      string    // Absolute path of the snapshot directory
	Purpose   string    // Operation that created it
	CreatedAt time.Time // Parsed from the directory name
}

// NewStore creates a snapshot store for the given purpose, capturing the
// "src" subtree and the default top-level allow-list.
func NewStore(purpose string) *Store {
	return &Store{
		purpose:   purpose,
		sourceDir: "src",
		allowList: DefaultAllowList,
	}
}

// Create copies the source subtree plus the allow-listed top-level files
// into a new timestamped side directory and returns its handle.
//
// A copy either completes or the caller sees the error before any dependent
// step runs; there is no partial-snapshot state to resume from.
func (s *Store) Create(projectRoot string) (*Handle, error) {
	now := time.Now()
	dir := filepath.Join(projectRoot, fmt.Sprintf("%s%s-%d", dirPrefix, s.purpose, now.UnixMilli()))

	// Extremely close invocations could collide on the millisecond
	for i := 0; ; i++ {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			break
		}
		dir = filepath.Join(projectRoot, fmt.Sprintf("%s%s-%d", dirPrefix, s.purpose, now.UnixMilli()+int64(i+1)))
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory %s: %w", dir, err)
	}

	srcPath := filepath.Join(projectRoot, s.sourceDir)
	if _, err := os.Stat(srcPath); err == nil {
		if err := fsutil.CopyTree(srcPath, filepath.Join(dir, s.sourceDir)); err != nil {
			os.RemoveAll(dir)
			return nil, fmt.Errorf("snapshotting %s: %w", s.sourceDir, err)
		}
	}

	for _, name := range s.allowList {
		filePath := filepath.Join(projectRoot, name)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			continue // missing allow-listed files are fine
		}
		if err := fsutil.CopyFile(filePath, filepath.Join(dir, name)); err != nil {
			os.RemoveAll(dir)
			return nil, fmt.Errorf("snapshotting %s: %w", name, err)
		}
	}

	return &Handle{Path: dir, Purpose: s.purpose, CreatedAt: now}, nil
}

// Restore puts the project back to the state captured in the snapshot.
// The source subtree is replaced by full delete-then-copy-back (overwrite,
// not merge); each allow-listed top-level file present in the snapshot is
// restored by overwrite.
func (s *Store) Restore(h *Handle, projectRoot string) error {
	if _, err := os.Stat(h.Path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrBackupMissing, h.Path)
	}

	livePath := filepath.Join(projectRoot, s.sourceDir)
	savedPath := filepath.Join(h.Path, s.sourceDir)

	if err := os.RemoveAll(livePath); err != nil {
		return fmt.Errorf("removing %s for restore: %w", livePath, err)
	}
	if _, err := os.Stat(savedPath); err == nil {
		if err := fsutil.CopyTree(savedPath, livePath); err != nil {
			return fmt.Errorf("restoring %s: %w", s.sourceDir, err)
		}
	}

	for _, name := range s.allowList {
		saved := filepath.Join(h.Path, name)
		if _, err := os.Stat(saved); os.IsNotExist(err) {
			continue
		}
		if err := fsutil.CopyFile(saved, filepath.Join(projectRoot, name)); err != nil {
			return fmt.Errorf("restoring %s: %w", name, err)
		}
	}

	return nil
}

// Remove deletes the snapshot directory. Removing an already-removed
// snapshot is not an error.
func (s *Store) Remove(h *Handle) error {
	if err := os.RemoveAll(h.Path); err != nil {
		return fmt.Errorf("removing snapshot %s: %w", h.Path, err)
	}
	return nil
}

// List enumerates unresolved snapshots at the project root, newest first.
// Used for forensic recovery after a failed rollback.
func List(projectRoot string) ([]Handle, error) {
	entries, err := os.ReadDir(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("reading project root %s: %w", projectRoot, err)
	}

	var handles []Handle
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), dirPrefix) {
			continue
		}
		h, ok := parseDirName(e.Name())
		if !ok {
			continue
		}
		h.Path = filepath.Join(projectRoot, e.Name())
		handles = append(handles, h)
	}

	sort.Slice(handles, func(i, j int) bool {
		return handles[i].CreatedAt.After(handles[j].CreatedAt)
	})
	return handles, nil
}

// parseDirName extracts purpose and timestamp from
// ".backup-<purpose>-<epoch-millis>". Purposes may themselves contain
// hyphens, so the timestamp is the final segment.
func parseDirName(name string) (Handle, bool) {
	rest := strings.TrimPrefix(name, dirPrefix)
	idx := strings.LastIndex(rest, "-")
	if idx <= 0 || idx == len(rest)-1 {
		return Handle{}, false
	}
	millis, err := strconv.ParseInt(rest[idx+1:], 10, 64)
	if err != nil {
		return Handle{}, false
	}
	return Handle{
		Purpose:   rest[:idx],
		CreatedAt: time.UnixMilli(millis),
	}, true
}
