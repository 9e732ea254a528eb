package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCreateAndRestore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mcpkit.yml", "name: demo\n")
	writeFile(t, root, filepath.Join("src", "index.ts"), "original")

	store := NewStore("add-tool")
	h, err := store.Create(root)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if h.Purpose != "add-tool" {
		t.Errorf("Purpose = %q, want add-tool", h.Purpose)
	}

	// Mutate the live tree
	writeFile(t, root, filepath.Join("src", "index.ts"), "mutated")
	writeFile(t, root, filepath.Join("src", "tools", "extra.ts"), "new file")
	writeFile(t, root, "mcpkit.yml", "name: broken\n")

	if err := store.Restore(h, root); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(root, "src", "index.ts"))
	if err != nil || string(content) != "original" {
		t.Errorf("index.ts = %q, want original", content)
	}
	manifest, _ := os.ReadFile(filepath.Join(root, "mcpkit.yml"))
	if string(manifest) != "name: demo\n" {
		t.Errorf("mcpkit.yml = %q, want pre-snapshot content", manifest)
	}

	// Restore is overwrite, not merge: the extra file is gone
	if _, err := os.Stat(filepath.Join(root, "src", "tools", "extra.ts")); !os.IsNotExist(err) {
		t.Error("extra.ts should have been removed by restore")
	}
}

func TestRestorePreservesIgnoredNameDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, filepath.Join("src", "index.ts"), "original")
	// Directory names the project walk normally skips must still be
	// captured: restore replaces src/ wholesale, so anything missing from
	// the snapshot would be destroyed.
	writeFile(t, root, filepath.Join("src", "dist", "keep.txt"), "built artifact")
	writeFile(t, root, filepath.Join("src", "node_modules", "pkg", "index.js"), "vendored dep")

	store := NewStore("add-tool")
	h, err := store.Create(root)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	writeFile(t, root, filepath.Join("src", "index.ts"), "mutated")
	if err := store.Restore(h, root); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	kept, err := os.ReadFile(filepath.Join(root, "src", "dist", "keep.txt"))
	if err != nil || string(kept) != "built artifact" {
		t.Errorf("src/dist/keep.txt after restore = %q, %v", kept, err)
	}
	dep, err := os.ReadFile(filepath.Join(root, "src", "node_modules", "pkg", "index.js"))
	if err != nil || string(dep) != "vendored dep" {
		t.Errorf("src/node_modules/pkg/index.js after restore = %q, %v", dep, err)
	}
}

func TestRestoreMissingSnapshot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, filepath.Join("src", "index.ts"), "content")

	store := NewStore("add-tool")
	h, err := store.Create(root)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := os.RemoveAll(h.Path); err != nil {
		t.Fatal(err)
	}

	err = store.Restore(h, root)
	if !errors.Is(err, ErrBackupMissing) {
		t.Errorf("Restore error = %v, want ErrBackupMissing", err)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, filepath.Join("src", "index.ts"), "content")

	store := NewStore("add-binding")
	h, err := store.Create(root)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Remove(h); err != nil {
		t.Fatalf("first Remove failed: %v", err)
	}
	if err := store.Remove(h); err != nil {
		t.Errorf("second Remove failed: %v", err)
	}
}

func TestCreateSkipsMissingAllowListFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, filepath.Join("src", "index.ts"), "content")
	// No mcpkit.yml, package.json or tsconfig.json on disk

	store := NewStore("add-tool")
	h, err := store.Create(root)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.Path, "mcpkit.yml")); !os.IsNotExist(err) {
		t.Error("snapshot should not contain a manifest that never existed")
	}
}

func TestListNewestFirst(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".backup-add-tool-1000"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, ".backup-add-binding-3000"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, ".backup-add-resource-2000"), 0755); err != nil {
		t.Fatal(err)
	}
	// Not snapshots: wrong prefix, malformed timestamp
	if err := os.MkdirAll(filepath.Join(root, "src"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, ".backup-bogus-notanumber"), 0755); err != nil {
		t.Fatal(err)
	}

	handles, err := List(root)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(handles) != 3 {
		t.Fatalf("len(handles) = %d, want 3", len(handles))
	}
	wantOrder := []string{"add-binding", "add-resource", "add-tool"}
	for i, want := range wantOrder {
		if handles[i].Purpose != want {
			t.Errorf("handles[%d].Purpose = %q, want %q", i, handles[i].Purpose, want)
		}
	}
}

func TestParseDirNameHyphenatedPurpose(t *testing.T) {
	h, ok := parseDirName(".backup-add-tool-1700000000000")
	if !ok {
		t.Fatal("parseDirName rejected a valid name")
	}
	if h.Purpose != "add-tool" {
		t.Errorf("Purpose = %q, want add-tool", h.Purpose)
	}
	if h.CreatedAt.UnixMilli() != 1700000000000 {
		t.Errorf("CreatedAt millis = %d", h.CreatedAt.UnixMilli())
	}
}
