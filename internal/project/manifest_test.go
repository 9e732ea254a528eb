package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ManifestName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestLoadManifest(t *testing.T) {
	root := writeManifest(t, `name: demo
version: 0.1.0
transport: stdio
bindings:
  - name: MY_CACHE
    type: kv
  - name: DB
    type: d1
`)

	m, err := LoadManifest(root)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if m.Name != "demo" || m.Transport != "stdio" {
		t.Errorf("manifest = %+v", m)
	}
	if len(m.Bindings) != 2 {
		t.Fatalf("Bindings = %v, want 2", m.Bindings)
	}
	// Binding names keep their case despite viper lowercasing config keys
	if m.Bindings[0].Name != "MY_CACHE" {
		t.Errorf("Bindings[0].Name = %q, want MY_CACHE", m.Bindings[0].Name)
	}
	if !m.HasBinding("DB") || m.HasBinding("MISSING") {
		t.Error("HasBinding gave wrong answers")
	}
}

func TestLoadManifestMissing(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want not-found error", err)
	}
}

func TestLoadManifestNoName(t *testing.T) {
	root := writeManifest(t, "version: 0.1.0\n")
	_, err := LoadManifest(root)
	if err == nil || !strings.Contains(err.Error(), "name") {
		t.Errorf("err = %v, want missing-name error", err)
	}
}

func TestValidateManifest(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"valid",
			"name: demo\nversion: 0.1.0\ntransport: stdio\nbindings:\n  - name: A\n    type: kv\n",
			"",
		},
		{
			"valid without bindings",
			"name: demo\nversion: 0.1.0\ntransport: stdio\n",
			"",
		},
		{
			"broken yaml",
			"name: demo\nbindings: [unclosed\n",
			"not valid YAML",
		},
		{
			"lost name",
			"version: 0.1.0\n",
			"lost its project name",
		},
		{
			"binding without type",
			"name: demo\nbindings:\n  - name: A\n",
			"missing name or type",
		},
		{
			"duplicate binding",
			"name: demo\nbindings:\n  - name: A\n    type: kv\n  - name: A\n    type: d1\n",
			"declares binding A twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeManifest(t, tt.content)
			err := ValidateManifest(root)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateManifest failed: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
