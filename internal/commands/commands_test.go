package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikec-ai/mcp-server-kit-sub002/internal/engine"
)

func TestParseParam(t *testing.T) {
	tests := []struct {
		raw      string
		name     string
		typ      string
		optional bool
		wantErr  bool
	}{
		{"query:string", "query", "string", false, false},
		{"limit:number?", "limit", "number", true, false},
		{"flag:boolean", "flag", "boolean", false, false},
		{"noType", "", "", false, true},
		{":string", "", "", false, true},
		{"name:", "", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, typ, optional, err := parseParam(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.typ, typ)
			assert.Equal(t, tt.optional, optional)
		})
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &engine.ValidationError{Strategy: "add-tool", Err: errors.New("x")}, "config_validation"},
		{"backup", &engine.BackupError{Err: errors.New("x")}, "backup_creation"},
		{"execution", &engine.ExecutionError{Strategy: "add-tool", Err: errors.New("x")}, "execution"},
		{
			"rollback wins over its wrapped execution error",
			&engine.RollbackError{
				Original:     &engine.ExecutionError{Strategy: "add-tool", Err: errors.New("x")},
				Cause:        errors.New("y"),
				SnapshotPath: "/tmp/.backup-add-tool-1",
			},
			"rollback_failed",
		},
		{"plain", errors.New("x"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorKind(tt.err))
		})
	}
}

func TestPickSnapshot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".backup-add-tool-1000"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".backup-add-binding-2000"), 0755))

	h, err := pickSnapshot(root, nil)
	require.NoError(t, err)
	assert.Equal(t, "add-binding", h.Purpose, "default is the newest snapshot")

	h, err = pickSnapshot(root, []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, "add-tool", h.Purpose)

	_, err = pickSnapshot(root, []string{"5"})
	assert.Error(t, err)

	_, err = pickSnapshot(root, []string{"abc"})
	assert.Error(t, err)

	_, err = pickSnapshot(t.TempDir(), nil)
	assert.Error(t, err, "no snapshots is an error, not a silent default")
}

func TestRootCommandWiring(t *testing.T) {
	root := RootCmd()
	root.AddCommand(NewCmd())
	root.AddCommand(AddCmd())
	root.AddCommand(SnapshotsCmd())

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"new", "add", "snapshots"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	add, _, err := root.Find([]string{"add", "tool"})
	require.NoError(t, err)
	assert.Equal(t, "tool", add.Name())
	for _, flag := range []string{"skip-backup", "dry-run", "force", "skip", "diff", "param", "description"} {
		assert.NotNil(t, add.Flags().Lookup(flag), "add tool missing --%s", flag)
	}
}

func TestConflictFlagsScopedToGeneratingCommands(t *testing.T) {
	root := RootCmd()
	root.AddCommand(AddCmd())

	// tool and resource run the conflict flow and get the full triple
	for _, sub := range []string{"tool", "resource"} {
		cmd, _, err := root.Find([]string{"add", sub})
		require.NoError(t, err)
		for _, flag := range []string{"force", "skip", "diff"} {
			assert.NotNil(t, cmd.Flags().Lookup(flag), "add %s missing --%s", sub, flag)
		}
	}

	// auth overwrites via --force only; there is no interactive flow
	auth, _, err := root.Find([]string{"add", "auth"})
	require.NoError(t, err)
	assert.NotNil(t, auth.Flags().Lookup("force"))
	assert.Nil(t, auth.Flags().Lookup("skip"), "add auth must not accept --skip")
	assert.Nil(t, auth.Flags().Lookup("diff"), "add auth must not accept --diff")

	// binding writes no module file at all
	binding, _, err := root.Find([]string{"add", "binding"})
	require.NoError(t, err)
	for _, flag := range []string{"force", "skip", "diff"} {
		assert.Nil(t, binding.Flags().Lookup(flag), "add binding must not accept --%s", flag)
	}
	assert.NotNil(t, binding.Flags().Lookup("skip-backup"))
	assert.NotNil(t, binding.Flags().Lookup("dry-run"))
}
