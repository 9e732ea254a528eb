package toolexec

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strings"
	"testing"
)

func TestRunEchoesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell test")
	}

	var out bytes.Buffer
	ex := New(&Options{Stdout: &out, Stderr: &out})

	if err := ex.Run(context.Background(), "sh", "-c", "echo hello"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "hello") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell test")
	}

	ex := New(nil)
	err := ex.Run(context.Background(), "sh", "-c", "exit 3")
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "sh failed") {
		t.Errorf("err = %v", err)
	}
}

func TestRunCapture(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell test")
	}

	ex := New(nil)
	out, err := ex.RunCapture(context.Background(), "sh", "-c", "echo captured; echo err >&2")
	if err != nil {
		t.Fatalf("RunCapture failed: %v", err)
	}
	if !strings.Contains(out, "captured") || !strings.Contains(out, "err") {
		t.Errorf("out = %q, want stdout and stderr combined", out)
	}
}

func TestRunUsesCommandFunc(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell test")
	}

	var gotName string
	ex := New(nil)
	ex.commandFunc = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotName = name
		return exec.CommandContext(ctx, "true")
	}

	if err := ex.Run(context.Background(), "tsc", "--noEmit"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if gotName != "tsc" {
		t.Errorf("commandFunc got %q", gotName)
	}
}

func TestAvailable(t *testing.T) {
	if !Available("sh") && runtime.GOOS != "windows" {
		t.Error("sh should be on PATH")
	}
	if Available("definitely-not-a-real-command-xyz") {
		t.Error("nonsense command should not be available")
	}
}
