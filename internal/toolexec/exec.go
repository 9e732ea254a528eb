// Package toolexec runs external developer tooling (type-checkers,
// formatters) on behalf of validation checks. Commands always run under a
// deadline so a wedged tool surfaces as a failed check, never a hang.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultTimeout bounds a single tool invocation.
const DefaultTimeout = 2 * time.Minute

// Executor runs external commands.
type Executor struct {
	stdout io.Writer
	stderr io.Writer
	dir    string
	env    []string

	// commandFunc can be swapped in tests
	commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// Options configures command execution.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Dir    string   // Working directory
	Env    []string // Additional environment variables
}

// New creates an executor with sensible defaults.
func New(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Executor{
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		dir:         opts.Dir,
		env:         opts.Env,
		commandFunc: exec.CommandContext,
	}
}

// Available reports whether a command can be found on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Run executes a command and streams its output to the executor's writers.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	cmd := e.commandFunc(ctx, name, args...)
	cmd.Dir = e.dir
	if len(e.env) > 0 {
		cmd.Env = append(os.Environ(), e.env...)
	}
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s timed out after %s", name, DefaultTimeout)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

// RunCapture executes a command and returns its combined output, for
// embedding tool diagnostics in check failure messages.
func (e *Executor) RunCapture(ctx context.Context, name string, args ...string) (string, error) {
	var buf bytes.Buffer
	capture := &Executor{
		stdout:      &buf,
		stderr:      &buf,
		dir:         e.dir,
		env:         e.env,
		commandFunc: e.commandFunc,
	}
	err := capture.Run(ctx, name, args...)
	return buf.String(), err
}

// RunWithSpinner runs a command behind a progress spinner, discarding the
// tool's own output. Used by long operations invoked interactively.
func (e *Executor) RunWithSpinner(ctx context.Context, message, name string, args ...string) error {
	done := make(chan error, 1)
	go func() {
		quiet := &Executor{
			stdout:      io.Discard,
			stderr:      io.Discard,
			dir:         e.dir,
			env:         e.env,
			commandFunc: e.commandFunc,
		}
		done <- quiet.Run(ctx, name, args...)
	}()

	m := newSpinnerModel(message)
	p := tea.NewProgram(m, tea.WithOutput(e.stderr))

	go func() {
		_, _ = p.Run()
	}()

	err := <-done
	p.Send(spinnerDoneMsg{err: err})
	time.Sleep(50 * time.Millisecond)
	p.Quit()

	return err
}

type spinnerDoneMsg struct {
	err error
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &spinnerModel{spinner: s, message: message}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("✖ %s\n", m.message)
		}
		return fmt.Sprintf("✔ %s\n", m.message)
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.message)
}
