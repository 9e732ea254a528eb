// Package conflict decides what to do when a generator wants to write a
// file that already exists. Resolution happens before the transactional
// run starts, so an interactive "cancel" costs nothing to undo.
package conflict

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Resolution is the decision for one existing file.
type Resolution int

const (
	Skip Resolution = iota
	Overwrite
	ShowDiff
	Cancel
)

// Strategy decides how conflicts get resolved.
type Strategy interface {
	Resolve(path string, existing, generated []byte) (Resolution, error)
}

var (
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Bold(true)
)

// Resolver picks a strategy from the CLI flags. --force conflicts with
// --skip and --diff.
type Resolver struct {
	strategy Strategy
}

// NewResolver creates a conflict resolver from the flag triple.
func NewResolver(force, skip, diff bool) (*Resolver, error) {
	if force && (skip || diff) {
		return nil, fmt.Errorf("--force cannot be combined with --skip or --diff")
	}
	var s Strategy
	switch {
	case force:
		s = forceStrategy{}
	case skip:
		s = skipStrategy{}
	case diff:
		s = diffStrategy{}
	default:
		s = interactiveStrategy{}
	}
	return &Resolver{strategy: s}, nil
}

// Resolve returns the decision for one existing file.
func (r *Resolver) Resolve(path string, existing, generated []byte) (Resolution, error) {
	return r.strategy.Resolve(path, existing, generated)
}

// forceStrategy always overwrites, no prompts.
type forceStrategy struct{}

func (forceStrategy) Resolve(string, []byte, []byte) (Resolution, error) {
	return Overwrite, nil
}

// skipStrategy always keeps the existing file, no prompts.
type skipStrategy struct{}

func (skipStrategy) Resolve(string, []byte, []byte) (Resolution, error) {
	return Skip, nil
}

// diffStrategy shows the diff first, then hands off to the interactive
// menu for the decision.
type diffStrategy struct{}

func (diffStrategy) Resolve(path string, existing, generated []byte) (Resolution, error) {
	diff := Unified(path, existing, generated)

	if strings.Count(diff, "\n") > 20 {
		model := newViewerModel(path, diff)
		p := tea.NewProgram(model, tea.WithAltScreen())
		final, err := p.Run()
		if err != nil {
			return Cancel, fmt.Errorf("showing diff: %w", err)
		}
		if final.(viewerModel).cancelled {
			return Cancel, nil
		}
	} else {
		fmt.Println(diff)
	}

	return interactiveStrategy{}.Resolve(path, existing, generated)
}

// interactiveStrategy presents a keyboard menu. Choosing "show diff"
// loops back through diffStrategy so the user can review repeatedly
// before deciding.
type interactiveStrategy struct{}

func (interactiveStrategy) Resolve(path string, existing, generated []byte) (Resolution, error) {
	model := newMenuModel(path)
	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return Cancel, fmt.Errorf("showing menu: %w", err)
	}

	m := final.(menuModel)
	if m.selected == nil {
		return Cancel, nil
	}
	if *m.selected == ShowDiff {
		return diffStrategy{}.Resolve(path, existing, generated)
	}
	return *m.selected, nil
}

// menuModel is the bubbletea model for the conflict menu.
type menuModel struct {
	path     string
	choices  []string
	cursor   int
	selected *Resolution
}

func newMenuModel(path string) menuModel {
	return menuModel{
		path: path,
		choices: []string{
			"Show diff and decide",
			"Skip (keep existing file)",
			"Overwrite (replace with generated code)",
			"Cancel operation",
		},
	}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter":
			r := [...]Resolution{ShowDiff, Skip, Overwrite, Cancel}[m.cursor]
			m.selected = &r
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	var b strings.Builder
	b.WriteString(warningStyle.Render("File conflict: ") + titleStyle.Render(m.path) + "\n\n")
	b.WriteString(mutedStyle.Render("  [↑/↓] Navigate    [Enter] Select    [q] Cancel") + "\n\n")
	for i, choice := range m.choices {
		if m.cursor == i {
			b.WriteString("  " + selectedStyle.Render("> "+choice) + "\n")
		} else {
			b.WriteString("    " + choice + "\n")
		}
	}
	return b.String()
}

// viewerModel is the bubbletea model for full-screen diff display.
type viewerModel struct {
	path      string
	diff      string
	viewport  viewport.Model
	ready     bool
	cancelled bool
}

func newViewerModel(path, diff string) viewerModel {
	return viewerModel{path: path, diff: diff}
}

func (m viewerModel) Init() tea.Cmd { return nil }

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "q":
			return m, tea.Quit
		case "up", "k":
			m.viewport.ScrollUp(1)
		case "down", "j":
			m.viewport.ScrollDown(1)
		case "pgup", "b":
			m.viewport.PageUp()
		case "pgdown", "f", "space":
			m.viewport.PageDown()
		}
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, msg.Height-3)
			m.viewport.SetContent(m.diff)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = msg.Height - 3
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m viewerModel) View() string {
	if !m.ready {
		return "Loading diff..."
	}
	header := titleStyle.Render("Diff: "+m.path) + "\n"
	footer := "\n" + mutedStyle.Render("  [↑/↓] Scroll    [q] Done    [esc] Cancel")
	return header + m.viewport.View() + footer
}

// ReadExisting loads the current content of a possibly-absent file.
func ReadExisting(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}
