package conflict

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	diffHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hunkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	addedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("22"))
	removedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("52"))
)

const (
	diffContextLines = 3
	diffMaxLines     = 10000
)

// Unified renders a unified diff between the existing and generated
// content of path, styled for the terminal. Identical inputs produce "".
func Unified(path string, existing, generated []byte) string {
	if isBinary(existing) || isBinary(generated) {
		return "Binary files differ\n"
	}

	oldLines := splitLines(string(existing))
	newLines := splitLines(string(generated))

	if len(oldLines) > diffMaxLines || len(newLines) > diffMaxLines {
		return fmt.Sprintf("Files too large for diff (%d and %d lines)\n", len(oldLines), len(newLines))
	}

	script := editScript(oldLines, newLines)
	hunks := buildHunks(script, diffContextLines)
	if len(hunks) == 0 {
		return ""
	}

	width := terminalWidth()

	var buf strings.Builder
	buf.WriteString(diffHeaderStyle.Render("--- "+path) + "\n")
	buf.WriteString(diffHeaderStyle.Render("+++ "+path+" (generated)") + "\n")
	for _, h := range hunks {
		buf.WriteString(formatHunk(h, width))
	}
	return buf.String()
}

type op int

const (
	opKeep op = iota
	opAdd
	opDel
)

type diffLine struct {
	oldNum  int // 1-based line number in old content, 0 if added
	newNum  int // 1-based line number in new content, 0 if removed
	content string
	op      op
}

type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []diffLine
}

// editScript computes the shortest edit script between two line slices
// using the Myers algorithm ("An O(ND) Difference Algorithm and Its
// Variations", 1986).
func editScript(old, newer []string) []diffLine {
	n, m := len(old), len(newer)
	maxD := n + m

	v := map[int]int{1: 0}
	var trace []map[int]int

	for d := 0; d <= maxD; d++ {
		snapshot := make(map[int]int, len(v))
		for k, x := range v {
			snapshot[k] = x
		}
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[k-1] < v[k+1]) {
				x = v[k+1]
			} else {
				x = v[k-1] + 1
			}
			y := x - k
			for x < n && y < m && old[x] == newer[y] {
				x++
				y++
			}
			v[k] = x
			if x >= n && y >= m {
				return backtrack(trace, old, newer)
			}
		}
	}
	return backtrack(trace, old, newer)
}

func backtrack(trace []map[int]int, old, newer []string) []diffLine {
	var result []diffLine
	prepend := func(l diffLine) {
		result = append([]diffLine{l}, result...)
	}

	x, y := len(old), len(newer)
	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[k-1] < v[k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			prepend(diffLine{oldNum: x + 1, newNum: y + 1, content: old[x], op: opKeep})
		}

		if d > 0 {
			if x == prevX {
				y--
				prepend(diffLine{newNum: y + 1, content: newer[y], op: opAdd})
			} else {
				x--
				prepend(diffLine{oldNum: x + 1, content: old[x], op: opDel})
			}
		}
	}
	return result
}

// buildHunks groups changed lines into hunks with surrounding context.
func buildHunks(lines []diffLine, context int) []hunk {
	var hunks []hunk
	var current *hunk

	for i, line := range lines {
		if line.op == opKeep {
			if current == nil {
				continue
			}
			current.lines = append(current.lines, line)

			following := 0
			for j := i + 1; j < len(lines) && lines[j].op == opKeep; j++ {
				following++
			}
			if following > context*2 && i < len(lines)-1 {
				trim := following - context
				if trim > 0 && trim <= len(current.lines) {
					current.lines = current.lines[:len(current.lines)-trim]
				}
				finalizeHunk(current)
				hunks = append(hunks, *current)
				current = nil
			}
			continue
		}

		if current == nil {
			start := i - context
			if start < 0 {
				start = 0
			}
			current = &hunk{}
			current.lines = append(current.lines, lines[start:i]...)
		}
		current.lines = append(current.lines, line)
	}

	if current != nil {
		finalizeHunk(current)
		hunks = append(hunks, *current)
	}
	return hunks
}

func finalizeHunk(h *hunk) {
	for _, l := range h.lines {
		if l.oldNum > 0 && (h.oldStart == 0 || l.oldNum < h.oldStart) {
			h.oldStart = l.oldNum
		}
		if l.newNum > 0 && (h.newStart == 0 || l.newNum < h.newStart) {
			h.newStart = l.newNum
		}
		if l.op != opAdd {
			h.oldCount++
		}
		if l.op != opDel {
			h.newCount++
		}
	}
}

func formatHunk(h hunk, width int) string {
	var buf strings.Builder
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.oldStart, h.oldCount, h.newStart, h.newCount)
	buf.WriteString(hunkStyle.Render(header) + "\n")

	for _, line := range h.lines {
		content := truncate(strings.ReplaceAll(line.content, "\t", "    "), width-4)
		switch line.op {
		case opAdd:
			buf.WriteString(addedStyle.Render("+ "+content) + "\n")
		case opDel:
			buf.WriteString(removedStyle.Render("- "+content) + "\n")
		default:
			buf.WriteString("  " + content + "\n")
		}
	}
	return buf.String()
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		return w
	}
	return 80
}

func truncate(s string, max int) string {
	if max <= 3 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

func isBinary(data []byte) bool {
	limit := len(data)
	if limit > 8000 {
		limit = 8000
	}
	for _, b := range data[:limit] {
		if b == 0 {
			return true
		}
	}
	return false
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
