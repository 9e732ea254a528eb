package anchor

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// importLike matches the import section of a TypeScript/JavaScript file,
// the last-resort insertion target when no anchor or fallback is present.
var importLike = regexp.MustCompile(`^\s*(import\b|const\s+\w+\s*=\s*require\()`)

// Resolver performs anchor lookups and insertions against one anchor table.
// The table is needed so a category's fallbacks can be resolved to their
// markers and block patterns.
type Resolver struct {
	table map[Category]Anchor
}

// NewResolver builds a resolver over a strategy family's anchor table.
func NewResolver(anchors []Anchor) *Resolver {
	table := make(map[Category]Anchor, len(anchors))
	for _, a := range anchors {
		table[a.Category] = a
	}
	return &Resolver{table: table}
}

// Lookup returns the anchor registered for a category.
func (r *Resolver) Lookup(c Category) (Anchor, bool) {
	a, ok := r.table[c]
	return a, ok
}

// HasAnchor reports whether the anchor's own marker is present in the file.
// A missing file is not an error; it simply has no anchor.
func (r *Resolver) HasAnchor(path string, c Category) (bool, error) {
	a, ok := r.table[c]
	if !ok {
		return false, fmt.Errorf("unknown anchor category %q", c)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	for _, line := range splitLines(string(data)) {
		if a.Marker.MatchString(line) {
			return true, nil
		}
	}
	return false, nil
}

// Insert places content at the category's insertion point in the file.
//
// Insertion is idempotent: if dedupeKey (a unique substring of the content,
// typically a generated identifier) or the exact content already appears in
// the file, Insert returns AlreadyPresent without touching it.
//
// Target selection is tiered:
//  1. the anchor's own marker, honoring its before/after position
//  2. the first fallback category found, after its lexically last line
//  3. after the last import-like statement (source files only)
//  4. AnchorMissing, with zero mutation
//
// Within a tier the lexically last match wins, so repeated insertions
// accumulate in file order.
func (r *Resolver) Insert(path string, c Category, content, dedupeKey string) (Result, error) {
	a, ok := r.table[c]
	if !ok {
		return AnchorMissing, fmt.Errorf("unknown anchor category %q", c)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return AnchorMissing, fmt.Errorf("reading %s: %w", path, err)
	}
	text := string(data)

	if dedupeKey != "" && strings.Contains(text, dedupeKey) {
		return AlreadyPresent, nil
	}
	if strings.Contains(text, strings.TrimSpace(content)) {
		return AlreadyPresent, nil
	}

	lines := splitLines(text)

	// Tier 1: the anchor's own marker
	if idx := lastMatch(lines, a.Marker); idx >= 0 {
		insertAt := idx + 1
		if a.Position == Before {
			insertAt = idx
		}
		// Accumulate after previously inserted block lines
		if a.Position == After && a.Block != nil {
			if last := lastMatchFrom(lines, a.Block, idx); last >= 0 {
				insertAt = last + 1
			}
		}
		updated := spliceLines(lines, insertAt, indentLike(lines, idx, content))
		return Inserted, writeBack(path, updated)
	}

	// Tier 2: fallback categories, in priority order
	for _, fc := range a.Fallbacks {
		fb, ok := r.table[fc]
		if !ok {
			continue
		}
		target := -1
		if fb.Block != nil {
			target = lastMatch(lines, fb.Block)
		}
		if target < 0 {
			target = lastMatch(lines, fb.Marker)
		}
		if target < 0 {
			continue
		}
		block := content
		if a.Header != "" {
			block = a.Header + "\n" + content
		}
		updated := spliceLines(lines, target+1, indentLike(lines, target, block))
		return Inserted, writeBack(path, updated)
	}

	// Tier 3: after the last import-like statement
	if a.ImportFallback {
		if idx := lastMatch(lines, importLike); idx >= 0 {
			block := content
			if a.Header != "" {
				block = a.Header + "\n" + content
			}
			updated := spliceLines(lines, idx+1, indentLike(lines, idx, block))
			return Inserted, writeBack(path, updated)
		}
	}

	return AnchorMissing, nil
}

// lastMatch returns the index of the last line matching re, or -1.
func lastMatch(lines []string, re *regexp.Regexp) int {
	last := -1
	for i, line := range lines {
		if re.MatchString(line) {
			last = i
		}
	}
	return last
}

// lastMatchFrom returns the index of the last line matching re at or after
// start, provided the matches form the block immediately following start.
func lastMatchFrom(lines []string, re *regexp.Regexp, start int) int {
	last := -1
	for i := start + 1; i < len(lines); i++ {
		if re.MatchString(lines[i]) {
			last = i
			continue
		}
		if strings.TrimSpace(lines[i]) == "" && last >= 0 {
			break
		}
		if last >= 0 {
			break
		}
		// Non-matching line directly under the marker ends the block search
		break
	}
	return last
}

// indentLike prefixes every line of content with the indentation of the
// reference line, preserving the surrounding file's formatting.
func indentLike(lines []string, ref int, content string) []string {
	indent := ""
	if ref >= 0 && ref < len(lines) {
		line := lines[ref]
		indent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	}

	var out []string
	for _, l := range splitLines(strings.TrimRight(content, "\n")) {
		if l == "" {
			out = append(out, "")
			continue
		}
		out = append(out, indent+l)
	}
	return out
}

// spliceLines inserts block before index at.
func spliceLines(lines []string, at int, block []string) []string {
	if at > len(lines) {
		at = len(lines)
	}
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:at]...)
	out = append(out, block...)
	out = append(out, lines[at:]...)
	return out
}

func writeBack(path string, lines []string) error {
	info, err := os.Stat(path)
	mode := os.FileMode(0644)
	if err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}
