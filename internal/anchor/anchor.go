// Package anchor locates stable insertion points in generated files and
// performs idempotent text insertion at them.
//
// An anchor is a named convention: a comment marker inside a generated file
// (e.g. "// mcpkit:imports:tools") plus a pattern recognizing lines that
// were previously inserted under that anchor. Strategies declare their
// anchors as compile-time tables; the resolver never guesses at arbitrary
// hand-written code beyond the declared markers and patterns.
package anchor

import (
	"regexp"
)

// Position says which side of the marker line new content lands on.
type Position int

const (
	After Position = iota
	Before
)

// Result reports what an insertion did.
type Result int

const (
	// Inserted means the file was mutated.
	Inserted Result = iota
	// AlreadyPresent means an equivalent block already exists; the file
	// was left untouched.
	AlreadyPresent
	// AnchorMissing means no marker, fallback or import section could be
	// found; the file was left untouched. Callers treat this as a
	// validation error, never a silent no-op.
	AnchorMissing
)

func (r Result) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyPresent:
		return "already-present"
	case AnchorMissing:
		return "anchor-missing"
	default:
		return "unknown"
	}
}

// Category names one insertion-point convention, e.g. "imports:tools".
type Category string

// Anchor describes one insertion point in one file.
type Anchor struct {
	Category Category
	// File is the project-relative path of the target file.
	File string
	// Marker matches the anchor's own comment line.
	Marker *regexp.Regexp
	// Block matches lines previously inserted under this category. Used
	// both for fallback targeting (insert after the last block line of a
	// prior category) and for accumulation ordering within a category.
	Block *regexp.Regexp
	// Position places content before or after the marker line.
	Position Position
	// Fallbacks lists logically prior categories to try, in priority
	// order, when the marker is absent.
	Fallbacks []Category
	// Header is a short category header written above content that lands
	// via fallback or the import-section tier, so later insertions of the
	// same category have a recognizable home.
	Header string
	// ImportFallback enables the final tier: insert after the last
	// import-like statement. Disabled for non-source targets like YAML.
	ImportFallback bool
}
