// Package document models the editable text buffer links are spliced into:
// a Document any host adapter can implement, a cursor Position, and the
// cursor arithmetic the insertion loop relies on.
package document

import "strings"

// Position is a zero-based (line, column) cursor in a document.
// Columns count runes, not bytes, so multi-byte filenames advance correctly.
type Position struct {
	Line int
	Col  int
}

// Document is the host-side editable buffer. Implementations must apply
// InsertAt synchronously — the insertion loop advances its cursor assuming
// the previous insert has landed.
type Document interface {
	// InsertAt splices text into the document at pos.
	InsertAt(pos Position, text string) error
}

// Advance returns the cursor position after inserting text at pos:
// with K embedded newlines the cursor moves K lines down and the column
// becomes the rune length of the last inserted segment; with none, the
// column advances by the rune length of the insertion.
func Advance(pos Position, text string) Position {
	lines := strings.Count(text, "\n")
	if lines == 0 {
		return Position{Line: pos.Line, Col: pos.Col + runeLen(text)}
	}
	last := text[strings.LastIndexByte(text, '\n')+1:]
	return Position{Line: pos.Line + lines, Col: runeLen(last)}
}

func runeLen(s string) int {
	return len([]rune(s))
}
