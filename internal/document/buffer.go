package document

import "strings"

// Buffer is an in-memory line-based Document. It is the reference
// implementation used by tests and the backing store of FileDocument.
// Not safe for concurrent use; the insertion loop is strictly sequential.
type Buffer struct {
	lines []string
}

var _ Document = (*Buffer)(nil)

// NewBuffer creates a Buffer holding text. An empty string yields a
// single empty line, matching how editors model an empty document.
func NewBuffer(text string) *Buffer {
	return &Buffer{lines: strings.Split(text, "\n")}
}

// String reassembles the buffer contents.
func (b *Buffer) String() string {
	return strings.Join(b.lines, "\n")
}

// End returns the position just past the last rune of the buffer.
func (b *Buffer) End() Position {
	last := len(b.lines) - 1
	return Position{Line: last, Col: runeLen(b.lines[last])}
}

// InsertAt splices text into the buffer at pos. Positions beyond the
// buffer are clamped to its end: a caret from a live host is always valid,
// clamping only matters for hosts that compute positions themselves.
func (b *Buffer) InsertAt(pos Position, text string) error {
	pos = b.clamp(pos)

	line := []rune(b.lines[pos.Line])
	before, after := string(line[:pos.Col]), string(line[pos.Col:])

	inserted := strings.Split(text, "\n")
	inserted[0] = before + inserted[0]
	inserted[len(inserted)-1] += after

	b.lines = append(b.lines[:pos.Line], append(inserted, b.lines[pos.Line+1:]...)...)
	return nil
}

func (b *Buffer) clamp(pos Position) Position {
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Line >= len(b.lines) {
		return b.End()
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	if n := runeLen(b.lines[pos.Line]); pos.Col > n {
		pos.Col = n
	}
	return pos
}
