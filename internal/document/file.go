package document

import (
	"os"

	"github.com/koustreak/markdrop/internal/errs"
)

// FileDocument is a Document backed by a file on disk. It reads the file
// into a Buffer at open time and writes the whole buffer back on Flush.
// This is the host adapter the CLI uses.
type FileDocument struct {
	path string
	buf  *Buffer
}

var _ Document = (*FileDocument)(nil)

// OpenFile loads path into a FileDocument. The file must exist — a drop
// needs a document to land in.
func OpenFile(path string) (*FileDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindNoDocument, "open document "+path, err)
	}
	return &FileDocument{path: path, buf: NewBuffer(string(raw))}, nil
}

// InsertAt splices text into the in-memory buffer.
func (d *FileDocument) InsertAt(pos Position, text string) error {
	return d.buf.InsertAt(pos, text)
}

// End returns the position just past the last rune of the document.
func (d *FileDocument) End() Position {
	return d.buf.End()
}

// Flush writes the buffer back to the underlying file.
func (d *FileDocument) Flush() error {
	if err := os.WriteFile(d.path, []byte(d.buf.String()), 0o644); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "write document "+d.path, err)
	}
	return nil
}
