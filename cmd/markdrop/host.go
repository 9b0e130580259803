package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/koustreak/markdrop/internal/document"
	"github.com/koustreak/markdrop/internal/drop"
	"github.com/koustreak/markdrop/internal/pipeline"
)

// cliHost adapts a markdown file on disk into the drop.Host capability
// surface: the file is the active document and notices go to stderr.
type cliHost struct {
	doc   *document.FileDocument
	caret document.Position
}

func newCLIHost(docPath string, line, col int) (*cliHost, error) {
	doc, err := document.OpenFile(docPath)
	if err != nil {
		return nil, err
	}

	caret := doc.End()
	if line >= 0 {
		caret = document.Position{Line: line, Col: col}
	}
	return &cliHost{doc: doc, caret: caret}, nil
}

// readEvent builds a drop event from local file paths. The MIME type is
// declared from the file extension, the way a host shell would declare it
// from the payload.
func (h *cliHost) readEvent(paths []string) (drop.Event, error) {
	files := make([]pipeline.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return drop.Event{}, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, pipeline.File{
			Name:        filepath.Base(p),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			Data:        data,
		})
	}
	return drop.Event{Files: files, Caret: h.caret}, nil
}

func (h *cliHost) interceptor(pipe *pipeline.Pipeline) *drop.Interceptor {
	return drop.NewInterceptor(h, pipe)
}

func (h *cliHost) flush() error {
	return h.doc.Flush()
}

// --- drop.Host implementation ---

func (h *cliHost) ActiveDocument() (document.Document, bool) {
	return h.doc, h.doc != nil
}

func (h *cliHost) Notify(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}
