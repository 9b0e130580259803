// Package drop decides whether a drag-and-drop event is ours to handle and,
// when it is, hands the image payloads to the upload pipeline.
//
// The host editor is abstracted behind the Host interface: the interceptor
// reports back a handled flag so the host knows whether to suppress its own
// default drop behavior.
package drop

import (
	"context"
	"sync"

	"github.com/koustreak/markdrop/internal/document"
	"github.com/koustreak/markdrop/internal/link"
	"github.com/koustreak/markdrop/internal/pipeline"
)

// Event is one drag-and-drop interaction: the dropped payloads and the caret
// position in the active view at the moment of drop.
type Event struct {
	Files []pipeline.File
	Caret document.Position
}

// Host is the capability surface a host adapter provides: access to the
// currently active editable document and a channel for transient
// user-visible notices.
type Host interface {
	// ActiveDocument returns the document under edit, or ok=false when no
	// view is active.
	ActiveDocument() (doc document.Document, ok bool)

	// Notify shows a transient user-visible message.
	Notify(msg string)
}

// Interceptor routes qualifying drop events into the upload pipeline.
type Interceptor struct {
	host Host
	pipe *pipeline.Pipeline

	// mu serializes drop batches: a second drop arriving before the first
	// batch finishes would interleave cursor mutations on the same document.
	mu sync.Mutex
}

// NewInterceptor creates an Interceptor delivering batches from host to pipe.
func NewInterceptor(host Host, pipe *pipeline.Pipeline) *Interceptor {
	return &Interceptor{host: host, pipe: pipe}
}

// OnDrop inspects ev and reports whether it was handled.
//
// An event with no image-typed payload is not ours: OnDrop does nothing and
// returns false so the host's default handling proceeds. Otherwise the event
// is claimed (the host must suppress its default file embedding), all
// image payloads — not just the first — are uploaded in order, and links are
// spliced in at the caret. With no active document the batch is aborted with
// an error notice; the event still counts as handled.
func (ic *Interceptor) OnDrop(ctx context.Context, ev Event) bool {
	images := imageFiles(ev.Files)
	if len(images) == 0 {
		return false
	}

	ic.mu.Lock()
	defer ic.mu.Unlock()

	doc, ok := ic.host.ActiveDocument()
	if !ok {
		ic.host.Notify("cannot upload: no active document")
		return true
	}

	// Per-file failures are reported inside the pipeline; Run only fails
	// when there is no document, which was checked above.
	_ = ic.pipe.Run(ctx, doc, ev.Caret, images, ic.host)
	return true
}

func imageFiles(files []pipeline.File) []pipeline.File {
	var images []pipeline.File
	for _, f := range files {
		if link.IsImage(f.ContentType) {
			images = append(images, f)
		}
	}
	return images
}
