// Package pipeline runs the per-drop upload loop: derive a remote key for
// each file, put it to the object store, build its public URL, and splice a
// markdown link into the document at an advancing cursor.
//
// Files are handled strictly sequentially in drop order. Each success must
// advance the shared cursor before the next insertion, so parallel uploads
// with out-of-order completion would scramble link placement.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/koustreak/markdrop/internal/document"
	"github.com/koustreak/markdrop/internal/errs"
	"github.com/koustreak/markdrop/internal/link"
	"github.com/koustreak/markdrop/internal/logger"
	"github.com/koustreak/markdrop/internal/objstore"
	"github.com/koustreak/markdrop/internal/settings"
)

// File is one payload of a drop batch: name, declared MIME type, raw bytes.
// It is ephemeral — never retained after its upload attempt completes.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Notifier receives the transient user-visible notices the pipeline emits:
// per-file success and per-file failure.
type Notifier interface {
	Notify(msg string)
}

// Pipeline uploads drop batches. One Pipeline serves the whole process;
// batch serialization is the interceptor's job.
type Pipeline struct {
	store *settings.Store
	dial  objstore.Dialer
	log   *logger.Logger
	now   func() time.Time
}

// New creates a Pipeline reading live configuration from store and
// connecting to storage through dial.
func New(store *settings.Store, dial objstore.Dialer, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{store: store, dial: dial, log: log, now: time.Now}
}

// Run processes one drop batch: uploads files in order and splices a link
// for each into doc, starting at caret. Per-file errors are logged, reported
// through notifier, and do not abort the remaining files; nothing already
// inserted is rolled back. Run itself fails only when doc is nil — there is
// nowhere to insert links.
func (p *Pipeline) Run(ctx context.Context, doc document.Document, caret document.Position, files []File, notifier Notifier) error {
	if doc == nil {
		return errs.New(errs.ErrKindNoDocument, "no active document to insert links into")
	}

	batch := uuid.NewString()
	log := p.log.With().Str("batch", batch).Int("files", len(files)).Logger()
	log.Debug("drop batch started")

	var conn objstore.Store
	defer func() {
		if conn != nil {
			_ = conn.Close()
		}
	}()

	cursor := caret
	for i, f := range files {
		url, err := p.uploadOne(ctx, &conn, f)
		if err != nil {
			log.ErrorWith("upload failed", err, map[string]interface{}{"file": f.Name})
			notifier.Notify(fmt.Sprintf("failed to upload %s: %s", f.Name, err))
			continue
		}

		text := link.Markdown(f.Name, url, f.ContentType)
		if err := doc.InsertAt(cursor, text); err != nil {
			log.ErrorWith("link insertion failed", err, map[string]interface{}{"file": f.Name})
			notifier.Notify(fmt.Sprintf("failed to insert link for %s: %s", f.Name, err))
			continue
		}
		cursor = document.Advance(cursor, text)

		// Each file's link lands on its own line.
		if i < len(files)-1 {
			if err := doc.InsertAt(cursor, "\n"); err != nil {
				return err
			}
			cursor = document.Advance(cursor, "\n")
		}

		log.With().Str("file", f.Name).Str("url", url).Logger().Info("uploaded")
		notifier.Notify(fmt.Sprintf("uploaded %s", f.Name))
	}

	log.Debug("drop batch finished")
	return nil
}

// uploadOne re-checks the configuration, connects lazily, uploads f, and
// returns its public URL. The configuration check runs before every file,
// not once per batch, so a settings edit mid-batch takes effect.
func (p *Pipeline) uploadOne(ctx context.Context, conn *objstore.Store, f File) (string, error) {
	cfg := p.store.Current()
	if err := cfg.CheckUploadReady(); err != nil {
		return "", err
	}

	if *conn == nil {
		c, err := p.dial(cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey, cfg.Region)
		if err != nil {
			return "", err
		}
		*conn = c
	}

	// Timestamp is read per file, so files in one batch get distinct,
	// monotonically non-decreasing keys when processing takes measurable time.
	key := link.ObjectKey(cfg.Directory, f.Name, p.now())

	err := (*conn).PutObject(ctx, cfg.BucketName, key,
		bytes.NewReader(f.Data), int64(len(f.Data)), f.ContentType)
	if err != nil {
		return "", err
	}

	return link.PublicURL(cfg.PublicURL, key), nil
}
