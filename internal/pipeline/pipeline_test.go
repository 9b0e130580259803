package pipeline

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/markdrop/internal/document"
	"github.com/koustreak/markdrop/internal/errs"
	"github.com/koustreak/markdrop/internal/objstore"
	"github.com/koustreak/markdrop/internal/settings"
)

// fakeStore records PutObject calls and optionally fails chosen keys.
type fakeStore struct {
	puts   []putCall
	failOn map[string]error // by file name suffix match on key
	closed bool
}

type putCall struct {
	bucket      string
	key         string
	contentType string
	size        int64
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                   { f.closed = true; return nil }

func (f *fakeStore) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	for suffix, err := range f.failOn {
		if len(key) >= len(suffix) && key[len(key)-len(suffix):] == suffix {
			return err
		}
	}
	f.puts = append(f.puts, putCall{bucket: bucket, key: key, contentType: contentType, size: size})
	return nil
}

func (f *fakeStore) dialer() objstore.Dialer {
	return func(endpoint, accessKey, secretKey, region string) (objstore.Store, error) {
		return f, nil
	}
}

// recorder collects user-visible notices.
type recorder struct {
	notices []string
}

func (r *recorder) Notify(msg string) { r.notices = append(r.notices, msg) }

func validStore(t *testing.T) *settings.Store {
	t.Helper()
	s, err := settings.NewStore(filepath.Join(t.TempDir(), "markdrop.yaml"))
	require.NoError(t, err)
	require.NoError(t, s.Save(settings.Config{
		BucketName:      "b",
		AccessKeyID:     "k",
		SecretAccessKey: "s",
		Endpoint:        "https://x",
		Region:          "auto",
		PublicURL:       "https://pub.example.com/",
		Directory:       "img",
	}))
	return s
}

func fixedPipeline(store *settings.Store, dial objstore.Dialer, millis int64) *Pipeline {
	p := New(store, dial, nil)
	p.now = func() time.Time { return time.UnixMilli(millis) }
	return p
}

func png(name string) File {
	return File{Name: name, ContentType: "image/png", Data: []byte{0x89, 0x50, 0x4e, 0x47}}
}

func TestRun_SingleFile(t *testing.T) {
	fake := &fakeStore{}
	p := fixedPipeline(validStore(t), fake.dialer(), 1700000000000)

	doc := document.NewBuffer("")
	notes := &recorder{}

	err := p.Run(context.Background(), doc, document.Position{}, []File{png("cat.png")}, notes)
	require.NoError(t, err)

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "b", fake.puts[0].bucket)
	assert.Equal(t, "img/1700000000000_cat.png", fake.puts[0].key)
	assert.Equal(t, "image/png", fake.puts[0].contentType)
	assert.Equal(t, int64(4), fake.puts[0].size)

	assert.Equal(t, "![cat.png](https://pub.example.com/img/1700000000000_cat.png)", doc.String())
	assert.Equal(t, []string{"uploaded cat.png"}, notes.notices)
	assert.True(t, fake.closed)
}

func TestRun_ThreeFilesEachOnOwnLine(t *testing.T) {
	fake := &fakeStore{}
	p := fixedPipeline(validStore(t), fake.dialer(), 1)

	doc := document.NewBuffer("")
	notes := &recorder{}

	files := []File{png("a.png"), png("b.png"), png("c.png")}
	require.NoError(t, p.Run(context.Background(), doc, document.Position{}, files, notes))

	require.Len(t, fake.puts, 3)
	assert.Equal(t, []string{
		"img/1_a.png",
		"img/1_b.png",
		"img/1_c.png",
	}, []string{fake.puts[0].key, fake.puts[1].key, fake.puts[2].key})

	// files 1 and 2 are each followed by a newline, file 3 is not
	assert.Equal(t,
		"![a.png](https://pub.example.com/img/1_a.png)\n"+
			"![b.png](https://pub.example.com/img/1_b.png)\n"+
			"![c.png](https://pub.example.com/img/1_c.png)",
		doc.String())

	assert.Len(t, notes.notices, 3)
}

func TestRun_InsertsAtCaret(t *testing.T) {
	fake := &fakeStore{}
	p := fixedPipeline(validStore(t), fake.dialer(), 1)

	doc := document.NewBuffer("before after\nnext line")
	notes := &recorder{}

	caret := document.Position{Line: 0, Col: 7}
	require.NoError(t, p.Run(context.Background(), doc, caret, []File{png("x.png")}, notes))

	assert.Equal(t, "before ![x.png](https://pub.example.com/img/1_x.png)after\nnext line", doc.String())
}

func TestRun_MissingConfigFailsEveryFileWithoutUploads(t *testing.T) {
	s, err := settings.NewStore(filepath.Join(t.TempDir(), "markdrop.yaml"))
	require.NoError(t, err)
	require.NoError(t, s.Save(settings.Config{
		BucketName:      "b",
		SecretAccessKey: "s",
		Endpoint:        "https://x",
		// AccessKeyID deliberately empty
	}))

	fake := &fakeStore{}
	p := fixedPipeline(s, fake.dialer(), 1)

	doc := document.NewBuffer("")
	notes := &recorder{}

	files := []File{png("a.png"), png("b.png")}
	require.NoError(t, p.Run(context.Background(), doc, document.Position{}, files, notes))

	assert.Empty(t, fake.puts)
	assert.Empty(t, doc.String())
	require.Len(t, notes.notices, 2)
	assert.Contains(t, notes.notices[0], "a.png")
	assert.Contains(t, notes.notices[0], "access key")
	assert.Contains(t, notes.notices[1], "b.png")
}

func TestRun_OneFailureDoesNotAbortSiblings(t *testing.T) {
	fake := &fakeStore{failOn: map[string]error{
		"_b.png": errs.New(errs.ErrKindUploadFailed, "boom"),
	}}
	p := fixedPipeline(validStore(t), fake.dialer(), 1)

	doc := document.NewBuffer("")
	notes := &recorder{}

	files := []File{png("a.png"), png("b.png"), png("c.png")}
	require.NoError(t, p.Run(context.Background(), doc, document.Position{}, files, notes))

	// a and c uploaded and linked; b only produced a failure notice
	require.Len(t, fake.puts, 2)
	assert.Equal(t,
		"![a.png](https://pub.example.com/img/1_a.png)\n"+
			"![c.png](https://pub.example.com/img/1_c.png)",
		doc.String())

	require.Len(t, notes.notices, 3)
	assert.Equal(t, "uploaded a.png", notes.notices[0])
	assert.Contains(t, notes.notices[1], "failed to upload b.png")
	assert.Contains(t, notes.notices[1], "boom")
	assert.Equal(t, "uploaded c.png", notes.notices[2])
}

func TestRun_NonImageFileGetsPlainLink(t *testing.T) {
	fake := &fakeStore{}
	p := fixedPipeline(validStore(t), fake.dialer(), 1)

	doc := document.NewBuffer("")
	notes := &recorder{}

	f := File{Name: "report.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
	require.NoError(t, p.Run(context.Background(), doc, document.Position{}, []File{f}, notes))

	assert.Equal(t, "[report.pdf](https://pub.example.com/img/1_report.pdf)", doc.String())
}

func TestRun_NilDocument(t *testing.T) {
	fake := &fakeStore{}
	p := fixedPipeline(validStore(t), fake.dialer(), 1)

	err := p.Run(context.Background(), nil, document.Position{}, []File{png("a.png")}, &recorder{})
	assert.True(t, errs.IsNoDocument(err))
	assert.Empty(t, fake.puts)
}

func TestRun_DialFailureIsPerFile(t *testing.T) {
	dial := func(endpoint, accessKey, secretKey, region string) (objstore.Store, error) {
		return nil, errs.New(errs.ErrKindConnectionFailed, "unreachable")
	}
	p := fixedPipeline(validStore(t), dial, 1)

	doc := document.NewBuffer("")
	notes := &recorder{}

	files := []File{png("a.png"), png("b.png")}
	require.NoError(t, p.Run(context.Background(), doc, document.Position{}, files, notes))

	assert.Empty(t, doc.String())
	require.Len(t, notes.notices, 2)
	assert.Contains(t, notes.notices[0], "unreachable")
}
