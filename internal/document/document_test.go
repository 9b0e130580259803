package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		text string
		want Position
	}{
		{
			name: "single line advances column by length",
			pos:  Position{Line: 2, Col: 5},
			text: "![cat.png](u)",
			want: Position{Line: 2, Col: 18},
		},
		{
			name: "one newline moves to next line",
			pos:  Position{Line: 2, Col: 5},
			text: "\n",
			want: Position{Line: 3, Col: 0},
		},
		{
			name: "embedded newlines land at end of last segment",
			pos:  Position{Line: 1, Col: 4},
			text: "a\nbc\ndef",
			want: Position{Line: 3, Col: 3},
		},
		{
			name: "columns count runes not bytes",
			pos:  Position{Line: 0, Col: 0},
			text: "日本語",
			want: Position{Line: 0, Col: 3},
		},
		{
			name: "empty insertion is a no-op",
			pos:  Position{Line: 1, Col: 1},
			text: "",
			want: Position{Line: 1, Col: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Advance(tt.pos, tt.text))
		})
	}
}

func TestBuffer_InsertAt(t *testing.T) {
	t.Run("insert mid line", func(t *testing.T) {
		b := NewBuffer("hello world")
		require.NoError(t, b.InsertAt(Position{Line: 0, Col: 5}, ","))
		assert.Equal(t, "hello, world", b.String())
	})

	t.Run("insert multi-line text", func(t *testing.T) {
		b := NewBuffer("ab")
		require.NoError(t, b.InsertAt(Position{Line: 0, Col: 1}, "1\n2"))
		assert.Equal(t, "a1\n2b", b.String())
	})

	t.Run("insert at end", func(t *testing.T) {
		b := NewBuffer("line1\nline2")
		require.NoError(t, b.InsertAt(b.End(), "\nline3"))
		assert.Equal(t, "line1\nline2\nline3", b.String())
	})

	t.Run("out of range position clamps to end", func(t *testing.T) {
		b := NewBuffer("short")
		require.NoError(t, b.InsertAt(Position{Line: 99, Col: 99}, "!"))
		assert.Equal(t, "short!", b.String())
	})

	t.Run("rune columns", func(t *testing.T) {
		b := NewBuffer("日本語")
		require.NoError(t, b.InsertAt(Position{Line: 0, Col: 1}, "X"))
		assert.Equal(t, "日X本語", b.String())
	})
}

func TestBuffer_End(t *testing.T) {
	assert.Equal(t, Position{Line: 0, Col: 0}, NewBuffer("").End())
	assert.Equal(t, Position{Line: 1, Col: 3}, NewBuffer("ab\ncde").End())
	assert.Equal(t, Position{Line: 2, Col: 0}, NewBuffer("a\nb\n").End())
}

func TestFileDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte("# title\n"), 0o644))

	doc, err := OpenFile(path)
	require.NoError(t, err)

	require.NoError(t, doc.InsertAt(doc.End(), "![cat.png](u)"))
	require.NoError(t, doc.Flush())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# title\n![cat.png](u)", string(raw))
}

func TestFileDocument_MissingFile(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "absent.md"))
	assert.Error(t, err)
}
