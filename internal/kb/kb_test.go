package kb

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/reinforcer/internal/apperr"
	"github.com/starford/reinforcer/internal/models"
	"github.com/starford/reinforcer/internal/storage"
)

func newBase(t *testing.T) (*Base, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	require.NoError(t, err)
	return New(fs, nil), dir
}

func testDoc(title string, st models.SourceType) *models.Document {
	return &models.Document{
		Metadata: models.Metadata{
			Title:             title,
			SourceURL:         models.NotApplicable,
			SourceType:        st,
			DateExtracted:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			UserTags:          []string{"t"},
			UserPurpose:       "p",
			Summary:           "s",
			ExtractedKeywords: []string{"k"},
		},
		Body: "body\n",
	}
}

func TestCounterSequence(t *testing.T) {
	b, _ := newBase(t)
	for want := 1; want <= 5; want++ {
		got, err := b.counter.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	cur, err := b.Sequence()
	require.NoError(t, err)
	assert.Equal(t, 5, cur)
}

func TestCounterAbsentIsZero(t *testing.T) {
	b, _ := newBase(t)
	cur, err := b.Sequence()
	require.NoError(t, err)
	assert.Zero(t, cur)
}

func TestCounterCorrupt(t *testing.T) {
	for _, content := range []string{"abc", "", "-3", "1.5"} {
		b, dir := newBase(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, CounterFile), []byte(content), 0o644))

		_, err := b.counter.Next()
		assert.ErrorIs(t, err, apperr.ErrCounterCorrupt, "content %q", content)

		// Never reset.
		data, err := os.ReadFile(filepath.Join(dir, CounterFile))
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	}
}

func TestCounterTrailingNewline(t *testing.T) {
	b, dir := newBase(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, CounterFile), []byte("7\n"), 0o644))
	n, err := b.counter.Next()
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestIndexFreshIsEmpty(t *testing.T) {
	b, _ := newBase(t)
	entries, err := b.Entries(false)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestIndexMalformedIsEmpty(t *testing.T) {
	b, dir := newBase(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte("{not json"), 0o644))
	entries, err := b.Entries(false)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIndexAppend(t *testing.T) {
	b, dir := newBase(t)
	saved := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	b.index.now = func() time.Time { return saved }

	e, err := b.index.Append(models.Entry{SeqNo: 1, Filename: "0001-a.md", Path: "articles/0001-a.md"})
	require.NoError(t, err)
	assert.True(t, e.DateSaved.Equal(saved))

	_, err = b.index.Append(models.Entry{SeqNo: 2, Filename: "0002-b.md", Path: "0002-b.md"})
	require.NoError(t, err)

	entries, err := b.index.Read()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].SeqNo)
	assert.Equal(t, 2, entries[1].SeqNo)

	raw, err := os.ReadFile(filepath.Join(dir, IndexFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "[\n  {\n    \"seq_no\": 1,"))
	assert.Contains(t, string(raw), `"date_saved"`)
	assert.Contains(t, string(raw), `"user_tags"`)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"My Test!!":       "my-test",
		"  Hello, World ": "hello-world",
		"snake_case ok":   "snake_case-ok",
		"!!!":             "untitled",
		"":                "untitled",
		"Ünïcode Títle":   "n-code-t-tle",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}

	long := Slugify(strings.Repeat("ab ", 40))
	assert.LessOrEqual(t, len(long), maxSlugLen)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestSlugifyIdempotent(t *testing.T) {
	for _, in := range []string{"My Test!!", "A -- B", strings.Repeat("x y ", 30), "Go 1.22 released"} {
		s := Slugify(in)
		assert.Equal(t, s, Slugify(s))
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "0001-my-test.md", Filename(1, "My Test!!"))
	assert.Equal(t, "12345-x.md", Filename(12345, "x"))
}

func TestCommit(t *testing.T) {
	b, dir := newBase(t)

	e1, err := b.Commit(testDoc("My Test!!", models.SourceWebArticle))
	require.NoError(t, err)
	assert.Equal(t, 1, e1.SeqNo)
	assert.Equal(t, "0001-my-test.md", e1.Filename)
	assert.Equal(t, "articles/0001-my-test.md", e1.Path)
	assert.FileExists(t, filepath.Join(dir, "articles", "0001-my-test.md"))

	e2, err := b.Commit(testDoc("Clip", models.SourceYouTubeVideo))
	require.NoError(t, err)
	assert.Equal(t, "videos/0002-clip.md", e2.Path)

	e3, err := b.Commit(testDoc("Note", models.SourceDirectText))
	require.NoError(t, err)
	assert.Equal(t, "direct_text/0003-note.md", e3.Path)

	entries, err := b.Entries(false)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "My Test!!", entries[0].Title)

	newest, err := b.Entries(true)
	require.NoError(t, err)
	assert.Equal(t, 3, newest[0].SeqNo)

	doc, err := b.ReadDocument(e1.Path)
	require.NoError(t, err)
	assert.Equal(t, "body\n", doc.Body)
	assert.Equal(t, []string{"k"}, doc.Metadata.ExtractedKeywords)
}

func TestCommitCorruptCounter(t *testing.T) {
	b, dir := newBase(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, CounterFile), []byte("oops"), 0o644))

	_, err := b.Commit(testDoc("x", models.SourceDirectText))
	assert.ErrorIs(t, err, apperr.ErrCounterCorrupt)

	entries, err := b.Entries(false)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoDirExists(t, filepath.Join(dir, "direct_text"))
}

func TestCommitConcurrent(t *testing.T) {
	b, _ := newBase(t)
	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Commit(testDoc("same", models.SourceDirectText))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := b.Entries(false)
	require.NoError(t, err)
	require.Len(t, entries, n)
	seen := map[int]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.SeqNo], "duplicate seq %d", e.SeqNo)
		seen[e.SeqNo] = true
	}
}

func TestReadDocumentMissing(t *testing.T) {
	b, _ := newBase(t)
	_, err := b.ReadDocument("articles/0009-nope.md")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = b.ReadDocument(IndexFile)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = b.ReadDocument("../escape.md")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
