package index

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/reinforcer/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "reinforcer-test-*.db")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func row(path, title, checksum string) DocumentRow {
	return DocumentRow{
		Path:       path,
		Title:      title,
		Checksum:   checksum,
		SourceType: models.SourceDirectText,
		SourceURL:  models.NotApplicable,
		Tags:       []string{"go"},
		Keywords:   []string{"static typing"},
		Summary:    "A summary.",
		UpdatedAt:  time.Now(),
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	require.NoError(t, db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count), "documents table missing")
	assert.NoError(t, db.Ping())
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.UpsertDocument(row("direct_text/0001-a.md", "A", "abc123"), "body"))
	cs, err := db.GetChecksum("direct_text/0001-a.md")
	require.NoError(t, err)
	assert.Equal(t, "abc123", cs)
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.UpsertDocument(row("a.md", "Old", "1"), "old body"))
	require.NoError(t, db.UpsertDocument(row("a.md", "New", "2"), "new body"))

	docs, total, err := db.ListDocuments("", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, docs, 1)
	assert.Equal(t, "New", docs[0].Title)
	assert.Equal(t, "2", docs[0].Checksum)
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.UpsertDocument(row("del.md", "Del", "x"), "body"))
	require.NoError(t, db.DeleteDocument("del.md"))

	cs, err := db.GetChecksum("del.md")
	require.NoError(t, err)
	assert.Empty(t, cs, "deleted document still has a checksum")
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	require.NoError(t, err)
	assert.Empty(t, cs)
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.UpsertDocument(row("a.md", "A", "1"), ""))
	require.NoError(t, db.UpsertDocument(row("b.md", "B", "2"), ""))

	all, err := db.AllChecksums()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.md": "1", "b.md": "2"}, all)
}

func TestListDocuments_FilterAndPage(t *testing.T) {
	db := testDB(t)
	a := row("articles/0001-a.md", "A", "1")
	a.SourceType = models.SourceWebArticle
	require.NoError(t, db.UpsertDocument(a, ""))
	require.NoError(t, db.UpsertDocument(row("direct_text/0002-b.md", "B", "2"), ""))
	require.NoError(t, db.UpsertDocument(row("direct_text/0003-c.md", "C", "3"), ""))

	docs, total, err := db.ListDocuments(string(models.SourceDirectText), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, docs, 1)
	assert.Equal(t, "direct_text/0003-c.md", docs[0].Path)
	assert.Equal(t, []string{"static typing"}, docs[0].Keywords)
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.UpsertDocument(row("s.md", "Search Me", "1"), "uniqueword appears here"))

	results, err := db.Search("uniqueword", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s.md", results[0].Path)
}

func TestIndexDocument(t *testing.T) {
	db := testDB(t)
	data := []byte("---\ntitle: Parsed\nsource_url: https://example.com\nsource_type: web-article\n" +
		"user_tags:\n  - web\nsummary: Short.\nextracted_keywords:\n  - key phrase\n---\n\nBody text\n")
	require.NoError(t, db.IndexDocument("articles/0001-parsed.md", data))

	docs, _, err := db.ListDocuments("web-article", 10, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	d := docs[0]
	assert.Equal(t, "Parsed", d.Title)
	assert.Equal(t, "Short.", d.Summary)
	assert.Equal(t, "https://example.com", d.SourceURL)
	assert.Equal(t, []string{"web"}, d.Tags)
}

func TestIndexDocument_NoFrontMatter(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.IndexDocument("loose.md", []byte("# Hand Written\n\ntext")))

	docs, _, err := db.ListDocuments("", 10, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Hand Written", docs[0].Title)
}
