package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/reinforcer/internal/models"
)

// DocumentRow is one row of the documents table.
type DocumentRow struct {
	Path       string            `json:"path"`
	Title      string            `json:"title"`
	Checksum   string            `json:"checksum"`
	SourceType models.SourceType `json:"source_type"`
	SourceURL  string            `json:"source_url"`
	Tags       []string          `json:"tags"`
	Keywords   []string          `json:"keywords"`
	Summary    string            `json:"summary"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// SearchResult is one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertDocument inserts or replaces a document and its FTS entry in one
// transaction.
func (db *DB) UpsertDocument(r DocumentRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags, _ := json.Marshal(nonNil(r.Tags))
	keywords, _ := json.Marshal(nonNil(r.Keywords))

	_, err = tx.Exec(`
		INSERT INTO documents (path, title, checksum, source_type, source_url, tags, keywords, summary, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title       = excluded.title,
			checksum    = excluded.checksum,
			source_type = excluded.source_type,
			source_url  = excluded.source_url,
			tags        = excluded.tags,
			keywords    = excluded.keywords,
			summary     = excluded.summary,
			body        = excluded.body,
			updated_at  = excluded.updated_at
	`, r.Path, r.Title, r.Checksum, string(r.SourceType), r.SourceURL,
		string(tags), string(keywords), r.Summary, body, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}
	if err := ftsUpsert(tx, r, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteDocument removes a document and its FTS entry.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or "" if it is
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums maps every indexed path to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListDocuments returns a page of documents ordered by path, optionally
// filtered by source type, plus the total match count.
func (db *DB) ListDocuments(sourceType string, limit, offset int) ([]DocumentRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	where, args := "", []any{}
	if sourceType != "" {
		where = ` WHERE source_type = ?`
		args = append(args, sourceType)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, title, checksum, source_type, source_url, tags, keywords, summary, updated_at
		FROM documents`+where+`
		ORDER BY path
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	out := []DocumentRow{}
	for rows.Next() {
		var (
			r              DocumentRow
			st             string
			tags, keywords string
		)
		if err := rows.Scan(&r.Path, &r.Title, &r.Checksum, &st, &r.SourceURL, &tags, &keywords, &r.Summary, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		r.SourceType = models.SourceType(st)
		_ = json.Unmarshal([]byte(tags), &r.Tags)
		_ = json.Unmarshal([]byte(keywords), &r.Keywords)
		r.Tags, r.Keywords = nonNil(r.Tags), nonNil(r.Keywords)
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
