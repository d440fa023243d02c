package index

import (
	"log/slog"
	"time"

	"github.com/starford/reinforcer/internal/parser"
	"github.com/starford/reinforcer/internal/storage"
)

const docSuffix = ".md"

// IndexDocument parses a knowledge base file and upserts it. Files without
// valid front matter are still indexed by their body and first heading.
func (db *DB) IndexDocument(path string, data []byte) error {
	s := parser.Inspect(data)
	row := DocumentRow{
		Path:       path,
		Title:      s.Title,
		Checksum:   storage.Checksum(data),
		SourceType: s.Metadata.SourceType,
		SourceURL:  s.Metadata.SourceURL,
		Tags:       s.Tags,
		Keywords:   s.Metadata.ExtractedKeywords,
		Summary:    s.Metadata.Summary,
		UpdatedAt:  time.Now().UTC(),
	}
	return db.UpsertDocument(row, s.Body)
}

// Sync walks the knowledge base and brings the index up to date: new or
// changed documents are upserted and documents gone from disk are removed.
// It reports every change through cb when cb is non-nil.
func Sync(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	files, err := store.List("", docSuffix)
	if err != nil {
		return err
	}
	indexed, err := db.AllChecksums()
	if err != nil {
		return err
	}

	onDisk := make(map[string]struct{}, len(files))
	for _, f := range files {
		onDisk[f.Path] = struct{}{}
		prev, known := indexed[f.Path]
		if prev == f.Checksum {
			continue
		}
		data, err := store.Read(f.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		if err := db.IndexDocument(f.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", f.Path))
		kind := KindCreated
		if known {
			kind = KindUpdated
		}
		notify(cb, kind, f.Path)
	}

	for p := range indexed {
		if _, ok := onDisk[p]; ok {
			continue
		}
		if err := db.DeleteDocument(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
		notify(cb, KindDeleted, p)
	}
	return nil
}

func notify(cb EventCallback, kind, path string) {
	if cb != nil {
		cb(kind, path)
	}
}
