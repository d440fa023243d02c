package kb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/starford/reinforcer/internal/models"
	"github.com/starford/reinforcer/internal/storage"
)

// IndexFile is the index's path relative to the knowledge base root.
const IndexFile = "kb_index.json"

// Index is the append-only JSON list of committed entries.
// It is not safe for concurrent use; Base serializes access.
type Index struct {
	fs     storage.Provider
	now    func() time.Time
	logger *slog.Logger
}

// NewIndex returns an Index stored in fs.
func NewIndex(fs storage.Provider, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{fs: fs, now: time.Now, logger: logger}
}

// Read returns all entries in commit order. A missing or empty file is an
// empty index; so is malformed JSON, which is logged.
func (i *Index) Read() ([]models.Entry, error) {
	data, err := i.fs.Read(IndexFile)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kb: read index: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Entry{}, nil
	}
	var entries []models.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		i.logger.Warn("kb: index is malformed, treating as empty",
			slog.String("file", IndexFile), slog.String("error", err.Error()))
		return []models.Entry{}, nil
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

// Append adds e to the index and rewrites the file. DateSaved is set when
// zero.
func (i *Index) Append(e models.Entry) (models.Entry, error) {
	entries, err := i.Read()
	if err != nil {
		return e, err
	}
	if e.DateSaved.IsZero() {
		e.DateSaved = i.now()
	}
	entries = append(entries, e)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return e, fmt.Errorf("kb: encode index: %w", err)
	}
	if err := i.fs.Write(IndexFile, append(data, '\n')); err != nil {
		return e, fmt.Errorf("kb: write index: %w", err)
	}
	return e, nil
}
