// Package kb is the committed knowledge base: categorized Markdown files,
// a sequence counter and a JSON index, all under one root directory.
package kb

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/starford/reinforcer/internal/apperr"
	"github.com/starford/reinforcer/internal/models"
	"github.com/starford/reinforcer/internal/parser"
	"github.com/starford/reinforcer/internal/storage"
)

// CategoryDir returns the sub-directory for a source type. Unknown types are
// stored at the root.
func CategoryDir(st models.SourceType) string {
	switch st {
	case models.SourceWebArticle:
		return "articles"
	case models.SourceYouTubeVideo:
		return "videos"
	case models.SourceDirectText:
		return "direct_text"
	}
	return ""
}

// Base owns the knowledge base root. Commit is serialized by a mutex so the
// counter, document write and index append of one commit never interleave
// with another commit in the same process.
type Base struct {
	mu      sync.Mutex
	fs      storage.Provider
	counter *Counter
	index   *Index
	logger  *slog.Logger
}

// New creates a Base rooted in fs.
func New(fs storage.Provider, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{
		fs:      fs,
		counter: NewCounter(fs),
		index:   NewIndex(fs, logger),
		logger:  logger,
	}
}

// Store returns the underlying storage provider.
func (b *Base) Store() storage.Provider { return b.fs }

// Commit numbers doc, writes it into its category directory and appends the
// index entry. Errors from any step are returned as-is; a failed index
// append leaves the written document in place.
func (b *Base) Commit(doc *models.Document) (*models.Entry, error) {
	data, err := parser.Render(doc.Metadata, doc.Body)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	seq, err := b.counter.Next()
	if err != nil {
		return nil, err
	}
	name := Filename(seq, doc.Metadata.Title)
	rel := path.Join(CategoryDir(doc.Metadata.SourceType), name)
	if err := b.fs.Write(rel, data); err != nil {
		return nil, fmt.Errorf("kb: write document: %w", err)
	}

	entry, err := b.index.Append(models.Entry{
		SeqNo:    seq,
		Filename: name,
		Path:     rel,
		Metadata: doc.Metadata,
	})
	if err != nil {
		b.logger.Error("kb: document written but not indexed",
			slog.String("path", rel), slog.String("error", err.Error()))
		return nil, err
	}
	b.logger.Info("kb: committed", slog.Int("seq_no", seq), slog.String("path", rel))
	return &entry, nil
}

// Entries returns the index in commit order, or newest first.
func (b *Base) Entries(newestFirst bool) ([]models.Entry, error) {
	b.mu.Lock()
	entries, err := b.index.Read()
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if newestFirst {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].SeqNo > entries[j].SeqNo })
	}
	return entries, nil
}

// Sequence returns the last issued sequence number.
func (b *Base) Sequence() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counter.Current()
}

// ReadDocument parses the committed document at rel.
func (b *Base) ReadDocument(rel string) (*models.Document, error) {
	if !strings.HasSuffix(rel, ".md") {
		return nil, fmt.Errorf("kb: %s: %w", rel, apperr.ErrNotFound)
	}
	data, err := b.fs.Read(rel)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("kb: %s: %w", rel, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return parser.Parse(data)
}
