package internal

import (
	"fmt"
	"log/slog"

	"github.com/starford/reinforcer/internal/fetch"
	"github.com/starford/reinforcer/internal/index"
	"github.com/starford/reinforcer/internal/kb"
	"github.com/starford/reinforcer/internal/pipeline"
	"github.com/starford/reinforcer/internal/staging"
	"github.com/starford/reinforcer/internal/storage"
	"github.com/starford/reinforcer/internal/workflow"
)

// Components are the long-lived objects shared by every front end.
type Components struct {
	Service *workflow.Service
	DB      *index.DB
	KBStore storage.Provider
}

// NewComponents opens the stores and the search index, runs an initial index
// sync and wires the workflow service. extra options are applied after the
// configured ones. Callers must Close the result.
func NewComponents(cfg *Config, logger *slog.Logger, extra ...workflow.Option) (*Components, error) {
	kbStore, err := storage.NewFS(cfg.KnowledgeBase.Path)
	if err != nil {
		return nil, fmt.Errorf("init knowledge base storage: %w", err)
	}
	stagingStore, err := storage.NewFS(cfg.Staging.Path)
	if err != nil {
		return nil, fmt.Errorf("init staging storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, kbStore, logger, nil); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	asm := pipeline.NewAssembler(
		pipeline.WithSummarySentences(cfg.Analysis.SummarySentences),
		pipeline.WithKeywordCount(cfg.Analysis.KeywordCount),
	)
	opts := []workflow.Option{
		workflow.WithFetcher(fetch.New(cfg.Fetch.FetcherConfig(), logger)),
		workflow.WithIndexer(db),
		workflow.WithStagingTTL(cfg.Staging.TTL),
		workflow.WithLogger(logger),
	}
	svc := workflow.New(asm,
		staging.NewStore(stagingStore, logger),
		kb.New(kbStore, logger),
		append(opts, extra...)...)

	return &Components{Service: svc, DB: db, KBStore: kbStore}, nil
}

// Close releases the search index.
func (c *Components) Close() error {
	return c.DB.Close()
}
