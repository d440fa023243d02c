// Package workflow coordinates submission, staging, review and commit of
// knowledge base documents.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/reinforcer/internal/apperr"
	"github.com/starford/reinforcer/internal/fetch"
	"github.com/starford/reinforcer/internal/kb"
	"github.com/starford/reinforcer/internal/models"
	"github.com/starford/reinforcer/internal/parser"
	"github.com/starford/reinforcer/internal/pipeline"
	"github.com/starford/reinforcer/internal/staging"
)

// SuggestedPurposePrefix starts every purpose suggested by Analyze.
const SuggestedPurposePrefix = "Relevant for AI coding: "

// Publisher receives workflow events. *sse.Broker satisfies it.
type Publisher interface {
	PublishEvent(eventType string, data any)
}

// DocumentIndexer makes a committed document searchable. *index.DB
// satisfies it.
type DocumentIndexer interface {
	IndexDocument(path string, data []byte) error
}

// Submission is raw input: a URL to fetch or direct text, never both.
type Submission struct {
	URL     string   `json:"url,omitempty"`
	Text    string   `json:"text,omitempty"`
	Title   string   `json:"title,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Purpose string   `json:"purpose,omitempty"`
}

// Validate checks that exactly one content source is given.
func (s Submission) Validate() error {
	hasText := strings.TrimSpace(s.Text) != ""
	return validation.ValidateStruct(&s,
		validation.Field(&s.URL,
			validation.Required.When(!hasText).Error("url or text is required"),
			validation.Empty.When(hasText).Error("url and text are mutually exclusive"),
			is.URL),
	)
}

// Staged is the result of a successful submission.
type Staged struct {
	Ref      models.SessionRef `json:"session"`
	Document *models.Document  `json:"document"`
}

// Suggestion is the output of Analyze.
type Suggestion struct {
	SourceType models.SourceType `json:"source_type"`
	Title      string            `json:"title"`
	Summary    string            `json:"summary"`
	Keywords   []string          `json:"keywords"`
	Tags       []string          `json:"suggested_tags"`
	Purpose    string            `json:"suggested_purpose"`
}

// Service drives the document lifecycle.
type Service struct {
	assembler  *pipeline.Assembler
	staging    *staging.Store
	kb         *kb.Base
	fetcher    fetch.Fetcher
	events     Publisher
	indexer    DocumentIndexer
	stagingTTL time.Duration
	logger     *slog.Logger

	// Temp ids with a commit in flight.
	committing sync.Map
}

// Option configures a Service.
type Option func(*Service)

// WithFetcher enables URL submissions.
func WithFetcher(f fetch.Fetcher) Option { return func(s *Service) { s.fetcher = f } }

// WithPublisher sends transition events to p.
func WithPublisher(p Publisher) Option { return func(s *Service) { s.events = p } }

// WithIndexer indexes documents right after commit.
func WithIndexer(ix DocumentIndexer) Option { return func(s *Service) { s.indexer = ix } }

// WithStagingTTL sweeps staged documents older than ttl on every Submit.
func WithStagingTTL(ttl time.Duration) Option { return func(s *Service) { s.stagingTTL = ttl } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// New creates a Service.
func New(asm *pipeline.Assembler, store *staging.Store, base *kb.Base, opts ...Option) *Service {
	s := &Service{
		assembler: asm,
		staging:   store,
		kb:        base,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process assembles raw content into a document without staging it.
func (s *Service) Process(in pipeline.Input) (*models.Document, []byte, error) {
	return s.assembler.Assemble(in)
}

// Submit moves a submission from Draft to Staged.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Staged, error) {
	s.Sweep()

	if err := sub.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	in, err := s.resolve(ctx, sub)
	if err != nil {
		return nil, err
	}
	doc, data, err := s.assembler.Assemble(in)
	if err != nil {
		return nil, err
	}
	id, err := s.staging.Stage(data)
	if err != nil {
		return nil, err
	}

	ref := models.SessionRef{TempID: id, SourceType: in.SourceType, SourceURL: doc.Metadata.SourceURL}
	s.transition(id, StateDraft, StateStaged)
	s.publish(EventStaged, map[string]string{"temp_id": id, "title": doc.Metadata.Title})
	return &Staged{Ref: ref, Document: doc}, nil
}

// Review returns the staged document. A staged document that no longer
// parses is deleted and reported as apperr.ErrMalformed.
func (s *Service) Review(_ context.Context, id string) (*models.Document, error) {
	return s.load(id)
}

// Edit overlays edits onto the staged document and persists them. Summary
// and keywords are kept.
func (s *Service) Edit(_ context.Context, id string, edits models.Edits) (*models.Document, error) {
	doc, err := s.load(id)
	if err != nil {
		return nil, err
	}
	edits.Apply(&doc.Metadata)
	data, err := parser.Render(doc.Metadata, doc.Body)
	if err != nil {
		return nil, err
	}
	if err := s.staging.Replace(id, data); err != nil {
		return nil, err
	}
	s.publish(EventEdited, map[string]string{"temp_id": id, "title": doc.Metadata.Title})
	return doc, nil
}

// Commit moves a staged document to Committed. Once the staged document has
// been read it is deleted on every exit path, including failures.
func (s *Service) Commit(_ context.Context, id string, edits models.Edits) (entry *models.Entry, err error) {
	if _, busy := s.committing.LoadOrStore(id, struct{}{}); busy {
		return nil, fmt.Errorf("staged document %s is already being committed: %w", id, apperr.ErrNotFound)
	}
	defer s.committing.Delete(id)

	data, err := s.staging.Read(id)
	if err != nil {
		return nil, err
	}
	defer s.release(id, &err)

	doc, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	edits.Apply(&doc.Metadata)

	entry, err = s.kb.Commit(doc)
	if err != nil {
		return nil, err
	}

	if s.indexer != nil {
		s.index(entry.Path, doc)
	}
	s.transition(id, StateStaged, StateCommitted)
	s.publish(EventCommitted, map[string]any{"seq_no": entry.SeqNo, "path": entry.Path, "title": entry.Title})
	return entry, nil
}

// Discard moves a staged document to Discarded. An id that is already gone
// still completes and reports apperr.ErrNotFound.
func (s *Service) Discard(_ context.Context, id string) error {
	err := s.staging.Discard(id)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	s.transition(id, StateStaged, StateDiscarded)
	s.publish(EventDiscarded, map[string]string{"temp_id": id})
	return err
}

// Sweep reclaims abandoned staged documents older than the staging TTL and
// returns how many were removed.
func (s *Service) Sweep() int {
	if s.stagingTTL <= 0 {
		return 0
	}
	n, err := s.staging.Sweep(s.stagingTTL)
	if err != nil {
		s.logger.Warn("workflow: staging sweep failed", slog.String("error", err.Error()))
		return 0
	}
	if n > 0 {
		s.logger.Info("workflow: state transition",
			slog.String("to", string(StateAbandoned)), slog.Int("count", n))
		s.publish(EventSwept, map[string]int{"count": n})
	}
	return n
}

// Ingest submits and commits in one step.
func (s *Service) Ingest(ctx context.Context, sub Submission) (*models.Entry, error) {
	staged, err := s.Submit(ctx, sub)
	if err != nil {
		return nil, err
	}
	return s.Commit(ctx, staged.Ref.TempID, models.Edits{})
}

// Analyze suggests a summary, keywords, tags and purpose for a submission
// without staging anything.
func (s *Service) Analyze(ctx context.Context, sub Submission) (*Suggestion, error) {
	if err := sub.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	in, err := s.resolve(ctx, sub)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("workflow: analyze: %w", apperr.ErrEmptyContent)
	}
	a := s.assembler.Suggest(in.Body, in.SourceType)

	purpose := ""
	if a.Summary != "" {
		purpose = SuggestedPurposePrefix + a.Summary
	}
	return &Suggestion{
		SourceType: in.SourceType,
		Title:      in.Title,
		Summary:    a.Summary,
		Keywords:   a.Keywords,
		Tags:       append([]string{}, a.Keywords...),
		Purpose:    purpose,
	}, nil
}

// Entries lists committed entries.
func (s *Service) Entries(newestFirst bool) ([]models.Entry, error) {
	return s.kb.Entries(newestFirst)
}

// Document returns a committed document by its knowledge-base-relative path.
func (s *Service) Document(path string) (*models.Document, error) {
	return s.kb.ReadDocument(path)
}

// resolve turns a validated submission into assembler input.
func (s *Service) resolve(ctx context.Context, sub Submission) (pipeline.Input, error) {
	in := pipeline.Input{Title: sub.Title, Tags: sub.Tags, Purpose: sub.Purpose}
	if strings.TrimSpace(sub.URL) == "" {
		in.Body = sub.Text
		in.SourceType = models.SourceDirectText
		return in, nil
	}
	if s.fetcher == nil {
		return in, fmt.Errorf("workflow: url submissions disabled: %w", apperr.ErrInvalidInput)
	}
	in.SourceURL = strings.TrimSpace(sub.URL)
	in.SourceType = fetch.DetectSourceType(in.SourceURL)
	res, err := s.fetcher.Fetch(ctx, in.SourceURL, in.SourceType)
	if err != nil {
		return in, err
	}
	in.Body = res.Body
	if strings.TrimSpace(in.Title) == "" {
		in.Title = res.Title
	}
	return in, nil
}

// load reads and parses a staged document, deleting it when it is corrupt.
func (s *Service) load(id string) (*models.Document, error) {
	data, err := s.staging.Read(id)
	if err != nil {
		return nil, err
	}
	doc, err := parser.Parse(data)
	if err != nil {
		if derr := s.staging.Discard(id); derr != nil {
			s.logger.Warn("workflow: delete malformed staged document failed",
				slog.String("temp_id", id), slog.String("error", derr.Error()))
		}
		return nil, err
	}
	return doc, nil
}

// release deletes the staged document after a commit attempt. Cleanup
// failures are logged and never replace the primary error.
func (s *Service) release(id string, primary *error) {
	if err := s.staging.Discard(id); err != nil {
		attrs := []any{slog.String("temp_id", id), slog.String("error", err.Error())}
		if *primary != nil {
			attrs = append(attrs, slog.String("primary_error", (*primary).Error()))
		}
		s.logger.Warn("workflow: staged document cleanup failed", attrs...)
	}
}

// index pushes a committed document into the search index. Failures only
// delay search visibility until the next sync.
func (s *Service) index(path string, doc *models.Document) {
	data, err := parser.Render(doc.Metadata, doc.Body)
	if err == nil {
		err = s.indexer.IndexDocument(path, data)
	}
	if err != nil {
		s.logger.Warn("workflow: search index update failed",
			slog.String("path", path), slog.String("error", err.Error()))
	}
}

func (s *Service) transition(id string, from, to State) {
	s.logger.Info("workflow: state transition",
		slog.String("temp_id", id), slog.String("from", string(from)), slog.String("to", string(to)))
}

func (s *Service) publish(eventType string, data any) {
	if s.events != nil {
		s.events.PublishEvent(eventType, data)
	}
}
