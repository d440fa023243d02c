// Package pipeline turns raw content into an assembled knowledge base
// document: body conversion, analysis (summary and keywords) and the
// front matter header.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/starford/reinforcer/internal/apperr"
	"github.com/starford/reinforcer/internal/models"
	"github.com/starford/reinforcer/internal/nlp"
	"github.com/starford/reinforcer/internal/parser"
)

// Converter converts HTML to Markdown.
type Converter interface {
	ConvertString(html string) (string, error)
}

// Input is the raw material for one document.
type Input struct {
	Body       string
	SourceType models.SourceType
	SourceURL  string
	Title      string
	Tags       []string
	Purpose    string
}

// Analysis is the generated part of a document's metadata.
type Analysis struct {
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

// Assembler builds documents. It is safe for concurrent use.
type Assembler struct {
	converter        Converter
	policies         Policies
	summarySentences int
	keywordCount     int
	now              func() time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithConverter replaces the HTML to Markdown converter.
func WithConverter(c Converter) Option {
	return func(a *Assembler) { a.converter = c }
}

// WithPolicies replaces the per-source-type policy table.
func WithPolicies(p Policies) Option {
	return func(a *Assembler) { a.policies = p }
}

// WithSummarySentences sets the summary length in sentences. n <= 0 keeps
// the default.
func WithSummarySentences(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.summarySentences = n
		}
	}
}

// WithKeywordCount sets the number of extracted keyword phrases. n <= 0
// keeps the default.
func WithKeywordCount(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.keywordCount = n
		}
	}
}

// WithClock sets the time source for date_extracted.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// NewAssembler creates an Assembler with ATX-heading Markdown conversion and
// DefaultPolicies.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		converter:        md.NewConverter("", true, &md.Options{HeadingStyle: "atx"}),
		policies:         DefaultPolicies,
		summarySentences: nlp.DefaultSummarySentences,
		keywordCount:     nlp.DefaultKeywordCount,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze summarizes content and extracts keywords according to the policy
// for st. It never fails.
func (a *Assembler) Analyze(content string, st models.SourceType) Analysis {
	text := a.analysisText(content, a.policies.For(st))
	return Analysis{
		Summary:  nlp.Summarize(text, a.summarySentences),
		Keywords: nlp.Keywords(text, a.keywordCount),
	}
}

// Suggest is Analyze for suggestions shown before staging: the text is
// always normalized, whatever the source type's policy says. Stored
// documents keep the per-source-type policy.
func (a *Assembler) Suggest(content string, st models.SourceType) Analysis {
	p := a.policies.For(st)
	p.Normalize = true
	text := a.analysisText(content, p)
	return Analysis{
		Summary:  nlp.Summarize(text, a.summarySentences),
		Keywords: nlp.Keywords(text, a.keywordCount),
	}
}

func (a *Assembler) analysisText(content string, p Policy) string {
	text := content
	if p.ExtractText {
		text = ExtractText(text)
	}
	if p.Normalize {
		text = nlp.Clean(text)
	}
	return text
}

// Assemble produces the document and its serialized form. An empty body
// yields apperr.ErrEmptyContent and no document.
func (a *Assembler) Assemble(in Input) (*models.Document, []byte, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, nil, fmt.Errorf("pipeline: assemble: %w", apperr.ErrEmptyContent)
	}
	policy := a.policies.For(in.SourceType)

	body := in.Body
	if policy.ConvertHTML {
		converted, err := a.converter.ConvertString(in.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("pipeline: convert html: %w", err)
		}
		body = converted
	}

	analysis := a.Analyze(in.Body, in.SourceType)
	now := a.now()

	sourceURL := strings.TrimSpace(in.SourceURL)
	if sourceURL == "" {
		sourceURL = models.NotApplicable
	}

	doc := &models.Document{
		Metadata: models.Metadata{
			Title:             a.title(in, now),
			SourceURL:         sourceURL,
			SourceType:        in.SourceType,
			DateExtracted:     now,
			UserTags:          CleanTags(in.Tags),
			UserPurpose:       in.Purpose,
			Summary:           analysis.Summary,
			ExtractedKeywords: analysis.Keywords,
		},
		Body: body,
	}
	data, err := parser.Render(doc.Metadata, doc.Body)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}

func (a *Assembler) title(in Input, now time.Time) string {
	if t := strings.TrimSpace(in.Title); t != "" {
		return t
	}
	if in.SourceType == models.SourceDirectText {
		return "Direct Text - " + now.Format("20060102_150405")
	}
	return "Untitled"
}

// CleanTags trims tags and drops empty ones, preserving order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SplitTags parses a comma-separated tag list.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return CleanTags(strings.Split(s, ","))
}
