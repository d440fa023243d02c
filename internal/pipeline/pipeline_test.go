package pipeline

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/reinforcer/internal/apperr"
	"github.com/starford/reinforcer/internal/models"
	"github.com/starford/reinforcer/internal/parser"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func newTestAssembler(opts ...Option) *Assembler {
	return NewAssembler(append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

type failingConverter struct{}

func (failingConverter) ConvertString(string) (string, error) {
	return "", errors.New("boom")
}

func TestAssembleDirectText(t *testing.T) {
	a := newTestAssembler()
	doc, data, err := a.Assemble(Input{
		Body:       "Go is fast. Go is simple and Go is fun. Cats sleep.",
		SourceType: models.SourceDirectText,
		Tags:       []string{" go ", "", "lang"},
		Purpose:    "learning",
	})
	require.NoError(t, err)

	assert.Equal(t, "Direct Text - 20240309_140507", doc.Metadata.Title)
	assert.Equal(t, models.NotApplicable, doc.Metadata.SourceURL)
	assert.Equal(t, []string{"go", "lang"}, doc.Metadata.UserTags)
	assert.Equal(t, "learning", doc.Metadata.UserPurpose)
	assert.True(t, doc.Metadata.DateExtracted.Equal(fixedNow))
	assert.NotEmpty(t, doc.Metadata.Summary)
	assert.NotNil(t, doc.Metadata.ExtractedKeywords)
	assert.Equal(t, "Go is fast. Go is simple and Go is fun. Cats sleep.", doc.Body)

	parsed, err := parser.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Body, parsed.Body)
	assert.Equal(t, doc.Metadata.Title, parsed.Metadata.Title)
	assert.Equal(t, doc.Metadata.Summary, parsed.Metadata.Summary)
}

func TestAssembleWebArticleConvertsHTML(t *testing.T) {
	a := newTestAssembler()
	doc, _, err := a.Assemble(Input{
		Body:       "<h1>Heading</h1><p>Go is a programming language. It compiles quickly.</p>",
		SourceType: models.SourceWebArticle,
		SourceURL:  "https://example.com/go",
		Title:      "Go",
	})
	require.NoError(t, err)

	assert.Contains(t, doc.Body, "# Heading")
	assert.NotContains(t, doc.Body, "<p>")
	assert.Equal(t, "https://example.com/go", doc.Metadata.SourceURL)
	assert.Equal(t, "Go", doc.Metadata.Title)
	assert.NotContains(t, doc.Metadata.Summary, "<")
}

func TestAssembleUntitledForFetchedContent(t *testing.T) {
	a := newTestAssembler()
	doc, _, err := a.Assemble(Input{
		Body:       "transcript text here",
		SourceType: models.SourceYouTubeVideo,
		SourceURL:  "https://youtu.be/abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "Untitled", doc.Metadata.Title)
	assert.Equal(t, "transcript text here", doc.Body)
}

func TestAssembleEmptyBody(t *testing.T) {
	a := newTestAssembler()
	for _, body := range []string{"", "   \n\t"} {
		doc, data, err := a.Assemble(Input{Body: body, SourceType: models.SourceDirectText})
		assert.ErrorIs(t, err, apperr.ErrEmptyContent)
		assert.Nil(t, doc)
		assert.Nil(t, data)
	}
}

func TestAssembleConverterError(t *testing.T) {
	a := newTestAssembler(WithConverter(failingConverter{}))
	_, _, err := a.Assemble(Input{Body: "<p>x</p>", SourceType: models.SourceWebArticle})
	assert.Error(t, err)
}

func TestAnalyzePolicies(t *testing.T) {
	a := newTestAssembler(WithKeywordCount(5))

	direct := a.Analyze("Visit https://example.com for Go tips. Go rocks!", models.SourceDirectText)
	assert.NotContains(t, direct.Summary, "https")
	assert.NotContains(t, direct.Summary, "!")

	video := a.Analyze("Go rocks! Really.", models.SourceYouTubeVideo)
	assert.Contains(t, video.Summary, "!")

	web := a.Analyze("<html><script>var x;</script><p>Readable text only.</p></html>", models.SourceWebArticle)
	assert.Equal(t, "Readable text only.", web.Summary)
	assert.LessOrEqual(t, len(web.Keywords), 5)
}

func TestSuggestAlwaysNormalizes(t *testing.T) {
	a := newTestAssembler()

	video := a.Suggest("Go rocks! Really.", models.SourceYouTubeVideo)
	assert.NotContains(t, video.Summary, "!")

	web := a.Suggest("<p>Version 2 ships today!</p>", models.SourceWebArticle)
	assert.NotContains(t, web.Summary, "<")
	assert.NotContains(t, web.Summary, "2")

	// Stored analysis still follows the policy table.
	assert.Contains(t, a.Analyze("Go rocks! Really.", models.SourceYouTubeVideo).Summary, "!")
}

func TestZeroCountsKeepDefaults(t *testing.T) {
	a := newTestAssembler(WithKeywordCount(0), WithSummarySentences(0))
	got := a.Analyze("Graph algorithms rank phrases. Frequent words build degree.", models.SourceDirectText)
	assert.NotEmpty(t, got.Summary)
	assert.NotEmpty(t, got.Keywords)
	assert.LessOrEqual(t, len(got.Keywords), 3)
}

func TestAnalyzeCustomPolicies(t *testing.T) {
	a := newTestAssembler(WithPolicies(Policies{models.SourceYouTubeVideo: {Normalize: true}}))
	got := a.Analyze("Go rocks! Really.", models.SourceYouTubeVideo)
	assert.False(t, strings.Contains(got.Summary, "!"))
}

func TestExtractText(t *testing.T) {
	markup := `<html><head><title>T</title></head><body>
<nav>menu</nav><h2>Intro</h2><p>First <b>bold</b> para.</p><ul><li>item</li></ul>
<script>ignored()</script></body></html>`
	assert.Equal(t, "Intro First bold para. item", ExtractText(markup))

	assert.Equal(t, "loose text", ExtractText("<div>loose text<script>x()</script></div>"))
	assert.Equal(t, "", ExtractText(""))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitTags(" a, ,b "))
	assert.Equal(t, []string{}, SplitTags(""))
}
