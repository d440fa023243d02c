package pipeline

import "github.com/starford/reinforcer/internal/models"

// Policy controls how a source type's raw content is turned into a stored
// body and into the text fed to the summarizer and keyword extractor.
type Policy struct {
	// ConvertHTML converts the stored body from HTML to Markdown.
	ConvertHTML bool
	// ExtractText analyzes the visible text of HTML content instead of the markup.
	ExtractText bool
	// Normalize runs nlp.Clean over the analysis text.
	Normalize bool
}

// Policies maps source types to their processing policy.
type Policies map[models.SourceType]Policy

// DefaultPolicies keeps normalization on direct text only. Fetched content
// is analyzed as fetched; whether it should also be cleaned is an open
// product question, so it stays a table entry rather than a code path.
var DefaultPolicies = Policies{
	models.SourceWebArticle:   {ConvertHTML: true, ExtractText: true},
	models.SourceYouTubeVideo: {},
	models.SourceDirectText:   {Normalize: true},
}

// For returns the policy for st; unknown types pass through untouched.
func (p Policies) For(st models.SourceType) Policy {
	return p[st]
}
