// Package models defines the domain types for the knowledge base.
package models

import "time"

// SourceType identifies where a document's content came from.
type SourceType string

const (
	SourceWebArticle   SourceType = "web-article"
	SourceYouTubeVideo SourceType = "youtube-video"
	SourceDirectText   SourceType = "direct-text"
)

// NotApplicable is stored as source_url when content has no origin URL.
const NotApplicable = "N/A"

// Valid reports whether s is one of the known source types.
func (s SourceType) Valid() bool {
	switch s {
	case SourceWebArticle, SourceYouTubeVideo, SourceDirectText:
		return true
	}
	return false
}

// Metadata is the front matter attached to every stored document.
//
// Field order is the serialization order of the YAML block; viewers that
// split on the "---" delimiter depend on it, so do not reorder.
type Metadata struct {
	Title             string     `yaml:"title" json:"title"`
	SourceURL         string     `yaml:"source_url" json:"source_url"`
	SourceType        SourceType `yaml:"source_type" json:"source_type"`
	DateExtracted     time.Time  `yaml:"date_extracted" json:"date_extracted"`
	UserTags          []string   `yaml:"user_tags" json:"user_tags"`
	UserPurpose       string     `yaml:"user_purpose" json:"user_purpose"`
	Summary           string     `yaml:"summary" json:"summary"`
	ExtractedKeywords []string   `yaml:"extracted_keywords" json:"extracted_keywords"`
}

// Document is an assembled Markdown document: metadata plus body.
type Document struct {
	Metadata Metadata `json:"metadata"`
	Body     string   `json:"body"`
}

// SessionRef is the transient reference a front end keeps for a staged item.
type SessionRef struct {
	TempID     string     `json:"temp_id"`
	SourceType SourceType `json:"source_type"`
	SourceURL  string     `json:"source_url"`
}

// Entry is one committed knowledge base record in the JSON index.
// Metadata fields are flattened into the record.
type Entry struct {
	SeqNo    int    `json:"seq_no"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Metadata
	DateSaved time.Time `json:"date_saved"`
}

// Edits carries reviewer changes applied before commit. Nil fields keep the
// staged value.
type Edits struct {
	Title   *string  `json:"title,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Purpose *string  `json:"purpose,omitempty"`
}

// Apply overlays e onto m. Summary and keywords are never touched.
func (e Edits) Apply(m *Metadata) {
	if e.Title != nil && *e.Title != "" {
		m.Title = *e.Title
	}
	if e.Tags != nil {
		m.UserTags = append([]string{}, e.Tags...)
	}
	if e.Purpose != nil {
		m.UserPurpose = *e.Purpose
	}
}

// FetchResult is what a content fetcher returns for a URL.
type FetchResult struct {
	Body  string
	Title string
}

// FileInfo is a lightweight representation returned by storage list operations.
type FileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
