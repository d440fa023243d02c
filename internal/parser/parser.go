// Package parser renders and parses the YAML front matter block of stored
// Markdown documents.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/reinforcer/internal/apperr"
	"github.com/starford/reinforcer/internal/models"
)

const delim = "---"

// Render serializes meta and body into the stored document format:
// "---", the YAML block in field declaration order, "---", a blank line,
// then the body.
func Render(meta models.Metadata, body string) ([]byte, error) {
	meta.UserTags = nonNilSlice(meta.UserTags)
	meta.ExtractedKeywords = nonNilSlice(meta.ExtractedKeywords)

	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, fmt.Errorf("parser: encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("parser: encode front matter: %w", err)
	}
	buf.WriteString(delim + "\n\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// Parse is the inverse of Render. Content without a complete front matter
// block, or with invalid YAML, yields apperr.ErrMalformed.
func Parse(data []byte) (*models.Document, error) {
	block, body, ok := split(data)
	if !ok {
		return nil, fmt.Errorf("parser: %w: missing front matter block", apperr.ErrMalformed)
	}
	var meta models.Metadata
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return nil, fmt.Errorf("parser: %w: %v", apperr.ErrMalformed, err)
	}
	meta.UserTags = nonNilSlice(meta.UserTags)
	meta.ExtractedKeywords = nonNilSlice(meta.ExtractedKeywords)
	return &models.Document{Metadata: meta, Body: body}, nil
}

// split separates the YAML block (between the leading --- delimiters) from
// the body. The single blank line Render places after the block is dropped.
func split(data []byte) (block []byte, body string, ok bool) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(data, []byte(delim+"\n")) {
		return nil, "", false
	}
	rest := data[len(delim)+1:]

	var end, after int
	switch {
	case bytes.HasPrefix(rest, []byte(delim+"\n")):
		end, after = 0, len(delim)+1
	default:
		idx := bytes.Index(rest, []byte("\n"+delim+"\n"))
		if idx < 0 {
			if !bytes.HasSuffix(rest, []byte("\n"+delim)) {
				return nil, "", false
			}
			idx = len(rest) - len(delim) - 1
			end, after = idx+1, len(rest)
			break
		}
		end, after = idx+1, idx+1+len(delim)+1
	}

	body = strings.TrimPrefix(string(rest[after:]), "\n")
	return rest[:end], body, true
}

// Summary is a lenient view of any Markdown file in the knowledge base,
// used for indexing files that may have been edited by hand.
type Summary struct {
	Metadata models.Metadata
	Body     string
	Title    string
	Tags     []string
}

// Inspect parses data leniently: documents without valid front matter are
// treated as all body, titled by their first H1 heading.
func Inspect(data []byte) *Summary {
	doc, err := Parse(data)
	if err != nil {
		body := string(data)
		return &Summary{Body: body, Title: firstHeading(body), Tags: []string{}}
	}
	title := doc.Metadata.Title
	if title == "" {
		title = firstHeading(doc.Body)
	}
	return &Summary{
		Metadata: doc.Metadata,
		Body:     doc.Body,
		Title:    title,
		Tags:     doc.Metadata.UserTags,
	}
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
