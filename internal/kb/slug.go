package kb

import (
	"fmt"
	"regexp"
	"strings"
)

const maxSlugLen = 50

var slugInvalid = regexp.MustCompile(`[^a-z0-9_]+`)

// Slugify derives a file-name-safe slug from a title.
func Slugify(title string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.Trim(s[:maxSlugLen], "-")
	}
	if s == "" {
		return "untitled"
	}
	return s
}

// Filename returns the committed file name for a sequence number and title.
func Filename(seq int, title string) string {
	return fmt.Sprintf("%04d-%s.md", seq, Slugify(title))
}
