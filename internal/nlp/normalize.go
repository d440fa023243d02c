package nlp

import (
	"regexp"
	"strings"
)

var (
	urlRe       = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailRe     = regexp.MustCompile(`\S*@\S*\s?`)
	nonLetterRe = regexp.MustCompile(`[^\p{L}\s]`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// Clean strips URLs, e-mail addresses and every character that is not a
// letter or whitespace, then collapses whitespace. It is applied to text
// before analysis only, never to the stored body.
func Clean(text string) string {
	text = urlRe.ReplaceAllString(text, "")
	text = emailRe.ReplaceAllString(text, "")
	text = nonLetterRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
