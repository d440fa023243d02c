// Package nlp holds the text analysis used to describe ingested content:
// normalization, sentence and word tokenization, extractive summarization
// and RAKE keyword extraction. All functions are total over string input.
package nlp

import (
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/segment"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

type tokenKind int

const (
	kindSpace tokenKind = iota
	kindPunct
	kindWord
)

type token struct {
	text string
	kind tokenKind
}

var (
	punktOnce sync.Once
	punkt     *sentences.DefaultSentenceTokenizer
)

func sentenceTokenizer() *sentences.DefaultSentenceTokenizer {
	punktOnce.Do(func() {
		tok, err := english.NewSentenceTokenizer(nil)
		if err == nil {
			punkt = tok
		}
	})
	return punkt
}

// Sentences splits text into trimmed, non-empty sentences using the English
// Punkt model.
func Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	tok := sentenceTokenizer()
	if tok == nil {
		return splitTerminal(text)
	}
	var out []string
	for _, s := range tok.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// splitTerminal breaks after ., ! or ? followed by whitespace. Used only when
// the Punkt model is unavailable.
func splitTerminal(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !strings.ContainsRune(".!?", runes[i]) {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// tokenize segments text on Unicode word boundaries (UAX #29).
func tokenize(text string) []token {
	seg := segment.NewWordSegmenterDirect([]byte(text))
	var out []token
	for seg.Segment() {
		s := string(seg.Bytes())
		switch {
		case seg.Type() != segment.None:
			out = append(out, token{text: s, kind: kindWord})
		case strings.TrimSpace(s) == "":
			out = append(out, token{text: s, kind: kindSpace})
		default:
			out = append(out, token{text: s, kind: kindPunct})
		}
	}
	return out
}

// Words returns the lowercased word tokens of text.
func Words(text string) []string {
	var out []string
	for _, t := range tokenize(text) {
		if t.kind == kindWord {
			out = append(out, strings.ToLower(t.text))
		}
	}
	return out
}

func isAlnum(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
