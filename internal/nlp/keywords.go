package nlp

import (
	"sort"
	"strings"
)

// DefaultKeywordCount is the phrase count assemblers use unless configured.
const DefaultKeywordCount = 3

// Keywords extracts up to m ranked key phrases with RAKE; m <= 0 yields
// none. Stop-words and punctuation delimit candidate phrases and never
// appear in them. A word scores degree/frequency over the phrase
// co-occurrence graph and a phrase scores the sum of its words.
func Keywords(text string, m int) []string {
	if m <= 0 {
		return []string{}
	}
	phrases := candidatePhrases(text)
	if len(phrases) == 0 {
		return []string{}
	}

	freq := make(map[string]float64)
	degree := make(map[string]float64)
	for _, p := range phrases {
		for _, w := range p {
			freq[w]++
			degree[w] += float64(len(p))
		}
	}

	type ranked struct {
		phrase string
		score  float64
	}
	seen := make(map[string]struct{}, len(phrases))
	var list []ranked
	for _, p := range phrases {
		key := strings.Join(p, " ")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		var score float64
		for _, w := range p {
			score += degree[w] / freq[w]
		}
		list = append(list, ranked{phrase: key, score: score})
	}
	sort.SliceStable(list, func(a, b int) bool {
		return list[a].score > list[b].score
	})

	if len(list) > m {
		list = list[:m]
	}
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.phrase
	}
	return out
}

// candidatePhrases returns the lowercased word runs between delimiters,
// sentence by sentence.
func candidatePhrases(text string) [][]string {
	var phrases [][]string
	for _, sent := range Sentences(text) {
		var cur []string
		flush := func() {
			if len(cur) > 0 {
				phrases = append(phrases, cur)
				cur = nil
			}
		}
		for _, t := range tokenize(sent) {
			switch t.kind {
			case kindSpace:
				continue
			case kindPunct:
				flush()
			case kindWord:
				w := strings.ToLower(t.text)
				if IsStopword(w) {
					flush()
					continue
				}
				cur = append(cur, w)
			}
		}
		flush()
	}
	return phrases
}
