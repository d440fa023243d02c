package nlp

import (
	"sort"
	"strings"
)

// DefaultSummarySentences is the sentence count used when callers pass k <= 0.
const DefaultSummarySentences = 1

// Summarize returns the k highest-scoring sentences of text, verbatim and in
// their original order. Sentences score the sum of the corpus frequencies of
// their non-stop-words. Text with k or fewer sentences is returned as is.
func Summarize(text string, k int) string {
	if k <= 0 {
		k = DefaultSummarySentences
	}
	sents := Sentences(text)
	if len(sents) <= k {
		return strings.Join(sents, " ")
	}

	freq := make(map[string]int)
	for _, w := range Words(text) {
		if isAlnum(w) && !IsStopword(w) {
			freq[w]++
		}
	}

	type scored struct {
		idx   int
		score int
	}
	ranked := make([]scored, len(sents))
	for i, s := range sents {
		ranked[i].idx = i
		for _, w := range Words(s) {
			ranked[i].score += freq[w]
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	picked := make([]int, 0, k)
	for _, r := range ranked[:k] {
		picked = append(picked, r.idx)
	}
	sort.Ints(picked)

	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = sents[idx]
	}
	return strings.Join(out, " ")
}
