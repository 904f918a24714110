package spell

import (
	"regexp"
	"strings"
)

// unseenCount is the count reported for words absent from the reference corpus.
const unseenCount = 1

var wordPattern = regexp.MustCompile(`[a-z]+`)

// FrequencyModel maps words of a reference corpus to their counts.
// Lookups of unseen words return 1 instead of 0 (Laplace prior).
type FrequencyModel struct {
	counts map[string]int
}

// NewFrequencyModel wraps precomputed counts. The map is copied.
func NewFrequencyModel(counts map[string]int) FrequencyModel {
	m := make(map[string]int, len(counts))
	for w, c := range counts {
		m[w] = c
	}
	return FrequencyModel{counts: m}
}

// Train counts the lowercase alphabetic tokens of text. Every occurrence adds
// one on top of the unseen default, so a word seen k times counts k+1.
func Train(text string) FrequencyModel {
	counts := make(map[string]int)
	for _, w := range Words(text) {
		if _, ok := counts[w]; !ok {
			counts[w] = unseenCount
		}
		counts[w]++
	}
	return FrequencyModel{counts: counts}
}

// Words extracts the lowercase [a-z] runs of text.
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Count returns the count of word, or 1 when the word was never seen.
func (m FrequencyModel) Count(word string) int {
	if c, ok := m.counts[word]; ok {
		return c
	}
	return unseenCount
}

// Known reports whether word occurred in the reference corpus.
func (m FrequencyModel) Known(word string) bool {
	_, ok := m.counts[word]
	return ok
}

// Len is the number of distinct known words.
func (m FrequencyModel) Len() int { return len(m.counts) }
