package spell

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// punctuation lists the trailing marks preserved across a correction.
var punctuation = []string{".", "!", "?", ","}

// Corrector is a noisy-channel spelling corrector over a FrequencyModel.
// It is read-only after construction and safe for concurrent use.
type Corrector struct {
	model FrequencyModel
}

// NewCorrector trains a corrector on the given reference text.
func NewCorrector(referenceText string) *Corrector {
	return &Corrector{model: Train(referenceText)}
}

// NewCorrectorFromModel uses an existing frequency model.
func NewCorrectorFromModel(model FrequencyModel) *Corrector {
	return &Corrector{model: model}
}

// Load reads a reference corpus from path and trains a corrector on it.
func Load(path string) (*Corrector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference corpus: %w", err)
	}
	return NewCorrector(string(data)), nil
}

// Model returns the underlying frequency model.
func (c *Corrector) Model() FrequencyModel { return c.model }

// Correct returns the most frequent known word within two edits of word,
// or word itself when nothing is known. One trailing mark from . ! ? , is kept.
// Equal counts resolve to the lexicographically smallest candidate.
func (c *Corrector) Correct(word string) string {
	suffix := ""
	for _, p := range punctuation {
		if strings.HasSuffix(word, p) {
			suffix = p
			word = strings.TrimSuffix(word, p)
			break
		}
	}
	if word == "" {
		return suffix
	}
	best := ""
	bestCount := -1
	for _, cand := range c.candidates(word) {
		n := c.model.Count(cand)
		if n > bestCount || (n == bestCount && cand < best) {
			best, bestCount = cand, n
		}
	}
	return best + suffix
}

func (c *Corrector) candidates(word string) []string {
	if c.model.Known(word) {
		return []string{word}
	}
	one := edits1(word)
	if known := c.known(one); len(known) > 0 {
		return known
	}
	two := make(map[string]struct{})
	for e1 := range one {
		for e2 := range edits1(e1) {
			if c.model.Known(e2) {
				two[e2] = struct{}{}
			}
		}
	}
	if len(two) > 0 {
		return lo.Keys(two)
	}
	return []string{word}
}

func (c *Corrector) known(words map[string]struct{}) []string {
	var out []string
	for w := range words {
		if c.model.Known(w) {
			out = append(out, w)
		}
	}
	return out
}

// edits1 returns every string one deletion, adjacent transposition,
// replacement or insertion away from word.
func edits1(word string) map[string]struct{} {
	out := make(map[string]struct{}, 54*len(word)+25)
	for i := 0; i <= len(word); i++ {
		left, right := word[:i], word[i:]
		if len(right) > 0 {
			out[left+right[1:]] = struct{}{}
		}
		if len(right) > 1 {
			out[left+right[1:2]+right[0:1]+right[2:]] = struct{}{}
		}
		for j := 0; j < len(alphabet); j++ {
			ch := alphabet[j : j+1]
			if len(right) > 0 {
				out[left+ch+right[1:]] = struct{}{}
			}
			out[left+ch+right] = struct{}{}
		}
	}
	return out
}
