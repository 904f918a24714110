// Package normalize builds the canonical secondary text of dialogue lines.
//
// NormalizeOne spell-corrects every token before stemming and serves single
// queries. NormalizeBatch skips spell correction and stems each distinct token
// of the batch once.
package normalize

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"dialogvec/internal/domain"
)

var (
	nonAlnum   = regexp.MustCompile(`[^A-Za-z0-9]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Normalizer lowercases, strips punctuation, and stems dialogue lines.
type Normalizer struct {
	corrector domain.Corrector
	stemmer   domain.Stemmer
}

// New creates a Normalizer. The corrector is only used by NormalizeOne.
func New(corrector domain.Corrector, stemmer domain.Stemmer) *Normalizer {
	return &Normalizer{corrector: corrector, stemmer: stemmer}
}

// NormalizeOne cleans line, spell-corrects and stems every token.
func (n *Normalizer) NormalizeOne(line string) string {
	tokens := tokens(line)
	for i, tok := range tokens {
		tokens[i] = n.stemmer.Stem(n.corrector.Correct(tok))
	}
	return strings.Join(tokens, " ")
}

// NormalizeBatch cleans and stems every line without spell correction.
// Each distinct token is stemmed once, as stem(stem(token)).
func (n *Normalizer) NormalizeBatch(lines []string) []string {
	split := lo.Map(lines, func(line string, _ int) []string { return tokens(line) })

	stems := make(map[string]string)
	for _, tok := range lo.Uniq(lo.Flatten(split)) {
		stems[tok] = n.stemmer.Stem(n.stemmer.Stem(tok))
	}

	return lo.Map(split, func(toks []string, _ int) string {
		for i, tok := range toks {
			toks[i] = stems[tok]
		}
		return strings.Join(toks, " ")
	})
}

// Clean lowercases line, turns every non-alphanumeric character into a space
// and collapses whitespace runs. Leading and trailing spaces are kept.
func Clean(line string) string {
	line = nonAlnum.ReplaceAllString(strings.ToLower(line), " ")
	return whitespace.ReplaceAllString(line, " ")
}

// tokens splits a cleaned line on single spaces, so a leading or trailing
// space yields an empty token.
func tokens(line string) []string {
	return strings.Split(Clean(line), " ")
}
