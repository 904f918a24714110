// Package ngram implements a bag-of-n-grams count model.
package ngram

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"dialogvec/internal/domain"
)

// dfTolerance absorbs float error when a document-frequency fraction is
// multiplied back by the corpus size.
const dfTolerance = 1e-9

// CountModel maps text to n-gram counts over a vocabulary.
// It builds the vocabulary from a corpus (Fit) or receives a fixed one.
type CountModel struct {
	vocabulary   map[string]int
	terms        []string
	minN, maxN   int
	minDF, maxDF float64
	prepared     bool
	tokenPattern *regexp.Regexp
}

// Option configures a CountModel.
type Option func(*CountModel)

// WithNGramRange sets the inclusive n-gram orders to extract.
func WithNGramRange(minN, maxN int) Option {
	return func(m *CountModel) {
		m.minN, m.maxN = minN, maxN
	}
}

// WithDocFrequency keeps only terms found in at least minFrac and at most
// maxFrac of the documents seen by Fit.
func WithDocFrequency(minFrac, maxFrac float64) Option {
	return func(m *CountModel) {
		m.minDF, m.maxDF = minFrac, maxFrac
	}
}

// New creates an unfitted model extracting unigrams and bigrams.
func New(opts ...Option) *CountModel {
	m := &CountModel{
		vocabulary:   make(map[string]int),
		minN:         1,
		maxN:         2,
		minDF:        0,
		maxDF:        1,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}_]{2,}`),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// NewFixed creates a ready model whose columns are exactly vocabulary, in order.
func NewFixed(vocabulary []string, opts ...Option) (*CountModel, error) {
	m := New(opts...)
	for i, term := range vocabulary {
		if _, dup := m.vocabulary[term]; dup {
			return nil, fmt.Errorf("%w: duplicate term %q in vocabulary", domain.ErrInvalidInput, term)
		}
		m.vocabulary[term] = i
	}
	m.terms = append([]string(nil), vocabulary...)
	m.prepared = true
	return m, nil
}

// Fit learns the vocabulary of corpus. Terms are sorted, which fixes the
// column order of Transform.
func (m *CountModel) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return fmt.Errorf("%w: empty corpus", domain.ErrInvalidInput)
	}
	n := float64(len(corpus))
	low, high := m.minDF*n, m.maxDF*n
	if high < low-dfTolerance {
		return fmt.Errorf("%w: max document frequency corresponds to fewer documents than min document frequency", domain.ErrInvalidInput)
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, term := range m.analyze(text) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		c := float64(count)
		if c >= low-dfTolerance && c <= high+dfTolerance {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return fmt.Errorf("%w: no terms remain after document frequency pruning", domain.ErrInvalidInput)
	}
	sort.Strings(terms)

	m.vocabulary = make(map[string]int, len(terms))
	for i, term := range terms {
		m.vocabulary[term] = i
	}
	m.terms = terms
	m.prepared = true
	return nil
}

// Transform counts vocabulary n-grams in every document.
func (m *CountModel) Transform(corpus []string) ([]domain.FeatureVector, error) {
	if !m.prepared {
		return nil, fmt.Errorf("%w: count model", domain.ErrNotFit)
	}
	out := make([]domain.FeatureVector, len(corpus))
	for i, text := range corpus {
		vec := make(domain.FeatureVector, len(m.terms))
		for _, term := range m.analyze(text) {
			if idx, ok := m.vocabulary[term]; ok {
				vec[idx]++
			}
		}
		out[i] = vec
	}
	return out, nil
}

// FeatureNames returns the vocabulary in column order.
func (m *CountModel) FeatureNames() []string {
	return append([]string(nil), m.terms...)
}

// Dimension is the number of columns produced by Transform.
func (m *CountModel) Dimension() int { return len(m.terms) }

// analyze lowercases text, tokenizes it and emits its n-grams.
func (m *CountModel) analyze(text string) []string {
	tokens := m.tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return nil
	}
	var out []string
	for n := m.minN; n <= m.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				out = append(out, tokens[i])
				continue
			}
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
