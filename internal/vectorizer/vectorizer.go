// Package vectorizer turns dialogue lines into fixed-length n-gram count
// vectors over a vocabulary selected for its association with a target score.
package vectorizer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"dialogvec/internal/domain"
	"dialogvec/internal/ngram"
	"dialogvec/internal/normalize"
	"dialogvec/internal/selection"
)

const (
	// DefaultMinDocCount is the minimum number of lines a candidate n-gram must occur in.
	DefaultMinDocCount = 3
	// DefaultMaxDocFreq is the largest fraction of lines a candidate n-gram may occur in.
	DefaultMaxDocFreq = 0.4
)

// Vectorizer normalizes lines and maps them onto a fitted vocabulary.
// All state is written by Fit; afterwards the Vectorizer is read-only.
type Vectorizer struct {
	normalizer  domain.Normalizer
	broad       *ngram.CountModel
	final       *ngram.CountModel
	vocabulary  []string
	ranking     []selection.Ranking
	fitDone     bool
	minDocCount float64
	maxDocFreq  float64
	log         *slog.Logger
}

// Option configures a Vectorizer.
type Option func(*Vectorizer)

// WithLogger sets the logger used while fitting.
func WithLogger(log *slog.Logger) Option {
	return func(v *Vectorizer) {
		if log != nil {
			v.log = log
		}
	}
}

// WithMinDocCount sets how many lines a candidate n-gram must appear in.
func WithMinDocCount(n float64) Option {
	return func(v *Vectorizer) {
		if n > 0 {
			v.minDocCount = n
		}
	}
}

// WithMaxDocFreq sets the largest fraction of lines a candidate may appear in.
func WithMaxDocFreq(f float64) Option {
	return func(v *Vectorizer) {
		if f > 0 {
			v.maxDocFreq = f
		}
	}
}

// New creates an unfitted Vectorizer. corrector is only used on single-line
// queries; batches are stemmed without spell correction.
func New(corrector domain.Corrector, stemmer domain.Stemmer, opts ...Option) *Vectorizer {
	v := &Vectorizer{
		normalizer:  normalize.New(corrector, stemmer),
		minDocCount: DefaultMinDocCount,
		maxDocFreq:  DefaultMaxDocFreq,
		log:         slog.Default(),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Fit builds the vocabulary from lines and their target scores.
// Candidates are unigrams and bigrams of original+normalized text found in at
// least MinDocCount lines and at most MaxDocFreq of them; the maxFeatures
// candidates most associated with the median-split scores are kept.
func (v *Vectorizer) Fit(lines []string, scores []float64, maxFeatures int) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: fit needs at least one line", domain.ErrInvalidInput)
	}
	if len(lines) != len(scores) {
		return fmt.Errorf("%w: %d lines but %d scores", domain.ErrInvalidInput, len(lines), len(scores))
	}
	if maxFeatures < 1 {
		return fmt.Errorf("%w: max features must be positive, got %d", domain.ErrInvalidInput, maxFeatures)
	}
	start := time.Now()

	text := concat(lines, v.normalizer.NormalizeBatch(lines))

	broad := ngram.New(
		ngram.WithNGramRange(1, 2),
		ngram.WithDocFrequency(v.minDocCount/float64(len(text)), v.maxDocFreq),
	)
	if err := broad.Fit(text); err != nil {
		return fmt.Errorf("fit candidate n-grams: %w", err)
	}

	ranking, err := selection.NewSelector(broad).Rank(text, scores)
	if err != nil {
		return fmt.Errorf("rank candidate n-grams: %w", err)
	}
	vocabulary := selection.Top(ranking, maxFeatures)

	final, err := ngram.NewFixed(vocabulary, ngram.WithNGramRange(1, 2))
	if err != nil {
		return fmt.Errorf("build final n-gram model: %w", err)
	}

	v.broad = broad
	v.ranking = ranking
	v.vocabulary = vocabulary
	v.final = final
	v.fitDone = true

	v.log.Info("Vectorizer fitted",
		"lines", len(lines),
		"candidates", broad.Dimension(),
		"vocabulary", len(vocabulary),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// BatchGetFeatures returns one vector per line, using the batch normalizer.
func (v *Vectorizer) BatchGetFeatures(lines []string) ([]domain.FeatureVector, error) {
	if !v.fitDone {
		return nil, fmt.Errorf("%w: vectorizer has not been created", domain.ErrNotFit)
	}
	return v.final.Transform(concat(lines, v.normalizer.NormalizeBatch(lines)))
}

// GetFeatures returns the vector of a single line. Unlike BatchGetFeatures the
// line is spell-corrected before stemming.
func (v *Vectorizer) GetFeatures(line string) (domain.FeatureVector, error) {
	if !v.fitDone {
		return nil, fmt.Errorf("%w: vectorizer has not been created", domain.ErrNotFit)
	}
	vecs, err := v.final.Transform([]string{line + v.normalizer.NormalizeOne(line)})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// GetFeaturesFirst is GetFeatures applied to the first element of lines.
func (v *Vectorizer) GetFeaturesFirst(lines []string) (domain.FeatureVector, error) {
	if !v.fitDone {
		return nil, fmt.Errorf("%w: vectorizer has not been created", domain.ErrNotFit)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no line given", domain.ErrInvalidInput)
	}
	return v.GetFeatures(lines[0])
}

// Vocabulary returns the selected n-grams in column order.
func (v *Vectorizer) Vocabulary() []string {
	return append([]string(nil), v.vocabulary...)
}

// Ranking returns every candidate n-gram with its p-value, best first.
func (v *Vectorizer) Ranking() []selection.Ranking {
	return append([]selection.Ranking(nil), v.ranking...)
}

// Candidates is the number of n-grams that passed document-frequency pruning.
func (v *Vectorizer) Candidates() int {
	if v.broad == nil {
		return 0
	}
	return v.broad.Dimension()
}

// Fitted reports whether Fit completed.
func (v *Vectorizer) Fitted() bool { return v.fitDone }

// concat appends each normalized line to its original with no separator.
func concat(lines, normalized []string) []string {
	return lo.Map(lines, func(line string, i int) string {
		return line + normalized[i]
	})
}
