// Package selection ranks n-gram columns by their association with a target.
package selection

import (
	"cmp"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"dialogvec/internal/domain"
)

// CountTransformer is the fitted broad n-gram model the selector ranks.
type CountTransformer interface {
	Transform(corpus []string) ([]domain.FeatureVector, error)
	FeatureNames() []string
}

// Ranking is the association of one candidate column with the high group.
type Ranking struct {
	Term        string
	Column      int
	PValue      float64
	HighPresent int
	LowPresent  int
}

// Selector picks the vocabulary most associated with a median-split target.
type Selector struct {
	model   CountTransformer
	workers int
}

// Option configures a Selector.
type Option func(*Selector)

// WithWorkers bounds the number of columns tested concurrently.
func WithWorkers(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewSelector creates a selector over a fitted broad model.
func NewSelector(model CountTransformer, opts ...Option) *Selector {
	s := &Selector{model: model, workers: runtime.GOMAXPROCS(0)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SelectVocabulary returns the maxFeatures terms with the smallest two-tailed
// Fisher p-values, most associated first.
func (s *Selector) SelectVocabulary(lines []string, scores []float64, maxFeatures int) ([]string, error) {
	if maxFeatures < 1 {
		return nil, fmt.Errorf("%w: max features must be positive, got %d", domain.ErrInvalidInput, maxFeatures)
	}
	ranked, err := s.Rank(lines, scores)
	if err != nil {
		return nil, err
	}
	return Top(ranked, maxFeatures), nil
}

// Rank tests every candidate column and orders them by ascending p-value.
// Equal p-values keep column order.
func (s *Selector) Rank(lines []string, scores []float64) ([]Ranking, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no lines to rank", domain.ErrInvalidInput)
	}
	if len(lines) != len(scores) {
		return nil, fmt.Errorf("%w: %d lines but %d scores", domain.ErrInvalidInput, len(lines), len(scores))
	}
	counts, err := s.model.Transform(lines)
	if err != nil {
		return nil, err
	}
	names := s.model.FeatureNames()
	high := SplitAtMedian(scores)

	rankings := make([]Ranking, len(names))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for col := range names {
		g.Go(func() error {
			rankings[col] = rankColumn(counts, high, col, names[col])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(rankings, func(a, b Ranking) int {
		return cmp.Compare(a.PValue, b.PValue)
	})
	return rankings, nil
}

// Top returns the terms of the first k rankings.
func Top(rankings []Ranking, k int) []string {
	k = min(k, len(rankings))
	out := make([]string, k)
	for i := range k {
		out[i] = rankings[i].Term
	}
	return out
}

func rankColumn(counts []domain.FeatureVector, high []bool, col int, term string) Ranking {
	var highPresent, highAbsent, lowPresent, lowAbsent int
	for row, vec := range counts {
		present := vec[col] > 0
		switch {
		case high[row] && present:
			highPresent++
		case high[row]:
			highAbsent++
		case present:
			lowPresent++
		default:
			lowAbsent++
		}
	}
	return Ranking{
		Term:        term,
		Column:      col,
		PValue:      FisherTwoTailed(highPresent, lowPresent, highAbsent, lowAbsent),
		HighPresent: highPresent,
		LowPresent:  lowPresent,
	}
}
