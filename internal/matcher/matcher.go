// Package matcher finds the training line closest to a query in feature space.
package matcher

import (
	"fmt"

	"github.com/samber/lo"

	"dialogvec/internal/domain"
	"dialogvec/internal/vectorizer"
	"dialogvec/internal/vectorstore"
	"dialogvec/internal/vectorstore/memory"
)

// MaxFeatures is the vocabulary size the matcher fits: floor(100/3).
const MaxFeatures = 100 / 3

// Matcher is a nearest-neighbour speaker matcher over training records.
// It moves from unfit to fit once, through Fit.
type Matcher struct {
	records     []domain.Record
	vectorizer  *vectorizer.Vectorizer
	store       vectorstore.Storage
	maxFeatures int
	fitted      bool
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithStorage replaces the default in-memory store.
func WithStorage(store vectorstore.Storage) Option {
	return func(m *Matcher) {
		if store != nil {
			m.store = store
		}
	}
}

// New creates an unfit matcher. It takes ownership of v, which Fit trains.
func New(records []domain.Record, v *vectorizer.Vectorizer, opts ...Option) *Matcher {
	m := &Matcher{
		records:     append([]domain.Record(nil), records...),
		vectorizer:  v,
		store:       memory.NewStorage(),
		maxFeatures: MaxFeatures,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Fit trains the vectorizer on the record lines against their speaker codes
// and stores the feature row of every training line. A failed Fit leaves the
// matcher unfit, even if an earlier Fit succeeded.
func (m *Matcher) Fit() error {
	m.fitted = false
	lines := lo.Map(m.records, func(r domain.Record, _ int) string { return r.Line })
	codes := lo.Map(m.records, func(r domain.Record, _ int) float64 { return float64(r.SpeakerCode) })

	if err := m.vectorizer.Fit(lines, codes, m.maxFeatures); err != nil {
		return err
	}
	features, err := m.vectorizer.BatchGetFeatures(lines)
	if err != nil {
		return err
	}
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clear vector store: %w", err)
	}
	if err := m.store.Init(len(m.vectorizer.Vocabulary())); err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	rows := lo.Map(features, func(f domain.FeatureVector, _ int) []float64 { return f.Float64s() })
	if err := m.store.Upsert(rows); err != nil {
		return fmt.Errorf("store training features: %w", err)
	}
	m.fitted = true
	return nil
}

// FindNearestMatch returns the index of the closest training line and its
// Euclidean distance. Equal distances resolve to the lowest index.
func (m *Matcher) FindNearestMatch(text string) (int, float64, error) {
	matches, err := m.FindNearest(text, 1)
	if err != nil {
		return 0, 0, err
	}
	if len(matches) == 0 {
		return 0, 0, fmt.Errorf("%w: matcher has no training lines", domain.ErrInvalidInput)
	}
	return matches[0].Index, matches[0].Distance, nil
}

// FindKnnSpeaker is FindNearestMatch that also returns the matched record.
func (m *Matcher) FindKnnSpeaker(text string) (domain.Record, int, float64, error) {
	idx, dist, err := m.FindNearestMatch(text)
	if err != nil {
		return domain.Record{}, 0, 0, err
	}
	return m.records[idx], idx, dist, nil
}

// FindNearest returns the k closest training records, nearest first.
func (m *Matcher) FindNearest(text string, k int) ([]domain.Match, error) {
	if !m.fitted {
		return nil, fmt.Errorf("%w: matcher", domain.ErrNotFit)
	}
	vec, err := m.vectorizer.GetFeatures(text)
	if err != nil {
		return nil, err
	}
	neighbors, err := m.store.Search(vec.Float64s(), k)
	if err != nil {
		return nil, fmt.Errorf("search vector store: %w", err)
	}
	return lo.Map(neighbors, func(n domain.Neighbor, _ int) domain.Match {
		return domain.Match{Record: m.records[n.Index], Index: n.Index, Distance: n.Distance}
	}), nil
}

// Vectorizer exposes the owned vectorizer, for reporting.
func (m *Matcher) Vectorizer() *vectorizer.Vectorizer { return m.vectorizer }

// Fitted reports whether Fit completed.
func (m *Matcher) Fitted() bool { return m.fitted }
