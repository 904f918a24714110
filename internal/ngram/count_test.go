package ngram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dialogvec/internal/domain"
)

func TestCountModel_FitAndTransform(t *testing.T) {
	req := require.New(t)
	m := New()

	err := m.Fit([]string{"The cat sat", "the cat ran", "a dog ran"})
	req.NoError(err)

	// Single-letter tokens are ignored; "a" never becomes a term.
	req.Equal([]string{"cat", "cat ran", "cat sat", "dog", "dog ran", "ran", "sat", "the", "the cat"}, m.FeatureNames())
	req.Equal(9, m.Dimension())

	vecs, err := m.Transform([]string{"The cat, the CAT!", "nothing here"})
	req.NoError(err)
	req.Len(vecs, 2)
	req.Equal(domain.FeatureVector{2, 0, 0, 0, 0, 0, 0, 2, 2}, vecs[0])
	req.Equal(domain.FeatureVector{0, 0, 0, 0, 0, 0, 0, 0, 0}, vecs[1])
}

func TestCountModel_DocFrequencyBounds(t *testing.T) {
	req := require.New(t)
	corpus := []string{
		"alpha beta", "alpha gamma", "alpha delta", "alpha beta",
		"omega", "omega", "omega beta", "zeta", "zeta", "zeta",
	}
	m := New(WithNGramRange(1, 1), WithDocFrequency(3.0/float64(len(corpus)), 0.4))

	req.NoError(m.Fit(corpus))
	// alpha=4, beta=3, omega=3, zeta=3 survive; gamma/delta=1 drop; nothing exceeds 4.
	req.Equal([]string{"alpha", "beta", "omega", "zeta"}, m.FeatureNames())
}

func TestCountModel_UpperBoundDropsCommonTerms(t *testing.T) {
	req := require.New(t)
	m := New(WithNGramRange(1, 1), WithDocFrequency(0, 0.5))

	req.NoError(m.Fit([]string{"common rare", "common", "common other", "other"}))
	req.Equal([]string{"other", "rare"}, m.FeatureNames())
}

func TestCountModel_FitErrors(t *testing.T) {
	req := require.New(t)

	err := New().Fit(nil)
	req.ErrorIs(err, domain.ErrInvalidInput)

	err = New(WithDocFrequency(3.0/4.0, 0.4)).Fit([]string{"a b", "c d", "e f", "g h"})
	req.ErrorIs(err, domain.ErrInvalidInput)

	err = New(WithDocFrequency(0.9, 1)).Fit([]string{"one", "two", "three"})
	req.ErrorIs(err, domain.ErrInvalidInput)
}

func TestCountModel_TransformBeforeFit(t *testing.T) {
	req := require.New(t)
	_, err := New().Transform([]string{"hello"})
	req.ErrorIs(err, domain.ErrNotFit)
}

func TestNewFixed_KeepsGivenOrder(t *testing.T) {
	req := require.New(t)
	m, err := NewFixed([]string{"the cat", "dog", "cat"})
	req.NoError(err)

	vecs, err := m.Transform([]string{"the cat and the dog", ""})
	req.NoError(err)
	req.Equal(domain.FeatureVector{1, 1, 1}, vecs[0])
	req.Equal(domain.FeatureVector{0, 0, 0}, vecs[1])
	req.Equal([]string{"the cat", "dog", "cat"}, m.FeatureNames())

	_, err = NewFixed([]string{"dog", "dog"})
	req.ErrorIs(err, domain.ErrInvalidInput)
}
