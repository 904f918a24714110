// Package stemmer provides the stemming backends used by the text normalizer.
package stemmer

import (
	"fmt"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
	"github.com/kljensen/snowball/english"

	"dialogvec/internal/domain"
)

const (
	KindPorter   = "porter"
	KindSnowball = "snowball"
)

// Porter is the classic Porter algorithm.
type Porter struct{}

// Stem returns the Porter stem of token.
func (Porter) Stem(token string) string {
	if token == "" {
		return token
	}
	return porterstemmer.StemString(token)
}

// Snowball is the English Snowball (Porter2) algorithm.
type Snowball struct{}

// Stem returns the Snowball stem of token. Stop words are stemmed too.
func (Snowball) Stem(token string) string {
	if token == "" {
		return token
	}
	return english.Stem(token, true)
}

// New returns the stemmer registered under kind. An empty kind selects Porter.
func New(kind string) (domain.Stemmer, error) {
	switch kind {
	case KindPorter, "":
		return Porter{}, nil
	case KindSnowball:
		return Snowball{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown stemmer %q", domain.ErrInvalidInput, kind)
	}
}
