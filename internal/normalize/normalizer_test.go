package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"dialogvec/internal/spell"
	"dialogvec/internal/stemmer"
)

// countingStemmer trims a trailing "s" and records how often it ran.
type countingStemmer struct {
	calls map[string]int
}

func (s *countingStemmer) Stem(token string) string {
	s.calls[token]++
	return strings.TrimSuffix(token, "s")
}

func newCorrector() *spell.Corrector {
	return spell.NewCorrectorFromModel(spell.NewFrequencyModel(map[string]int{
		"hello": 10, "there": 8, "dogs": 3, "dog": 2,
	}))
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Punctuation becomes space", "Hello, there!", "hello there "},
		{"Whitespace runs collapse", "a \t\n b", "a b"},
		{"Digits are kept", "R2D2 rocks", "r2d2 rocks"},
		{"Leading noise keeps one space", "...why", " why"},
		{"Non ascii letters are removed", "café au lait", "caf au lait"},
		{"Empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.New(t).Equal(tt.expected, Clean(tt.input))
		})
	}
}

func TestNormalizeOne_SpellCorrectsThenStems(t *testing.T) {
	req := require.New(t)
	st := &countingStemmer{calls: map[string]int{}}
	n := New(newCorrector(), st)

	req.Equal("hello there dog", n.NormalizeOne("Helo, thre DOGS"))
	req.Equal(" hello ", n.NormalizeOne("!hello?"))
}

func TestNormalizeBatch_DoesNotSpellCorrect(t *testing.T) {
	req := require.New(t)
	st := &countingStemmer{calls: map[string]int{}}
	n := New(newCorrector(), st)

	out := n.NormalizeBatch([]string{"Helo dogs!", "dogs, dogs and cats", ""})

	req.Equal([]string{"helo dog ", "dog dog and cat", ""}, out)
}

func TestNormalizeBatch_StemsEachDistinctTokenTwice(t *testing.T) {
	req := require.New(t)
	st := &countingStemmer{calls: map[string]int{}}
	n := New(newCorrector(), st)

	n.NormalizeBatch([]string{"cats cats", "cats"})

	// stem(stem("cats")) runs once for the batch: "cats" then "cat".
	req.Equal(1, st.calls["cats"])
	req.Equal(1, st.calls["cat"])
}

func TestNormalizeBatch_MatchesSingleLineWithoutCorrections(t *testing.T) {
	req := require.New(t)
	n := New(newCorrector(), stemmer.Porter{})

	line := "Hello there dogs"
	req.Equal(n.NormalizeBatch([]string{line})[0], n.NormalizeOne(line))
}
