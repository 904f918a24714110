package matcher

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"dialogvec/internal/domain"
	"dialogvec/internal/spell"
	"dialogvec/internal/stemmer"
	"dialogvec/internal/vectorizer"
	"dialogvec/internal/vectorstore/memory"
)

// identityStemmer keeps tokens as they are, so the batch and single-line
// paths agree on any line made of known words.
type identityStemmer struct{}

func (identityStemmer) Stem(token string) string { return token }

func trainingRecords() []domain.Record {
	homer := []string{
		"Mmm, donuts.", "Mmm, sweet donuts!", "Why you little!", "Donuts are good.",
		"Marge, where are my donuts?", "Woohoo!", "Why you little beer!", "Mmm beer.",
		"Marge, the beer is gone.", "Woohoo, beer!",
	}
	bart := []string{
		"Eat my shorts!", "Cowabunga, dude!", "Don't have a cow, man.", "Cowabunga!",
		"Eat my shorts, man.", "Ay caramba!", "Ay caramba, dude.", "Don't have a cow.",
		"Cowabunga dude, eat my shorts.", "Ay caramba, man!",
	}
	var records []domain.Record
	for _, l := range homer {
		records = append(records, domain.Record{Line: l, Speaker: "Homer", SpeakerCode: 0})
	}
	for _, l := range bart {
		records = append(records, domain.Record{Line: l, Speaker: "Bart", SpeakerCode: 1})
	}
	return records
}

func newMatcher(st domain.Stemmer) *Matcher {
	records := trainingRecords()
	var text []string
	for _, r := range records {
		text = append(text, r.Line)
	}
	corrector := spell.NewCorrector(strings.Join(text, "\n"))
	return New(records, vectorizer.New(corrector, st))
}

func TestMatcher_MaxFeatures(t *testing.T) {
	require.Equal(t, 33, MaxFeatures)
}

func TestMatcher_ExactTrainingLineHasZeroDistance(t *testing.T) {
	req := require.New(t)
	m := newMatcher(identityStemmer{})
	req.NoError(m.Fit())
	req.True(m.Fitted())
	req.LessOrEqual(len(m.Vectorizer().Vocabulary()), MaxFeatures)

	idx, dist, err := m.FindNearestMatch("Ay caramba, dude.")
	req.NoError(err)
	req.Equal(0.0, dist)

	// Any training line with the same features would tie; the lowest index wins.
	records := trainingRecords()
	first := -1
	want, err := m.Vectorizer().BatchGetFeatures([]string{"Ay caramba, dude."})
	req.NoError(err)
	rows, err := m.Vectorizer().BatchGetFeatures(lines(records))
	req.NoError(err)
	for i, row := range rows {
		if equal(row, want[0]) {
			first = i
			break
		}
	}
	req.Equal(first, idx)
}

func TestMatcher_FindKnnSpeaker(t *testing.T) {
	req := require.New(t)
	m := newMatcher(stemmer.Porter{})
	req.NoError(m.Fit())

	record, idx, dist, err := m.FindKnnSpeaker("Cowabunga, dude! Eat my shorts!")
	req.NoError(err)
	req.Equal("Bart", record.Speaker)
	req.Equal(trainingRecords()[idx], record)
	req.GreaterOrEqual(dist, 0.0)

	record, _, _, err = m.FindKnnSpeaker("Mmm... beer and donuts.")
	req.NoError(err)
	req.Equal("Homer", record.Speaker)
}

func TestMatcher_FindNearest(t *testing.T) {
	req := require.New(t)
	m := newMatcher(stemmer.Porter{})
	req.NoError(m.Fit())

	matches, err := m.FindNearest("Ay caramba!", 4)
	req.NoError(err)
	req.Len(matches, 4)
	for i := 1; i < len(matches); i++ {
		req.LessOrEqual(matches[i-1].Distance, matches[i].Distance)
		if matches[i-1].Distance == matches[i].Distance {
			req.Less(matches[i-1].Index, matches[i].Index)
		}
	}
	idx, dist, err := m.FindNearestMatch("Ay caramba!")
	req.NoError(err)
	req.Equal(matches[0].Index, idx)
	req.Equal(matches[0].Distance, dist)
}

func TestMatcher_NotFit(t *testing.T) {
	req := require.New(t)
	m := newMatcher(stemmer.Porter{})

	_, _, err := m.FindNearestMatch("hello")
	req.ErrorIs(err, domain.ErrNotFit)
	_, _, _, err = m.FindKnnSpeaker("hello")
	req.ErrorIs(err, domain.ErrNotFit)
	_, err = m.FindNearest("hello", 3)
	req.ErrorIs(err, domain.ErrNotFit)
}

func TestMatcher_FitWithoutRecords(t *testing.T) {
	req := require.New(t)
	m := New(nil, vectorizer.New(spell.NewCorrector(""), stemmer.Porter{}))

	req.ErrorIs(m.Fit(), domain.ErrInvalidInput)
	req.False(m.Fitted())
}

// flakyStore fails every Upsert once failUpsert is set.
type flakyStore struct {
	*memory.Storage
	failUpsert bool
}

func (f *flakyStore) Upsert(vectors [][]float64) error {
	if f.failUpsert {
		return errors.New("store unavailable")
	}
	return f.Storage.Upsert(vectors)
}

func TestMatcher_FailedRefitLeavesMatcherUnfit(t *testing.T) {
	req := require.New(t)
	records := trainingRecords()
	store := &flakyStore{Storage: memory.NewStorage()}
	m := New(records, vectorizer.New(spell.NewCorrector(strings.Join(lines(records), "\n")), stemmer.Porter{}), WithStorage(store))

	req.NoError(m.Fit())
	_, _, err := m.FindNearestMatch("Ay caramba!")
	req.NoError(err)

	store.failUpsert = true
	req.Error(m.Fit())
	req.False(m.Fitted())
	_, _, err = m.FindNearestMatch("Ay caramba!")
	req.ErrorIs(err, domain.ErrNotFit)

	store.failUpsert = false
	req.NoError(m.Fit())
	req.True(m.Fitted())
}

func lines(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Line
	}
	return out
}

func equal(a, b domain.FeatureVector) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
