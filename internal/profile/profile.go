// Package profile summarises each speaker by their most characteristic lines.
package profile

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"dialogvec/internal/domain"
)

// Profile describes one speaker of the ingested scripts.
type Profile struct {
	Speaker   string
	Code      int
	Lines     int
	Signature []string
}

// Ranker scores lines by how frequent their words are among a speaker's
// lines, stopwords filtered.
type Ranker struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

func NewRanker() *Ranker {
	return &Ranker{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Signature returns up to n lines with the highest normalized word-frequency
// score, in their original order. Equal scores keep the earlier line.
func (r *Ranker) Signature(lines []string, n int) []string {
	if n <= 0 || len(lines) == 0 {
		return nil
	}
	freq := map[string]float64{}
	for _, l := range lines {
		for _, tok := range r.tokens(l) {
			if _, ok := r.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := lo.Max(lo.Values(freq))
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(lines))
	for i, l := range lines {
		toks := r.tokens(l)
		s := lo.SumBy(toks, func(t string) float64 { return freq[t] })
		// Longer lines would otherwise always win.
		if len(toks) > 0 {
			s /= math.Sqrt(float64(len(toks)))
		}
		scores[i] = scored{i, s}
	}
	slices.SortStableFunc(scores, func(a, b scored) int { return cmp.Compare(b.score, a.score) })

	selected := lo.Map(scores[:min(n, len(scores))], func(s scored, _ int) int { return s.idx })
	slices.Sort(selected)
	return lo.Map(selected, func(idx int, _ int) string { return strings.TrimSpace(lines[idx]) })
}

// Build groups records by speaker and ranks each group. Profiles come back in
// speaker code order.
func Build(records []domain.Record, n int) []Profile {
	r := NewRanker()
	groups := lo.GroupBy(records, func(rec domain.Record) int { return rec.SpeakerCode })
	profiles := make([]Profile, 0, len(groups))
	for code, recs := range groups {
		profiles = append(profiles, Profile{
			Speaker:   recs[0].Speaker,
			Code:      code,
			Lines:     len(recs),
			Signature: r.Signature(lo.Map(recs, func(rec domain.Record, _ int) string { return rec.Line }), n),
		})
	}
	slices.SortFunc(profiles, func(a, b Profile) int { return cmp.Compare(a.Code, b.Code) })
	return profiles
}

func (r *Ranker) tokens(text string) []string {
	return r.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	return lo.SliceToMap(words, func(w string) (string, struct{}) { return w, struct{}{} })
}
