// Package features turns script context rows into the training frame: n-gram
// counts for the previous, current and next line plus the speaker codes.
package features

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"dialogvec/internal/domain"
	"dialogvec/internal/script"
	"dialogvec/internal/vectorizer"
)

// Meta columns, appended after the n-gram columns.
const (
	ColTwoBackSpeaker  = "two_back_speaker"
	ColPreviousSpeaker = "previous_speaker"
	ColCurrentSpeaker  = "current_speaker"
)

var linePrefixes = []string{"previous_line_", "current_line_", "next_line_"}

// Frame is a dense table with one row per script line.
type Frame struct {
	columns []string
	rows    [][]float64
}

// Extract fits v on the current lines against the current speaker codes and
// builds the frame. Lines missing at scene boundaries yield zero counts and
// missing speakers yield script.NoSpeaker.
func Extract(rows []domain.TrainingRow, v *vectorizer.Vectorizer, codes *script.SpeakerCodes, maxFeatures int) (*Frame, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no training rows", domain.ErrInvalidInput)
	}
	current := lo.Map(rows, func(r domain.TrainingRow, _ int) string { return r.CurrentLine })
	scores := lo.Map(rows, func(r domain.TrainingRow, _ int) float64 { return float64(codes.Code(r.CurrentSpeaker)) })
	if err := v.Fit(current, scores, maxFeatures); err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}

	previous, err := v.BatchGetFeatures(lo.Map(rows, func(r domain.TrainingRow, _ int) string { return r.PreviousLine }))
	if err != nil {
		return nil, err
	}
	currentFeatures, err := v.BatchGetFeatures(current)
	if err != nil {
		return nil, err
	}
	next, err := v.BatchGetFeatures(lo.Map(rows, func(r domain.TrainingRow, _ int) string { return r.NextLine }))
	if err != nil {
		return nil, err
	}

	f := &Frame{columns: Columns(v.Vocabulary())}
	f.rows = make([][]float64, len(rows))
	for i, r := range rows {
		row := make([]float64, 0, len(f.columns))
		row = append(row, previous[i].Float64s()...)
		row = append(row, currentFeatures[i].Float64s()...)
		row = append(row, next[i].Float64s()...)
		row = append(row,
			float64(codes.Code(r.TwoBackSpeaker)),
			float64(codes.Code(r.PreviousSpeaker)),
			float64(codes.Code(r.CurrentSpeaker)),
		)
		f.rows[i] = row
	}
	return f, nil
}

// Columns names the frame columns for a vocabulary.
func Columns(vocabulary []string) []string {
	var cols []string
	for _, prefix := range linePrefixes {
		for _, term := range vocabulary {
			cols = append(cols, prefix+strings.ReplaceAll(strings.ToLower(term), " ", "_"))
		}
	}
	return append(cols, ColTwoBackSpeaker, ColPreviousSpeaker, ColCurrentSpeaker)
}

func (f *Frame) Columns() []string { return append([]string(nil), f.columns...) }

func (f *Frame) Rows() [][]float64 { return f.rows }

// Len is the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// Column returns the values of the named column.
func (f *Frame) Column(name string) ([]float64, bool) {
	idx := lo.IndexOf(f.columns, name)
	if idx < 0 {
		return nil, false
	}
	return lo.Map(f.rows, func(r []float64, _ int) float64 { return r[idx] }), true
}

// WriteCSV writes a header line and one record per row.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.columns); err != nil {
		return err
	}
	for _, row := range f.rows {
		record := lo.Map(row, func(x float64, _ int) string { return strconv.FormatFloat(x, 'f', -1, 64) })
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
