package features

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"dialogvec/internal/domain"
	"dialogvec/internal/script"
	"dialogvec/internal/spell"
	"dialogvec/internal/stemmer"
	"dialogvec/internal/vectorizer"
)

var scenes = []domain.Scene{
	{
		{Speaker: "Homer", Line: "Mmm, donuts."},
		{Speaker: "Bart", Line: "Eat my shorts!"},
		{Speaker: "Homer", Line: "Why you little!"},
		{Speaker: "Bart", Line: "Cowabunga, dude!"},
		{Speaker: "Homer", Line: "Mmm, sweet donuts!"},
	},
	{
		{Speaker: "Bart", Line: "Don't have a cow, man."},
		{Speaker: "Homer", Line: "Donuts are good."},
		{Speaker: "Bart", Line: "Cowabunga!"},
		{Speaker: "Homer", Line: "Marge, where are my donuts?"},
		{Speaker: "Bart", Line: "Eat my shorts, man."},
	},
	{
		{Speaker: "Homer", Line: "Woohoo!"},
		{Speaker: "Bart", Line: "Ay caramba!"},
		{Speaker: "Homer", Line: "Why you little beer!"},
		{Speaker: "Bart", Line: "Ay caramba, dude."},
		{Speaker: "Homer", Line: "Mmm beer."},
	},
	{
		{Speaker: "Bart", Line: "Don't have a cow."},
		{Speaker: "Homer", Line: "Marge, the beer is gone."},
		{Speaker: "Bart", Line: "Cowabunga dude, eat my shorts."},
		{Speaker: "Homer", Line: "Woohoo, beer!"},
		{Speaker: "Bart", Line: "Ay caramba, man!"},
	},
}

func extract(t *testing.T) (*Frame, *vectorizer.Vectorizer, []domain.TrainingRow) {
	t.Helper()
	rows := script.BuildRows(scenes)
	text := strings.Join(lo.Map(rows, func(r domain.TrainingRow, _ int) string { return r.CurrentLine }), "\n")
	v := vectorizer.New(spell.NewCorrector(text), stemmer.Porter{})
	codes := script.NewSpeakerCodes(lo.Map(rows, func(r domain.TrainingRow, _ int) string { return r.CurrentSpeaker }))

	f, err := Extract(rows, v, codes, 10)
	require.NoError(t, err)
	return f, v, rows
}

func TestExtract_Shape(t *testing.T) {
	req := require.New(t)
	f, v, rows := extract(t)
	vocab := v.Vocabulary()
	req.NotEmpty(vocab)
	req.LessOrEqual(len(vocab), 10)

	cols := f.Columns()
	req.Len(cols, 3*len(vocab)+3)
	req.Equal([]string{ColTwoBackSpeaker, ColPreviousSpeaker, ColCurrentSpeaker}, cols[len(cols)-3:])
	req.True(strings.HasPrefix(cols[0], "previous_line_"))
	req.True(strings.HasPrefix(cols[len(vocab)], "current_line_"))
	req.True(strings.HasPrefix(cols[2*len(vocab)], "next_line_"))

	req.Equal(len(rows), f.Len())
	for _, row := range f.Rows() {
		req.Len(row, len(cols))
	}
}

func TestExtract_SpeakerColumns(t *testing.T) {
	req := require.New(t)
	f, _, _ := extract(t)

	current, ok := f.Column(ColCurrentSpeaker)
	req.True(ok)
	previous, _ := f.Column(ColPreviousSpeaker)
	twoBack, _ := f.Column(ColTwoBackSpeaker)

	// Homer speaks first, so he is 0 and Bart is 1.
	req.Equal([]float64{0, 1, 0, 1, 0}, current[:5])
	req.Equal([]float64{script.NoSpeaker, 0, 1, 0, 1}, previous[:5])
	req.Equal([]float64{script.NoSpeaker, script.NoSpeaker, 0, 1, 0}, twoBack[:5])
	// Second scene starts fresh.
	req.Equal(float64(script.NoSpeaker), previous[5])
	req.Equal(float64(script.NoSpeaker), twoBack[6])

	_, ok = f.Column("nope")
	req.False(ok)
}

func TestExtract_ContextBlocksShiftWithinScene(t *testing.T) {
	req := require.New(t)
	f, v, _ := extract(t)
	width := len(v.Vocabulary())
	rows := f.Rows()

	for i := 1; i < 5; i++ {
		req.Equal(rows[i-1][width:2*width], rows[i][:width], "row %d previous block", i)
		req.Equal(rows[i][width:2*width], rows[i-1][2*width:3*width], "row %d next block", i-1)
	}
	// Scene boundaries carry no line context.
	req.Equal(make([]float64, width), rows[0][:width])
	req.Equal(make([]float64, width), rows[4][2*width:3*width])
}

func TestColumns_Naming(t *testing.T) {
	require.Equal(t, []string{
		"previous_line_ay_caramba", "previous_line_cow",
		"current_line_ay_caramba", "current_line_cow",
		"next_line_ay_caramba", "next_line_cow",
		ColTwoBackSpeaker, ColPreviousSpeaker, ColCurrentSpeaker,
	}, Columns([]string{"Ay Caramba", "cow"}))
}

func TestFrame_WriteCSV(t *testing.T) {
	req := require.New(t)
	f, _, rows := extract(t)

	var buf bytes.Buffer
	req.NoError(f.WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	req.NoError(err)
	req.Len(records, len(rows)+1)
	req.Equal(f.Columns(), records[0])
	req.Equal("-1", records[1][len(records[1])-2])
}

func TestExtract_NoRows(t *testing.T) {
	v := vectorizer.New(spell.NewCorrector(""), stemmer.Porter{})
	_, err := Extract(nil, v, script.NewSpeakerCodes(nil), 10)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
