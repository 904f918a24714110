package domain

// Line is a single spoken line of a script.
type Line struct {
	Line    string `yaml:"line" json:"line"`
	Speaker string `yaml:"speaker" json:"speaker" validate:"required"`
}

// Scene is an ordered run of lines. Context never crosses a scene boundary.
type Scene []Line

// TrainingRow is the context around one dialogue line.
// Missing context (scene start or end) is the empty string.
type TrainingRow struct {
	CurrentLine     string
	CurrentSpeaker  string
	PreviousLine    string
	PreviousSpeaker string
	TwoBackSpeaker  string
	NextLine        string
}

// Record is a line the nearest-neighbour matcher was trained on.
type Record struct {
	Line        string
	Speaker     string
	SpeakerCode int
}

// FeatureVector holds one n-gram count per vocabulary entry.
type FeatureVector []int

// Float64s converts the counts for use in distance computations.
func (v FeatureVector) Float64s() []float64 {
	out := make([]float64, len(v))
	for i, c := range v {
		out[i] = float64(c)
	}
	return out
}

// Neighbor is a stored row and its distance to a query.
type Neighbor struct {
	Index    int
	Distance float64
}

// Match is a neighbor resolved to its training record.
type Match struct {
	Record   Record
	Index    int
	Distance float64
}

// Stemmer maps a token to its stem.
type Stemmer interface {
	Stem(token string) string
}

// Corrector maps a possibly misspelled word to its most likely correction.
type Corrector interface {
	Correct(word string) string
}

// Normalizer produces the secondary, canonical form of dialogue lines.
type Normalizer interface {
	NormalizeOne(line string) string
	NormalizeBatch(lines []string) []string
}

// SpeakerService defines the operations exposed by the application core.
type SpeakerService interface {
	IngestScripts(paths []string) (summary string, err error)
	Query(text string, topK int) ([]Match, error)
}
