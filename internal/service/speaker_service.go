package service

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"dialogvec/internal/domain"
	"dialogvec/internal/features"
	"dialogvec/internal/matcher"
	"dialogvec/internal/profile"
	"dialogvec/internal/script"
	"dialogvec/internal/selection"
	"dialogvec/internal/vectorizer"
	"dialogvec/internal/vectorstore"
)

// Config tunes ingestion and querying.
type Config struct {
	// MaxFeatures bounds the vocabulary of the training frame.
	MaxFeatures int
	// TopK is used when Query is called with topK <= 0.
	TopK int
}

// VectorizerFactory returns a fresh, unfit vectorizer.
type VectorizerFactory func() *vectorizer.Vectorizer

type SpeakerServiceImpl struct {
	newVectorizer VectorizerFactory
	store         vectorstore.Storage
	log           *slog.Logger
	cfg           Config

	frame    *features.Frame
	frameVec *vectorizer.Vectorizer
	codes    *script.SpeakerCodes
	records  []domain.Record
	matcher  *matcher.Matcher
}

var _ domain.SpeakerService = (*SpeakerServiceImpl)(nil)

func NewSpeakerService(newVectorizer VectorizerFactory, store vectorstore.Storage, log *slog.Logger, cfg Config) *SpeakerServiceImpl {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = matcher.MaxFeatures
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &SpeakerServiceImpl{newVectorizer: newVectorizer, store: store, log: log, cfg: cfg}
}

// IngestScripts loads every script matched by paths, builds the training
// frame and fits the matcher. Paths may be globs.
func (s *SpeakerServiceImpl) IngestScripts(paths []string) (string, error) {
	start := time.Now()
	files := expand(paths)
	if len(files) == 0 {
		return "", fmt.Errorf("%w: no .yaml, .yml or .json scripts found", domain.ErrInvalidInput)
	}

	var scenes []domain.Scene
	for _, f := range files {
		sc, err := script.Load(f)
		if err != nil {
			return "", fmt.Errorf("load script: %w", err)
		}
		scenes = append(scenes, sc.Scenes...)
	}

	rows := script.BuildRows(scenes)
	codes := script.NewSpeakerCodes(lo.Map(rows, func(r domain.TrainingRow, _ int) string { return r.CurrentSpeaker }))

	frameVec := s.newVectorizer()
	frame, err := features.Extract(rows, frameVec, codes, s.cfg.MaxFeatures)
	if err != nil {
		return "", fmt.Errorf("extract features: %w", err)
	}

	records := lo.Map(rows, func(r domain.TrainingRow, _ int) domain.Record {
		return domain.Record{Line: r.CurrentLine, Speaker: r.CurrentSpeaker, SpeakerCode: codes.Code(r.CurrentSpeaker)}
	})
	var opts []matcher.Option
	if s.store != nil {
		opts = append(opts, matcher.WithStorage(s.store))
	}
	m := matcher.New(records, s.newVectorizer(), opts...)
	if err := m.Fit(); err != nil {
		return "", fmt.Errorf("fit matcher: %w", err)
	}

	s.frame, s.frameVec, s.codes, s.records, s.matcher = frame, frameVec, codes, records, m

	s.log.Info("Scripts ingested",
		"files", len(files),
		"scenes", len(scenes),
		"lines", len(rows),
		"speakers", codes.Len(),
		"duration_ms", time.Since(start).Milliseconds())

	return fmt.Sprintf("%d scripts, %d scenes, %d lines, %d speakers (%s); %d terms",
		len(files), len(scenes), len(rows), codes.Len(), strings.Join(codes.Names(), ", "),
		len(frameVec.Vocabulary())), nil
}

// Query returns the training lines nearest to text.
func (s *SpeakerServiceImpl) Query(text string, topK int) ([]domain.Match, error) {
	if s.matcher == nil {
		return nil, fmt.Errorf("%w: no scripts ingested", domain.ErrNotFit)
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	return s.matcher.FindNearest(text, topK)
}

// Frame is the training frame of the last ingestion, or nil.
func (s *SpeakerServiceImpl) Frame() *features.Frame { return s.frame }

// Vocabulary is the frame vocabulary in column order.
func (s *SpeakerServiceImpl) Vocabulary() []string {
	if s.frameVec == nil {
		return nil
	}
	return s.frameVec.Vocabulary()
}

// Ranking lists every candidate n-gram of the frame vectorizer, best first.
func (s *SpeakerServiceImpl) Ranking() []selection.Ranking {
	if s.frameVec == nil {
		return nil
	}
	return s.frameVec.Ranking()
}

// Speakers lists the speakers in code order.
func (s *SpeakerServiceImpl) Speakers() []string {
	if s.codes == nil {
		return nil
	}
	return s.codes.Names()
}

// Profiles summarises every speaker with up to n signature lines.
func (s *SpeakerServiceImpl) Profiles(n int) []profile.Profile {
	return profile.Build(s.records, n)
}

func expand(paths []string) []string {
	var files []string
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			switch strings.ToLower(filepath.Ext(m)) {
			case ".yaml", ".yml", ".json":
				files = append(files, m)
			}
		}
	}
	return lo.Uniq(files)
}
