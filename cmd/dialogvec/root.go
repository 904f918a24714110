package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"

	"dialogvec/internal/config"
	"dialogvec/internal/service"
	"dialogvec/internal/spell"
	"dialogvec/internal/stemmer"
	"dialogvec/internal/vectorizer"
	"dialogvec/internal/vectorstore"
	"dialogvec/internal/vectorstore/memory"
	"dialogvec/internal/vectorstore/qdrant"
)

// app carries what every subcommand needs once the config is loaded.
type app struct {
	cfgPath string
	cfg     *config.AppConfig
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "dialogvec",
		Short: "Guess who said a line of dialogue",
		Long: `dialogvec learns n-gram features from dialogue scripts and finds the
training lines, and so the speakers, closest to a new line.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "Path to YAML config file (default ./dialogvec.yaml or ~/.config/dialogvec/config.yaml)")

	root.AddCommand(newVocabCmd(a), newMatchCmd(a), newFrameCmd(a), newSpeakersCmd(a), newTUICmd(a))
	return root
}

func (a *app) loadConfig() error {
	var (
		cfg *config.AppConfig
		err error
	)
	if a.cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(a.cfgPath)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logs.GetLoggerFromString(cfg.LogLevel)
	return nil
}

// ingest assembles the service from config and ingests the scripts.
func (a *app) ingest(paths []string) (*service.SpeakerServiceImpl, string, error) {
	st, err := stemmer.New(a.cfg.Stemmer.Type)
	if err != nil {
		return nil, "", err
	}
	corrector, err := spell.Load(a.cfg.Corpus.ReferencePath)
	if err != nil {
		return nil, "", err
	}
	a.log.Debug("Reference corpus loaded", "path", a.cfg.Corpus.ReferencePath, "words", corrector.Model().Len())

	store, err := a.storage()
	if err != nil {
		return nil, "", err
	}
	factory := func() *vectorizer.Vectorizer {
		return vectorizer.New(corrector, st,
			vectorizer.WithLogger(a.log),
			vectorizer.WithMinDocCount(a.cfg.Vectorizer.MinDocCount),
			vectorizer.WithMaxDocFreq(a.cfg.Vectorizer.MaxDocFreq),
		)
	}
	svc := service.NewSpeakerService(factory, store, a.log, service.Config{
		MaxFeatures: a.cfg.Vectorizer.MaxFeatures,
		TopK:        a.cfg.Matcher.TopK,
	})
	summary, err := svc.IngestScripts(paths)
	if err != nil {
		return nil, "", fmt.Errorf("ingest failed: %w", err)
	}
	return svc, summary, nil
}

func (a *app) storage() (vectorstore.Storage, error) {
	switch a.cfg.VectorStore.Type {
	case "memory", "":
		return memory.NewStorage(), nil
	case "qdrant":
		q := a.cfg.VectorStore.Qdrant
		if q == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", a.cfg.VectorStore.Type)
	}
}
