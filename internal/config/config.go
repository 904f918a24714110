package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. DIALOGVEC_LOG_LEVEL.
const EnvPrefix = "DIALOGVEC"

// CorpusConfig points at the reference text the spell corrector learns from.
type CorpusConfig struct {
	ReferencePath string `yaml:"reference_path" validate:"required"`
}

// StemmerConfig selects the stemming algorithm.
type StemmerConfig struct {
	Type string `yaml:"type" validate:"oneof=porter snowball"`
}

// VectorizerConfig tunes candidate pruning and vocabulary size.
type VectorizerConfig struct {
	MinDocCount float64 `yaml:"min_doc_count" validate:"gte=1"`
	MaxDocFreq  float64 `yaml:"max_doc_freq" validate:"gt=0,lte=1"`
	MaxFeatures int     `yaml:"max_features" validate:"gte=1"`
}

// MatcherConfig configures nearest-line queries.
type MatcherConfig struct {
	TopK int `yaml:"top_k" validate:"gte=1"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type" validate:"oneof=memory qdrant"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty" validate:"required_if=Type qdrant"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url" validate:"required,url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection" validate:"required"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gte=0"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus      CorpusConfig      `yaml:"corpus"`
	Stemmer     StemmerConfig     `yaml:"stemmer"`
	Vectorizer  VectorizerConfig  `yaml:"vectorizer"`
	Matcher     MatcherConfig     `yaml:"matcher"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	LogLevel    string            `yaml:"log_level" validate:"oneof=DEBUG INFO WARN ERROR"`
}

// envOverrides are read from the environment after the file.
type envOverrides struct {
	LogLevel        string `envconfig:"LOG_LEVEL"`
	ReferenceCorpus string `envconfig:"REFERENCE_CORPUS"`
	Stemmer         string `envconfig:"STEMMER"`
}

var validate = validator.New()

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg := defaultConfig()
		return cfg, applyEnv(cfg)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, applyEnv(&cfg)
}

// LoadDefault tries ./dialogvec.yaml first, then ~/.config/dialogvec/config.yaml.
// If neither exists, it writes defaults to ~/.config/dialogvec/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "dialogvec.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, applyEnv(cfg)
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dialogvec", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Corpus:      CorpusConfig{ReferencePath: "big.txt"},
		Stemmer:     StemmerConfig{Type: "porter"},
		Vectorizer:  VectorizerConfig{MinDocCount: 3, MaxDocFreq: 0.4, MaxFeatures: 33},
		Matcher:     MatcherConfig{TopK: 5},
		VectorStore: VectorStoreConfig{Type: "memory"},
		LogLevel:    "INFO",
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Corpus.ReferencePath == "" {
		cfg.Corpus.ReferencePath = def.Corpus.ReferencePath
	}
	if cfg.Stemmer.Type == "" {
		cfg.Stemmer.Type = def.Stemmer.Type
	}
	if cfg.Vectorizer.MinDocCount == 0 {
		cfg.Vectorizer.MinDocCount = def.Vectorizer.MinDocCount
	}
	if cfg.Vectorizer.MaxDocFreq == 0 {
		cfg.Vectorizer.MaxDocFreq = def.Vectorizer.MaxDocFreq
	}
	if cfg.Vectorizer.MaxFeatures == 0 {
		cfg.Vectorizer.MaxFeatures = def.Vectorizer.MaxFeatures
	}
	if cfg.Matcher.TopK == 0 {
		cfg.Matcher.TopK = def.Matcher.TopK
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = def.VectorStore.Type
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		if cfg.VectorStore.Qdrant.URL == "" {
			cfg.VectorStore.Qdrant.URL = "http://localhost:6333"
		}
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "dialogvec_lines"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)
}

func applyEnv(cfg *AppConfig) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if env.LogLevel != "" {
		cfg.LogLevel = strings.ToUpper(env.LogLevel)
	}
	if env.ReferenceCorpus != "" {
		cfg.Corpus.ReferencePath = env.ReferenceCorpus
	}
	if env.Stemmer != "" {
		cfg.Stemmer.Type = strings.ToLower(env.Stemmer)
	}
	return nil
}
