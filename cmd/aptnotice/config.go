package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/aptnotice"
	"github.com/fwojciec/aptnotice/rag"
	"github.com/joho/godotenv"
)

// Defaults applied when the environment is silent.
const (
	DefaultEmbedDims    = 768
	DefaultEmbedTimeout = 60 * time.Second
	DefaultPort         = "5000"
)

// Config is the runtime configuration read from the environment.
type Config struct {
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// DBPath is the SQLite database. ":memory:" keeps the index in memory.
	DBPath string

	// PGDSN selects the pgvector store when set.
	PGDSN string

	Embedder     aptnotice.ModelChoice
	EmbedDims    int
	EmbedTimeout time.Duration

	// Constrained selects paced batch writes for small hosts.
	Constrained   bool
	BatchSize     int
	BatchInterval time.Duration

	ChunkSplit   bool
	ChunkSize    int
	ChunkOverlap int

	Port string
}

// LoadDotEnv loads .env into the process environment. A missing file is
// not an error and variables already set win.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// LoadConfig reads the configuration through getenv.
func LoadConfig(getenv func(string) string) (*Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	policy := aptnotice.DefaultChunkPolicy()

	c := &Config{
		GeminiAPIKey:  envOr(getenv, "GOOGLE_API_KEY", getenv("GEMINI_API_KEY")),
		OpenAIAPIKey:  getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getenv("OPENAI_BASE_URL"),
		DBPath:        strings.TrimSpace(getenv("APTNOTICE_DB")),
		PGDSN:         getenv("APTNOTICE_PG_DSN"),
		Port:          envOr(getenv, "PORT", DefaultPort),
	}

	if c.DBPath == "" {
		c.DBPath = defaultDBPath()
	}

	embedder, err := aptnotice.ParseModelChoice(getenv("APTNOTICE_EMBEDDER"))
	collect(err)
	c.Embedder = embedder

	c.Constrained, err = envBool(getenv, "RENDER", false)
	collect(err)
	c.EmbedDims, err = envInt(getenv, "APTNOTICE_EMBED_DIMS", DefaultEmbedDims)
	collect(err)
	c.EmbedTimeout, err = envDuration(getenv, "APTNOTICE_EMBED_TIMEOUT", DefaultEmbedTimeout)
	collect(err)
	c.BatchSize, err = envInt(getenv, "APTNOTICE_BATCH_SIZE", 0)
	collect(err)
	c.BatchInterval, err = envDuration(getenv, "APTNOTICE_BATCH_INTERVAL", 0)
	collect(err)
	c.ChunkSplit, err = envBool(getenv, "APTNOTICE_CHUNK_SPLIT", policy.Split)
	collect(err)
	c.ChunkSize, err = envInt(getenv, "APTNOTICE_CHUNK_SIZE", policy.Size)
	collect(err)
	c.ChunkOverlap, err = envInt(getenv, "APTNOTICE_CHUNK_OVERLAP", policy.Overlap)
	collect(err)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// Validate returns an error if the configuration cannot serve requests.
func (c *Config) Validate() error {
	switch c.Embedder {
	case aptnotice.ModelGemini:
		if c.GeminiAPIKey == "" {
			return aptnotice.Errorf(aptnotice.EINVALID, "GOOGLE_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
	case aptnotice.ModelOpenAI:
		if c.OpenAIAPIKey == "" {
			return aptnotice.Errorf(aptnotice.EINVALID, "OPENAI_API_KEY not set")
		}
	}
	if c.EmbedDims <= 0 {
		return aptnotice.Errorf(aptnotice.EINVALID, "APTNOTICE_EMBED_DIMS must be positive")
	}
	if c.BatchSize < 0 || c.BatchInterval < 0 {
		return aptnotice.Errorf(aptnotice.EINVALID, "batch size and interval must not be negative")
	}
	return c.ChunkPolicy().Validate()
}

// ChunkPolicy returns the configured chunk policy.
func (c *Config) ChunkPolicy() aptnotice.ChunkPolicy {
	if !c.ChunkSplit {
		return aptnotice.HeaderOnlyPolicy()
	}
	return aptnotice.ChunkPolicy{Split: true, Size: c.ChunkSize, Overlap: c.ChunkOverlap}
}

// BatchPolicy returns the configured batch policy. Explicit batch settings
// override the constrained profile.
func (c *Config) BatchPolicy() rag.BatchPolicy {
	policy := rag.DefaultBatchPolicy()
	if c.Constrained {
		policy = rag.ConstrainedBatchPolicy()
	}
	if c.BatchSize > 0 {
		policy.Size = c.BatchSize
	}
	if c.BatchInterval > 0 {
		policy.Interval = c.BatchInterval
	}
	return policy
}

func envOr(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(getenv func(string) string, key string, def int) (int, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, aptnotice.Errorf(aptnotice.EINVALID, "%s: invalid integer %q", key, v)
	}
	return n, nil
}

func envBool(getenv func(string) string, key string, def bool) (bool, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, aptnotice.Errorf(aptnotice.EINVALID, "%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func envDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, aptnotice.Errorf(aptnotice.EINVALID, "%s: invalid duration %q", key, v)
	}
	return d, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "aptnotice.db"
	}
	dir := filepath.Join(home, ".aptnotice")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "aptnotice.db")
}
