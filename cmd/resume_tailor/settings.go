package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-tailor/internal/cache"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/matching"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/scoring"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/spf13/cobra"
)

var (
	rootConfigPath string
	rootAPIKey     string
	rootVocabulary string
	rootVariant    string
	rootRedisURL   string
	rootVerbose    bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	flags.StringVar(&rootAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	flags.StringVar(&rootVocabulary, "vocabulary", "", "Path to a YAML file with extra synonyms and stopwords")
	flags.StringVar(&rootVariant, "variant", "", "Scoring variant: semantic or keyword")
	flags.StringVar(&rootRedisURL, "redis-url", "", "Redis URL for the shared extraction cache (defaults to REDIS_URL env var)")
	flags.BoolVarP(&rootVerbose, "verbose", "v", false, "Print detailed reports and debug logs")
}

// setupLogging installs the process-wide structured logger.
func setupLogging(_ *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if rootVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadSettings merges the config file, flags, environment and defaults, in
// decreasing order of priority: flags, config file, environment, defaults.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if rootConfigPath != "" {
		loaded, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
		slog.Debug("loaded config", slog.String("path", rootConfigPath))
	}

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = rootAPIKey
	}
	if flags.Changed("vocabulary") {
		cfg.Vocabulary = rootVocabulary
	}
	if flags.Changed("variant") {
		cfg.ScoringVariant = rootVariant
	}
	if flags.Changed("redis-url") {
		cfg.RedisURL = rootRedisURL
	}
	if flags.Changed("verbose") {
		cfg.Verbose = rootVerbose
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		APIKey:   os.Getenv("GEMINI_API_KEY"),
		RedisURL: os.Getenv("REDIS_URL"),
	})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newScorer builds the scorer for the configured variant and vocabulary.
func newScorer(cfg config.Config) (*scoring.Scorer, error) {
	vocab := matching.DefaultVocabulary()
	if cfg.Vocabulary != "" {
		loaded, err := matching.LoadVocabulary(cfg.Vocabulary)
		if err != nil {
			return nil, err
		}
		vocab = loaded
	}

	weights, err := scoring.WeightsFor(scoring.Variant(cfg.ScoringVariant))
	if err != nil {
		return nil, err
	}
	opts := scoring.DefaultOptions()
	opts.Weights = weights
	return scoring.NewScorer(vocab, opts), nil
}

// newClient creates the Gemini client, which retries transient failures.
func newClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// newRewriter builds a rewriter that proposes through client.
func newRewriter(client llm.Client, scorer *scoring.Scorer, cfg config.Config) *rewriting.Rewriter {
	opts := rewriting.DefaultOptions()
	opts.Vocabulary = scorer.Vocabulary()
	opts.Concurrency = cfg.Concurrency
	opts.MaxAttempts = cfg.MaxAttempts
	return rewriting.NewRewriter(rewriting.NewLLMProposer(client), opts)
}

// newStore returns the Redis cache when configured and reachable, and the
// in-process cache otherwise. The returned func releases the store.
func newStore(ctx context.Context, cfg config.Config) (cache.Store, func()) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(), func() {}
	}
	store, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		slog.Warn("redis unavailable, using in-memory cache", slog.Any("error", err))
		return cache.NewMemory(), func() {}
	}
	return store, func() { _ = store.Close() }
}

// isJSONFile reports whether path names a JSON document.
func isJSONFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// readResume loads a resume from a JSON document validated against the
// resume schema, or parses it from a text, PDF or DOCX file.
func readResume(path string) (*types.Resume, error) {
	if isJSONFile(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read resume file: %w", err)
		}
		r, err := schemas.DecodeResume(data)
		if err != nil {
			return nil, fmt.Errorf("invalid resume %s: %w", path, err)
		}
		return r, nil
	}

	text, meta, err := ingestion.IngestFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest resume: %w", err)
	}
	slog.Debug("ingested resume", slog.String("path", path), slog.String("format", meta.Format))
	return parsing.ParseResume(text), nil
}

// readJobDescription loads a structured job description JSON document.
func readJobDescription(path string) (*types.JobDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job description file: %w", err)
	}
	jd, err := schemas.DecodeJobDescription(data)
	if err != nil {
		return nil, fmt.Errorf("invalid job description %s: %w", path, err)
	}
	return jd, nil
}

// writeJSON writes v as indented JSON to path, or to out when path is empty.
func writeJSON(out io.Writer, path string, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if path == "" {
		_, err := fmt.Fprintf(out, "%s\n", jsonBytes)
		return err
	}
	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
