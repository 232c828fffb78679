package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/convsearch/retrieval-eval/internal/aggregator"
	"github.com/convsearch/retrieval-eval/internal/config"
	"github.com/convsearch/retrieval-eval/internal/llm"
	"github.com/convsearch/retrieval-eval/internal/llm/bedrock"
	"github.com/convsearch/retrieval-eval/internal/llm/gpt"
	"github.com/convsearch/retrieval-eval/internal/preparer"
	"github.com/convsearch/retrieval-eval/internal/processor"
	"github.com/convsearch/retrieval-eval/internal/redis"
	"github.com/convsearch/retrieval-eval/internal/retriever"
	"github.com/convsearch/retrieval-eval/internal/rewriter"
)

// Config is the environment-driven part of the configuration: endpoints,
// credentials, and infrastructure toggles. Run parameters (k values, top-k,
// prompts) live in the YAML evaluation config.
type Config struct {
	SearchBackendURL string
	SearchTimeout    time.Duration

	CacheEnabled  bool
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	AWSRegion       string
	ClaudeModelID   string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string
}

// Dependencies is the wired object graph shared by the CLIs, the REST API,
// and the MCP server.
type Dependencies struct {
	EvalConfig *config.Config
	Searcher   retriever.Searcher
	Rewriter   *rewriter.Rewriter
	Processor  *processor.Processor
	Preparer   *preparer.Preparer
	Aggregator *aggregator.Aggregator
	Logger     *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		SearchBackendURL: getEnv("SEARCH_BACKEND_URL", "http://localhost:8080"),
		SearchTimeout:    time.Duration(getEnvInt("SEARCH_TIMEOUT_SECONDS", 30)) * time.Second,
		CacheEnabled:     getEnvBool("RETRIEVAL_CACHE_ENABLED", false),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		CacheTTL:         time.Duration(getEnvInt("RETRIEVAL_CACHE_TTL_HOURS", 24)) * time.Hour,
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:    getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:        getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:    getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider:  getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),
	}
}

// Wire builds the full dependency graph: search backend client, optional
// Redis read-through cache, LLM-backed rewriter, processor with scoring
// enabled, preparer, and aggregator.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	evalCfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluation config: %w", err)
	}

	searcher, err := buildSearcher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	llmClient, err := createLLMClient(ctx, cfg.DefaultProvider, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	rw, err := rewriter.New(evalCfg, llmClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build rewriter: %w", err)
	}

	return &Dependencies{
		EvalConfig: evalCfg,
		Searcher:   searcher,
		Rewriter:   rw,
		Processor:  processor.New(searcher, evalCfg.Evaluation, true, logger),
		Preparer:   preparer.New(rw, logger),
		Aggregator: aggregator.New(evalCfg.Evaluation, logger),
		Logger:     logger,
	}, nil
}

func buildSearcher(ctx context.Context, cfg *Config, logger *zerolog.Logger) (retriever.Searcher, error) {
	backend, err := retriever.NewHTTPSearcher(cfg.SearchBackendURL, cfg.SearchTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}
	if !cfg.CacheEnabled {
		return backend, nil
	}

	rdb, err := redis.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, 3)
	if err != nil {
		logger.Warn().Err(err).Msg("retrieval cache unavailable, searching uncached")
		return backend, nil
	}
	return retriever.NewCachedSearcher(backend, rdb, cfg.CacheTTL, logger), nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		value = defaultValue
	}

	return value
}

func createLLMClient(ctx context.Context, provider string, cfg *Config) (llm.LLMClient, error) {
	switch provider {
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	}
}
