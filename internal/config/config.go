package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func Load() (*Config, error) {
	path := os.Getenv("EVAL_CONFIG_PATH")
	if path == "" {
		path = "configs/evaluation.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Evaluation.KValues) == 0 {
		cfg.Evaluation.KValues = []int{1, 3, 5}
	}
	if cfg.Evaluation.TopK == 0 {
		cfg.Evaluation.TopK = 10
	}
	if cfg.Evaluation.QueryKey == "" {
		cfg.Evaluation.QueryKey = "resolvedQuery"
	}
	for _, p := range []*PromptConfig{&cfg.Rewrite, &cfg.Summarize} {
		if p.Model == nil {
			p.Model = &ModelConfig{}
		}
		if p.Model.MaxTokens == 0 {
			p.Model.MaxTokens = 256
		}
	}
}

func (c *Config) Validate() error {
	for _, k := range c.Evaluation.KValues {
		if k <= 0 {
			return fmt.Errorf("k_values must be positive, got %d", k)
		}
	}
	if c.Evaluation.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.Evaluation.TopK)
	}
	switch c.Evaluation.QueryKey {
	case "query", "resolvedQuery":
	default:
		return fmt.Errorf("query_key must be \"query\" or \"resolvedQuery\", got %q", c.Evaluation.QueryKey)
	}
	return nil
}
