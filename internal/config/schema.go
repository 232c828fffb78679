package config

// Config is the evaluation run configuration loaded from YAML.
type Config struct {
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Rewrite    PromptConfig     `yaml:"rewrite"`
	Summarize  PromptConfig     `yaml:"summarize"`
}

// EvaluationConfig controls the retrieval-and-scoring pass.
type EvaluationConfig struct {
	KValues  []int  `yaml:"k_values"`
	TopK     int    `yaml:"top_k"`
	QueryKey string `yaml:"query_key"`
}

// PromptConfig is the prompt template and model parameters for one text
// transformation (query rewriting or passage summarization).
type PromptConfig struct {
	Prompt string       `yaml:"prompt"`
	Model  *ModelConfig `yaml:"model"`
}

// ModelConfig contains per-call model parameters.
type ModelConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Retry       bool    `yaml:"retry"`
}
