package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evaluation.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("EVAL_CONFIG_PATH", path)
}

func TestLoad_Defaults(t *testing.T) {
	writeConfig(t, `
rewrite:
  prompt: "Rewrite: {{.Context}}"
summarize:
  prompt: "Summarize: {{.Passages}}"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Evaluation.KValues; len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 5 {
		t.Errorf("expected default k_values [1 3 5], got %v", got)
	}
	if cfg.Evaluation.TopK != 10 {
		t.Errorf("expected default top_k 10, got %d", cfg.Evaluation.TopK)
	}
	if cfg.Evaluation.QueryKey != "resolvedQuery" {
		t.Errorf("expected default query_key resolvedQuery, got %s", cfg.Evaluation.QueryKey)
	}
	if cfg.Rewrite.Model.MaxTokens != 256 {
		t.Errorf("expected default max_tokens 256, got %d", cfg.Rewrite.Model.MaxTokens)
	}
}

func TestLoad_Explicit(t *testing.T) {
	writeConfig(t, `
evaluation:
  k_values: [1, 10]
  top_k: 20
  query_key: query
rewrite:
  prompt: "p"
  model:
    max_tokens: 64
    temperature: 0.2
    retry: true
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Evaluation.KValues) != 2 || cfg.Evaluation.KValues[1] != 10 {
		t.Errorf("unexpected k_values %v", cfg.Evaluation.KValues)
	}
	if cfg.Evaluation.TopK != 20 || cfg.Evaluation.QueryKey != "query" {
		t.Errorf("unexpected evaluation config %+v", cfg.Evaluation)
	}
	if !cfg.Rewrite.Model.Retry || cfg.Rewrite.Model.Temperature != 0.2 {
		t.Errorf("unexpected rewrite model %+v", cfg.Rewrite.Model)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"negative k":        "evaluation:\n  k_values: [-1]\n",
		"unknown query key": "evaluation:\n  query_key: utterance\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			writeConfig(t, content)
			if _, err := Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
