package rewriter

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/convsearch/retrieval-eval/internal/config"
	"github.com/convsearch/retrieval-eval/internal/llm"
)

// contextSeparator joins conversation turns before prompting the rewrite
// model; the separator is part of the prompt contract.
const contextSeparator = "|||"

// Rewriter turns conversational context into a self-contained search query
// and retrieved passages into a generated response, using configurable
// prompt templates over an LLMClient. Callers are expected to treat
// failures as degraded mode (fall back to the raw query), never as fatal.
type Rewriter struct {
	rewriteTmpl    *template.Template
	rewriteModel   config.ModelConfig
	summarizeTmpl  *template.Template
	summarizeModel config.ModelConfig
	client         llm.LLMClient
	logger         *zerolog.Logger
}

func New(cfg *config.Config, client llm.LLMClient, logger *zerolog.Logger) (*Rewriter, error) {
	rewriteTmpl, err := template.New("rewrite").Parse(cfg.Rewrite.Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rewrite prompt template: %w", err)
	}
	summarizeTmpl, err := template.New("summarize").Parse(cfg.Summarize.Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse summarize prompt template: %w", err)
	}

	return &Rewriter{
		rewriteTmpl:    rewriteTmpl,
		rewriteModel:   *cfg.Rewrite.Model,
		summarizeTmpl:  summarizeTmpl,
		summarizeModel: *cfg.Summarize.Model,
		client:         client,
		logger:         logger,
	}, nil
}

// Rewrite resolves the final utterance of the given conversation turns into
// a standalone query.
func (r *Rewriter) Rewrite(ctx context.Context, contextTurns []string) (string, error) {
	if len(contextTurns) == 0 {
		return "", fmt.Errorf("empty conversation context")
	}

	now := time.Now()
	data := struct{ Context string }{Context: strings.Join(contextTurns, contextSeparator)}
	content, err := r.invoke(ctx, r.rewriteTmpl, r.rewriteModel, data)
	if err != nil {
		return "", err
	}

	r.logger.Debug().
		Int("context_turns", len(contextTurns)).
		Dur("duration", time.Since(now)).
		Msg("query rewritten")
	return content, nil
}

// Summarize generates a response from retrieved passages.
func (r *Rewriter) Summarize(ctx context.Context, passages []string) (string, error) {
	if len(passages) == 0 {
		return "", fmt.Errorf("no passages to summarize")
	}

	now := time.Now()
	data := struct{ Passages string }{Passages: strings.Join(passages, " ")}
	content, err := r.invoke(ctx, r.summarizeTmpl, r.summarizeModel, data)
	if err != nil {
		return "", err
	}

	r.logger.Debug().
		Int("passages", len(passages)).
		Dur("duration", time.Since(now)).
		Msg("response generated")
	return content, nil
}

func (r *Rewriter) invoke(ctx context.Context, tmpl *template.Template, model config.ModelConfig, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	request := llm.LLMRequest{
		Prompt:      buf.String(),
		MaxTokens:   model.MaxTokens,
		Temperature: model.Temperature,
	}

	var resp *llm.LLMResponse
	var err error
	if model.Retry {
		resp, err = r.client.InvokeModelWithRetry(ctx, request)
	} else {
		resp, err = r.client.InvokeModel(ctx, request)
	}
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", fmt.Errorf("LLM returned empty content")
	}
	return content, nil
}
