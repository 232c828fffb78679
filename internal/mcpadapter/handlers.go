package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/convsearch/retrieval-eval/internal/config"
	"github.com/convsearch/retrieval-eval/internal/metrics"
	"github.com/convsearch/retrieval-eval/internal/models"
	"github.com/convsearch/retrieval-eval/internal/query"
	"github.com/convsearch/retrieval-eval/internal/retriever"
)

// SearchInput is the MCP tool input schema for passage search.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of passages to retrieve (default from config)"`
}

// SearchOutput carries the ranked passages.
type SearchOutput struct {
	Query   string                  `json:"query"`
	Results []models.ScoredDocument `json:"results"`
}

// EvaluateInput is the MCP tool input schema for scoring retrieval quality
// of a single query against its known relevant passages.
type EvaluateInput struct {
	Query          string   `json:"query" jsonschema:"the search query"`
	GoldPassageIDs []string `json:"gold_passage_ids" jsonschema:"identifiers of the passages known to be relevant"`
	KValues        []int    `json:"k_values,omitempty" jsonschema:"rank cutoffs to score at (default from config)"`
	TopK           int      `json:"top_k,omitempty" jsonschema:"number of passages to retrieve (default from config)"`
}

// EvaluateOutput carries the ranked passages plus their quality metrics.
type EvaluateOutput struct {
	Query   string                  `json:"query"`
	Results []models.ScoredDocument `json:"results"`
	Metrics map[string]float64      `json:"metrics"`
}

// NewSearchHandler returns a tool handler backed by the given searcher.
// Pass the returned function to mcp.AddTool.
func NewSearchHandler(searcher retriever.Searcher, evalCfg config.EvaluationConfig) func(context.Context, *mcp.CallToolRequest, SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
		topK := input.TopK
		if topK <= 0 {
			topK = evalCfg.TopK
		}

		normalized := query.Normalize(input.Query)
		docs, err := searcher.Search(ctx, normalized, topK)
		if err != nil {
			return nil, SearchOutput{}, err
		}
		if docs == nil {
			docs = []models.ScoredDocument{}
		}
		return nil, SearchOutput{Query: normalized, Results: docs}, nil
	}
}

// NewEvaluateHandler returns a tool handler that retrieves and scores.
// Pass the returned function to mcp.AddTool.
func NewEvaluateHandler(searcher retriever.Searcher, evalCfg config.EvaluationConfig) func(context.Context, *mcp.CallToolRequest, EvaluateInput) (*mcp.CallToolResult, EvaluateOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EvaluateInput) (*mcp.CallToolResult, EvaluateOutput, error) {
		topK := input.TopK
		if topK <= 0 {
			topK = evalCfg.TopK
		}
		kValues := input.KValues
		if len(kValues) == 0 {
			kValues = evalCfg.KValues
		}

		normalized := query.Normalize(input.Query)
		docs, err := searcher.Search(ctx, normalized, topK)
		if err != nil {
			return nil, EvaluateOutput{}, err
		}
		if docs == nil {
			docs = []models.ScoredDocument{}
		}

		gold := make(map[string]struct{}, len(input.GoldPassageIDs))
		for _, id := range input.GoldPassageIDs {
			if id != "" {
				gold[id] = struct{}{}
			}
		}

		return nil, EvaluateOutput{
			Query:   normalized,
			Results: docs,
			Metrics: metrics.ComputeAll(docs, gold, kValues),
		}, nil
	}
}
