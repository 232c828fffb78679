package api

import "github.com/convsearch/retrieval-eval/internal/models"

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type SearchResponse struct {
	Query   string                  `json:"query"`
	Results []models.ScoredDocument `json:"results"`
}

// EvaluateRequest scores a single query against its gold passages.
type EvaluateRequest struct {
	Query          string   `json:"query"`
	GoldPassageIDs []string `json:"gold_passage_ids"`
	KValues        []int    `json:"k_values,omitempty"`
	TopK           int      `json:"top_k,omitempty"`
}

type EvaluateResponse struct {
	Query   string                  `json:"query"`
	Results []models.ScoredDocument `json:"results"`
	Metrics map[string]float64      `json:"metrics"`
}

// RespondRequest generates a response grounded in retrieved passages.
// Either a query (passages are retrieved first) or the passages themselves
// must be given; explicit passages win.
type RespondRequest struct {
	Query    string   `json:"query,omitempty"`
	TopK     int      `json:"top_k,omitempty"`
	Passages []string `json:"passages,omitempty"`
}

type RespondResponse struct {
	Response string                  `json:"response"`
	Results  []models.ScoredDocument `json:"results,omitempty"`
}
