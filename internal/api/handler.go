package api

import (
	"fmt"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/convsearch/retrieval-eval/internal/api/middleware"
	"github.com/convsearch/retrieval-eval/internal/config"
	"github.com/convsearch/retrieval-eval/internal/metrics"
	"github.com/convsearch/retrieval-eval/internal/models"
	"github.com/convsearch/retrieval-eval/internal/query"
	"github.com/convsearch/retrieval-eval/internal/retriever"
	"github.com/convsearch/retrieval-eval/internal/rewriter"
)

type Handler struct {
	searcher retriever.Searcher
	rewriter *rewriter.Rewriter
	evalCfg  config.EvaluationConfig
	logger   *zerolog.Logger
}

func NewHandler(searcher retriever.Searcher, rewriter *rewriter.Rewriter, evalCfg config.EvaluationConfig, logger *zerolog.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		rewriter: rewriter,
		evalCfg:  evalCfg,
		logger:   logger,
	}
}

// POST /api/v1/search
// Body: SearchRequest
// Returns: SearchResponse
func (h *Handler) Search(req *restful.Request, resp *restful.Response) {
	var searchRequest SearchRequest
	if err := req.ReadEntity(&searchRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}
	if searchRequest.Query == "" {
		middleware.HandleError(resp, fmt.Errorf("query must not be empty"), http.StatusBadRequest)
		return
	}

	topK := searchRequest.TopK
	if topK <= 0 {
		topK = h.evalCfg.TopK
	}

	normalized := query.Normalize(searchRequest.Query)
	docs, err := h.searcher.Search(req.Request.Context(), normalized, topK)
	if err != nil {
		h.logger.Error().Err(err).Str("query", normalized).Msg("Search failed")
		middleware.HandleError(resp, err, http.StatusBadGateway)
		return
	}
	if docs == nil {
		docs = []models.ScoredDocument{}
	}

	h.logger.Info().
		Str("query", normalized).
		Int("results", len(docs)).
		Msg("Search complete")
	resp.WriteHeaderAndEntity(http.StatusOK, SearchResponse{Query: normalized, Results: docs})
}

// POST /api/v1/evaluate
// Body: EvaluateRequest
// Returns: EvaluateResponse
func (h *Handler) Evaluate(req *restful.Request, resp *restful.Response) {
	var evalRequest EvaluateRequest
	if err := req.ReadEntity(&evalRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}
	if evalRequest.Query == "" {
		middleware.HandleError(resp, fmt.Errorf("query must not be empty"), http.StatusBadRequest)
		return
	}

	topK := evalRequest.TopK
	if topK <= 0 {
		topK = h.evalCfg.TopK
	}
	kValues := evalRequest.KValues
	if len(kValues) == 0 {
		kValues = h.evalCfg.KValues
	}
	for _, k := range kValues {
		if k <= 0 {
			middleware.HandleError(resp, fmt.Errorf("k values must be positive, got %d", k), http.StatusBadRequest)
			return
		}
	}

	normalized := query.Normalize(evalRequest.Query)
	docs, err := h.searcher.Search(req.Request.Context(), normalized, topK)
	if err != nil {
		h.logger.Error().Err(err).Str("query", normalized).Msg("Search failed")
		middleware.HandleError(resp, err, http.StatusBadGateway)
		return
	}
	if docs == nil {
		docs = []models.ScoredDocument{}
	}

	gold := make(map[string]struct{}, len(evalRequest.GoldPassageIDs))
	for _, id := range evalRequest.GoldPassageIDs {
		if id != "" {
			gold[id] = struct{}{}
		}
	}
	scores := metrics.ComputeAll(docs, gold, kValues)

	h.logger.Info().
		Str("query", normalized).
		Int("results", len(docs)).
		Int("gold", len(gold)).
		Msg("Evaluation complete")
	resp.WriteHeaderAndEntity(http.StatusOK, EvaluateResponse{
		Query:   normalized,
		Results: docs,
		Metrics: scores,
	})
}

// POST /api/v1/respond
// Body: RespondRequest
// Returns: RespondResponse
func (h *Handler) Respond(req *restful.Request, resp *restful.Response) {
	var respondRequest RespondRequest
	if err := req.ReadEntity(&respondRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}
	passages := respondRequest.Passages
	var docs []models.ScoredDocument
	if len(passages) == 0 {
		if respondRequest.Query == "" {
			middleware.HandleError(resp, fmt.Errorf("either query or passages must be given"), http.StatusBadRequest)
			return
		}

		topK := respondRequest.TopK
		if topK <= 0 {
			topK = h.evalCfg.TopK
		}
		normalized := query.Normalize(respondRequest.Query)
		var err error
		docs, err = h.searcher.Search(req.Request.Context(), normalized, topK)
		if err != nil {
			h.logger.Error().Err(err).Str("query", normalized).Msg("Search failed")
			middleware.HandleError(resp, err, http.StatusBadGateway)
			return
		}
		for _, doc := range docs {
			passages = append(passages, doc.PassageText)
		}
		if len(passages) == 0 {
			middleware.HandleError(resp, fmt.Errorf("no passages retrieved for query"), http.StatusNotFound)
			return
		}
	}

	response, err := h.rewriter.Summarize(req.Request.Context(), passages)
	if err != nil {
		h.logger.Error().Err(err).Msg("Response generation failed")
		middleware.HandleError(resp, err, http.StatusBadGateway)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, RespondResponse{Response: response, Results: docs})
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}
