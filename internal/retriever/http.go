package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/convsearch/retrieval-eval/internal/models"
)

// HTTPSearcher talks to the search backend's JSON API. The backend owns
// indexing and ranking; this client only maps its wire format onto
// ScoredDocument.
type HTTPSearcher struct {
	baseURL string
	client  *http.Client
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Results []struct {
		ID    string  `json:"id"`
		Text  string  `json:"text"`
		Score float64 `json:"score"`
	} `json:"results"`
}

func NewHTTPSearcher(baseURL string, timeout time.Duration) (*HTTPSearcher, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("search backend base URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSearcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (s *HTTPSearcher) Search(ctx context.Context, query string, topK int) ([]models.ScoredDocument, error) {
	body, err := json.Marshal(searchRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("unable to serialize search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search backend returned %d: %s", resp.StatusCode, payload)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("unable to decode search response: %w", err)
	}

	docs := make([]models.ScoredDocument, 0, len(parsed.Results))
	for i, r := range parsed.Results {
		docs = append(docs, models.ScoredDocument{
			PassageID:   r.ID,
			PassageText: r.Text,
			Rank:        i + 1,
			Score:       r.Score,
		})
	}
	return docs, nil
}
