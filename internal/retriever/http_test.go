package retriever

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPSearcher_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Query != "cheese aging" || req.TopK != 2 {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": "p9", "text": "aging cheese...", "score": 4.2},
				{"id": "p3", "text": "cheddar wheels...", "score": 3.1},
			},
		})
	}))
	defer server.Close()

	searcher, err := NewHTTPSearcher(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewHTTPSearcher failed: %v", err)
	}

	docs, err := searcher.Search(context.Background(), "cheese aging", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].PassageID != "p9" || docs[0].Rank != 1 {
		t.Errorf("unexpected first document %+v", docs[0])
	}
	if docs[1].PassageID != "p3" || docs[1].Rank != 2 {
		t.Errorf("unexpected second document %+v", docs[1])
	}
}

func TestHTTPSearcher_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	searcher, err := NewHTTPSearcher(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewHTTPSearcher failed: %v", err)
	}

	docs, err := searcher.Search(context.Background(), "no matches", 10)
	if err != nil {
		t.Fatalf("empty result set must not be an error, got %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty result list, got %d documents", len(docs))
	}
}

func TestHTTPSearcher_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	searcher, err := NewHTTPSearcher(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewHTTPSearcher failed: %v", err)
	}

	if _, err := searcher.Search(context.Background(), "anything", 10); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestNewHTTPSearcher_RequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPSearcher("  ", time.Second); err == nil {
		t.Error("expected error for empty base URL")
	}
}

func TestCacheKey_Stable(t *testing.T) {
	a := CacheKey("making cheese", 10)
	b := CacheKey("making cheese", 10)
	if a != b {
		t.Errorf("cache key not stable: %s vs %s", a, b)
	}
	if CacheKey("making cheese", 5) == a {
		t.Error("topK must be part of the cache key")
	}
	if CacheKey("aging cheese", 10) == a {
		t.Error("query must be part of the cache key")
	}
}
