package retriever

import (
	"context"

	"github.com/convsearch/retrieval-eval/internal/models"
)

// Searcher is the capability the evaluation pipeline needs from a search
// backend: a ranked, scored result list for a query. Implementations must
// return an empty slice, not an error, when nothing matches.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]models.ScoredDocument, error)
}
