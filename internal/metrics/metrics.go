package metrics

import (
	"fmt"
	"math"

	"github.com/convsearch/retrieval-eval/internal/models"
)

// Ranking metrics over a retrieved list and a gold passage-id set. Relevance
// is binary: a document counts iff its passage_id is in the gold set. All
// functions resolve degenerate inputs (empty gold set, empty result list,
// k = 0) to 0.0 instead of returning an error.

// MetricNames is the canonical metric order used for batch computation and
// report keys.
var MetricNames = []string{"ndcg", "precision", "recall"}

// Key builds the "{metric}@{k}" field name for a metric/cutoff pair.
func Key(metric string, k int) string {
	return fmt.Sprintf("%s@%d", metric, k)
}

func relevantInTopK(retrieved []models.ScoredDocument, gold map[string]struct{}, k int) int {
	if k > len(retrieved) {
		k = len(retrieved)
	}
	count := 0
	for i := 0; i < k; i++ {
		if _, ok := gold[retrieved[i].PassageID]; ok {
			count++
		}
	}
	return count
}

// PrecisionAtK computes the fraction of the top k slots holding a gold
// document. The denominator is k itself, so a result list shorter than k is
// penalized.
func PrecisionAtK(retrieved []models.ScoredDocument, gold map[string]struct{}, k int) float64 {
	if k <= 0 {
		return 0.0
	}
	return float64(relevantInTopK(retrieved, gold, k)) / float64(k)
}

// RecallAtK computes the fraction of gold documents found in the top k.
func RecallAtK(retrieved []models.ScoredDocument, gold map[string]struct{}, k int) float64 {
	if len(gold) == 0 {
		return 0.0
	}
	if k <= 0 {
		return 0.0
	}
	return float64(relevantInTopK(retrieved, gold, k)) / float64(len(gold))
}

// NDCGAtK computes normalized discounted cumulative gain truncated at k.
// The discount for 0-indexed rank i is log2(i+2), so the top rank is
// divided by log2(2) = 1. The ideal ranking places all gold documents
// first; when it is empty (no gold items, or k = 0) the result is 0.0.
func NDCGAtK(retrieved []models.ScoredDocument, gold map[string]struct{}, k int) float64 {
	if k <= 0 {
		return 0.0
	}

	limit := k
	if limit > len(retrieved) {
		limit = len(retrieved)
	}
	dcg := 0.0
	for i := 0; i < limit; i++ {
		if _, ok := gold[retrieved[i].PassageID]; ok {
			dcg += 1.0 / math.Log2(float64(i+2))
		}
	}

	ideal := len(gold)
	if ideal > k {
		ideal = k
	}
	idcg := 0.0
	for i := 0; i < ideal; i++ {
		idcg += 1.0 / math.Log2(float64(i+2))
	}

	if idcg == 0 {
		return 0.0
	}
	return dcg / idcg
}

// ComputeAll evaluates the full {ndcg, precision, recall} x ks cross-product
// keyed "{metric}@{k}". Values are identical to calling the single-metric
// functions with the same arguments.
func ComputeAll(retrieved []models.ScoredDocument, gold map[string]struct{}, ks []int) map[string]float64 {
	results := make(map[string]float64, 3*len(ks))
	for _, k := range ks {
		results[Key("ndcg", k)] = NDCGAtK(retrieved, gold, k)
	}
	for _, k := range ks {
		results[Key("precision", k)] = PrecisionAtK(retrieved, gold, k)
	}
	for _, k := range ks {
		results[Key("recall", k)] = RecallAtK(retrieved, gold, k)
	}
	return results
}
