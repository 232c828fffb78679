package aggregator

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/convsearch/retrieval-eval/internal/config"
	"github.com/convsearch/retrieval-eval/internal/models"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func testConfig() config.EvaluationConfig {
	return config.EvaluationConfig{KValues: []int{3}, TopK: 10, QueryKey: "resolvedQuery"}
}

func scoredLabel(responseType string, scores map[string]float64) *models.Label {
	label := &models.Label{ResponseType: responseType}
	for key, v := range scores {
		label.SetMetric(key, v)
	}
	return label
}

func datasetWith(labels ...*models.Label) *models.Dataset {
	ds := &models.Dataset{}
	turn := &models.Turn{Labels: labels}
	ds.Put("dlg_1", &models.Dialogue{Turns: []*models.Turn{turn}})
	return ds
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestOverall(t *testing.T) {
	ds := datasetWith(
		scoredLabel("PTKB", map[string]float64{"ndcg@3": 0.5, "precision@3": 0.4, "recall@3": 0.2}),
		scoredLabel("direct", map[string]float64{"ndcg@3": 1.0, "precision@3": 0.6, "recall@3": 1.0}),
	)

	report := New(testConfig(), newTestLogger()).Overall(ds)

	// Two labels each carrying ndcg@3, precision@3, recall@3.
	if got := report["num_queries"]; got != 6 {
		t.Errorf("num_queries = %v, want 6", got)
	}
	if got := report["avg_ndcg@3"]; !almostEqual(got, 0.75) {
		t.Errorf("avg_ndcg@3 = %v, want 0.75", got)
	}
	if got := report["max_ndcg@3"]; got != 1.0 {
		t.Errorf("max_ndcg@3 = %v, want 1.0", got)
	}
	if got := report["avg_precision@3"]; !almostEqual(got, 0.5) {
		t.Errorf("avg_precision@3 = %v, want 0.5", got)
	}
}

func TestOverallEmptyDataset(t *testing.T) {
	report := New(testConfig(), newTestLogger()).Overall(&models.Dataset{})

	if got := report["num_queries"]; got != 0 {
		t.Errorf("num_queries = %v, want 0", got)
	}
	if got := report["avg_ndcg@3"]; got != 0.0 {
		t.Errorf("avg_ndcg@3 on empty dataset = %v, want 0.0", got)
	}
}

func TestByResponseType(t *testing.T) {
	ds := datasetWith(
		scoredLabel("PTKB", map[string]float64{"ndcg@3": 0.5}),
		scoredLabel("PTKB", map[string]float64{"ndcg@3": 1.0}),
		scoredLabel("direct", map[string]float64{"ndcg@3": 0.2}),
	)

	reports := New(testConfig(), newTestLogger()).ByResponseType(ds)

	ptkb, ok := reports["PTKB"]
	if !ok {
		t.Fatal("missing PTKB group")
	}
	if got := ptkb["avg_ndcg@3"]; !almostEqual(got, 0.75) {
		t.Errorf("avg_ndcg@3 = %v, want 0.75", got)
	}
	if got := ptkb["max_ndcg@3"]; got != 1.0 {
		t.Errorf("max_ndcg@3 = %v, want 1.0", got)
	}
	if got := ptkb["min_ndcg@3"]; got != 0.5 {
		t.Errorf("min_ndcg@3 = %v, want 0.5", got)
	}
	if got := ptkb["std_ndcg@3"]; !almostEqual(got, 0.25) {
		t.Errorf("std_ndcg@3 = %v, want 0.25", got)
	}
	if got := ptkb["count_ndcg@3"]; got != 2 {
		t.Errorf("count_ndcg@3 = %v, want 2", got)
	}

	direct, ok := reports["direct"]
	if !ok {
		t.Fatal("missing direct group")
	}
	if got := direct["std_ndcg@3"]; got != 0.0 {
		t.Errorf("single observation std = %v, want 0.0", got)
	}
}

func TestByResponseTypeDefaultsUnknown(t *testing.T) {
	ds := datasetWith(scoredLabel("", map[string]float64{"ndcg@3": 0.4}))

	reports := New(testConfig(), newTestLogger()).ByResponseType(ds)

	unknown, ok := reports["unknown"]
	if !ok {
		t.Fatalf("expected unlabeled queries under %q, got groups %v", "unknown", reports)
	}
	if got := unknown["avg_ndcg@3"]; !almostEqual(got, 0.4) {
		t.Errorf("avg_ndcg@3 = %v, want 0.4", got)
	}
}

func TestByResponseTypeToleratesMissingKeys(t *testing.T) {
	// Only one of the two labels carries precision@3; the other must not
	// drag the average down.
	first := scoredLabel("PTKB", map[string]float64{"ndcg@3": 0.5, "precision@3": 1.0})
	second := scoredLabel("PTKB", map[string]float64{"ndcg@3": 1.0})
	ds := datasetWith(first, second)

	reports := New(testConfig(), newTestLogger()).ByResponseType(ds)

	ptkb := reports["PTKB"]
	if got := ptkb["avg_precision@3"]; got != 1.0 {
		t.Errorf("avg_precision@3 = %v, want 1.0", got)
	}
	if got := ptkb["count_precision@3"]; got != 1 {
		t.Errorf("count_precision@3 = %v, want 1", got)
	}
	if got := ptkb["count_ndcg@3"]; got != 2 {
		t.Errorf("count_ndcg@3 = %v, want 2", got)
	}
	// recall@3 appears on nobody: reported as zero, never an error.
	if got := ptkb["avg_recall@3"]; got != 0.0 {
		t.Errorf("avg_recall@3 = %v, want 0.0", got)
	}
}

func TestUnscoredLabelsStillReported(t *testing.T) {
	ds := datasetWith(
		scoredLabel("PTKB", map[string]float64{"ndcg@3": 0.5}),
		&models.Label{ResponseType: "unanswerable"},
	)
	agg := New(testConfig(), newTestLogger())

	report := agg.Overall(ds)
	if got := report["num_queries"]; got != 1 {
		t.Errorf("num_queries = %v, want 1 (only one observation exists)", got)
	}

	// A category whose labels carry no metrics still appears, all zeros.
	reports := agg.ByResponseType(ds)
	unanswerable, ok := reports["unanswerable"]
	if !ok {
		t.Fatalf("expected unanswerable group, got groups %v", reports)
	}
	if got := unanswerable["count_ndcg@3"]; got != 0 {
		t.Errorf("count_ndcg@3 = %v, want 0", got)
	}
	if got := unanswerable["avg_ndcg@3"]; got != 0.0 {
		t.Errorf("avg_ndcg@3 = %v, want 0.0", got)
	}
	if got := unanswerable["std_recall@3"]; got != 0.0 {
		t.Errorf("std_recall@3 = %v, want 0.0", got)
	}
}
