package aggregator

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/convsearch/retrieval-eval/internal/config"
	"github.com/convsearch/retrieval-eval/internal/metrics"
	"github.com/convsearch/retrieval-eval/internal/models"
)

// defaultResponseType buckets labels that carry no responseType.
const defaultResponseType = "unknown"

// Aggregator summarizes per-label ranking metrics across a processed
// dataset. Labels missing a given metric key simply do not contribute to
// that key's statistics; a key nobody carries is reported as zero.
type Aggregator struct {
	kValues []int
	logger  *zerolog.Logger
}

func New(cfg config.EvaluationConfig, logger *zerolog.Logger) *Aggregator {
	return &Aggregator{kValues: cfg.KValues, logger: logger}
}

// Overall computes the average and maximum of every configured metric over
// all labels, plus num_queries, the total number of metric observations
// summed across every configured key.
func (a *Aggregator) Overall(ds *models.Dataset) models.SummaryReport {
	now := time.Now()
	labels := a.labels(ds)

	observations := 0
	report := models.SummaryReport{}
	for _, key := range a.metricKeys() {
		values := collect(labels, key)
		observations += len(values)
		report["avg_"+key] = mean(values)
		report["max_"+key] = maximum(values)
	}
	report["num_queries"] = float64(observations)

	a.logger.Info().
		Int("observations", observations).
		Dur("duration", time.Since(now)).
		Msg("overall summary computed")
	return report
}

// ByResponseType groups every label by its responseType (labels without one
// fall into "unknown") and computes average, maximum, minimum, population
// standard deviation, and observation count per metric. A responseType whose
// labels carry no metrics still gets a report, with every field zero.
func (a *Aggregator) ByResponseType(ds *models.Dataset) map[string]models.SummaryReport {
	now := time.Now()
	labels := a.labels(ds)

	groups := make(map[string][]*models.Label)
	for _, label := range labels {
		responseType := label.ResponseType
		if responseType == "" {
			responseType = defaultResponseType
		}
		groups[responseType] = append(groups[responseType], label)
	}

	reports := make(map[string]models.SummaryReport, len(groups))
	for responseType, group := range groups {
		report := models.SummaryReport{}
		for _, key := range a.metricKeys() {
			values := collect(group, key)
			report["avg_"+key] = mean(values)
			report["max_"+key] = maximum(values)
			report["min_"+key] = minimum(values)
			report["std_"+key] = stddev(values)
			report["count_"+key] = float64(len(values))
		}
		reports[responseType] = report
	}

	a.logger.Info().
		Int("response_types", len(reports)).
		Dur("duration", time.Since(now)).
		Msg("per-type summary computed")
	return reports
}

// metricKeys lists every "{metric}@{k}" key the run is configured to
// compute, metric-major with k ascending.
func (a *Aggregator) metricKeys() []string {
	keys := make([]string, 0, len(metrics.MetricNames)*len(a.kValues))
	for _, name := range metrics.MetricNames {
		for _, k := range a.kValues {
			keys = append(keys, metrics.Key(name, k))
		}
	}
	return keys
}

// labels gathers every label in dataset order, scored or not; unscored
// labels still anchor their responseType in the per-type report.
func (a *Aggregator) labels(ds *models.Dataset) []*models.Label {
	var labels []*models.Label
	for _, id := range ds.IDs {
		dlg, ok := ds.Get(id)
		if !ok {
			continue
		}
		for _, turn := range dlg.Turns {
			labels = append(labels, turn.Labels...)
		}
	}
	return labels
}

func collect(labels []*models.Label, key string) []float64 {
	values := make([]float64, 0, len(labels))
	for _, label := range labels {
		if v, ok := label.MetricValue(key); ok {
			values = append(values, v)
		}
	}
	return values
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maximum(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func minimum(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
