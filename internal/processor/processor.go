package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/convsearch/retrieval-eval/internal/config"
	"github.com/convsearch/retrieval-eval/internal/dataset"
	"github.com/convsearch/retrieval-eval/internal/metrics"
	"github.com/convsearch/retrieval-eval/internal/models"
	"github.com/convsearch/retrieval-eval/internal/query"
	"github.com/convsearch/retrieval-eval/internal/retriever"
)

// outputSuffix is appended to the input file stem when persisting a
// processed dataset.
const outputSuffix = "_retrieved"

// Processor runs retrieval and ranking-metric scoring over a dialogue
// dataset. Dialogues are processed sequentially in input order; a failure
// inside one turn is logged and leaves that turn unchanged rather than
// aborting the run.
type Processor struct {
	searcher retriever.Searcher
	logger   *zerolog.Logger

	kValues       []int
	topK          int
	queryKey      string
	computeScores bool
}

func New(searcher retriever.Searcher, cfg config.EvaluationConfig, computeScores bool, logger *zerolog.Logger) *Processor {
	return &Processor{
		searcher:      searcher,
		logger:        logger,
		kValues:       cfg.KValues,
		topK:          cfg.TopK,
		queryKey:      cfg.QueryKey,
		computeScores: computeScores,
	}
}

// ProcessTurn retrieves passages for the turn's query and, when scoring is
// enabled, merges ranking metrics into every label that carries gold
// evidence. Turns without the configured query key are left untouched.
func (p *Processor) ProcessTurn(ctx context.Context, turn *models.Turn) error {
	raw, ok := turn.QueryByKey(p.queryKey)
	if !ok {
		return nil
	}

	normalized := query.Normalize(raw)
	docs, err := p.searcher.Search(ctx, normalized, p.topK)
	if err != nil {
		return fmt.Errorf("search failed for query %q: %w", normalized, err)
	}
	if docs == nil {
		docs = []models.ScoredDocument{}
	}

	turn.Context = nil
	turn.ResolvedQuery = models.StringPtr(raw)
	turn.RetrievedEvidence = docs

	if !p.computeScores {
		return nil
	}
	for _, label := range turn.Labels {
		if !label.HasEvidence() {
			continue
		}
		scores := metrics.ComputeAll(docs, label.Evidence.GoldIDs(), p.kValues)
		for name, value := range scores {
			label.SetMetric(name, value)
		}
	}
	return nil
}

// ProcessDialogue walks the dialogue's turns in order. Dialogues without a
// turns field are skipped.
func (p *Processor) ProcessDialogue(ctx context.Context, id string, dlg *models.Dialogue) {
	if !dlg.HasTurns() {
		p.logger.Debug().Str("dialogue_id", id).Msg("dialogue has no turns, skipping")
		return
	}

	for i, turn := range dlg.Turns {
		if err := p.ProcessTurn(ctx, turn); err != nil {
			p.logger.Warn().
				Err(err).
				Str("dialogue_id", id).
				Int("turn", i).
				Msg("turn processing failed, keeping original turn")
		}
	}
}

// ProcessDataset processes every dialogue in input order.
func (p *Processor) ProcessDataset(ctx context.Context, ds *models.Dataset) {
	now := time.Now()
	for _, id := range ds.IDs {
		dlg, ok := ds.Get(id)
		if !ok {
			continue
		}
		p.ProcessDialogue(ctx, id, dlg)
	}

	p.logger.Info().
		Int("dialogues", ds.Len()).
		Bool("scoring", p.computeScores).
		Dur("duration", time.Since(now)).
		Msg("dataset processed")
}

// ProcessFile loads a dataset, processes it, and writes the result next to
// the input file (or into outputDir when given) with a "_retrieved" suffix.
// It returns the output path.
func (p *Processor) ProcessFile(ctx context.Context, inputPath, outputDir string) (string, error) {
	ds, err := dataset.Load(inputPath)
	if err != nil {
		return "", err
	}

	p.ProcessDataset(ctx, ds)

	outputPath := dataset.DerivedPath(inputPath, outputDir, outputSuffix)
	if err := dataset.Save(outputPath, ds); err != nil {
		return "", err
	}

	p.logger.Info().Str("path", outputPath).Msg("processed dataset written")
	return outputPath, nil
}
