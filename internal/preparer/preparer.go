package preparer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/convsearch/retrieval-eval/internal/dataset"
	"github.com/convsearch/retrieval-eval/internal/models"
)

const outputSuffix = "_resolved"

// QueryRewriter resolves a conversation's final utterance into a standalone
// query.
type QueryRewriter interface {
	Rewrite(ctx context.Context, contextTurns []string) (string, error)
}

// Preparer fills in query and resolvedQuery for turns that only carry raw
// conversation context, producing a dataset the retrieval pass can consume.
// A rewrite failure degrades to the raw query rather than failing the run.
type Preparer struct {
	rewriter QueryRewriter
	logger   *zerolog.Logger
}

func New(rewriter QueryRewriter, logger *zerolog.Logger) *Preparer {
	return &Preparer{rewriter: rewriter, logger: logger}
}

// PrepareTurn derives the turn's query fields from its context. The query is
// the last context utterance; the resolved query comes from the rewriter,
// falling back to the raw query when rewriting fails. A turn without context
// gets empty query fields.
func (p *Preparer) PrepareTurn(ctx context.Context, turn *models.Turn) {
	if len(turn.Context) == 0 {
		p.logger.Warn().Msg("turn has no conversation context, nothing to resolve")
		turn.Query = models.StringPtr("")
		turn.ResolvedQuery = models.StringPtr("")
		return
	}

	rawQuery := turn.Context[len(turn.Context)-1]
	turn.Query = models.StringPtr(rawQuery)

	resolved, err := p.rewriter.Rewrite(ctx, turn.Context)
	if err != nil {
		p.logger.Warn().Err(err).Str("query", rawQuery).Msg("query rewrite failed, using raw query")
		resolved = rawQuery
	}
	turn.ResolvedQuery = models.StringPtr(resolved)
}

// PrepareDataset resolves every turn of every dialogue in input order.
func (p *Preparer) PrepareDataset(ctx context.Context, ds *models.Dataset) {
	now := time.Now()
	for _, id := range ds.IDs {
		dlg, ok := ds.Get(id)
		if !ok || !dlg.HasTurns() {
			continue
		}
		for _, turn := range dlg.Turns {
			p.PrepareTurn(ctx, turn)
		}
	}

	p.logger.Info().
		Int("dialogues", ds.Len()).
		Dur("duration", time.Since(now)).
		Msg("dataset prepared")
}

// PrepareFile loads a raw dataset, resolves its queries, and writes the
// result with a "_resolved" suffix. It returns the output path.
func (p *Preparer) PrepareFile(ctx context.Context, inputPath, outputDir string) (string, error) {
	ds, err := dataset.Load(inputPath)
	if err != nil {
		return "", err
	}

	p.PrepareDataset(ctx, ds)

	outputPath := dataset.DerivedPath(inputPath, outputDir, outputSuffix)
	if err := dataset.Save(outputPath, ds); err != nil {
		return "", err
	}

	p.logger.Info().Str("path", outputPath).Msg("resolved dataset written")
	return outputPath, nil
}
