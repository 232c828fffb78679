package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/convsearch/retrieval-eval/internal/aggregator"
	"github.com/convsearch/retrieval-eval/internal/dataset"
	"github.com/convsearch/retrieval-eval/internal/models"
	"github.com/convsearch/retrieval-eval/internal/processor"
	"github.com/convsearch/retrieval-eval/internal/setup"
	"github.com/convsearch/retrieval-eval/internal/setup/logger"
)

type runSummary struct {
	Overall        models.SummaryReport            `json:"overall"`
	ByResponseType map[string]models.SummaryReport `json:"by_response_type"`
}

func main() {
	startTime := time.Now()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = logger.NewWithWriter(os.Getenv("LOG_LEVEL"), zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	input := flag.String("input", "", "Input dataset file (JSON)")
	outputDir := flag.String("output-dir", "", "Output directory (default: alongside the input file)")
	kValues := flag.String("k", "", "Comma-separated rank cutoffs, e.g. '1,3,5' (default from config)")
	topK := flag.Int("top-k", 0, "Number of passages to retrieve per query (default from config)")
	queryKey := flag.String("query-key", "", "Turn field to search with: 'query' or 'resolvedQuery' (default from config)")
	scores := flag.Bool("scores", true, "Compute ranking metrics for labels with gold evidence")
	summaryPath := flag.String("summary", "", "Optional file for the aggregated summary (default: stdout)")

	flag.Parse()

	if *input == "" {
		log.Fatal().Msg("required flag -input not provided")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(ctx, cfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	evalCfg := deps.EvalConfig.Evaluation
	if *kValues != "" {
		evalCfg.KValues, err = parseKValues(*kValues)
		if err != nil {
			log.Fatal().Err(err).Str("k", *kValues).Msg("Invalid -k flag")
		}
	}
	if *topK > 0 {
		evalCfg.TopK = *topK
	}
	if *queryKey != "" {
		if *queryKey != "query" && *queryKey != "resolvedQuery" {
			log.Fatal().Str("query_key", *queryKey).Msg("Invalid -query-key flag, must be 'query' or 'resolvedQuery'")
		}
		evalCfg.QueryKey = *queryKey
	}

	ds, err := dataset.Load(*input)
	if err != nil {
		log.Fatal().Err(err).Str("file", *input).Msg("Failed to load dataset")
	}
	log.Info().Int("dialogues", ds.Len()).Str("file", *input).Msg("Dataset loaded")

	proc := processor.New(deps.Searcher, evalCfg, *scores, deps.Logger)
	proc.ProcessDataset(ctx, ds)

	outputPath := dataset.DerivedPath(*input, *outputDir, "_retrieved")
	if err := dataset.Save(outputPath, ds); err != nil {
		log.Fatal().Err(err).Str("file", outputPath).Msg("Failed to write processed dataset")
	}
	log.Info().Str("file", outputPath).Msg("Processed dataset written")

	if *scores {
		agg := aggregator.New(evalCfg, deps.Logger)
		summary := runSummary{
			Overall:        agg.Overall(ds),
			ByResponseType: agg.ByResponseType(ds),
		}
		if err := writeSummary(summary, *summaryPath); err != nil {
			log.Fatal().Err(err).Str("file", *summaryPath).Msg("Failed to write summary")
		}
	}

	log.Info().Dur("duration", time.Since(startTime)).Msg("Retrieval run complete")
}

func writeSummary(summary runSummary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Info().Str("file", path).Msg("Summary written")
	return nil
}

func parseKValues(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	ks := make([]int, 0, len(parts))
	for _, part := range parts {
		k, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", part)
		}
		if k <= 0 {
			return nil, fmt.Errorf("rank cutoffs must be positive, got %d", k)
		}
		ks = append(ks, k)
	}
	return ks, nil
}
