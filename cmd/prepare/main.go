package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/convsearch/retrieval-eval/internal/setup"
	"github.com/convsearch/retrieval-eval/internal/setup/logger"
)

func main() {
	startTime := time.Now()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = logger.NewWithWriter(os.Getenv("LOG_LEVEL"), zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	input := flag.String("input", "", "Raw dataset file with conversation context (JSON)")
	outputDir := flag.String("output-dir", "", "Output directory (default: alongside the input file)")

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

	outputPath, err := deps.Preparer.PrepareFile(ctx, *input, *outputDir)
	if err != nil {
		log.Fatal().Err(err).Str("file", *input).Msg("Failed to prepare dataset")
	}

	log.Info().
		Str("file", outputPath).
		Dur("duration", time.Since(startTime)).
		Msg("Preparation complete")
}
