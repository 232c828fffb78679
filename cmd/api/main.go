package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/convsearch/retrieval-eval/internal/api"
	"github.com/convsearch/retrieval-eval/internal/api/middleware"
	"github.com/convsearch/retrieval-eval/internal/setup"
	"github.com/convsearch/retrieval-eval/internal/setup/logger"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = logger.NewWithWriter(os.Getenv("LOG_LEVEL"), zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx := context.Background()

	// Wire components
	cfg := setup.LoadConfig()
	deps, err := setup.Wire(ctx, cfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	// API
	handler := api.NewHandler(deps.Searcher, deps.Rewriter, deps.EvalConfig.Evaluation, &log.Logger)
	container := restful.NewContainer()
	container.Filter(middleware.RequestLogger(&log.Logger))
	container.Filter(middleware.RecoverPanic(&log.Logger))
	api.RegisterRoutes(container, handler)

	// CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	// Server
	port := os.Getenv("RETRIEVAL_EVAL_API_PORT")
	if port == "" {
		port = "18080"
	}

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("address", addr).Msg("Starting Retrieval Eval API")

	server := http.Server{
		Addr:    addr,
		Handler: corsHandler.Handler(container),
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
