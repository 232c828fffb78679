package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/convsearch/retrieval-eval/internal/mcpadapter"
	"github.com/convsearch/retrieval-eval/internal/setup"
	"github.com/convsearch/retrieval-eval/internal/setup/logger"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = logger.NewWithWriter(os.Getenv("LOG_LEVEL"), zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load env
	_ = godotenv.Load()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load Config
	cfg := setup.LoadConfig()

	// Wire dependencies
	deps, err := setup.Wire(ctx, cfg, &log.Logger)
	if err != nil {
		log.Error().Err(err).Msg("Unable to load dependencies")
		os.Exit(1)
	}

	// Create MCP Server
	server := createMCPServer(deps)

	// Run over stdio
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		// EOF / "server is closing" is expected when stdin closes
		if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing") {
			log.Debug().Err(err).Msg("MCP server stopped")
			return
		}
		log.Error().Err(err).Msg("Failed to run mcp server")
		os.Exit(1)
	}
}

func createMCPServer(deps *setup.Dependencies) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "retrieval-eval",
			Version: "1.0.0",
		}, nil,
	)

	// Add Tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_passages",
		Description: "Search the passage collection and return ranked results with relevance scores",
	}, mcpadapter.NewSearchHandler(deps.Searcher, deps.EvalConfig.Evaluation))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "evaluate_retrieval",
		Description: "Retrieve passages for a query and score them against known relevant passages with nDCG, precision, and recall",
	}, mcpadapter.NewEvaluateHandler(deps.Searcher, deps.EvalConfig.Evaluation))
	return server
}
