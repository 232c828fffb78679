package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/convsearch/retrieval-eval/internal/query"
	"github.com/convsearch/retrieval-eval/internal/retriever"
	"github.com/convsearch/retrieval-eval/internal/setup"
	"github.com/convsearch/retrieval-eval/internal/setup/logger"
)

// Interactive shell for poking at the search backend: type a query, get the
// ranked passages back.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = logger.NewWithWriter(os.Getenv("LOG_LEVEL"), zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := setup.LoadConfig()
	searcher, err := retriever.NewHTTPSearcher(cfg.SearchBackendURL, cfg.SearchTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create search client")
	}

	fmt.Printf("Connected to %s. Type a query, or 'quit' to exit.\n", cfg.SearchBackendURL)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		normalized := query.Normalize(line)
		docs, err := searcher.Search(ctx, normalized, 10)
		if err != nil {
			log.Error().Err(err).Msg("Search failed")
			continue
		}
		if len(docs) == 0 {
			fmt.Println("no results")
			continue
		}

		fmt.Printf("query: %s\n", normalized)
		for _, doc := range docs {
			text := doc.PassageText
			if len(text) > 120 {
				text = text[:120] + "..."
			}
			fmt.Printf("%2d. [%.4f] %s  %s\n", doc.Rank, doc.Score, doc.PassageID, text)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("Input error")
	}
}
