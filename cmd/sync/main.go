package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/roarlabs/clubgpt/internal/impect"
	"github.com/roarlabs/clubgpt/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	startTime := time.Now()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	configPath := flag.String("config", "configs/sync.yaml", "Sync configuration file")
	output := flag.String("output", "data/matches.json", "Output data file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	username := os.Getenv("IMPECT_USERNAME")
	password := os.Getenv("IMPECT_PASSWORD")
	if username == "" || password == "" {
		log.Fatal().Msg("IMPECT_USERNAME and IMPECT_PASSWORD are required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := impect.LoadSyncConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load sync config")
	}

	client := impect.NewClient(&logger)
	if err := client.Authenticate(ctx, username, password); err != nil {
		log.Fatal().Err(err).Msg("Failed to authenticate with Impect")
	}

	log.Info().
		Str("team", cfg.Team).
		Int("matches", len(cfg.Matches)).
		Msg("Pulling match data")

	syncer := impect.NewSyncer(client, cfg)
	dataset, err := syncer.BuildDataset(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	if err := store.WriteFile(*output, dataset); err != nil {
		log.Fatal().Err(err).Msg("Failed to write data file")
	}

	log.Info().
		Str("file", *output).
		Int("matches", dataset.Summary.TotalMatches).
		Dur("duration", time.Since(startTime)).
		Msg("Sync complete")
}
