package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/roarlabs/clubgpt/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	question := flag.String("question", "", "Question about the club's match data")
	flag.Parse()

	// Positional form: clubgpt "What was our best xG match?"
	if *question == "" && flag.NArg() > 0 {
		*question = strings.Join(flag.Args(), " ")
	}
	if *question == "" {
		fmt.Fprintln(os.Stderr, "Usage: clubgpt -question 'Your question here'")
		fmt.Fprintln(os.Stderr, "\nExample questions:")
		fmt.Fprintln(os.Stderr, "  - What was our best xG match?")
		fmt.Fprintln(os.Stderr, "  - How do we perform at home vs away?")
		fmt.Fprintln(os.Stderr, "  - What's our pressing profile?")
		os.Exit(1)
	}

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	envCfg := setup.LoadEnvConfig()
	deps, err := setup.Wire(ctx, envCfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	result, err := deps.Engine.Answer(ctx, *question)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to answer question")
	}

	fmt.Printf("Q: %s\n\n%s\n", result.Question, result.Answer)
	if len(result.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(result.Sources, ", "))
	}
}
