package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/joho/godotenv"
	"github.com/roarlabs/clubgpt/internal/api"
	"github.com/roarlabs/clubgpt/internal/api/middleware"
	"github.com/roarlabs/clubgpt/internal/setup"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx := context.Background()

	envCfg := setup.LoadEnvConfig()
	deps, err := setup.Wire(ctx, envCfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	// API
	handler := api.NewHandler(deps.Engine, deps.Store, &logger)
	container := restful.NewContainer()
	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, handler)
	api.RegisterOpenAPI(container)

	// CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	// Server
	port := os.Getenv("CLUBGPT_API_PORT")
	if port == "" {
		port = "18090"
	}

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("address", addr).Msg("Starting ClubGPT API")

	server := http.Server{
		Addr:    addr,
		Handler: corsHandler.Handler(container),
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
