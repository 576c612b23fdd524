package main

import (
	"crypto/rand"
	"encoding/hex"
	"os"

	"github.com/joho/godotenv"

	"github.com/freedevconnect/freedev/internal/devapi"
	"github.com/freedevconnect/freedev/internal/logger"
)

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// Load .env file if present (ignore errors - file is optional)
	_ = godotenv.Load()

	logger.Init(envOr("LOG_LEVEL", "info"), envOr("LOG_FORMAT", "json"))
	log := logger.GetLogger()

	secret := os.Getenv("FREEDEV_JWT_SECRET")
	if secret == "" {
		// Ephemeral secret: fine for local development, tokens die with the process
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			log.Fatal().Err(err).Msg("Failed to generate JWT secret")
		}
		secret = hex.EncodeToString(buf)
		log.Warn().Msg("FREEDEV_JWT_SECRET not set, using an ephemeral secret")
	}

	cfg := devapi.Config{
		Addr:        envOr("FREEDEV_DEVAPI_ADDR", ":8889"),
		DatabaseURL: envOr("DATABASE_URL", "freedev.sqlite"),
		JWTSecret:   secret,
	}

	srv, err := devapi.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	if err := srv.Start(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
