package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is used when FREEDEV_API_URL is not set. It matches the
// default address of the local devapi server.
const DefaultAPIBaseURL = "http://localhost:8889/api"

// RequestTimeout is the fixed timeout applied to every outbound API request.
const RequestTimeout = 10 * time.Second

// Config holds the CLI configuration resolved from the environment
type Config struct {
	APIBaseURL string
}

// Load resolves the CLI configuration from environment variables.
// .env files are loaded first so local overrides work without exporting.
func Load() *Config {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	baseURL := os.Getenv("FREEDEV_API_URL")
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}

	return &Config{
		APIBaseURL: strings.TrimRight(baseURL, "/"),
	}
}
