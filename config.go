package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Timeouts and limits
const (
	// ModelQueryTimeout bounds a single council/chairman gateway call
	ModelQueryTimeout = 120 * time.Second

	// TitleGenTimeout bounds the conversation title generation call
	TitleGenTimeout = 30 * time.Second

	// MaxRequestBodySize is the maximum allowed request body size (1MB)
	MaxRequestBodySize int64 = 1 << 20

	// ModelCacheTTL is the time-to-live for the model catalog cache
	ModelCacheTTL = 5 * time.Minute

	// URLFetchTimeout bounds a single fetch-url request
	URLFetchTimeout = 30 * time.Second
)

// DefaultCouncilModels is the council used when a run supplies none
var DefaultCouncilModels = []string{
	"openai/gpt-5.1",
	"google/gemini-3-pro-preview",
	"anthropic/claude-sonnet-4.5",
	"x-ai/grok-4",
}

// DefaultChairmanModel synthesizes the final response when a run supplies none
const DefaultChairmanModel = "google/gemini-3-pro-preview"

// DefaultTitleModel is a fast model used for conversation title generation
const DefaultTitleModel = "google/gemini-2.5-flash"

// Config holds all process configuration. It is built once in main and
// threaded through constructors; nothing reads the environment after startup.
type Config struct {
	OpenRouterAPIKey string
	OpenRouterAPIURL string
	ModelsAPIURL     string

	CouncilModels []string
	ChairmanModel string
	TitleModel    string

	DataDir      string
	DatabasePath string

	JWTSecret          string
	CORSAllowedOrigins []string
	Port               string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	// Load .env file - try multiple locations
	envLocations := []string{
		".env",    // Current directory
		"../.env", // Parent directory
	}

	envLoaded := false
	for _, envPath := range envLocations {
		absPath, err := filepath.Abs(envPath)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			if err := godotenv.Load(absPath); err == nil {
				log.Printf("Loaded .env from: %s", absPath)
				envLoaded = true
				break
			}
		}
	}

	if !envLoaded {
		log.Printf("Warning: .env file not found in any expected location")
	}

	cfg := &Config{
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterAPIURL: "https://openrouter.ai/api/v1/chat/completions",
		ModelsAPIURL:     "https://openrouter.ai/api/v1/models",
		CouncilModels:    DefaultCouncilModels,
		ChairmanModel:    DefaultChairmanModel,
		TitleModel:       DefaultTitleModel,
		DataDir:          "data/conversations",
		DatabasePath:     os.Getenv("DATABASE_PATH"),
		JWTSecret:        os.Getenv("JWT_SECRET_KEY"),
		Port:             "8001",
	}

	if cfg.OpenRouterAPIKey == "" {
		log.Fatal("OPENROUTER_API_KEY environment variable is required")
	}

	if models := os.Getenv("COUNCIL_MODELS"); models != "" {
		cfg.CouncilModels = splitAndTrim(models)
	}
	if chairman := os.Getenv("CHAIRMAN_MODEL"); chairman != "" {
		cfg.ChairmanModel = chairman
	}
	if title := os.Getenv("TITLE_MODEL"); title != "" {
		cfg.TitleModel = title
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		cfg.CORSAllowedOrigins = splitAndTrim(corsOrigins)
	}

	log.Println("Configuration loaded successfully")
	return cfg
}

// splitAndTrim splits a comma-separated env value into non-empty entries
func splitAndTrim(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// withDefaults resolves a per-run FrameworkConfig against the configured
// defaults. The returned value is what the orchestrator threads through a run.
func (cfg *Config) withDefaults(fc FrameworkConfig) FrameworkConfig {
	if fc.Framework == "" {
		fc.Framework = FrameworkStandard
	}
	if len(fc.CouncilModels) == 0 {
		fc.CouncilModels = cfg.CouncilModels
	}
	if fc.ChairmanModel == "" {
		fc.ChairmanModel = cfg.ChairmanModel
	}
	return fc
}
