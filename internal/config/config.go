package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Model aliases accepted from callers; explicit model ids pass through.
const (
	ModelFast     = "llama-3.1-8b-instant"
	ModelPowerful = "llama-3.1-70b-versatile"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	GroqAPIKey       string
	LLMModel         string
	LLMFallbackModel string
	LLMMaxTokens     int
	LLMTemperature   float64
	LLMTimeout       time.Duration
	LLMMaxRetries    int

	MaxPromptFieldChars int
	MaxUploadBytes      int64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		LLMModel:         getEnv("LLM_MODEL", ModelFast),
		LLMFallbackModel: getEnv("LLM_FALLBACK_MODEL", ModelFast),
		LLMMaxTokens:     getEnvInt("LLM_MAX_TOKENS", 2048),
		LLMTemperature:   getEnvFloat("LLM_TEMPERATURE", 0),
		LLMTimeout:       time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 45)) * time.Second,
		LLMMaxRetries:    getEnvInt("LLM_MAX_RETRIES", 2),

		MaxPromptFieldChars: getEnvInt("MAX_PROMPT_FIELD_CHARS", 12000),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),
	}
}

// ResolveModel maps caller-facing aliases to provider model ids.
func ResolveModel(requested, configured string) string {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "":
		return configured
	case "fast":
		return ModelFast
	case "powerful":
		return ModelPowerful
	default:
		return strings.TrimSpace(requested)
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "development", "dev", "local":
		return "dev"
	default:
		return "dev"
	}
}
