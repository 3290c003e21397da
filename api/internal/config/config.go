package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the cipher API.
type Config struct {
	Environment    string // "development" or "production"
	Port           string
	GRPCPort       string // empty disables the gRPC health server
	AllowedOrigins []string

	// Optional bearer-token protection of /api/v1
	JWTSecret string

	Engine

	// Gateway limits
	RateLimitRPS     float64
	RateLimitBurst   int
	RequestTimeout   time.Duration
	BatchConcurrency int
	MaxBatchSize     int
}

// Engine holds the settings shared by the API and the CLI.
type Engine struct {
	MaxInputLength int
	MaxColumns     int
	DefaultShift   int
}

// LoadEngine reads only the engine guards. It never exits, so the CLI can
// run without the server's production secrets.
func LoadEngine() Engine {
	_ = godotenv.Load()

	return Engine{
		MaxInputLength: getPositiveInt("MAX_INPUT_LENGTH", 4096),
		MaxColumns:     getPositiveInt("MAX_COLUMNS", 256),
		DefaultShift:   getInt("CAESAR_DEFAULT_SHIFT", 3),
	}
}

// Load reads an optional .env file, then the environment, and applies
// sensible defaults.
func Load() *Config {
	_ = godotenv.Load()

	env := getEnv("CIFRA_ENV", "production")

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" && env == "production" {
		log.Fatal("[FATAL] JWT_SECRET environment variable is required in production.")
	}
	if jwtSecret != "" && len(jwtSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters long.")
	}

	corsOrigins := getEnv("CORS_ALLOWED_ORIGINS", "")
	if corsOrigins == "" {
		if env == "production" {
			log.Fatal("[FATAL] CORS_ALLOWED_ORIGINS environment variable is required in production.")
		}
		corsOrigins = "http://localhost:5173"
	}

	return &Config{
		Environment:    env,
		Port:           getEnv("PORT", "8080"),
		GRPCPort:       getEnv("GRPC_PORT", "9090"),
		AllowedOrigins: splitList(corsOrigins),
		JWTSecret:      jwtSecret,
		Engine:         LoadEngine(),

		RateLimitRPS:     getPositiveFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:   getPositiveInt("RATE_LIMIT_BURST", 30),
		RequestTimeout:   getDuration("REQUEST_TIMEOUT", 15*time.Second),
		BatchConcurrency: getPositiveInt("BATCH_CONCURRENCY", 8),
		MaxBatchSize:     getPositiveInt("MAX_BATCH_SIZE", 64),
	}
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("[WARN] %s=%q is not an integer, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getPositiveInt(key string, fallback int) int {
	v := getInt(key, fallback)
	if v < 1 {
		log.Printf("[WARN] %s must be positive, using %d", key, fallback)
		return fallback
	}
	return v
}

func getPositiveFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v <= 0 {
		log.Printf("[WARN] %s=%q is not a positive number, using %g", key, raw, fallback)
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		log.Printf("[WARN] %s=%q is not a positive duration, using %s", key, raw, fallback)
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
