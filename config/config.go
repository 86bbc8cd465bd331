package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	FrontendURL string
	// Supabase (auth + data)
	SupabaseUrl       string
	SupabaseKey       string
	SupabaseJWTSecret string
	DBUrl             string // Optional direct Postgres access for profile reads
	// Paystack
	PaystackBaseURL string
	// SMTP Configuration
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Browser sessions
	SessionIdleMinutes int
	CookieSecure       bool
	// Rate Limiting Configuration
	RateLimitWindowSeconds int
	RateLimitGatewayLimit  int
	RateLimitSignInLimit   int
	RateLimitGlobalLimit   int
}

func LoadConfig() (*Config, error) {
	// Load .env file (only effective locally; ignored in production when absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Strip trailing slash to avoid double slashes (e.g. .co//auth)
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", getEnv("NEXT_PUBLIC_SUPABASE_URL", "")), "/"),
		SupabaseKey:       getEnv("SUPABASE_KEY", getEnv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "")),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		DBUrl:             getEnv("DATABASE_URL", ""),
		PaystackBaseURL:   strings.TrimRight(getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"), "/"),
		// SMTP Configuration
		SMTPHost:     getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		SessionIdleMinutes:   getEnvInt("SESSION_IDLE_MINUTES", 30),
		CookieSecure:         getEnvBool("COOKIE_SECURE", os.Getenv("GIN_MODE") == "release"),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGatewayLimit:  getEnvInt("RATE_LIMIT_GATEWAY_THRESHOLD", 30),
		RateLimitSignInLimit:   getEnvInt("RATE_LIMIT_SIGNIN_THRESHOLD", 10),
		RateLimitGlobalLimit:   getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 300),
	}

	if cfg.SupabaseUrl == "" || cfg.SupabaseKey == "" {
		log.Println("WARNING: SUPABASE_URL or SUPABASE_KEY is missing. Sign-in and profiles will be unavailable.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Sessions and rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// PaystackSecretKey is read at request time so a missing key surfaces as a
// per-request configuration error instead of a startup failure.
func PaystackSecretKey() string {
	return getEnv("PAYSTACK_SECRET_KEY", "")
}

// EmailFrom returns the sender address for transactional email, read at request time.
func EmailFrom() string {
	return getEnv("EMAIL_FROM", "")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
