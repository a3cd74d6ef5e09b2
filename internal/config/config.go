package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	MigrationsPath string

	// Local store (SQLite) holding the authoritative in-session state
	LocalDBPath string

	// Remote store the sync engine reconciles against
	RemoteDBType string // "postgres", "mysql" or "" to disable sync
	RemoteDBURL  string

	// Auth
	JWTSecret     string
	TokenDuration time.Duration

	// Google sign-in
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	// AI generation and speech
	OpenAIKey   string
	OpenAIModel string
	TTSVoice    string

	// Audio cache capacity in bytes
	AudioCacheCapacity int64

	// Reminder emails (disabled when FromEmail is empty)
	AWSRegion        string
	ReminderFrom     string
	ReminderFromName string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:         getEnv("PORT", "8080"),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", "./migrations"),
		LocalDBPath:        getEnv("LOCAL_DB_PATH", "./wordtrail.db"),
		RemoteDBType:       getEnv("REMOTE_DB_TYPE", ""),
		RemoteDBURL:        getEnv("REMOTE_DB_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenDuration:      24 * time.Hour,
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", ""),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		TTSVoice:           getEnv("TTS_VOICE", "alloy"),
		AudioCacheCapacity: getEnvInt64("AUDIO_CACHE_CAPACITY", 50*1024*1024),
		AWSRegion:          getEnv("AWS_REGION", "eu-west-1"),
		ReminderFrom:       getEnv("SES_FROM_EMAIL", ""),
		ReminderFromName:   getEnv("SES_FROM_NAME", "Wordtrail"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt64 reads an integer environment variable or returns a default value
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
