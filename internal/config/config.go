package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSheetName is the spreadsheet the survey appends to unless SHEET_NAME says otherwise
const DefaultSheetName = "SST_Responses"

// Config holds application configuration
type Config struct {
	ServerPort      string
	LogMode         string
	StaticFilesPath string
	CatalogPath     string

	// Response store
	StoreBackend          string
	SheetName             string
	GoogleCredentialsJSON string
	GoogleCredentialsFile string
	DatabasePath          string
	DatabaseURL           string
	MongoURI              string
	MongoDatabase         string

	// Participant sessions
	SessionBackend  string
	SessionDuration time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// Security
	CSRFSecret        string
	AdminPasswordHash string
	AdminTokenSecret  string
	AdminTokenTTL     time.Duration
	RateLimit         int
	RateLimitWindow   time.Duration

	// Completion notifications
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	NotifyEmail  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		LogMode:         getEnv("LOG_MODE", "development"),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		CatalogPath:     getEnv("CATALOG_PATH", ""),

		StoreBackend:          strings.ToLower(getEnv("STORE_BACKEND", "sheets")),
		SheetName:             getEnv("SHEET_NAME", DefaultSheetName),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		DatabasePath:          getEnv("DB_PATH", "./sst_responses.db"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		MongoURI:              getEnv("MONGO_URI", ""),
		MongoDatabase:         getEnv("MONGO_DATABASE", "sst"),

		SessionBackend:  strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		SessionDuration: getEnvDuration("SESSION_DURATION", 6*time.Hour),
		RedisAddr:       strings.TrimPrefix(getEnv("REDIS_ADDR", "localhost:6379"), "redis://"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),

		CSRFSecret:        getEnv("CSRF_SECRET", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		AdminTokenSecret:  getEnv("ADMIN_TOKEN_SECRET", ""),
		AdminTokenTTL:     getEnvDuration("ADMIN_TOKEN_TTL", 8*time.Hour),
		RateLimit:         getEnvInt("RATE_LIMIT", 60),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Short Story Task"),
		NotifyEmail:  getEnv("NOTIFY_EMAIL", ""),
	}
}

// SharedSessions reports whether participant sessions may be served by
// more than one process
func (c *Config) SharedSessions() bool {
	return c.SessionBackend == "redis"
}

// UnsharedSecrets lists the signing secrets left empty while sessions are
// shared. Each process then signs with its own random key, so tokens issued
// by one replica are rejected by the others.
func (c *Config) UnsharedSecrets() []string {
	if !c.SharedSessions() {
		return nil
	}
	var missing []string
	if c.CSRFSecret == "" {
		missing = append(missing, "CSRF_SECRET")
	}
	if c.AdminPasswordHash != "" && c.AdminTokenSecret == "" {
		missing = append(missing, "ADMIN_TOKEN_SECRET")
	}
	return missing
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
