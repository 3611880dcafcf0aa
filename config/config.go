package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string
	Debug       bool
	LogLevel    string
	LogFormat   string
	CORSOrigins []string
	SiteURL     string // public front end, used in social post links

	// Data backend
	DatabaseURL string // postgres://..., sqlite://path or memory://
	RedisURL    string

	// Google Cloud
	ProjectID string
	Location  string

	// Gemini Model
	GeminiModel            string
	EnableAIClassification bool

	// Authentication
	JWTSecret      string
	JWTExpiryHours int
	GoogleClientID string
	AdminEmail     string
	AdminPassword  string

	// Cloud Storage
	LogoBucketName string

	// Google Analytics 4
	GA4PropertyID      string
	GA4CredentialsFile string

	// External job sources
	RapidAPIKey          string
	AdzunaAppID          string
	AdzunaAppKey         string
	AdzunaCountry        string
	GithubJobsURL        string
	StackOverflowJobsURL string
	StartupJobsURL       string
	RemotiveURL          string

	// Timeouts and caching
	HTTPTimeoutSeconds      int
	ExternalCacheTTLMinutes int
	WarmQueries             []string
	WarmSchedule            string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SITE_URL", "http://localhost:3000")

	v.SetDefault("DATABASE_URL", "memory://")
	v.SetDefault("REDIS_URL", "")

	v.SetDefault("LOCATION", "us-central1")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("ENABLE_AI_CLASSIFICATION", false)

	v.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)

	v.SetDefault("ADZUNA_COUNTRY", "gb")
	v.SetDefault("GITHUB_JOBS_URL", "https://jobs.github.com/positions.json")
	v.SetDefault("STACKOVERFLOW_JOBS_URL", "https://stackoverflow.com/jobs/feed")
	v.SetDefault("STARTUP_JOBS_URL", "https://startup.jobs/api/jobs")
	v.SetDefault("REMOTIVE_URL", "https://remotive.com/api/remote-jobs")

	v.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	v.SetDefault("EXTERNAL_CACHE_TTL_MINUTES", 30)
	v.SetDefault("WARM_QUERIES", "")
	v.SetDefault("WARM_SCHEDULE", "@every 1h")
}

// Load loads configuration from environment variables
func Load() *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		// Server
		Port:        v.GetString("PORT"),
		Debug:       v.GetBool("DEBUG"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		SiteURL:     strings.TrimRight(v.GetString("SITE_URL"), "/"),

		// Data backend
		DatabaseURL: v.GetString("DATABASE_URL"),
		RedisURL:    v.GetString("REDIS_URL"),

		// Google Cloud
		ProjectID: v.GetString("PROJECT_ID"),
		Location:  v.GetString("LOCATION"),

		// Gemini Model
		GeminiModel:            v.GetString("GEMINI_MODEL"),
		EnableAIClassification: v.GetBool("ENABLE_AI_CLASSIFICATION"),

		// Authentication
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		GoogleClientID: v.GetString("GOOGLE_CLIENT_ID"),
		AdminEmail:     v.GetString("ADMIN_EMAIL"),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),

		// Cloud Storage
		LogoBucketName: v.GetString("LOGO_BUCKET_NAME"),

		// Google Analytics 4
		GA4PropertyID:      v.GetString("GA4_PROPERTY_ID"),
		GA4CredentialsFile: v.GetString("GA4_CREDENTIALS_FILE"),

		// External job sources
		RapidAPIKey:          v.GetString("RAPIDAPI_KEY"),
		AdzunaAppID:          v.GetString("ADZUNA_APP_ID"),
		AdzunaAppKey:         v.GetString("ADZUNA_APP_KEY"),
		AdzunaCountry:        v.GetString("ADZUNA_COUNTRY"),
		GithubJobsURL:        v.GetString("GITHUB_JOBS_URL"),
		StackOverflowJobsURL: v.GetString("STACKOVERFLOW_JOBS_URL"),
		StartupJobsURL:       v.GetString("STARTUP_JOBS_URL"),
		RemotiveURL:          v.GetString("REMOTIVE_URL"),

		// Timeouts and caching
		HTTPTimeoutSeconds:      v.GetInt("HTTP_TIMEOUT_SECONDS"),
		ExternalCacheTTLMinutes: v.GetInt("EXTERNAL_CACHE_TTL_MINUTES"),
		WarmQueries:             splitList(v.GetString("WARM_QUERIES")),
		WarmSchedule:            v.GetString("WARM_SCHEDULE"),
	}

	return cfg
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return &ConfigError{Field: "DATABASE_URL", Message: "DATABASE_URL is required"}
	}
	if !strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") &&
		!strings.HasPrefix(c.DatabaseURL, "sqlite://") &&
		!strings.HasPrefix(c.DatabaseURL, "memory://") {
		return &ConfigError{Field: "DATABASE_URL", Message: "DATABASE_URL must be a postgres://, sqlite:// or memory:// URL"}
	}

	if !c.Debug && c.JWTSecret == "your-secret-key-change-in-production" {
		return &ConfigError{Field: "JWT_SECRET", Message: "JWT_SECRET must be set outside debug mode"}
	}
	if c.JWTExpiryHours <= 0 {
		return &ConfigError{Field: "JWT_EXPIRY_HOURS", Message: "JWT_EXPIRY_HOURS must be positive"}
	}

	// Gemini classification runs on Vertex AI
	if c.EnableAIClassification && c.ProjectID == "" {
		return &ConfigError{Field: "PROJECT_ID", Message: "PROJECT_ID is required when ENABLE_AI_CLASSIFICATION is on"}
	}

	if (c.AdzunaAppID == "") != (c.AdzunaAppKey == "") {
		return &ConfigError{Field: "ADZUNA_APP_KEY", Message: "ADZUNA_APP_ID and ADZUNA_APP_KEY must be set together"}
	}

	return nil
}

// HTTPTimeout is HTTPTimeoutSeconds as a duration
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// ExternalCacheTTL is ExternalCacheTTLMinutes as a duration
func (c *Config) ExternalCacheTTL() time.Duration {
	return time.Duration(c.ExternalCacheTTLMinutes) * time.Minute
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Helper functions

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
