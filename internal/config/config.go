package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration (admin API)
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// AI configuration
	AIApiKey      string  `json:"ai_api_key" validate:"required"`
	AIModel       string  `json:"ai_model"`
	AIBaseURL     string  `json:"ai_base_url" validate:"url"`
	AITimeout     int     `json:"ai_timeout"`
	AIMaxTokens   int     `json:"ai_max_tokens"`
	AITemperature float64 `json:"ai_temperature"`

	// WordPress configuration
	WPSiteURL     string `json:"wp_site_url" validate:"required,url"`
	WPUsername    string `json:"wp_username" validate:"required"`
	WPAppPassword string `json:"wp_app_password" validate:"required"`
	AutoPublish   bool   `json:"auto_publish"`

	// Category table: "Name:id,Name:id", plus the id used when
	// classification fails or matches nothing.
	Categories        map[string]int `json:"categories"`
	DefaultCategoryID int            `json:"default_category_id"`

	// Topic store
	ThemesFile     string `json:"themes_file"`
	MinTopicBuffer int    `json:"min_topic_buffer"`
	TopicBatchSize int    `json:"topic_batch_size"`

	// Related content
	MaxRelatedLinks int `json:"max_related_links"`

	// Stock images (optional)
	UnsplashAccessKey          string `json:"unsplash_access_key"`
	ShutterstockConsumerKey    string `json:"shutterstock_consumer_key"`
	ShutterstockConsumerSecret string `json:"shutterstock_consumer_secret"`
	ShutterstockAccessToken    string `json:"shutterstock_access_token"`
	FallbackImageKeyword       string `json:"fallback_image_keyword"`

	// Redis configuration (optional, caches the published-post list)
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`
	CacheTTL    time.Duration `json:"cache_ttl"`

	// CloudFlare R2 configuration (optional article archive)
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`

	// Archive
	ArchivePath string `json:"archive_path"`

	// Logging
	LogLevel string `json:"log_level"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// AI configuration
		AIApiKey:      getEnv("CLAUDE_API_KEY", ""),
		AIModel:       getEnv("AI_MODEL", "claude-3-5-sonnet-20241022"),
		AIBaseURL:     getEnv("AI_BASE_URL", "https://api.anthropic.com"),
		AITimeout:     getEnvAsInt("AI_TIMEOUT", 120),
		AIMaxTokens:   getEnvAsInt("AI_MAX_TOKENS", 4000),
		AITemperature: getEnvAsFloat("AI_TEMPERATURE", 0.7),

		// WordPress configuration
		WPSiteURL:     getEnv("WP_SITE_URL", ""),
		WPUsername:    getEnv("WP_USERNAME", ""),
		WPAppPassword: getEnv("WP_APP_PASSWORD", ""),
		AutoPublish:   getEnv("AUTO_PUBLISH", "0") == "1",

		Categories:        parseCategories(getEnv("WP_CATEGORIES", "")),
		DefaultCategoryID: getEnvAsInt("WP_DEFAULT_CATEGORY", 1),

		// Topic store
		ThemesFile:     getEnv("THEMES_FILE", "data/themes.json"),
		MinTopicBuffer: getEnvAsInt("MIN_TOPIC_BUFFER", 2),
		TopicBatchSize: getEnvAsInt("TOPIC_BATCH_SIZE", 5),

		// Related content
		MaxRelatedLinks: getEnvAsInt("MAX_RELATED_LINKS", 3),

		// Stock images
		UnsplashAccessKey:          getEnv("UNSPLASH_ACCESS_KEY", ""),
		ShutterstockConsumerKey:    getEnv("SHUTTERSTOCK_CONSUMER_KEY", ""),
		ShutterstockConsumerSecret: getEnv("SHUTTERSTOCK_CONSUMER_SECRET", ""),
		ShutterstockAccessToken:    getEnv("SHUTTERSTOCK_ACCESS_TOKEN", ""),
		FallbackImageKeyword:       getEnv("FALLBACK_IMAGE_KEYWORD", "music production"),

		// Redis configuration
		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "autopress:"),
		CacheTTL:    getEnvAsDuration("CACHE_TTL", time.Hour),

		// CloudFlare R2 configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "autopress"),

		// Archive
		ArchivePath: getEnv("ARCHIVE_PATH", "./data/archive"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Security
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// parseCategories parses the "Name:id,Name:id" category table. Malformed
// entries are skipped with a warning so one typo does not take the whole
// run down.
func parseCategories(raw string) map[string]int {
	categories := make(map[string]int)
	if raw == "" {
		return categories
	}

	for _, pair := range strings.Split(raw, ",") {
		name, idStr, found := strings.Cut(pair, ":")
		if !found {
			log.Printf("Invalid category entry %q, expected Name:id", pair)
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(idStr))
		if err != nil {
			log.Printf("Invalid category id in %q: %v", pair, err)
			continue
		}
		categories[strings.TrimSpace(name)] = id
	}

	return categories
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %g", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
