package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	LogLevel  string
	LogFormat string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	ProviderBaseURL string
	ProviderAPIKey  string
	ProviderTimeout time.Duration

	TranslatorBaseURL string
	TranslatorAPIKey  string
	TranslatorModel   string
	TranslatorTimeout time.Duration

	// RedisAddr enables the translation cache when non-empty.
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// Languages are the materialization targets; BaselineLanguage is the
	// language the provider record is fetched in.
	Languages        []string
	BaselineLanguage string

	SnapshotMaxEntries   int
	SnapshotClearOnEmpty bool

	MaxConcurrentEntities int
	IncludeReviews        bool

	WorklistPath string

	RunImport       bool
	RunDiscovery    bool
	RunCategorySync bool
	RunEnrichment   bool
	RunBackfill     bool
	ForceBackfill   bool
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "placesync"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "placesync"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		ProviderBaseURL: getenv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		ProviderAPIKey:  getenv("PLACES_API_KEY", ""),
		ProviderTimeout: getenvDuration("PLACES_TIMEOUT", 60*time.Second),

		TranslatorBaseURL: getenv("TRANSLATOR_BASE_URL", "https://api.openai.com/v1"),
		TranslatorAPIKey:  getenv("TRANSLATOR_API_KEY", ""),
		TranslatorModel:   getenv("TRANSLATOR_MODEL", "gpt-4o"),
		TranslatorTimeout: getenvDuration("TRANSLATOR_TIMEOUT", 60*time.Second),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		CacheTTL:      getenvDuration("TRANSLATION_CACHE_TTL", 720*time.Hour),

		Languages:        getenvList("LANGUAGES", []string{"de", "en", "it", "fr", "hr"}),
		BaselineLanguage: getenv("BASELINE_LANGUAGE", "en"),

		SnapshotMaxEntries:   getenvInt("SNAPSHOT_MAX_ENTRIES", 10),
		SnapshotClearOnEmpty: getenvBool("SNAPSHOT_CLEAR_ON_EMPTY", false),

		MaxConcurrentEntities: getenvInt("MAX_CONCURRENT_ENTITIES", 4),
		IncludeReviews:        getenvBool("INCLUDE_REVIEWS", false),

		WorklistPath: getenv("WORKLIST_PATH", "data/place_ids.json"),

		RunImport:       getenvBool("RUN_IMPORT", false),
		RunDiscovery:    getenvBool("RUN_DISCOVERY", true),
		RunCategorySync: getenvBool("RUN_CATEGORY_SYNC", true),
		RunEnrichment:   getenvBool("RUN_ENRICHMENT", true),
		RunBackfill:     getenvBool("RUN_BACKFILL", false),
		ForceBackfill:   getenvBool("FORCE_BACKFILL", false),
	}
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvList(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return def
	}
	return out
}
