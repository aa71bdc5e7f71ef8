package dashboard

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration, sourced from the environment
// with an optional .env file.
type Config struct {
	ListenAddr      string
	UpstreamBaseURL string
	APIKey          string
	SnapshotPath    string
	CatalogManifest string
	CacheTTL        time.Duration
	CacheMaxEntries int
	ChartCacheTTL   time.Duration
	SeedOnEmpty     bool
	LogLevel        string
}

// LoadConfig reads the environment, merging in a .env file when present.
// The upstream API key has no default and must be provided.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:      getEnv("FINBOARD_LISTEN_ADDR", ":8080"),
		UpstreamBaseURL: getEnv("FINBOARD_UPSTREAM_URL", DefaultUpstreamBaseURL),
		APIKey:          getEnv("FINBOARD_API_KEY", ""),
		SnapshotPath:    getEnv("FINBOARD_SNAPSHOT_PATH", DefaultSnapshotPath),
		CatalogManifest: getEnv("FINBOARD_CATALOG_MANIFEST", ""),
		CacheTTL:        time.Duration(getEnvAsInt("FINBOARD_CACHE_TTL_SECONDS", 30)) * time.Second,
		CacheMaxEntries: getEnvAsInt("FINBOARD_CACHE_MAX_ENTRIES", DefaultDataMaxEntries),
		ChartCacheTTL:   time.Duration(getEnvAsInt("FINBOARD_CHART_CACHE_TTL_SECONDS", 30)) * time.Second,
		SeedOnEmpty:     getEnvAsBool("FINBOARD_SEED_ON_EMPTY", false),
		LogLevel:        getEnv("FINBOARD_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
