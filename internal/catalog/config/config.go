package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	// SeedFile is a JSON or YAML catalog loaded into the in-memory stores
	// when no database is configured.
	SeedFile   string
	LogLevel   slog.Level
	CORSOrigin string
	Cache      CacheConfig
}

type CacheConfig struct {
	CanonicalTTL  time.Duration
	TeamCacheSize int
	TeamCacheTTL  time.Duration
}

// Load reads .env (if present), the process flags and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(os.Args[1:], os.Getenv)
}

// LoadFrom builds a Config from explicit arguments and an env lookup.
func LoadFrom(args []string, getenv func(string) string) (*Config, error) {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	port := fs.String("port", ":8080", "server port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPort := strings.TrimSpace(getenv("PORT")); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	level, err := parseLevel(getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}
	cache, err := loadCacheConfig(getenv)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:        *port,
		Env:         env,
		DatabaseURL: strings.TrimSpace(getenv("DATABASE_URL")),
		SeedFile:    strings.TrimSpace(getenv("CATALOG_SEED_FILE")),
		LogLevel:    level,
		CORSOrigin:  firstNonEmpty(strings.TrimSpace(getenv("CORS_ALLOWED_ORIGIN")), "*"),
		Cache:       cache,
	}, nil
}

// UsePostgres reports whether a database DSN was configured.
func (c *Config) UsePostgres() bool {
	return c != nil && c.DatabaseURL != ""
}

func loadCacheConfig(getenv func(string) string) (CacheConfig, error) {
	cfg := CacheConfig{
		CanonicalTTL:  30 * time.Second,
		TeamCacheSize: 256,
		TeamCacheTTL:  5 * time.Minute,
	}
	if raw := strings.TrimSpace(getenv("CANONICAL_CACHE_TTL")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return CacheConfig{}, fmt.Errorf("invalid CANONICAL_CACHE_TTL %q: %w", raw, err)
		}
		cfg.CanonicalTTL = d
	}
	if raw := strings.TrimSpace(getenv("TEAM_CACHE_TTL")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return CacheConfig{}, fmt.Errorf("invalid TEAM_CACHE_TTL %q", raw)
		}
		cfg.TeamCacheTTL = d
	}
	if raw := strings.TrimSpace(getenv("TEAM_CACHE_SIZE")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return CacheConfig{}, fmt.Errorf("invalid TEAM_CACHE_SIZE %q", raw)
		}
		cfg.TeamCacheSize = n
	}
	return cfg, nil
}

func parseLevel(raw string) (slog.Level, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
	}
	return level, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
