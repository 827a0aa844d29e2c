package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hll-crcon/stats-hooks/internal/locale"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Auth
	HookToken string

	// Host API
	CRCONURL     string
	CRCONAPIKey  string
	CRCONTimeout time.Duration

	// Database URLs
	PostgresURL   string
	ClickHouseURL string
	RedisURL      string

	// Worker pool
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	JobTimeout    time.Duration

	// Messages
	Lang          locale.Lang
	LocaleFile    string
	DurationWeeks bool

	// All-time stats hook
	StatsCommands    []string
	DisplayOnConnect bool

	// Tops hook
	TopsCommands        []string
	TopsOnMatchEnd      bool
	OffenseDefenseRatio float64
	CombatSupportRatio  float64
	TopPlayerLimit      int
	TopSquadLimit       int

	// VIP rewards
	VIPEnabled   bool
	VIPWinners   int
	VIPHours     int
	VIPSeedLimit int
	VIPNote      string

	CommandCooldown time.Duration
}

// Production reports whether the service runs with production settings.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables, after merging the
// given .env files (or ./.env when none is given). Missing files are ignored.
// It returns an error if critical configuration is missing.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		CRCONTimeout: getEnvDuration("CRCON_TIMEOUT", 10*time.Second),

		ClickHouseURL: getEnv("CLICKHOUSE_URL", ""),
		RedisURL:      getEnv("REDIS_URL", ""),

		WorkerCount:   getEnvInt("WORKER_COUNT", 4),
		QueueSize:     getEnvInt("QUEUE_SIZE", 1000),
		BatchSize:     getEnvInt("BATCH_SIZE", 100),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 5*time.Second),
		JobTimeout:    getEnvDuration("JOB_TIMEOUT", 30*time.Second),

		LocaleFile:    getEnv("LOCALE_FILE", ""),
		DurationWeeks: getEnvBool("DURATION_WEEKS", false),

		StatsCommands:    getEnvList("STATS_CHAT_COMMANDS", "!me"),
		DisplayOnConnect: getEnvBool("DISPLAY_ON_CONNECT", true),

		TopsCommands:        getEnvList("TOPS_CHAT_COMMANDS", "!top,!tops"),
		TopsOnMatchEnd:      getEnvBool("TOPS_ON_MATCH_END", true),
		OffenseDefenseRatio: getEnvFloat("OFFENSE_DEFENSE_RATIO", 0.5),
		CombatSupportRatio:  getEnvFloat("COMBAT_SUPPORT_RATIO", 0.5),
		TopPlayerLimit:      getEnvInt("TOP_PLAYER_LIMIT", 3),
		TopSquadLimit:       getEnvInt("TOP_SQUAD_LIMIT", 2),

		VIPEnabled:   getEnvBool("VIP_ENABLED", false),
		VIPWinners:   getEnvInt("VIP_WINNERS", 1),
		VIPHours:     getEnvInt("VIP_HOURS", 24),
		VIPSeedLimit: getEnvInt("VIP_SEED_LIMIT", 40),
		VIPNote:      getEnv("VIP_NOTE", "tops reward"),

		CommandCooldown: getEnvDuration("COMMAND_COOLDOWN", 30*time.Second),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", "http://localhost:8010"),
	}

	lang, err := locale.ParseLang(getEnv("LANG_CODE", "en"))
	if err != nil {
		return nil, err
	}
	cfg.Lang = lang

	// Critical configuration - fail if missing
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}
	if cfg.CRCONURL, err = getEnvRequired("CRCON_URL"); err != nil {
		return nil, err
	}
	if cfg.CRCONAPIKey, err = getEnvRequired("CRCON_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.HookToken, err = getEnvRequired("HOOK_TOKEN"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, fallback), ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
