package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported values for DATABASE_DRIVER
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverLibSQL   = "libsql"
)

// Config holds all application configuration
type Config struct {
	// Riot API
	RiotAPIKey    string        `envconfig:"RIOT_API_KEY" required:"true"`
	RiotRegionURL string        `envconfig:"RIOT_REGION_URL" default:"https://europe.api.riotgames.com"`
	RiotTimeout   time.Duration `envconfig:"RIOT_TIMEOUT" default:"30s"`

	// Data Dragon (static champion data)
	DDragonBaseURL string `envconfig:"DDRAGON_BASE_URL" default:"https://ddragon.leagueoflegends.com/cdn"`
	DDragonVersion string `envconfig:"DDRAGON_VERSION" default:"15.17.1"`
	TFTSetPrefix   string `envconfig:"TFT_SET_PREFIX" default:"TFT15"`

	// Database
	DatabaseDriver   string `envconfig:"DATABASE_DRIVER" default:"postgres"`
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"tft"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"tft_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" default:""`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`
	SQLitePath       string `envconfig:"SQLITE_PATH" default:"tft.db"`
	TursoURL         string `envconfig:"TURSO_URL" default:""`
	TursoAuthToken   string `envconfig:"TURSO_AUTH_TOKEN" default:""`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Caching TTL (in seconds)
	CacheTTLChampionCosts int `envconfig:"CACHE_TTL_CHAMPION_COSTS" default:"86400"` // 24 hours

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Sync
	SyncMaxMatches int           `envconfig:"SYNC_MAX_MATCHES" default:"20"`
	SyncBatchSize  int           `envconfig:"SYNC_BATCH_SIZE" default:"20"`
	SyncBatchDelay time.Duration `envconfig:"SYNC_BATCH_DELAY" default:"2s"`

	// Worker
	TrackedPlayers     []string `envconfig:"TRACKED_PLAYERS" default:""`
	SyncCron           string   `envconfig:"SYNC_CRON" default:"0 */6 * * *"`
	InitialSyncEnabled bool     `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`
	MetricsPort        int      `envconfig:"METRICS_PORT" default:"9090"`
}

// RiotID identifies a player by game name and tag line
type RiotID struct {
	Name string
	Tag  string
}

func (r RiotID) String() string {
	return r.Name + "#" + r.Tag
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.RiotAPIKey == "" {
		return fmt.Errorf("RIOT_API_KEY is required")
	}

	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabasePassword == "" {
			return fmt.Errorf("DATABASE_PASSWORD is required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverLibSQL:
		if c.TursoURL == "" {
			return fmt.Errorf("TURSO_URL is required for the libsql driver")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.SyncMaxMatches < 1 {
		return fmt.Errorf("SYNC_MAX_MATCHES must be positive")
	}
	if c.SyncBatchSize < 1 {
		return fmt.Errorf("SYNC_BATCH_SIZE must be positive")
	}

	if _, err := c.Players(); err != nil {
		return err
	}

	return nil
}

// Players parses TRACKED_PLAYERS entries of the form name#tag
func (c *Config) Players() ([]RiotID, error) {
	var ids []RiotID
	for _, entry := range c.TrackedPlayers {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, err := ParseRiotID(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid TRACKED_PLAYERS entry: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseRiotID splits "name#tag" into its parts
func ParseRiotID(s string) (RiotID, error) {
	name, tag, ok := strings.Cut(s, "#")
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	if !ok || name == "" || tag == "" {
		return RiotID{}, fmt.Errorf("%q is not of the form name#tag", s)
	}
	return RiotID{Name: name, Tag: tag}, nil
}

// CacheTTL returns the champion cost cache TTL
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLChampionCosts) * time.Second
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
