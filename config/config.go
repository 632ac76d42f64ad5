package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Game     GameConfig     `mapstructure:"game"`
	Features FeatureConfig  `mapstructure:"features"`
	Security SecurityConfig `mapstructure:"security"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Debug           bool          `mapstructure:"debug"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
	SnapshotTTL     time.Duration `mapstructure:"snapshot_ttl"`
}

type CatalogConfig struct {
	// Path to a JSON or YAML bundle. Empty means the embedded default.
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

type GameConfig struct {
	// Timezone names the IANA zone whose calendar days drive streaks,
	// daily goals and the heatmap.
	Timezone string `mapstructure:"timezone"`
}

type FeatureConfig struct {
	StreakBonus     bool `mapstructure:"streak_bonus"`
	LearningHeatmap bool `mapstructure:"learning_heatmap"`
	BadgeSystem     bool `mapstructure:"badge_system"`
}

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	// AllowedOrigins lists the origins permitted on the event stream.
	// An empty slice allows all origins (useful for local development only).
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// JobsConfig schedules the periodic maintenance jobs. A zero interval
// disables the job.
type JobsConfig struct {
	LeaderboardRefresh time.Duration `mapstructure:"leaderboard_refresh"`
	AuditPurge         time.Duration `mapstructure:"audit_purge"`
	AuditRetention     time.Duration `mapstructure:"audit_retention"`
}

// Location resolves the configured timezone.
func (g GameConfig) Location() (*time.Location, error) {
	if g.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return nil, fmt.Errorf("game.timezone: %w", err)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/learnquest.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("cache.snapshot_ttl", "10m")
	v.SetDefault("catalog.watch", false)
	v.SetDefault("game.timezone", "UTC")
	v.SetDefault("features.streak_bonus", true)
	v.SetDefault("features.learning_heatmap", true)
	v.SetDefault("features.badge_system", true)
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("jobs.leaderboard_refresh", "5m")
	v.SetDefault("jobs.audit_purge", "1h")
	v.SetDefault("jobs.audit_retention", "720h")
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Unmarshalling built-in defaults cannot fail.
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load reads config from the given YAML file path. Every key can be
// overridden by an environment variable such as LEARNQUEST_SERVER_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("learnquest")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Game.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}
