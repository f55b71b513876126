package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	YouTube  YouTubeConfig
	Cache    CacheConfig
	Retry    RetryConfig
	Guide    GuideConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
}

// StoreConfig selects the channel persistence backend.
// "file" keeps all channel records in a single JSON document, "postgres"
// uses the relational store.
type StoreConfig struct {
	Backend  string `envconfig:"STORE_BACKEND" default:"file"`
	DataFile string `envconfig:"STORE_DATA_FILE" default:"data/channels.json"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"tvcast"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"tvcast"`
	DBName   string `envconfig:"POSTGRES_DB" default:"tvcast"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type YouTubeConfig struct {
	APIKey  string        `envconfig:"YT_API_KEY" required:"true"`
	BaseURL string        `envconfig:"YT_BASE_URL" default:"https://www.googleapis.com/youtube/v3"`
	Timeout time.Duration `envconfig:"YT_TIMEOUT" default:"10s"`
}

type CacheConfig struct {
	Capacity int           `envconfig:"CACHE_CAPACITY" default:"150"`
	TTL      time.Duration `envconfig:"CACHE_TTL" default:"1h"`
}

type RetryConfig struct {
	MaxRetries    int           `envconfig:"RETRY_MAX" default:"3"`
	BaseDelay     time.Duration `envconfig:"RETRY_BASE_DELAY" default:"1s"`
	BackoffFactor float64       `envconfig:"RETRY_BACKOFF_FACTOR" default:"2"`
}

// GuideConfig controls schedule assembly.
// PerSourceLimit bounds how many uploads are fetched per source before
// ranking; "popular" accuracy is limited by this window since only the
// fetched batch is sorted by view count.
type GuideConfig struct {
	PerSourceLimit int    `envconfig:"GUIDE_PER_SOURCE_LIMIT" default:"3"`
	MaxItems       int    `envconfig:"GUIDE_MAX_ITEMS" default:"5"`
	ScheduleItems  int    `envconfig:"SCHEDULE_ITEMS" default:"12"`
	WindowMode     string `envconfig:"SCHEDULE_WINDOW_MODE" default:"equal-division"`
	SlotMinutes    int    `envconfig:"SCHEDULE_SLOT_MINUTES" default:"30"`
	FetchParallel  int    `envconfig:"GUIDE_FETCH_PARALLEL" default:"4"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
