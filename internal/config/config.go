package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL and YOUTUBE_API_KEY
// are required.
type Config struct {
	// Server
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Database
	DatabaseURL string `env:"DATABASE_URL,required"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"5"`

	// Video platform
	YouTubeAPIKey    string `env:"YOUTUBE_API_KEY,required"`
	YouTubeQPS       int    `env:"YOUTUBE_QPS" envDefault:"8"`
	SearchMaxResults int64  `env:"SEARCH_MAX_RESULTS" envDefault:"10"`

	// Queue rules
	MaxDurationSeconds int `env:"MAX_DURATION_SECONDS" envDefault:"600"`

	// Submission rate limiting: at most RateLimitMax submissions per
	// submitter inside a sliding RateLimitWindow.
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"5s"`
	RateLimitMax      int           `env:"RATE_LIMIT_MAX" envDefault:"2"`
	RateSweepInterval time.Duration `env:"RATE_SWEEP_INTERVAL" envDefault:"1m"`

	// Live broadcast
	HubMaxConnections int           `env:"HUB_MAX_CONNECTIONS" envDefault:"256"`
	BroadcastTimeout  time.Duration `env:"BROADCAST_TIMEOUT" envDefault:"2s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
