package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken string `env:"BOT_TOKEN,required"`

	// Pipeline backends
	CrawlBaseURL string `env:"CRAWL_API_URL" envDefault:"http://127.0.0.1:8000"`
	ChatBaseURL  string `env:"CHAT_API_URL" envDefault:"http://127.0.0.1:8000"`

	// Optional session archive. Leave empty to keep sessions in memory only.
	DatabaseURL string `env:"DATABASE_URL"`

	// Per-call timeouts; a hung backend call fails the turn as a network error.
	CrawlTimeout time.Duration `env:"CRAWL_TIMEOUT" envDefault:"120s"`
	ChatTimeout  time.Duration `env:"CHAT_TIMEOUT" envDefault:"90s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.CrawlBaseURL = strings.TrimRight(cfg.CrawlBaseURL, "/")
	cfg.ChatBaseURL = strings.TrimRight(cfg.ChatBaseURL, "/")
	return cfg, nil
}
