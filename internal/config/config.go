package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	WSAddr   string `yaml:"ws_addr"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	SessionTTL  time.Duration `yaml:"session_ttl"`
	MaxSessions int           `yaml:"max_sessions"`

	MessagesDir   string `yaml:"messages_dir"`
	BoardSquarePx int    `yaml:"board_square_px"`
}

func defaults() *AppConfig {
	return &AppConfig{
		HTTPAddr:      ":8080",
		WSAddr:        ":8081",
		SessionTTL:    24 * time.Hour,
		MaxSessions:   1000,
		BoardSquarePx: 64,
	}
}

// Load applies, in order: defaults, the YAML file named by CHESS_CONFIG_FILE
// (if set), then environment variables.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CHESS_CONFIG_FILE")); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("WS_ADDR")); v != "" {
		cfg.WSAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" { // seconds or a duration like 2h
		if d, ok := parseTTL(v); ok {
			cfg.SessionTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_SESSIONS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSessions = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MESSAGES_DIR")); v != "" {
		cfg.MessagesDir = v
	}
	if v := strings.TrimSpace(os.Getenv("BOARD_SQUARE_PX")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BoardSquarePx = n
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileConfig mirrors AppConfig with a string TTL so "30m" and "1800" both work.
type fileConfig struct {
	HTTPAddr      string `yaml:"http_addr"`
	WSAddr        string `yaml:"ws_addr"`
	RedisURL      string `yaml:"redis_url"`
	DatabaseURL   string `yaml:"database_url"`
	SessionTTL    string `yaml:"session_ttl"`
	MaxSessions   int    `yaml:"max_sessions"`
	MessagesDir   string `yaml:"messages_dir"`
	BoardSquarePx int    `yaml:"board_square_px"`
}

func loadFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if v := strings.TrimSpace(fc.HTTPAddr); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(fc.WSAddr); v != "" {
		cfg.WSAddr = v
	}
	if v := strings.TrimSpace(fc.RedisURL); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(fc.DatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(fc.SessionTTL); v != "" {
		d, ok := parseTTL(v)
		if !ok {
			return fmt.Errorf("config file %s: invalid session_ttl %q", path, v)
		}
		cfg.SessionTTL = d
	}
	if fc.MaxSessions > 0 {
		cfg.MaxSessions = fc.MaxSessions
	}
	if v := strings.TrimSpace(fc.MessagesDir); v != "" {
		cfg.MessagesDir = v
	}
	if fc.BoardSquarePx > 0 {
		cfg.BoardSquarePx = fc.BoardSquarePx
	}
	return nil
}

func parseTTL(v string) (time.Duration, bool) {
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return 0, false
		}
		return time.Duration(n) * time.Second, true
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func (c *AppConfig) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if c.WSAddr == "" {
		return errors.New("WS_ADDR is required")
	}
	if c.HTTPAddr == c.WSAddr {
		return fmt.Errorf("HTTP_ADDR and WS_ADDR must differ (both %s)", c.HTTPAddr)
	}
	if c.BoardSquarePx < 16 || c.BoardSquarePx > 256 {
		return fmt.Errorf("BOARD_SQUARE_PX out of range: %d", c.BoardSquarePx)
	}
	return nil
}
