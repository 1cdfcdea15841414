// Package config reads service settings from the environment (and an optional .env).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port string `envconfig:"PORT" default:"3001"`

	// DATABASE_URL wins over the DB_* parts when both are set.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"record_loans"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPwd  string `envconfig:"REDIS_PASSWORD"`

	WebOrigin string `envconfig:"WEB_ORIGIN" default:"http://localhost:5173"`

	// 例如: "u-1,u-2"
	AdminIDs     []string `envconfig:"ADMIN_IDS"`
	RequesterIDs []string `envconfig:"REQUESTER_IDS"`

	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// LoadEnv loads a .env file from the working directory if there is one.
// Variables already present in the environment are not overridden.
func LoadEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn("failed to load .env")
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	cfg.AdminIDs = normalizeIDs(cfg.AdminIDs)
	cfg.RequesterIDs = normalizeIDs(cfg.RequesterIDs)

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT: unsupported format %q (json, text)", cfg.LogFormat)
	}
	return &cfg, nil
}

// DSN returns DATABASE_URL or a key/value DSN assembled from DB_*.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func NewLogger(cfg *Config) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	if cfg.LogFormat == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

func normalizeIDs(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
