// Package config reads the server settings from the environment and the
// optional YAML file that overrides column aliases and portfolio profiles.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Bryant1523/notasapp/internal/ingest"
	"github.com/Bryant1523/notasapp/internal/logging"
	"github.com/Bryant1523/notasapp/internal/portfolio"
)

const (
	defaultHTTPAddr    = ":8080"
	defaultTopicPrefix = "credit-notes"
)

type Config struct {
	Env              logging.Environment
	LogLevel         string
	HTTPAddr         string
	DatabaseURL      string   // empty selects the in-memory ticket store
	KafkaBrokers     []string // empty disables event publishing
	KafkaTopicPrefix string
	TemplateDir      string
	ConfigFile       string

	Columns    ingest.AliasTable
	Portfolios portfolio.Catalog
}

// File is the layout of CONFIG_FILE.
type File struct {
	Columns    ingest.AliasTable   `yaml:"columns"`
	Portfolios []portfolio.Profile `yaml:"portfolios"`
}

// Load reads .env when present, then the environment, then CONFIG_FILE.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Env:              logging.Environment(valueOr(getenv("APP_ENV"), string(logging.EnvironmentDevelopment))),
		LogLevel:         strings.TrimSpace(getenv("LOG_LEVEL")),
		HTTPAddr:         valueOr(getenv("HTTP_ADDR"), defaultHTTPAddr),
		DatabaseURL:      strings.TrimSpace(getenv("DATABASE_URL")),
		KafkaBrokers:     splitList(getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: valueOr(getenv("KAFKA_TOPIC_PREFIX"), defaultTopicPrefix),
		TemplateDir:      strings.TrimSpace(getenv("TEMPLATE_DIR")),
		ConfigFile:       strings.TrimSpace(getenv("CONFIG_FILE")),
		Columns:          ingest.DefaultAliases(),
		Portfolios:       portfolio.DefaultCatalog(),
	}

	if cfg.ConfigFile != "" {
		file, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.Columns = cfg.Columns.Merge(file.Columns)
		if len(file.Portfolios) > 0 {
			cfg.Portfolios = portfolio.Catalog(file.Portfolios)
		}
	}
	return cfg, nil
}

func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &f, nil
}

func valueOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
