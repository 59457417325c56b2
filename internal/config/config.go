// Package config loads flowhub settings from defaults, a YAML file,
// FLOWHUB_* environment variables and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by flowhub.
const EnvPrefix = "FLOWHUB"

// Config holds all runtime settings.
type Config struct {
	DataDir      string       `mapstructure:"data_dir"`
	TaxonomyFile string       `mapstructure:"taxonomy_file"`
	Ingest       IngestConfig `mapstructure:"ingest"`
	GitHub       GitHubConfig `mapstructure:"github"`
	Server       ServerConfig `mapstructure:"server"`
	Sync         SyncConfig   `mapstructure:"sync"`
	Search       SearchConfig `mapstructure:"search"`
}

// IngestConfig controls batch ingestion.
type IngestConfig struct {
	ChunkSize int `mapstructure:"chunk_size"`
}

// GitHubConfig controls the GitHub connector.
type GitHubConfig struct {
	Token           string `mapstructure:"token"`
	RequestsPerHour int    `mapstructure:"requests_per_hour"`
}

// ServerConfig controls `flowhub serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// SyncConfig controls the periodic repository sync.
type SyncConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// SearchConfig controls query defaults.
type SearchConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// DefaultHome returns ~/.flowhub, or .flowhub when the home directory is unknown.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flowhub"
	}
	return filepath.Join(home, ".flowhub")
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DataDir: DefaultHome(),
		Ingest:  IngestConfig{ChunkSize: 100},
		GitHub:  GitHubConfig{RequestsPerHour: 5000},
		Server:  ServerConfig{Addr: "127.0.0.1:8080"},
		Sync:    SyncConfig{Interval: time.Hour},
		Search:  SearchConfig{PageSize: 24},
	}
}

// SetDefaults registers the defaults on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("taxonomy_file", d.TaxonomyFile)
	v.SetDefault("ingest.chunk_size", d.Ingest.ChunkSize)
	v.SetDefault("github.token", d.GitHub.Token)
	v.SetDefault("github.requests_per_hour", d.GitHub.RequestsPerHour)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("sync.interval", d.Sync.Interval)
	v.SetDefault("search.page_size", d.Search.PageSize)
}

// Load reads configuration into v and decodes it.
// An explicit cfgFile must exist; the default ~/.flowhub/config.yaml is optional.
// A .env file in the working directory is loaded first and never overrides
// variables already set in the environment.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(DefaultHome())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.Ingest.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("ingest.chunk_size must be positive, got %d", c.Ingest.ChunkSize))
	}
	if c.GitHub.RequestsPerHour <= 0 {
		errs = append(errs, fmt.Errorf("github.requests_per_hour must be positive, got %d", c.GitHub.RequestsPerHour))
	}
	if c.Sync.Interval < 0 {
		errs = append(errs, fmt.Errorf("sync.interval must not be negative, got %s", c.Sync.Interval))
	}
	if c.Search.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("search.page_size must be positive, got %d", c.Search.PageSize))
	}
	return errors.Join(errs...)
}

// DatabasePath returns the SQLite file inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "flowhub.db")
}
