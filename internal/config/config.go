// Package config loads contentdesk configuration. Values come from, in
// increasing precedence: built-in defaults, config.yaml in the config
// directory, a .env file (which never overrides variables already set),
// and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envFileName    = ".env"
)

// defaultConfigYAML is written to config.yaml on first run. Keys are left
// out so the environment can supply them.
const defaultConfigYAML = `# contentdesk configuration

# Backend: cosmic (hosted bucket) or sqlite (local files)
backend: sqlite

# Data directory for the sqlite backend (optional; --data-dir and
# CONTENTDESK_DATA_DIR take precedence)
# data_dir:

cosmic:
  # bucket_slug:
  # read_key and write_key are best supplied through COSMIC_READ_KEY and
  # COSMIC_WRITE_KEY.
  timeout: 30s

server:
  addr: 127.0.0.1:8080
  read_timeout: 10s
  write_timeout: 45s
  shutdown_timeout: 5s

logging:
  level: info
`

// Validation errors.
var (
	ErrCosmicBucket = errors.New("cosmic backend requires a bucket slug (COSMIC_BUCKET_SLUG)")
	ErrCosmicRead   = errors.New("cosmic backend requires a read key (COSMIC_READ_KEY)")
	ErrServerAddr   = errors.New("server.addr is required")
)

// Config is the full application configuration.
type Config struct {
	Backend string        `mapstructure:"backend" env:"CONTENTDESK_BACKEND"`
	DataDir string        `mapstructure:"data_dir"`
	Cosmic  CosmicConfig  `mapstructure:"cosmic"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CosmicConfig holds the hosted bucket credentials.
type CosmicConfig struct {
	BucketSlug string        `mapstructure:"bucket_slug" env:"COSMIC_BUCKET_SLUG"`
	ReadKey    string        `mapstructure:"read_key" env:"COSMIC_READ_KEY"`
	WriteKey   string        `mapstructure:"write_key" env:"COSMIC_WRITE_KEY"`
	APIURL     string        `mapstructure:"api_url" env:"CONTENTDESK_COSMIC_API_URL"`
	WriteURL   string        `mapstructure:"write_url" env:"CONTENTDESK_COSMIC_WRITE_URL"`
	Timeout    time.Duration `mapstructure:"timeout" env:"CONTENTDESK_COSMIC_TIMEOUT"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" env:"CONTENTDESK_ADDR"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" env:"CONTENTDESK_READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" env:"CONTENTDESK_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" env:"CONTENTDESK_SHUTDOWN_TIMEOUT"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `mapstructure:"level" env:"CONTENTDESK_LOG_LEVEL"`
}

// Store returns the backend selection passed to stores.
func (c Config) Store() types.Config {
	return types.Config{Backend: c.Backend, DataDir: c.DataDir}
}

// Validate checks the backend and, for cosmic, its credentials.
func (c Config) Validate() error {
	if err := c.Store().Validate(); err != nil {
		return fmt.Errorf("backend %q: %w", c.Backend, err)
	}
	if c.Backend == types.BackendCosmic {
		if c.Cosmic.BucketSlug == "" {
			return ErrCosmicBucket
		}
		if c.Cosmic.ReadKey == "" {
			return ErrCosmicRead
		}
	}
	if c.Server.Addr == "" {
		return ErrServerAddr
	}
	return nil
}

// Load reads configuration for configDir, creating the directory and a
// default config.yaml on first run. Validation is left to the caller so
// commands that do not touch a store can run with partial configuration.
func Load(configDir string) (*Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	loadDotEnv(envFileName, filepath.Join(configDir, envFileName))
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", types.BackendSQLite)
	v.SetDefault("cosmic.timeout", 30*time.Second)
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	// Leaves room for one Cosmic round trip at its default timeout.
	v.SetDefault("server.write_timeout", 45*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("logging.level", "info")
}

// loadDotEnv copies variables from the first readable file into the
// environment without replacing variables that are already set.
func loadDotEnv(files ...string) {
	for _, file := range files {
		vars, err := godotenv.Read(file)
		if err != nil {
			continue
		}
		for k, val := range vars {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
			}
		}
		return
	}
}

// ensureDefaultConfigFile creates config.yaml if it does not exist.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
