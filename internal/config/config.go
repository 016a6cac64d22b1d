// ABOUTME: Configuration loading and parsing for pinoyflex
// ABOUTME: YAML or TOML files with ${VAR} expansion, .env loading, and PINOYFLEX_* overrides

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/pinoyflex/pinoyflex/internal/kv"
)

// DriverMemory keeps everything in process memory. Nothing survives exit.
const DriverMemory = "memory"

// Config represents the complete pinoyflex configuration
type Config struct {
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Auth    AuthConfig    `yaml:"auth" toml:"auth"`
	Seed    SeedConfig    `yaml:"seed" toml:"seed"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// StorageConfig selects the key-value substrate
type StorageConfig struct {
	Driver string `yaml:"driver" toml:"driver" env:"PINOYFLEX_STORAGE_DRIVER"`
	Path   string `yaml:"path" toml:"path" env:"PINOYFLEX_STORAGE_PATH"`
}

// AuthConfig controls how passwords are stored
type AuthConfig struct {
	HashPasswords bool `yaml:"hash_passwords" toml:"hash_passwords" env:"PINOYFLEX_HASH_PASSWORDS"`
	BcryptCost    int  `yaml:"bcrypt_cost" toml:"bcrypt_cost" env:"PINOYFLEX_BCRYPT_COST"`
}

// SeedConfig controls bootstrap sample data
type SeedConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled" env:"PINOYFLEX_SEED"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" env:"PINOYFLEX_LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"PINOYFLEX_LOG_FORMAT"`
}

// Default returns a configuration that works without any file.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: kv.DriverModernc,
			Path:   DefaultDataPath(),
		},
		Auth: AuthConfig{
			BcryptCost: bcrypt.DefaultCost,
		},
		Seed: SeedConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// DefaultPath returns the config file location: $PINOYFLEX_CONFIG, else
// $XDG_CONFIG_HOME/pinoyflex/config.yaml, else ~/.config/pinoyflex/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("PINOYFLEX_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "pinoyflex", "config.yaml")
}

// DefaultDataPath returns the default database file under $XDG_DATA_HOME.
func DefaultDataPath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "pinoyflex", "pinoyflex.db")
}

func xdgDir(envVar, homeRel string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, homeRel)
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are parsed as TOML, everything else as YAML. Values
// not present in the file keep their defaults. Environment variables in the
// format ${VAR_NAME} are expanded, then PINOYFLEX_* variables override.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return finish(cfg)
}

// LoadOrDefault behaves like Load but falls back to Default when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return finish(Default())
	}
	return cfg, err
}

func finish(cfg *Config) (*Config, error) {
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables already set. With no arguments
// it loads ./.env. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case kv.DriverModernc, kv.DriverCGO:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver must be %q, %q or %q, got %q",
			kv.DriverModernc, kv.DriverCGO, DriverMemory, c.Storage.Driver)
	}

	if c.Auth.HashPasswords && (c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost) {
		return fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// ParseLevel maps a logging.level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", s)
}
