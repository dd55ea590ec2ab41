package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// MaxHistory is the upper bound for the per-user play history.
const MaxHistory = 20

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Player   PlayerConfig   `toml:"player"`
	History  HistoryConfig  `toml:"history"`
	Log      LogConfig      `toml:"log"`
}

// APIConfig contains settings for the remote music API.
type APIConfig struct {
	BaseURL   string        `toml:"base_url" env:"MUSICX_API_BASE_URL" validate:"required,url"`
	Timeout   time.Duration `toml:"timeout" env:"MUSICX_API_TIMEOUT" validate:"gte=0"`
	RateLimit float64       `toml:"rate_limit" env:"MUSICX_API_RATE_LIMIT" validate:"gt=0"`
	Burst     int           `toml:"burst" env:"MUSICX_API_BURST" validate:"gte=1"`
}

// DatabaseConfig contains the local SQLite cache settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"MUSICX_DATABASE_PATH" validate:"required,filepath"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MUSICX_DATABASE_MAX_OPEN_CONNS" validate:"gte=0"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MUSICX_DATABASE_MAX_IDLE_CONNS" validate:"gte=0"`
}

// StorageConfig points at the bbolt file holding the session and play history.
type StorageConfig struct {
	Path string `toml:"path" env:"MUSICX_STORAGE_PATH" validate:"required,filepath"`
}

// PlayerConfig describes the external audio player.
type PlayerConfig struct {
	Command string   `toml:"command" env:"MUSICX_PLAYER_COMMAND" validate:"required"`
	Args    []string `toml:"args" env:"MUSICX_PLAYER_ARGS" envSeparator:" "`
}

type HistoryConfig struct {
	Limit int `toml:"limit" env:"MUSICX_HISTORY_LIMIT" validate:"min=1,max=20"`
}

type LogConfig struct {
	Level string `toml:"level" env:"MUSICX_LOG_LEVEL" validate:"loglevel"`
	File  string `toml:"file" env:"MUSICX_LOG_FILE"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults, then environment overrides are applied.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ResolveConfig loads the config at path when it exists and otherwise falls back to the defaults
// (with environment overrides).
func ResolveConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); err == nil {
		return LoadConfig(path)
	}

	config := DefaultConfig()
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// LoadDotEnv loads variables from a .env file in the working directory, if one exists.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
	}
	return godotenv.Load(files...)
}

// ApplyEnv overrides fields with MUSICX_* environment variables. Unset variables leave fields untouched.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}
	if err := validate.RegisterValidation("filepath", validateFilePath); err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// HistoryLimit returns the configured history cap clamped to [1, MaxHistory].
func (c *Config) HistoryLimit() int {
	switch {
	case c.History.Limit <= 0:
		return MaxHistory
	case c.History.Limit > MaxHistory:
		return MaxHistory
	default:
		return c.History.Limit
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "debug", "info", "warn", "error", "fatal":
		return true
	}
	return false
}

// validateFilePath accepts paths that exist or whose parent directory could be created.
func validateFilePath(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == ":memory:" {
		return true
	}
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir()
	}
	return os.IsNotExist(err) && filepath.Base(path) != "."
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
