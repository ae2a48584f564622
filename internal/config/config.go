// Package config loads quill settings from a YAML file, QUILL_* environment
// variables, an optional .env file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`

	file string
}

// ServerConfig holds the blog API location
type ServerConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig controls the query cache and its on-disk snapshots
type CacheConfig struct {
	StaleTime time.Duration `mapstructure:"stale_time"`
	Persist   bool          `mapstructure:"persist"` // keep page snapshots between runs
	Dir       string        `mapstructure:"dir"`
}

// FeedConfig controls listing requests
type FeedConfig struct {
	PageSize    int    `mapstructure:"page_size"` // 0 lets the server decide
	SearchLimit int    `mapstructure:"search_limit"`
	Default     string `mapstructure:"default"` // tab shown at startup
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"` // "-" logs to stderr
	Level string `mapstructure:"level"`
}

// MetricsConfig enables the Prometheus listener when Listen is set
type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Timeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			StaleTime: 60 * time.Second,
			Persist:   true,
			Dir:       defaultCachePath(),
		},
		Feed: FeedConfig{
			SearchLimit: 10,
			Default:     "recommended",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// RegisterFlags adds the configuration flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to config file")
	fs.String("server", "", "blog API base URL")
	fs.String("log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
}

// Load reads configuration. Precedence: flags, environment, .env, config
// file, defaults. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	file := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			file = f.Value.String()
		}
		if err := bindFlag(v, flags, "server.url", "server"); err != nil {
			return nil, err
		}
		if err := bindFlag(v, flags, "logging.level", "log-level"); err != nil {
			return nil, err
		}
	}

	if file != "" {
		v.SetConfigFile(expandHome(file))
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides, e.g. QUILL_SERVER_URL
	v.SetEnvPrefix("QUILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.file = v.ConfigFileUsed()
	if cfg.file == "" {
		cfg.file = filepath.Join(defaultConfigPath(), "config.yaml")
	}
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	cfg.Logging.File = expandHome(cfg.Logging.File)
	return cfg, nil
}

// File returns the path Save writes to
func (c *Config) File() string {
	if c.file == "" {
		return filepath.Join(defaultConfigPath(), "config.yaml")
	}
	return c.file
}

// Save writes the configuration to its file
func (c *Config) Save() error {
	path := c.File()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, c)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured returns true once a server URL is set
func (c *Config) IsConfigured() bool {
	return strings.TrimSpace(c.Server.URL) != ""
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("server.url", c.Server.URL)
	v.SetDefault("server.timeout", c.Server.Timeout.String())
	v.SetDefault("cache.stale_time", c.Cache.StaleTime.String())
	v.SetDefault("cache.persist", c.Cache.Persist)
	v.SetDefault("cache.dir", c.Cache.Dir)
	v.SetDefault("feed.page_size", c.Feed.PageSize)
	v.SetDefault("feed.search_limit", c.Feed.SearchLimit)
	v.SetDefault("feed.default", c.Feed.Default)
	v.SetDefault("logging.file", c.Logging.File)
	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("metrics.listen", c.Metrics.Listen)
}

// bindFlag binds a flag only when the user set it, so an empty default
// does not mask file or environment values
func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) error {
	f := flags.Lookup(name)
	if f == nil || !f.Changed {
		return nil
	}
	if err := v.BindPFlag(key, f); err != nil {
		return fmt.Errorf("bind flag %s: %w", name, err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "quill", "quill.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "quill", "quill.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "quill")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "quill")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "quill", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "quill", "cache")
	}
}
