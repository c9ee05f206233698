// Package config loads goattr settings with Viper from defaults, an optional
// config file, and GOATTR_ environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/dshills/goattr/internal/loader"
	"github.com/dshills/goattr/internal/logging"
)

const (
	// EnvPrefix prefixes every environment override (GOATTR_CACHE_BACKEND)
	EnvPrefix = "GOATTR"
	// DefaultDBPath is the default directory of the SQLite cache
	DefaultDBPath = "~/.goattr"
	// DBFileName is the cache database file inside DBPath
	DBFileName = "goattr.db"
)

// Cache backends
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Config is the complete goattr configuration
type Config struct {
	DBPath  string          `mapstructure:"db_path"`
	Cache   CacheConfig     `mapstructure:"cache"`
	Log     LogConfig       `mapstructure:"log"`
	Scan    ScanConfig      `mapstructure:"scan"`
	Preload []PreloadConfig `mapstructure:"preload"`
}

// CacheConfig selects the discovery result store
type CacheConfig struct {
	Backend string `mapstructure:"backend"`
	Size    int    `mapstructure:"size"`
}

// LogConfig controls the stderr logger
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ScanConfig controls source scanning
type ScanConfig struct {
	IncludeTests  bool `mapstructure:"include_tests"`
	IncludeVendor bool `mapstructure:"include_vendor"`
	Workers       int  `mapstructure:"workers"`
}

// PreloadConfig declares the loader rules of one namespace
type PreloadConfig struct {
	Namespace string       `mapstructure:"namespace"`
	Rules     []RuleConfig `mapstructure:"rules"`
}

// RuleConfig is one loader rule; Mode is a loader.LoadMode name
type RuleConfig struct {
	Descriptor string `mapstructure:"descriptor"`
	Mode       string `mapstructure:"mode"`
	Ascend     bool   `mapstructure:"ascend"`
	Transform  string `mapstructure:"transform"`
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() *Config {
	return &Config{
		DBPath: DefaultDBPath,
		Cache: CacheConfig{
			Backend: BackendSQLite,
			Size:    4096,
		},
		Log: LogConfig{Level: "info"},
		Scan: ScanConfig{
			Workers: runtime.NumCPU(),
		},
	}
}

// Load reads the configuration. An empty path skips the config file; a
// missing explicit file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("cache.backend", defaults.Cache.Backend)
	v.SetDefault("cache.size", defaults.Cache.Size)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("scan.include_tests", defaults.Scan.IncludeTests)
	v.SetDefault("scan.include_vendor", defaults.Scan.IncludeVendor)
	v.SetDefault("scan.workers", defaults.Scan.Workers)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	dbPath, err := expandHome(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	cfg.DBPath = dbPath
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Viper cannot type-check
func (c *Config) Validate() error {
	var errs []error

	switch c.Cache.Backend {
	case BackendSQLite, BackendMemory, BackendNone:
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be one of %s, %s, %s; got %q",
			BackendSQLite, BackendMemory, BackendNone, c.Cache.Backend))
	}
	if c.Cache.Backend == BackendMemory && c.Cache.Size <= 0 {
		errs = append(errs, fmt.Errorf("cache.size must be positive, got %d", c.Cache.Size))
	}
	if c.Cache.Backend == BackendSQLite && c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required for the sqlite cache"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Scan.Workers < 0 {
		errs = append(errs, fmt.Errorf("scan.workers must not be negative, got %d", c.Scan.Workers))
	}

	for i, ns := range c.Preload {
		if ns.Namespace == "" {
			errs = append(errs, fmt.Errorf("preload[%d]: namespace is required", i))
		}
		for j, rule := range ns.Rules {
			if rule.Descriptor == "" {
				errs = append(errs, fmt.Errorf("preload[%d].rules[%d]: descriptor is required", i, j))
			}
			if _, err := loader.ParseLoadMode(rule.Mode); err != nil {
				errs = append(errs, fmt.Errorf("preload[%d].rules[%d]: %w", i, j, err))
			}
		}
	}

	return errors.Join(errs...)
}

// DBFile returns the path of the SQLite cache database
func (c *Config) DBFile() string {
	return filepath.Join(c.DBPath, DBFileName)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
