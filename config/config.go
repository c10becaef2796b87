// Package config loads hrgo settings from defaults, an optional YAML file,
// HRGO_* environment variables and bound command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/habedi/hrgo/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Setting keys.
const (
	KeyBaseURL       = "base_url"
	KeyTimeout       = "timeout"
	KeyStoreTimeout  = "store_timeout"
	KeyDBPath        = "db_path"
	KeyRefreshPath   = "refresh_path"
	KeyRefreshMethod = "refresh_method"
	KeyRateLimit     = "rate_limit"
	KeyWorkers       = "workers"
)

// EnvPrefix is prepended to upper-cased keys when reading the environment.
const EnvPrefix = "HRGO"

// Config is the resolved runtime configuration.
type Config struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	StoreTimeout  time.Duration `mapstructure:"store_timeout"`
	DBPath        string        `mapstructure:"db_path"`
	RefreshPath   string        `mapstructure:"refresh_path"`
	RefreshMethod string        `mapstructure:"refresh_method"`
	RateLimit     float64       `mapstructure:"rate_limit"`
	Workers       int           `mapstructure:"workers"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, "")
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyStoreTimeout, 3*time.Second)
	v.SetDefault(KeyDBPath, "")
	v.SetDefault(KeyRefreshPath, "/auth/refresh")
	v.SetDefault(KeyRefreshMethod, "POST")
	v.SetDefault(KeyRateLimit, 0.0)
	v.SetDefault(KeyWorkers, 4)
}

// DefaultDir is where the config file is looked up when none is given.
func DefaultDir() string {
	if home := os.Getenv("HRGO_HOME"); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".hrgo")
}

// Load reads configuration into v and decodes it. configFile may be empty, in
// which case config.yaml in DefaultDir is used when present.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(DefaultDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug().Msg("No config file found, using defaults and environment")
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("Loaded config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.RefreshMethod = strings.ToUpper(cfg.RefreshMethod)
	return &cfg, nil
}

// Validate checks the settings needed to talk to the API.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is not set (use --base-url, %s_BASE_URL or %s in the config file)", EnvPrefix, KeyBaseURL)
	}
	if err := validation.ValidateBaseURL(c.BaseURL); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if err := validation.ValidateRefreshMethod(c.RefreshMethod); err != nil {
		return err
	}
	if !strings.HasPrefix(c.RefreshPath, "/") {
		return fmt.Errorf("refresh path must start with '/', got %q", c.RefreshPath)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative, got %v", c.RateLimit)
	}
	return validation.ValidateWorkerCount(c.Workers)
}
