// Package config loads server settings from defaults, a YAML file, the
// environment and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file looked up in the working directory when
	// no explicit path is given.
	FileName = "custody.yaml"

	envPrefix = "CUSTODY"
)

// Config holds every setting.
type Config struct {
	DB            string        `mapstructure:"db" yaml:"db"`
	Addr          string        `mapstructure:"addr" yaml:"addr"`
	Log           string        `mapstructure:"log" yaml:"log"`
	LogLevel      string        `mapstructure:"log_level" yaml:"log_level"`
	NotifyURL     string        `mapstructure:"notify_url" yaml:"notify_url"`
	NotifyTimeout time.Duration `mapstructure:"notify_timeout" yaml:"notify_timeout"`
	TokenTTL      time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	ContactsLimit int           `mapstructure:"contacts_limit" yaml:"contacts_limit"`
	MaxOpenConns  int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DB:            "custody.sqlite3",
		Addr:          ":8080",
		LogLevel:      "info",
		NotifyTimeout: 5 * time.Second,
		TokenTTL:      7 * 24 * time.Hour,
		ContactsLimit: 3,
		MaxOpenConns:  8,
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":             "db",
	"addr":           "addr",
	"log":            "log",
	"log-level":      "log_level",
	"notify-url":     "notify_url",
	"notify-timeout": "notify_timeout",
	"token-ttl":      "token_ttl",
}

// Load reads the configuration. path may be empty, in which case FileName
// is looked up in the working directory; a missing file is not an error.
// Flags that are present in flags and were set on the command line win
// over everything else.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("db", d.DB)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("log", d.Log)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("notify_url", d.NotifyURL)
	v.SetDefault("notify_timeout", d.NotifyTimeout)
	v.SetDefault("token_ttl", d.TokenTTL)
	v.SetDefault("contacts_limit", d.ContactsLimit)
	v.SetDefault("max_open_conns", d.MaxOpenConns)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be fixed by defaults.
func (c *Config) Validate() error {
	if c.DB == "" {
		return errors.New("config: db must not be empty")
	}
	if c.Addr == "" {
		return errors.New("config: addr must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: token_ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid log_level %q", c.LogLevel)
	}
	return level, nil
}

// WriteDefault writes the default configuration to path as YAML unless a
// file already exists there. It reports whether the file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking config file: %w", err)
	}

	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return false, fmt.Errorf("encoding config: %w", err)
	}

	header := "# custody configuration. Environment variables CUSTODY_<KEY> and flags override these values.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return false, fmt.Errorf("writing config: %w", err)
	}
	return true, nil
}
