// Package config provides configuration loading and validation for gitvars.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrNegativeTimeout = errors.New("timeout cannot be negative")
	ErrInvalidTimeout  = errors.New("invalid timeout")
	ErrNegativeGrace   = errors.New("hard-exit grace cannot be negative")
)

// Default configuration values.
const (
	// DefaultTimeout bounds one collection run. Prompt renders block on
	// this tool, so the budget stays well under human reaction time.
	DefaultTimeout = "500ms"

	// DefaultGrace is how long after the deadline the hard-exit safety
	// net waits for a graceful wind-down before killing the process.
	DefaultGrace = 100 * time.Millisecond

	defaultLogLevel = "warn"
)

// Config holds all configuration for gitvars.
type Config struct {
	// Timeout is the collection deadline in the accepted syntax: a Go
	// duration ("500ms"), a bare integer number of seconds, or
	// ""/"0"/"none" for no deadline.
	Timeout string `mapstructure:"timeout"`

	// Grace is the extra time the hard-exit safety net allows after the
	// deadline fires.
	Grace time.Duration `mapstructure:"grace"`

	// Prefix is prepended verbatim to every output line (e.g. "local ").
	Prefix string `mapstructure:"prefix"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("config")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME/.config/gitvars")
		viperCfg.AddConfigPath("/etc/gitvars")
	}

	viperCfg.SetEnvPrefix("GITVARS")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("timeout", DefaultTimeout)
	viperCfg.SetDefault("grace", DefaultGrace)
	viperCfg.SetDefault("prefix", "")
	viperCfg.SetDefault("logging.level", defaultLogLevel)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	_, err := ParseTimeout(config.Timeout)
	if err != nil {
		return err
	}

	if config.Grace < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeGrace, config.Grace)
	}

	return nil
}

// ParseTimeout parses the accepted timeout syntax. ""/"0"/"none" mean no
// deadline and return zero. A bare integer is a number of seconds,
// anything else must parse as a Go duration. Negative values are rejected.
func ParseTimeout(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)

	if input == "" || input == "0" || strings.EqualFold(input, "none") {
		return 0, nil
	}

	if strings.HasPrefix(input, "-") {
		return 0, fmt.Errorf("%w: %q", ErrNegativeTimeout, input)
	}

	if seconds, err := strconv.ParseUint(input, 10, 32); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	timeout, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, input)
	}

	if timeout < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNegativeTimeout, input)
	}

	return timeout, nil
}
