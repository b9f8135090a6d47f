// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Input   InputConfig   `mapstructure:"input"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// InputConfig tunes the pointer axis controls and cursor normalization.
type InputConfig struct {
	// AxisSmoothing weights the previous filtered scroll value against
	// the motion accumulated during the current poll. Larger is
	// smoother, smaller is more responsive.
	AxisSmoothing float64 `mapstructure:"axis_smoothing"`
	// AxisSensitivity divides the filtered scroll value before it is
	// reported, so axis bindings can use a smaller dead zone.
	AxisSensitivity float64 `mapstructure:"axis_sensitivity"`
	// ScaleX/ScaleY scale the normalized cursor position per axis.
	ScaleX float64 `mapstructure:"scale_x"`
	ScaleY float64 `mapstructure:"scale_y"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Input: InputConfig{
			AxisSmoothing:   1.5,
			AxisSensitivity: 8.0,
			ScaleX:          1.0,
			ScaleY:          1.0,
		},
		Logging: LoggingConfig{
			LogLevel: "",
		},
	}

	cfg *Config

	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("wayseat")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if home := os.Getenv("HOME"); home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "wayseat"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetDefault("input.axis_smoothing", DefaultConfig.Input.AxisSmoothing)
	viper.SetDefault("input.axis_sensitivity", DefaultConfig.Input.AxisSensitivity)
	viper.SetDefault("input.scale_x", DefaultConfig.Input.ScaleX)
	viper.SetDefault("input.scale_y", DefaultConfig.Input.ScaleY)
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	if c.Input.AxisSmoothing <= 0 {
		c.Input.AxisSmoothing = DefaultConfig.Input.AxisSmoothing
	}
	if c.Input.AxisSensitivity <= 0 {
		c.Input.AxisSensitivity = DefaultConfig.Input.AxisSensitivity
	}
	cfg = c
	return nil
}

// Get returns the loaded configuration, initializing defaults if Init
// has not run.
func Get() *Config {
	if cfg == nil {
		c := DefaultConfig
		cfg = &c
	}
	return cfg
}
