// Package config loads runtime settings from a YAML file and ARENAPILOT_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full runtime configuration.
type Config struct {
	Engine    EngineConfig    `mapstructure:"engine"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Inspector InspectorConfig `mapstructure:"inspector"`
}

// EngineConfig tunes the rules engine.
type EngineConfig struct {
	StartingLife        int  `mapstructure:"starting_life"`
	MaxReplacementDepth int  `mapstructure:"max_replacement_depth"`
	APNAPOrdering       bool `mapstructure:"apnap_ordering"`
	// JournalLimit caps the number of snapshots kept; 0 disables the journal.
	JournalLimit int `mapstructure:"journal_limit"`
}

// LoggingConfig selects the zap level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// InspectorConfig configures the websocket inspector.
type InspectorConfig struct {
	Address   string        `mapstructure:"address"`
	StepDelay time.Duration `mapstructure:"step_delay"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			StartingLife:        20,
			MaxReplacementDepth: 16,
			APNAPOrdering:       false,
			JournalLimit:        256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Inspector: InspectorConfig{
			Address:   ":8080",
			StepDelay: 500 * time.Millisecond,
		},
	}
}

// Load reads path (if it exists) over the defaults, applies environment
// overrides such as ARENAPILOT_ENGINE_STARTING_LIFE and validates the result.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("ARENAPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
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

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("engine.starting_life", d.Engine.StartingLife)
	v.SetDefault("engine.max_replacement_depth", d.Engine.MaxReplacementDepth)
	v.SetDefault("engine.apnap_ordering", d.Engine.APNAPOrdering)
	v.SetDefault("engine.journal_limit", d.Engine.JournalLimit)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("inspector.address", d.Inspector.Address)
	v.SetDefault("inspector.step_delay", d.Inspector.StepDelay)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Engine.StartingLife <= 0:
		return fmt.Errorf("%w: engine.starting_life must be positive, got %d", ErrInvalid, c.Engine.StartingLife)
	case c.Engine.MaxReplacementDepth <= 0:
		return fmt.Errorf("%w: engine.max_replacement_depth must be positive, got %d", ErrInvalid, c.Engine.MaxReplacementDepth)
	case c.Engine.JournalLimit < 0:
		return fmt.Errorf("%w: engine.journal_limit must not be negative", ErrInvalid)
	case c.Inspector.StepDelay < 0:
		return fmt.Errorf("%w: inspector.step_delay must not be negative", ErrInvalid)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown logging.level %q", ErrInvalid, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown logging.format %q", ErrInvalid, c.Logging.Format)
	}
	return nil
}
