// Package config loads bizbot settings from viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/decipher-hub/BizBot-ke/internal/common"
)

// Config keys.
const (
	KeyDatabasePath   = "database.path"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
	KeyParserTimezone = "parser.timezone"
	KeyParserStrict   = "parser.strict"
	KeyParserWorkers  = "parser.workers"
)

// Config holds the resolved application settings.
type Config struct {
	Location     *time.Location
	DatabasePath string
	LogLevel     string
	LogFormat    string
	Timezone     string
	Workers      int
	Strict       bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyParserTimezone, "")
	v.SetDefault(KeyParserStrict, false)
	v.SetDefault(KeyParserWorkers, 4)
}

// Load reads settings from v, which may carry config file, env and flag values.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
		Timezone:     v.GetString(KeyParserTimezone),
		Strict:       v.GetBool(KeyParserStrict),
		Workers:      v.GetInt(KeyParserWorkers),
	}

	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("%w: %s must be at least 1, got %d", common.ErrInvalidConfig, KeyParserWorkers, cfg.Workers)
	}
	if _, err := common.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	// An empty timezone leaves the parser on its East Africa default.
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, KeyParserTimezone, err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}
