package app

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
	"github.com/tldr-it-stepankutaj/basicskit/internal/logger"
)

// Config contains global runtime configuration.
type Config struct {
	Workspace   string
	LogLevel    string
	LogCapacity int
	TraceFile   bool
}

// MustLoadConfigFromViper builds Config from Viper-bound flags/env.
func MustLoadConfigFromViper() Config {
	ws := viper.GetString("workspace")
	if ws == "" {
		panic("workspace is empty")
	}
	return LoadConfig(viper.GetViper())
}

// LoadConfig reads Config from v without validating it.
func LoadConfig(v *viper.Viper) Config {
	capacity := v.GetInt("log_capacity")
	if !v.IsSet("log_capacity") {
		capacity = diaglog.DefaultCapacity
	}
	return Config{
		Workspace:   v.GetString("workspace"),
		LogLevel:    v.GetString("log_level"),
		LogCapacity: capacity,
		TraceFile:   v.GetBool("trace_file"),
	}
}

// Validate returns error if configuration is invalid.
func (c Config) Validate() error {
	if c.Workspace == "" {
		return fmt.Errorf("workspace cannot be empty")
	}
	if c.LogCapacity <= 0 {
		return fmt.Errorf("log capacity must be positive, got %d", c.LogCapacity)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
