package app

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
)

func TestLoadConfigDefaultsCapacity(t *testing.T) {
	v := viper.New()
	v.Set("workspace", "./work")
	v.Set("log_level", "info")

	cfg := LoadConfig(v)
	assert.Equal(t, "./work", cfg.Workspace)
	assert.Equal(t, diaglog.DefaultCapacity, cfg.LogCapacity)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigReadsValues(t *testing.T) {
	v := viper.New()
	v.Set("workspace", "/tmp/ws")
	v.Set("log_level", "debug")
	v.Set("log_capacity", 25)
	v.Set("trace_file", true)

	assert.Equal(t, Config{Workspace: "/tmp/ws", LogLevel: "debug", LogCapacity: 25, TraceFile: true}, LoadConfig(v))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{Workspace: "w", LogLevel: "warn", LogCapacity: 1}, false},
		{"empty workspace", Config{LogLevel: "info", LogCapacity: 1}, true},
		{"zero capacity", Config{Workspace: "w", LogLevel: "info"}, true},
		{"bad level", Config{Workspace: "w", LogLevel: "chatty", LogCapacity: 1}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
