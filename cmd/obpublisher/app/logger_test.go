package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/credentialengine/obpublisher/internal/config"
)

func TestDetermineLogLevel(t *testing.T) {
	withLevel := func(level string) *config.Config {
		return &config.Config{Log: config.Log{Level: level}}
	}

	tests := []struct {
		name     string
		cfg      *config.Config
		flags    Flags
		expected string
	}{
		{name: "default level when nothing is set", expected: "info"},
		{name: "verbose flag sets debug", flags: Flags{Verbose: true}, expected: "debug"},
		{name: "quiet flag sets warn", flags: Flags{Quiet: true}, expected: "warn"},
		{name: "both verbose and quiet prefers quiet", flags: Flags{Verbose: true, Quiet: true}, expected: "warn"},
		{name: "explicit log-level overrides flags", flags: Flags{LogLevel: "error", Verbose: true}, expected: "error"},
		{name: "invalid log-level falls back to info", flags: Flags{LogLevel: "loud"}, expected: "info"},
		{name: "config level applies without flags", cfg: withLevel("debug"), expected: "debug"},
		{name: "flags beat config level", cfg: withLevel("debug"), flags: Flags{Quiet: true}, expected: "warn"},
		{name: "invalid config level falls back to info", cfg: withLevel("chatty"), expected: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, determineLogLevel(tt.cfg, tt.flags))
		})
	}
}

func TestNewLoggerUsesLevel(t *testing.T) {
	logger := NewLogger(&config.Config{Log: config.Log{Level: "warn", Output: "discard"}}, Flags{})
	assert.Equal(t, "warn", logger.GetLevel().String())
}
