package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/credentialengine/obpublisher/internal/config"
	"github.com/credentialengine/obpublisher/pkg/logging"
)

// NewLogger creates a logger from the configuration and flags.
// Log level precedence (highest to lowest):
//  1. --log-level flag
//  2. -q/--quiet flag (warn), then -v/--verbose flag (debug)
//  3. log.level from the config file or OBPUB_LOG_LEVEL / LOG_LEVEL
//  4. info
func NewLogger(cfg *config.Config, flags Flags) zerolog.Logger {
	level := determineLogLevel(cfg, flags)

	logConfig := &logging.Config{
		Level:     level,
		Format:    "auto",
		Output:    "stderr",
		NoColor:   os.Getenv("NO_COLOR") != "",
		AddCaller: level == "debug" || level == "trace",
	}
	if cfg != nil {
		logConfig.Format = firstSet(cfg.Log.Format, logConfig.Format)
		logConfig.Output = firstSet(cfg.Log.Output, logConfig.Output)
	}
	return logging.NewLoggerFromConfig(logConfig)
}

func determineLogLevel(cfg *config.Config, flags Flags) string {
	if flags.LogLevel != "" {
		validated := validateLogLevel(flags.LogLevel)
		if validated != flags.LogLevel {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", flags.LogLevel, validated)
		}
		return validated
	}

	if flags.Quiet {
		return "warn"
	}
	if flags.Verbose {
		return "debug"
	}

	if cfg != nil && cfg.Log.Level != "" {
		return validateLogLevel(cfg.Log.Level)
	}
	return "info"
}

func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	}
	return "info"
}

func firstSet(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
