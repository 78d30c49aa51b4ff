// Package app wires configuration, logging and the publisher into the
// obpublisher command line.
package app

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/credentialengine/obpublisher"
	"github.com/credentialengine/obpublisher/internal/config"
	"github.com/credentialengine/obpublisher/pkg/errors"
)

// Flags are the global command line flags.
type Flags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
	Format     string
	LogLevel   string
	Org        string
}

// App holds everything a command needs.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	flags  Flags
	config *config.Config
	// fixedConfig is set when the config was injected and must not be
	// reloaded from disk.
	fixedConfig bool

	logger  *zerolog.Logger
	out     io.Writer
	pubOpts []obpublisher.Option
}

// Option customizes an App.
type Option func(*App) error

// WithConfig uses cfg instead of loading configuration from disk.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		if cfg == nil {
			return errors.NewValidationError("config", nil, "config is nil")
		}
		a.config = cfg
		a.fixedConfig = true
		return nil
	}
}

// WithOutput sends command output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// WithPublisherOptions appends options to every publisher the app builds.
func WithPublisherOptions(opts ...obpublisher.Option) Option {
	return func(a *App) error {
		a.pubOpts = append(a.pubOpts, opts...)
		return nil
	}
}

// New creates an App with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	logger := NewLogger(a.config, a.flags)
	a.logger = &logger
	return a, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the loaded configuration, or nil before a command ran.
func (a *App) Config() *config.Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// loadConfig reads configuration unless it was injected.
func (a *App) loadConfig() error {
	if a.fixedConfig {
		cfg := *a.config
		a.config = &cfg
	} else {
		cfg, err := config.Load(config.WithFile(a.flags.ConfigFile))
		if err != nil {
			return errors.WrapResource("load", "config", a.flags.ConfigFile, err)
		}
		a.config = cfg
	}
	if a.flags.Org != "" {
		a.config.Organization.CTID = a.flags.Org
	}
	return nil
}

// Publisher builds a publisher from the configuration.
func (a *App) Publisher() (*obpublisher.Publisher, error) {
	if a.config == nil {
		return nil, errors.NewConfigError("app", "configuration not loaded", errors.ErrInvalidInput)
	}
	opts := append([]obpublisher.Option{
		obpublisher.WithConfig(a.config),
		obpublisher.WithLogger(a.logger),
	}, a.pubOpts...)
	return obpublisher.New(opts...)
}

// Shutdown releases resources held by the app.
func (a *App) Shutdown(_ context.Context) error {
	return nil
}
