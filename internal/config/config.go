// Package config loads publisher settings from, in increasing precedence,
// built-in defaults, a YAML config file, .env files and OBPUB_ environment
// variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/credentialengine/obpublisher/internal/registry"
	"github.com/credentialengine/obpublisher/pkg/alignment"
	"github.com/credentialengine/obpublisher/pkg/badges"
	"github.com/credentialengine/obpublisher/pkg/constants"
	"github.com/credentialengine/obpublisher/pkg/errors"
)

// Config is the complete publisher configuration.
type Config struct {
	Registry          Registry            `mapstructure:"registry"`
	Organization      badges.Organization `mapstructure:"organization"`
	AlignmentDefaults AlignmentDefaults   `mapstructure:"alignment_defaults"`
	Cache             Cache               `mapstructure:"cache"`
	Log               Log                 `mapstructure:"log"`

	// ConfigFile is the file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

// Registry holds the publisher API connection settings.
type Registry struct {
	BaseURL     string        `mapstructure:"base_url"`
	Environment string        `mapstructure:"environment"`
	Token       string        `mapstructure:"token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AlignmentDefaults is the placement for imported alignments, optionally
// overridden per organization CTID.
type AlignmentDefaults struct {
	alignment.Defaults `mapstructure:",squash"`
	ByOrg              map[string]alignment.Defaults `mapstructure:"by_org"`
}

// For returns the defaults for an organization, with any empty override
// field taken from the global defaults.
func (a AlignmentDefaults) For(orgCTID string) alignment.Defaults {
	out := a.Defaults
	override, ok := a.ByOrg[orgCTID]
	if !ok {
		// viper lowercases map keys.
		override, ok = a.ByOrg[strings.ToLower(orgCTID)]
	}
	if ok {
		if override.PropertyType != "" {
			out.PropertyType = override.PropertyType
		}
		if override.NodeType != "" {
			out.NodeType = override.NodeType
		}
	}
	return out
}

// Cache controls the registry detail cache.
type Cache struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// Log configures the logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// loader collects Load options.
type loader struct {
	file       string
	envFiles   []string
	searchDirs []string
}

// Option configures Load.
type Option func(*loader)

// WithFile reads the given config file instead of searching for one.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = path
	}
}

// WithEnvFiles replaces the .env files that are loaded.
func WithEnvFiles(files ...string) Option {
	return func(l *loader) {
		l.envFiles = files
	}
}

// WithSearchDirs replaces the directories searched for the config file.
func WithSearchDirs(dirs ...string) Option {
	return func(l *loader) {
		l.searchDirs = dirs
	}
}

// Load builds the configuration. A missing config file is not an error; a
// malformed one is.
func Load(opts ...Option) (*Config, error) {
	l := &loader{envFiles: []string{".env", ".env.local"}}
	if home, err := os.UserHomeDir(); err == nil {
		l.searchDirs = append(l.searchDirs, home)
	}
	l.searchDirs = append(l.searchDirs, ".")
	for _, opt := range opts {
		opt(l)
	}

	for _, f := range l.envFiles {
		// Missing files are fine; existing variables are not overwritten.
		_ = godotenv.Load(f)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		for _, dir := range l.searchDirs {
			v.AddConfigPath(dir)
		}
		v.SetConfigName(constants.ConfigFileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case l.file == "" && os.IsNotExist(err):
		default:
			return nil, errors.NewConfigError("file", "cannot read "+filepath.Base(v.ConfigFileUsed()), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError("decode", "invalid configuration", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	// Unprefixed LOG_* variables apply when the prefixed ones are unset.
	cfg.Log.Level = firstNonEmpty(cfg.Log.Level, os.Getenv("LOG_LEVEL"), "info")
	cfg.Log.Format = firstNonEmpty(cfg.Log.Format, os.Getenv("LOG_FORMAT"), "auto")
	cfg.Log.Output = firstNonEmpty(cfg.Log.Output, os.Getenv("LOG_OUTPUT"), "stderr")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	std := alignment.StandardDefaults()

	v.SetDefault("registry.base_url", "")
	v.SetDefault("registry.environment", "")
	v.SetDefault("registry.token", "")
	v.SetDefault("registry.timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("organization.ctid", "")
	v.SetDefault("organization.name", "")
	v.SetDefault("organization.verification_service", "")
	v.SetDefault("alignment_defaults.property_type", string(std.PropertyType))
	v.SetDefault("alignment_defaults.target_node_type", string(std.NodeType))
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", constants.CacheTTL)
	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "")
	v.SetDefault("log.output", "")
}

// Validate checks values that would otherwise fail later and far from
// their source.
func (c *Config) Validate() error {
	if _, err := c.Environment(); err != nil {
		return errors.NewConfigError("registry", err.Error(), err)
	}

	check := func(where string, d alignment.Defaults) error {
		if d.PropertyType != "" && !d.PropertyType.Valid() {
			return errors.NewConfigError(where, "unknown property type "+string(d.PropertyType), errors.ErrInvalidInput)
		}
		if d.NodeType != "" && !d.NodeType.Valid() {
			return errors.NewConfigError(where, "unknown target node type "+string(d.NodeType), errors.ErrInvalidInput)
		}
		return nil
	}
	if err := check("alignment_defaults", c.AlignmentDefaults.Defaults); err != nil {
		return err
	}
	for org, d := range c.AlignmentDefaults.ByOrg {
		if err := check("alignment_defaults.by_org."+org, d); err != nil {
			return err
		}
	}
	return nil
}

// Environment resolves the registry deployment: the configured name, else
// a guess from the base URL, else sandbox.
func (c *Config) Environment() (registry.Environment, error) {
	if c.Registry.Environment != "" {
		return registry.ParseEnvironment(c.Registry.Environment)
	}
	if c.Registry.BaseURL != "" {
		return registry.EnvironmentFromURL(c.Registry.BaseURL), nil
	}
	return registry.Environment(constants.DefaultEnvironment), nil
}

// RequireRegistry reports an error when the registry connection is not
// configured.
func (c *Config) RequireRegistry() error {
	if c.Registry.BaseURL == "" {
		return errors.NewConfigError("registry", "registry.base_url is not set", errors.ErrInvalidInput)
	}
	return nil
}

// RequireOrganization reports an error when no publishing organization is
// configured.
func (c *Config) RequireOrganization() error {
	if c.Organization.CTID == "" {
		return errors.NewPreconditionError("publish", errors.ErrNoOrganization)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
