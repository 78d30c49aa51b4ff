package obpublisher

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/credentialengine/obpublisher/internal/config"
	"github.com/credentialengine/obpublisher/internal/registry"
	"github.com/credentialengine/obpublisher/pkg/alignment"
	"github.com/credentialengine/obpublisher/pkg/badges"
	"github.com/credentialengine/obpublisher/pkg/constants"
	"github.com/credentialengine/obpublisher/pkg/errors"
	"github.com/credentialengine/obpublisher/pkg/publish"
)

// options holds the settings collected from Option values.
type options struct {
	baseURL     string
	token       string
	environment string
	httpClient  *http.Client
	timeout     time.Duration

	registry Registry

	org      badges.Organization
	defaults config.AlignmentDefaults

	cacheEnabled bool
	cacheTTL     time.Duration

	validator   publish.Validator
	noSchema    bool
	concurrency int
	logger      *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		defaults:     config.AlignmentDefaults{Defaults: alignment.StandardDefaults()},
		cacheEnabled: true,
		cacheTTL:     constants.CacheTTL,
		timeout:      constants.DefaultHTTPTimeout,
		concurrency:  constants.MaxConcurrentFetches,
	}
}

// Option configures a Publisher.
type Option func(*options) error

// WithConfig applies a loaded configuration. Options given after it
// override individual settings.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.NewValidationError("config", nil, "config is nil")
		}
		o.baseURL = cfg.Registry.BaseURL
		o.token = cfg.Registry.Token
		o.environment = cfg.Registry.Environment
		if cfg.Registry.Timeout > 0 {
			o.timeout = cfg.Registry.Timeout
		}
		o.org = cfg.Organization
		o.defaults = cfg.AlignmentDefaults
		o.cacheEnabled = cfg.Cache.Enabled
		if cfg.Cache.TTL > 0 {
			o.cacheTTL = cfg.Cache.TTL
		}
		return nil
	}
}

// WithRegistry connects to the publisher API at baseURL with a bearer token.
func WithRegistry(baseURL, token string) Option {
	return func(o *options) error {
		o.baseURL = baseURL
		o.token = token
		return nil
	}
}

// WithRegistryClient uses r instead of building an HTTP client. Useful for
// tests and for alternative transports.
func WithRegistryClient(r Registry) Option {
	return func(o *options) error {
		o.registry = r
		return nil
	}
}

// WithEnvironment selects the deployment used for finder URLs.
func WithEnvironment(env string) Option {
	return func(o *options) error {
		if _, err := registry.ParseEnvironment(env); err != nil {
			return err
		}
		o.environment = env
		return nil
	}
}

// WithHTTPClient sets the HTTP client used to reach the registry.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		o.httpClient = hc
		return nil
	}
}

// WithOrganization sets the organization credentials are published for.
func WithOrganization(org badges.Organization) Option {
	return func(o *options) error {
		o.org = org
		return nil
	}
}

// WithAlignmentDefaults sets the placement of imported alignments.
func WithAlignmentDefaults(d alignment.Defaults) Option {
	return func(o *options) error {
		if d.PropertyType != "" && !d.PropertyType.Valid() {
			return errors.NewValidationError("property_type", d.PropertyType, "unknown relationship property")
		}
		if d.NodeType != "" && !d.NodeType.Valid() {
			return errors.NewValidationError("target_node_type", d.NodeType, "unknown target node type")
		}
		o.defaults.Defaults = d
		return nil
	}
}

// WithCache enables or disables the credential detail cache.
func WithCache(enabled bool, ttl time.Duration) Option {
	return func(o *options) error {
		o.cacheEnabled = enabled
		if ttl > 0 {
			o.cacheTTL = ttl
		}
		return nil
	}
}

// WithValidator replaces the schema check run before every save.
func WithValidator(v publish.Validator) Option {
	return func(o *options) error {
		o.validator = v
		return nil
	}
}

// WithoutSchemaValidation sends save requests without checking them first.
func WithoutSchemaValidation() Option {
	return func(o *options) error {
		o.noSchema = true
		return nil
	}
}

// WithConcurrency bounds concurrent detail fetches during Initialize.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return errors.NewValidationError("concurrency", n, "must be positive")
		}
		o.concurrency = n
		return nil
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
