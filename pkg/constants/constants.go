// Package constants provides shared constants used throughout the publisher.
// This includes timeouts, limits, file permissions, and the default registry
// endpoints that must stay consistent across packages.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the registry
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout bounds graceful shutdown after a command fails
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// MaxConcurrentFetches caps simultaneous credential detail fetches
	MaxConcurrentFetches = 8

	// DefaultPageSize is the page size used when searching an organization's credentials
	DefaultPageSize = 100

	// MaxSearchPages stops pagination against a misbehaving search endpoint
	MaxSearchPages = 50

	// MaxResponseBytes caps how much of a registry response body is read
	MaxResponseBytes = 16 << 20
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached credential detail
	CacheTTL = 15 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 5 * time.Minute
)

// Registry defaults
const (
	// DefaultEnvironment is the registry environment used when none is configured
	DefaultEnvironment = "sandbox"

	// DefaultLanguage is attached to every credential built from a badge
	DefaultLanguage = "en-US"

	// ServiceName identifies the registry in errors and logs
	ServiceName = "credential-registry"
)

// Path constants
const (
	// ConfigFileName is the base name of the config file searched in $HOME and .
	ConfigFileName = ".obpublisher"

	// EnvPrefix prefixes environment variables bound by viper
	EnvPrefix = "OBPUB"
)

// Format constants
const (
	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)
