package registry

import (
	"strings"

	"github.com/credentialengine/obpublisher/pkg/errors"
)

// Environment names a registry deployment.
type Environment string

// Registry deployments.
const (
	Sandbox    Environment = "sandbox"
	Staging    Environment = "staging"
	Production Environment = "production"
)

// ParseEnvironment parses a configured environment name. An empty name
// means sandbox.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case "", Sandbox:
		return Sandbox, nil
	case Staging:
		return Staging, nil
	case Production, "prod":
		return Production, nil
	}
	return "", errors.NewValidationError("registry.environment", s, "must be sandbox, staging or production")
}

// EnvironmentFromURL guesses the deployment from a publisher API base URL.
func EnvironmentFromURL(baseURL string) Environment {
	lower := strings.ToLower(baseURL)
	switch {
	case strings.Contains(lower, "sandbox"):
		return Sandbox
	case strings.Contains(lower, "staging"):
		return Staging
	default:
		return Production
	}
}

// FinderURL returns the public page for a credential in this environment,
// or "" when ctid is empty.
func (e Environment) FinderURL(ctid string) string {
	if ctid == "" {
		return ""
	}
	switch e {
	case Sandbox:
		return "https://sandbox.credentialengine.org/finder/resources/" + ctid
	case Staging:
		return "https://staging.credentialengine.org/finder/resources/" + ctid
	default:
		return "https://credentialfinder.org/resources/" + ctid
	}
}

// String implements fmt.Stringer.
func (e Environment) String() string { return string(e) }
