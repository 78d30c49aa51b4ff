package registry

import "net/http"

// Authenticator applies credentials to registry requests.
type Authenticator interface {
	Apply(req *http.Request, token string)
}

// NoAuth sends requests unauthenticated, for registries reached through a
// session-aware proxy.
type NoAuth struct{}

// Apply implements Authenticator.
func (NoAuth) Apply(_ *http.Request, _ string) {}

// BearerAuth sends the publisher token as a Bearer credential.
type BearerAuth struct{}

// Apply implements Authenticator.
func (BearerAuth) Apply(req *http.Request, token string) {
	if token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// HeaderAuth sends the token verbatim in a custom header.
type HeaderAuth struct {
	Header string
}

// Apply implements Authenticator.
func (a HeaderAuth) Apply(req *http.Request, token string) {
	if token == "" || a.Header == "" {
		return
	}
	req.Header.Set(a.Header, token)
}
