// Package auth provides the credentials applied to provider requests.
package auth

import (
	"net/http"
	"strings"

	"github.com/glorpus-work/modlist/pkg/errors"
)

// APIKeyHeader is the header the Nexus Mods API reads the personal API key from.
const APIKeyHeader = "apikey"

// Authenticator defines the interface for applying authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// APIKey is a personal provider API key sent in the APIKeyHeader header.
type APIKey struct {
	Key string
}

// Type represents the type of authentication.
type Type string

// Authentication types.
const (
	// APIKeyType represents provider API key authentication.
	APIKeyType Type = "apikey"
)

// Apply sets the API key header on the request.
// An empty key is a missing credential, not an anonymous request.
func (k APIKey) Apply(req *http.Request) error {
	key := strings.TrimSpace(k.Key)
	if key == "" {
		return errors.ErrMissingCredential
	}
	req.Header.Set(APIKeyHeader, key)
	return nil
}

// Type returns the authentication type (APIKeyType).
func (k APIKey) Type() Type { return APIKeyType }

// String masks the key so it never ends up in logs.
func (k APIKey) String() string {
	if k.Key == "" {
		return ""
	}
	return "********"
}

// Headers returns the headers a would add to a request.
func Headers(a Authenticator) (http.Header, error) {
	if a == nil {
		return nil, errors.ErrMissingCredential
	}
	req, err := http.NewRequest(http.MethodGet, "http://localhost/", http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build probe request")
	}
	if err := a.Apply(req); err != nil {
		return nil, err
	}
	return req.Header, nil
}

// Require fails with errors.ErrMissingCredential when a cannot authenticate a request.
func Require(a Authenticator) error {
	_, err := Headers(a)
	return err
}
