// Package generation talks to the hosted text-generation service.
package generation

import (
	"context"
	"errors"
)

// ErrMissingCredential means the provider credential was not supplied by the secret store.
var ErrMissingCredential = errors.New("provider credential missing")

// Provider abstracts the hosted model so it can be swapped or mocked.
// Complete issues exactly one request and returns the raw generated text.
type Provider interface {
	Complete(ctx context.Context, instruction string) (string, error)
}

// Settings configures a concrete provider.
type Settings struct {
	Model      string
	Credential string
	BaseURL    string
}
