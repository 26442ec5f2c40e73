package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"golang.org/x/oauth2/google"
)

// ErrNoCredentials is returned when every provider in a Chain failed.
var ErrNoCredentials = errors.New("no credential provider succeeded")

// Resolved is the credential handle threaded into storage and records
// clients. Source names the provider that produced it.
type Resolved struct {
	Source string
	Google *google.Credentials
}

// ProjectID returns the project embedded in the credentials, if any.
func (r *Resolved) ProjectID() string {
	if r == nil || r.Google == nil {
		return ""
	}
	return r.Google.ProjectID
}

// Provider produces Google credentials for the given scopes.
type Provider interface {
	Name() string
	Credentials(ctx context.Context, scopes ...string) (*google.Credentials, error)
}

// Chain tries providers in order and returns the first success.
type Chain []Provider

// Resolve walks the chain. When nothing succeeds the returned error wraps
// ErrNoCredentials and every provider's failure.
func (c Chain) Resolve(ctx context.Context, scopes ...string) (*Resolved, error) {
	var errs error
	for _, p := range c {
		creds, err := p.Credentials(ctx, scopes...)
		if err == nil {
			return &Resolved{Source: p.Name(), Google: creds}, nil
		}
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	if errs == nil {
		return nil, ErrNoCredentials
	}
	return nil, fmt.Errorf("%w: %w", ErrNoCredentials, errs)
}

// DefaultChain is the lookup order used by the commands: a key file named by
// envVar, then keyFile on disk, then ambient application default credentials.
func DefaultChain(envVar, keyFile string) Chain {
	return Chain{
		EnvKeyFile{EnvVar: envVar},
		KeyFile{Path: keyFile},
		Ambient{},
	}
}

// EnvKeyFile reads a JSON key file whose path is held in an env var.
type EnvKeyFile struct {
	EnvVar string
}

func (p EnvKeyFile) Name() string { return "env:" + p.EnvVar }

func (p EnvKeyFile) Credentials(ctx context.Context, scopes ...string) (*google.Credentials, error) {
	if p.EnvVar == "" {
		return nil, errors.New("no env var configured")
	}
	path := os.Getenv(p.EnvVar)
	if path == "" {
		return nil, fmt.Errorf("%s is not set", p.EnvVar)
	}
	return fromFile(ctx, path, scopes)
}

// KeyFile reads a JSON key file at a fixed path.
type KeyFile struct {
	Path string
}

func (p KeyFile) Name() string { return "file:" + p.Path }

func (p KeyFile) Credentials(ctx context.Context, scopes ...string) (*google.Credentials, error) {
	if p.Path == "" {
		return nil, errors.New("no key file configured")
	}
	return fromFile(ctx, p.Path, scopes)
}

// Ambient uses Google application default credentials (gcloud login,
// metadata server, ...).
type Ambient struct{}

func (Ambient) Name() string { return "ambient" }

func (Ambient) Credentials(ctx context.Context, scopes ...string) (*google.Credentials, error) {
	return google.FindDefaultCredentials(ctx, scopes...)
}

func fromFile(ctx context.Context, path string, scopes []string) (*google.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read key file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse key file %s: %w", path, err)
	}
	return creds, nil
}
