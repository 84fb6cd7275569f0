package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	keyfunc "github.com/MicahParks/keyfunc/v3"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned by an Authenticator when the presented
// bearer token fails signature, issuer, audience, or expiry checks.
var ErrUnauthorized = errors.New("extdemo: unauthorized")

// Authenticator validates the bearer token on a handshake request and
// returns the identity to attribute the resulting connection to.
type Authenticator interface {
	CheckAuthentication(ctx context.Context, req *http.Request) (string, error)
}

// bearerToken extracts the token from a standard "Authorization: Bearer
// <token>" header.
func bearerToken(req *http.Request) (string, bool) {
	h := req.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	return strings.TrimPrefix(h, prefix), true
}

// OIDCAuthenticatorConfig controls discovery-based bearer token
// validation.
type OIDCAuthenticatorConfig struct {
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// OIDCAuthenticator validates access tokens against an OIDC issuer's
// published JWKS, refreshed automatically in the background.
type OIDCAuthenticator struct {
	cfg     OIDCAuthenticatorConfig
	issuer  string
	keyfunc jwt.Keyfunc
}

// NewOIDCAuthenticator performs discovery against cfg.Issuer and builds an
// Authenticator that verifies RS256-signed access tokens; no other
// signing algorithm is accepted.
func NewOIDCAuthenticator(ctx context.Context, cfg OIDCAuthenticatorConfig) (*OIDCAuthenticator, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("extdemo: issuer is required")
	}
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("extdemo: oidc discovery: %w", err)
	}
	var meta struct {
		JwksURI string `json:"jwks_uri"`
	}
	if err := provider.Claims(&meta); err != nil {
		return nil, fmt.Errorf("extdemo: invalid discovery document: %w", err)
	}
	if meta.JwksURI == "" {
		return nil, errors.New("extdemo: discovery document missing jwks_uri")
	}
	kf, err := keyfunc.NewDefaultCtx(ctx, []string{meta.JwksURI})
	if err != nil {
		return nil, fmt.Errorf("extdemo: jwks init: %w", err)
	}
	return &OIDCAuthenticator{
		cfg:    cfg,
		issuer: cfg.Issuer,
		keyfunc: func(t *jwt.Token) (any, error) {
			return kf.Keyfunc(t)
		},
	}, nil
}

// CheckAuthentication implements Authenticator.
func (a *OIDCAuthenticator) CheckAuthentication(ctx context.Context, req *http.Request) (string, error) {
	tok, ok := bearerToken(req)
	if !ok || tok == "" {
		return "", fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(a.issuer),
		jwt.WithLeeway(a.cfg.Leeway),
	}
	if a.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(a.cfg.Audience))
	}
	parsed, err := jwt.NewParser(opts...).Parse(tok, a.keyfunc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: unexpected claims type", ErrUnauthorized)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("%w: missing sub claim", ErrUnauthorized)
	}
	return sub, nil
}

// StaticAuthenticator accepts any request bearing exactly Token and
// attributes it to Subject. It exists for local development and for
// exercising the handshake handler in tests without a live OIDC provider.
type StaticAuthenticator struct {
	Token   string
	Subject string
}

// CheckAuthentication implements Authenticator.
func (a *StaticAuthenticator) CheckAuthentication(ctx context.Context, req *http.Request) (string, error) {
	tok, ok := bearerToken(req)
	if !ok || tok != a.Token {
		return "", fmt.Errorf("%w: token mismatch", ErrUnauthorized)
	}
	subject := a.Subject
	if subject == "" {
		subject = "test-user"
	}
	return subject, nil
}
