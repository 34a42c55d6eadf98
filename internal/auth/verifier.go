package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthContext carries the verified identity for one request. It is scoped
// to the request lifetime and never persisted.
type AuthContext struct {
	// Subject is the verified subject identifier from the token.
	Subject string
	// Issuer is the authority that signed the token.
	Issuer string
	// Claims holds the full verified claim set.
	Claims map[string]any
}

// Verifier validates bearer tokens against key sets resolved through the
// KeyCache. Verification is all-or-nothing: no partial trust is extended,
// and every failure surfaces as ErrUnauthenticated so callers never learn
// which check rejected the token.
type Verifier struct {
	cache *KeyCache

	// frontendAuthority, when non-empty, overrides the issuer claim as the
	// authority every token is verified against.
	frontendAuthority string
	leeway            time.Duration
	parser            *jwt.Parser
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithFrontendAuthority pins verification to a statically configured
// authority instead of trusting the token's issuer claim.
func WithFrontendAuthority(url string) VerifierOption {
	return func(v *Verifier) {
		v.frontendAuthority = url
	}
}

// WithLeeway sets the clock-skew tolerance for temporal claims.
func WithLeeway(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.leeway = d
	}
}

// NewVerifier creates a token verifier backed by the given key cache.
func NewVerifier(cache *KeyCache, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		cache:  cache,
		leeway: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)
	return v
}

// Verify validates a raw bearer token and returns the authenticated
// context. Any failure, including key-set fetch problems, yields
// ErrUnauthenticated: authentication fails closed.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*AuthContext, error) {
	if rawToken == "" {
		return nil, v.reject("empty token", nil)
	}

	authority, err := v.resolveAuthority(rawToken)
	if err != nil {
		return nil, v.reject("authority resolution failed", err)
	}

	keySet, err := v.cache.Get(ctx, authority)
	if err != nil {
		return nil, v.reject("key set unavailable", err)
	}

	token, err := v.parser.Parse(rawToken, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrNoMatchingKey
		}
		key, ok := keySet.KeyFor(kid, t.Method.Alg())
		if !ok {
			return nil, ErrNoMatchingKey
		}
		return key, nil
	})
	if err != nil {
		return nil, v.reject("token validation failed", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, v.reject("unexpected claims type", nil)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, v.reject("missing subject", err)
	}
	issuer, _ := claims.GetIssuer()

	return &AuthContext{
		Subject: subject,
		Issuer:  issuer,
		Claims:  map[string]any(claims),
	}, nil
}

// resolveAuthority determines which authority's keys verify this token:
// the statically configured frontend authority when present, otherwise the
// issuer claim read from the (not yet verified) token.
func (v *Verifier) resolveAuthority(rawToken string) (string, error) {
	if v.frontendAuthority != "" {
		return v.frontendAuthority, nil
	}

	token, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	issuer, err := token.Claims.GetIssuer()
	if err != nil || issuer == "" {
		return "", fmt.Errorf("token has no recognizable issuer")
	}
	return issuer, nil
}

// reject logs the internal cause and returns the uniform sentinel.
func (v *Verifier) reject(reason string, cause error) error {
	slog.Warn("Token verification rejected", "reason", reason, "error", cause)
	return ErrUnauthenticated
}
