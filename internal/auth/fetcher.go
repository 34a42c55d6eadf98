package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds the network round-trip to an authority's
// key-set endpoint. The request is abandoned on expiry, never retried
// in-line; retry is the caller's responsibility on a subsequent request.
const DefaultFetchTimeout = 10 * time.Second

// maxKeySetBody caps the response body read to guard against a
// misbehaving authority.
const maxKeySetBody = 1 << 20 // 1 MB

// jwksResponse represents the JSON structure of a key-set endpoint response.
type jwksResponse struct {
	Keys []jwkKey `json:"keys"`
}

// jwkKey represents a single key in a key-set response. Only the fields
// needed for RSA key reconstruction are included.
type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Fetcher retrieves key sets from remote authorities over HTTP.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewFetcher creates a fetcher with the given per-request timeout. A zero
// timeout falls back to DefaultFetchTimeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Fetch retrieves the key set at {authorityURL}/.well-known/jwks.json.
// Failures are logged with the authority URL and error class before being
// surfaced: a fetch failure must never silently become "no keys, so allow".
func (f *Fetcher) Fetch(ctx context.Context, authorityURL string) (*KeySet, error) {
	endpoint := strings.TrimSuffix(authorityURL, "/") + "/.well-known/jwks.json"

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, f.classify(authorityURL, fmt.Errorf("%w: %v", ErrFetchUnavailable, err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, f.classify(authorityURL, fmt.Errorf("%w: %v", ErrFetchTimeout, err))
		}
		return nil, f.classify(authorityURL, fmt.Errorf("%w: %v", ErrFetchUnavailable, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, f.classify(authorityURL, fmt.Errorf("%w: status %d", ErrFetchUnavailable, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySetBody))
	if err != nil {
		return nil, f.classify(authorityURL, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}

	var jwks jwksResponse
	if err := json.Unmarshal(body, &jwks); err != nil {
		return nil, f.classify(authorityURL, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}

	set := &KeySet{AuthorityURL: authorityURL}
	for _, k := range jwks.Keys {
		if k.Kid == "" || k.Kty != "RSA" {
			continue
		}
		pubKey, err := parseRSAPublicKey(k.N, k.E)
		if err != nil {
			// Skip malformed keys rather than rejecting the whole set.
			slog.Warn("Skipping malformed signing key", "authority", authorityURL, "kid", k.Kid, "error", err)
			continue
		}
		set.Keys = append(set.Keys, SigningKey{
			KID: k.Kid,
			Alg: k.Alg,
			Use: k.Use,
			Key: pubKey,
		})
	}
	return set, nil
}

// classify logs the failure with its error class, then returns it.
func (f *Fetcher) classify(authorityURL string, err error) error {
	slog.Error("Key set fetch failed",
		"authority", authorityURL,
		"class", errorClass(err),
		"error", err,
	)
	return err
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, ErrFetchTimeout):
		return "timeout"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// parseRSAPublicKey constructs an *rsa.PublicKey from base64url-encoded
// modulus (n) and exponent (e) values.
func parseRSAPublicKey(nBase64, eBase64 string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nBase64)
	if err != nil {
		return nil, fmt.Errorf("decode RSA modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(eBase64)
	if err != nil {
		return nil, fmt.Errorf("decode RSA exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes)

	return &rsa.PublicKey{
		N: n,
		E: int(e.Int64()),
	}, nil
}
