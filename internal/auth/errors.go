package auth

import "errors"

// Sentinel errors for the authentication layer.
var (
	// ErrUnauthenticated is the only error surfaced to callers of Verify.
	// It deliberately carries no detail about which check failed.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrFetchTimeout indicates the key-set request exceeded its deadline.
	ErrFetchTimeout = errors.New("key set fetch timed out")

	// ErrFetchUnavailable indicates the authority answered with a
	// non-success status or was unreachable.
	ErrFetchUnavailable = errors.New("key set endpoint unavailable")

	// ErrMalformedResponse indicates the authority's response body could
	// not be parsed as a key set.
	ErrMalformedResponse = errors.New("malformed key set response")

	// ErrNoMatchingKey indicates the token's key identifier is not present
	// in the authority's key set.
	ErrNoMatchingKey = errors.New("no matching signing key")
)
