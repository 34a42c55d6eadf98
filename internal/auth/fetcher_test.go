package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jwksJSON renders a key-set document for the given RSA public keys.
func jwksJSON(t *testing.T, keys map[string]*rsa.PublicKey) string {
	t.Helper()

	doc := `{"keys":[`
	first := true
	for kid, key := range keys {
		if !first {
			doc += ","
		}
		first = false
		n := base64.RawURLEncoding.EncodeToString(key.N.Bytes())
		e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes())
		doc += fmt.Sprintf(`{"kty":"RSA","kid":"%s","alg":"RS256","use":"sig","n":"%s","e":"%s"}`, kid, n, e)
	}
	return doc + `]}`
}

func generateRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestFetcher(t *testing.T) {
	t.Run("fetches and parses a key set", func(t *testing.T) {
		key := generateRSAKey(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/.well-known/jwks.json", r.URL.Path)
			fmt.Fprint(w, jwksJSON(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey}))
		}))
		defer srv.Close()

		set, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		require.Len(t, set.Keys, 1)
		assert.Equal(t, "kid-1", set.Keys[0].KID)
		assert.Equal(t, "RS256", set.Keys[0].Alg)

		got, ok := set.KeyFor("kid-1", "RS256")
		require.True(t, ok)
		pub, ok := got.(*rsa.PublicKey)
		require.True(t, ok)
		assert.Zero(t, pub.N.Cmp(key.PublicKey.N))
	})

	t.Run("non-200 responses are classed unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL)
		assert.ErrorIs(t, err, ErrFetchUnavailable)
	})

	t.Run("unreachable authorities are classed unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from here on

		_, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL)
		assert.ErrorIs(t, err, ErrFetchUnavailable)
	})

	t.Run("slow authorities are classed timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		_, err := NewFetcher(20 * time.Millisecond).Fetch(context.Background(), srv.URL)
		assert.ErrorIs(t, err, ErrFetchTimeout)
	})

	t.Run("invalid JSON is classed malformed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html>not a key set</html>")
		}))
		defer srv.Close()

		_, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("malformed keys are skipped, valid ones kept", func(t *testing.T) {
		key := generateRSAKey(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes())
			e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes())
			fmt.Fprintf(w, `{"keys":[
				{"kty":"RSA","kid":"bad","alg":"RS256","n":"%%%%not-base64","e":"AQAB"},
				{"kty":"EC","kid":"ignored-kty","alg":"ES256"},
				{"kty":"RSA","alg":"RS256","n":"%s","e":"%s"},
				{"kty":"RSA","kid":"good","alg":"RS256","n":"%s","e":"%s"}
			]}`, n, e, n, e)
		}))
		defer srv.Close()

		set, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		require.Len(t, set.Keys, 1)
		assert.Equal(t, "good", set.Keys[0].KID)
	})

	t.Run("trailing slash on the authority URL is tolerated", func(t *testing.T) {
		key := generateRSAKey(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/.well-known/jwks.json", r.URL.Path)
			fmt.Fprint(w, jwksJSON(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey}))
		}))
		defer srv.Close()

		set, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL+"/")
		require.NoError(t, err)
		assert.Len(t, set.Keys, 1)
	})
}
