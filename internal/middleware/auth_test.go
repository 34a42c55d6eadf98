package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/careerloop/platform/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	authority := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes())
		e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes())
		fmt.Fprintf(w, `{"keys":[{"kty":"RSA","kid":"kid-1","alg":"RS256","use":"sig","n":"%s","e":"%s"}]}`, n, e)
	}))
	defer authority.Close()

	signToken := func(claims jwt.MapClaims) string {
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		token.Header["kid"] = "kid-1"
		signed, err := token.SignedString(key)
		require.NoError(t, err)
		return signed
	}

	verifier := auth.NewVerifier(
		auth.NewKeyCache(auth.NewFetcher(time.Second), time.Hour),
		auth.WithFrontendAuthority(authority.URL),
	)

	e := echo.New()
	e.GET("/admin/ping", func(c echo.Context) error {
		authCtx, ok := AuthContextFrom(c)
		require.True(t, ok)
		return c.String(http.StatusOK, "hello "+authCtx.Subject)
	}, Auth(verifier))

	t.Run("request without a token gets the generic 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthenticated"}`, rec.Body.String())
	})

	t.Run("expired token gets the same generic 401 body", func(t *testing.T) {
		rawToken := signToken(jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+rawToken)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthenticated"}`, rec.Body.String())
	})

	t.Run("malformed authorization header gets the same generic 401 body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthenticated"}`, rec.Body.String())
	})

	t.Run("valid token reaches the handler with the auth context set", func(t *testing.T) {
		rawToken := signToken(jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+rawToken)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hello user-42", rec.Body.String())
	})

	t.Run("bearer prefix is case-insensitive", func(t *testing.T) {
		rawToken := signToken(jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set(echo.HeaderAuthorization, "bearer "+rawToken)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthContextFrom(t *testing.T) {
	t.Run("returns false when the middleware never ran", func(t *testing.T) {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

		_, ok := AuthContextFrom(c)
		assert.False(t, ok)
	})
}
