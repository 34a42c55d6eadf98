package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("defaults apply when the environment is empty", func(t *testing.T) {
		cfg := New()

		assert.Equal(t, ":8080", cfg.GetAddr())
		assert.Equal(t, time.Hour, cfg.GetKeySetTTL())
		assert.Equal(t, 10*time.Second, cfg.GetKeyFetchTimeout())
		assert.Equal(t, 5, cfg.GetDeliveryMaxRetries())
		assert.Equal(t, 100*time.Millisecond, cfg.GetDeliveryInitialBackoff())
		assert.Equal(t, 30*time.Second, cfg.GetDeliveryMaxBackoff())
		assert.Equal(t, "dead-letter", cfg.GetDeadLetterTopic())
		assert.Equal(t, 256, cfg.GetDeadLetterRetention())
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("APP_ADDR", ":9090")
		t.Setenv("AUTH_FRONTEND_AUTHORITY_URL", "https://auth.example.com")
		t.Setenv("AUTH_KEYSET_TTL", "30m")
		t.Setenv("DELIVERY_MAX_RETRIES", "3")
		t.Setenv("DELIVERY_DEAD_LETTER_TOPIC", "poison")

		cfg := New()

		assert.Equal(t, ":9090", cfg.GetAddr())
		assert.Equal(t, "https://auth.example.com", cfg.GetFrontendAuthorityURL())
		assert.Equal(t, 30*time.Minute, cfg.GetKeySetTTL())
		assert.Equal(t, 3, cfg.GetDeliveryMaxRetries())
		assert.Equal(t, "poison", cfg.GetDeadLetterTopic())
	})

	t.Run("unparseable values fall back to defaults", func(t *testing.T) {
		t.Setenv("AUTH_KEYSET_TTL", "soon")
		t.Setenv("DELIVERY_MAX_RETRIES", "many")

		cfg := New()

		assert.Equal(t, time.Hour, cfg.GetKeySetTTL())
		assert.Equal(t, 5, cfg.GetDeliveryMaxRetries())
	})
}
