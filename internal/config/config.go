package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes typed access to application configuration. Components
// depend on this interface rather than the concrete Config so tests can
// substitute fixed values.
type Provider interface {
	GetAddr() string
	GetFrontendAuthorityURL() string
	GetKeySetTTL() time.Duration
	GetKeyFetchTimeout() time.Duration
	GetDeliveryMaxRetries() int
	GetDeliveryInitialBackoff() time.Duration
	GetDeliveryMaxBackoff() time.Duration
	GetDeadLetterTopic() string
	GetDeadLetterRetention() int
	GetDBUrl() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
}

// Config holds all configuration for the application.
type Config struct {
	Addr string

	// FrontendAuthorityURL, when set, overrides the issuer claim as the
	// authority every token is verified against.
	FrontendAuthorityURL string
	KeySetTTL            time.Duration
	KeyFetchTimeout      time.Duration

	DeliveryMaxRetries     int
	DeliveryInitialBackoff time.Duration
	DeliveryMaxBackoff     time.Duration
	DeadLetterTopic        string
	DeadLetterRetention    int

	// SurrealDB settings for the user directory. All optional: when DBUrl
	// is empty the server runs with a no-op directory.
	DBUrl  string
	DBNs   string
	DBDb   string
	DBUser string
	DBPass string
}

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Addr:                 getEnv("APP_ADDR", ":8080"),
		FrontendAuthorityURL: os.Getenv("AUTH_FRONTEND_AUTHORITY_URL"),
		KeySetTTL:            getDuration("AUTH_KEYSET_TTL", time.Hour),
		KeyFetchTimeout:      getDuration("AUTH_KEY_FETCH_TIMEOUT", 10*time.Second),

		DeliveryMaxRetries:     getInt("DELIVERY_MAX_RETRIES", 5),
		DeliveryInitialBackoff: getDuration("DELIVERY_INITIAL_BACKOFF", 100*time.Millisecond),
		DeliveryMaxBackoff:     getDuration("DELIVERY_MAX_BACKOFF", 30*time.Second),
		DeadLetterTopic:        getEnv("DELIVERY_DEAD_LETTER_TOPIC", "dead-letter"),
		DeadLetterRetention:    getInt("DELIVERY_DEAD_LETTER_RETENTION", 256),

		DBUrl:  os.Getenv("SURREAL_URL"),
		DBUser: os.Getenv("SURREAL_USER"),
		DBPass: os.Getenv("SURREAL_PASS"),
		DBNs:   os.Getenv("SURREAL_NS"),
		DBDb:   os.Getenv("SURREAL_DB"),
	}

	if cfg.DBUrl != "" && (cfg.DBNs == "" || cfg.DBDb == "") {
		log.Fatal("SURREAL_URL is set but SURREAL_NS or SURREAL_DB is missing.")
	}

	return cfg
}

func (c *Config) GetAddr() string                        { return c.Addr }
func (c *Config) GetFrontendAuthorityURL() string        { return c.FrontendAuthorityURL }
func (c *Config) GetKeySetTTL() time.Duration            { return c.KeySetTTL }
func (c *Config) GetKeyFetchTimeout() time.Duration      { return c.KeyFetchTimeout }
func (c *Config) GetDeliveryMaxRetries() int             { return c.DeliveryMaxRetries }
func (c *Config) GetDeliveryInitialBackoff() time.Duration { return c.DeliveryInitialBackoff }
func (c *Config) GetDeliveryMaxBackoff() time.Duration   { return c.DeliveryMaxBackoff }
func (c *Config) GetDeadLetterTopic() string             { return c.DeadLetterTopic }
func (c *Config) GetDeadLetterRetention() int            { return c.DeadLetterRetention }
func (c *Config) GetDBUrl() string                       { return c.DBUrl }
func (c *Config) GetDBNs() string                        { return c.DBNs }
func (c *Config) GetDBDb() string                        { return c.DBDb }
func (c *Config) GetDBUser() string                      { return c.DBUser }
func (c *Config) GetDBPass() string                      { return c.DBPass }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
