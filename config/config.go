package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/layer-3/tokenizer/adapters/tokenizer"
)

// Environment variables read by Load
const (
	EnvSecret       = "TOKENIZER_SECRET"
	EnvSecretBase64 = "TOKENIZER_SECRET_BASE64"
	EnvAccessTTL    = "ACCESS_TTL"
	EnvRefreshTTL   = "REFRESH_TTL"
	EnvHTTPAddr     = "HTTP_ADDR"
	EnvAdminAPIKey  = "ADMIN_API_KEY"
	EnvRedisURL     = "REDIS_URL"
	EnvLogLevel     = "LOG_LEVEL"
)

const (
	defaultAccessTTL  = 10 * time.Minute
	defaultRefreshTTL = 24 * time.Hour
	defaultHTTPAddr   = ":9000"
	defaultLogLevel   = "info"
)

// ErrMissingSecret is returned when neither secret variable is set
var ErrMissingSecret = errors.New("missing signing secret")

// Config holds the runtime settings of the token service
type Config struct {
	EncodedSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	HTTPAddr      string
	AdminAPIKey   string
	RedisURL      string
	LogLevel      string
}

// Load reads the configuration from the environment, after loading the
// given .env files when they exist. The secret is validated here so that a
// weak key stops the process before it serves traffic.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		HTTPAddr:    getEnv(EnvHTTPAddr, defaultHTTPAddr),
		AdminAPIKey: os.Getenv(EnvAdminAPIKey),
		RedisURL:    os.Getenv(EnvRedisURL),
		LogLevel:    getEnv(EnvLogLevel, defaultLogLevel),
	}

	var err error
	if cfg.AccessTTL, err = getDuration(EnvAccessTTL, defaultAccessTTL); err != nil {
		return nil, err
	}
	if cfg.RefreshTTL, err = getDuration(EnvRefreshTTL, defaultRefreshTTL); err != nil {
		return nil, err
	}

	switch {
	case os.Getenv(EnvSecretBase64) != "":
		cfg.EncodedSecret = os.Getenv(EnvSecretBase64)
	case os.Getenv(EnvSecret) != "":
		cfg.EncodedSecret = tokenizer.NewHMACTokenizer().EncodeSecretKey([]byte(os.Getenv(EnvSecret)))
	default:
		return nil, fmt.Errorf("set %s or %s: %w", EnvSecret, EnvSecretBase64, ErrMissingSecret)
	}

	if err := tokenizer.ValidateSecretKey(cfg.EncodedSecret); err != nil {
		return nil, fmt.Errorf("invalid signing secret: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return d, nil
}
