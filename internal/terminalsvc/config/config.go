package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/avvvet/terminal-services/internal/terminalsvc/store"
)

const (
	DefaultPort      = "8080"
	DefaultRateLimit = 100
)

type Config struct {
	Port          string
	RateLimit     int // requests per minute per IP
	Limits        store.Limits
	BootstrapFile string
	NatsURL       string
	NatsToken     string
	CORSOrigins   []string
}

// Load reads the configuration from the environment. Unset variables take
// their defaults; malformed numbers are an error.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("TERMINAL_SERVICE_PORT", DefaultPort),
		BootstrapFile: os.Getenv("BOOTSTRAP_FILE"),
		NatsURL:       os.Getenv("NATS_URL"),
		NatsToken:     os.Getenv("NATS_TOKEN"),
		CORSOrigins:   splitList(os.Getenv("CORS_ORIGINS")),
	}

	var err error
	if cfg.RateLimit, err = getInt("RATE_LIMIT", DefaultRateLimit); err != nil {
		return Config{}, err
	}
	if cfg.Limits.Terminals, err = getInt("MAX_TERMINALS", store.DefaultMaxTerminals); err != nil {
		return Config{}, err
	}
	if cfg.Limits.CardTypes, err = getInt("MAX_CARD_TYPES", store.DefaultMaxCardTypes); err != nil {
		return Config{}, err
	}
	if cfg.Limits.TransactionTypes, err = getInt("MAX_TRANSACTION_TYPES", store.DefaultMaxTransactionTypes); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be a positive integer", key, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
