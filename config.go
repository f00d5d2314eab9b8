package accounts

import (
	"os"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// DefaultInactiveUserDays is the inactivity threshold applied when the
// environment does not override it.
const DefaultInactiveUserDays = 182

// Config carries the process-wide settings the lifecycle service consumes.
type Config struct {
	SigningKey       string
	TokenExpiration  int // hours
	Issuer           string
	Audience         []string
	InactiveUserDays int
}

// LoadConfig reads configuration from the environment, honoring a local
// .env file when present. The signing key is required.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		SigningKey:       os.Getenv("ACCOUNTS_SIGNING_KEY"),
		TokenExpiration:  envInt("ACCOUNTS_TOKEN_EXPIRATION", 72),
		Issuer:           os.Getenv("ACCOUNTS_ISSUER"),
		Audience:         envList("ACCOUNTS_AUDIENCE"),
		InactiveUserDays: envInt("ACCOUNTS_INACTIVE_USER_DAYS", DefaultInactiveUserDays),
	}

	if cfg.SigningKey == "" {
		return nil, goerrors.New("ACCOUNTS_SIGNING_KEY is required", goerrors.CategoryBadInput)
	}

	if cfg.InactiveUserDays <= 0 {
		return nil, goerrors.New("ACCOUNTS_INACTIVE_USER_DAYS must be a positive integer", goerrors.CategoryBadInput)
	}

	return cfg, nil
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
