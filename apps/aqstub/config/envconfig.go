package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable, e.g. STUB_PORT. The bare name is
// used as a fallback.
const EnvPrefix = "STUB"

type EnvConfig struct {
	Port                  string `envconfig:"PORT" default:"5000"`
	BaseURL               string `envconfig:"BASE_URL" default:"http://localhost:5000"`
	ClientID              string `envconfig:"CLIENT_ID" default:"162ebb94-cc91-459e-8108-ca16be52e940"`
	JWTSecret             string `envconfig:"JWT_SECRET" default:"aquakeys-stub-development-secret-0000"`
	Issuer                string `envconfig:"ISSUER" default:"aquakeys-stub"`
	AccessTokenTTL        int    `envconfig:"ACCESS_TOKEN_TTL" default:"900"`
	RefreshTokenTTL       int    `envconfig:"REFRESH_TOKEN_TTL" default:"604800"` // 7 days
	RequireConfirmedEmail bool   `envconfig:"REQUIRE_CONFIRMED_EMAIL" default:"false"`
	Environment           string `envconfig:"ENVIRONMENT" default:"development"`
	ValkeyAddr            string `envconfig:"VALKEY_ADDR"`
	ValkeyPassword        string `envconfig:"VALKEY_PASSWORD"`
	ValkeyDB              int    `envconfig:"VALKEY_DB" default:"0"`
}

func isDev() bool {
	env := strings.ToLower(os.Getenv(EnvPrefix + "_ENVIRONMENT"))
	if env == "" {
		env = strings.ToLower(os.Getenv("ENVIRONMENT"))
	}
	return env == "development" || env == "dev" || env == ""
}

func ValidateEnv() (*EnvConfig, error) {
	if isDev() {
		if err := godotenv.Load(); err != nil {
			log.Println("ℹ No .env file found")
		} else {
			log.Println("✓ Loaded .env file")
		}
	}

	var cfg EnvConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *EnvConfig) Validate() error {
	var errors []string

	if len(c.JWTSecret) < 32 {
		errors = append(errors, "  ❌ JWT_SECRET must be at least 32 characters")
	}
	if c.ClientID == "" {
		errors = append(errors, "  ❌ CLIENT_ID must not be empty")
	}
	if c.AccessTokenTTL <= 0 {
		errors = append(errors, "  ❌ ACCESS_TOKEN_TTL must be positive")
	}
	if c.RefreshTokenTTL <= 0 {
		errors = append(errors, "  ❌ REFRESH_TOKEN_TTL must be positive")
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		errors = append(errors, "  ❌ BASE_URL must be a valid URL")
	}

	if len(errors) > 0 {
		return fmt.Errorf("environment validation failed:\n%s", strings.Join(errors, "\n"))
	}
	return nil
}

func (c *EnvConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenTTL) * time.Second
}

func (c *EnvConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTL) * time.Second
}

func MaskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func (c *EnvConfig) Print(fmtr func(string, ...interface{})) {
	fmtr("📋 Configuration:\n")
	fmtr("  Environment: %s\n", c.Environment)
	fmtr("  Port: %s\n", c.Port)
	fmtr("  Base URL: %s\n", c.BaseURL)
	fmtr("  Client ID: %s\n", c.ClientID)
	fmtr("  JWT Secret: %s\n", MaskSecret(c.JWTSecret))
	fmtr("  Access TTL: %ds\n", c.AccessTokenTTL)
	fmtr("  Refresh TTL: %ds\n", c.RefreshTokenTTL)

	if c.ValkeyAddr != "" {
		fmtr("  Refresh tokens: valkey %s/%d (password %s)\n", c.ValkeyAddr, c.ValkeyDB, MaskSecret(c.ValkeyPassword))
	} else {
		fmtr("  Refresh tokens: in memory\n")
	}

	if c.RequireConfirmedEmail {
		fmtr("  Email confirmation: ✓ Required\n")
	} else {
		fmtr("  Email confirmation: ✗ Not required\n")
	}
}
