package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestValidateEnv_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STUB_ENVIRONMENT", "test")

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("ValidateEnv failed: %v", err)
	}
	if cfg.Issuer != "aquakeys-stub" {
		t.Errorf("Expected default issuer aquakeys-stub, got %s", cfg.Issuer)
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("Expected access TTL 15m, got %s", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 7*24*time.Hour {
		t.Errorf("Expected refresh TTL 7d, got %s", cfg.RefreshTTL())
	}
}

func TestValidateEnv_PrefixedOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STUB_ENVIRONMENT", "test")
	t.Setenv("STUB_PORT", "8088")
	t.Setenv("STUB_REQUIRE_CONFIRMED_EMAIL", "true")

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("ValidateEnv failed: %v", err)
	}
	if cfg.Port != "8088" {
		t.Errorf("Expected port 8088, got %s", cfg.Port)
	}
	if !cfg.RequireConfirmedEmail {
		t.Errorf("Expected confirmation to be required")
	}
}

func TestValidateEnv_DotEnvInDevelopment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("STUB_ENVIRONMENT", "development")

	if err := writeFile(".env", "STUB_CLIENT_ID=from-dotenv\n"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { unsetenv("STUB_CLIENT_ID") })

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("ValidateEnv failed: %v", err)
	}
	if cfg.ClientID != "from-dotenv" {
		t.Errorf("Expected client id from .env, got %s", cfg.ClientID)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &EnvConfig{
		JWTSecret:       "short",
		ClientID:        "",
		AccessTokenTTL:  0,
		RefreshTokenTTL: 10,
		BaseURL:         "not a url",
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation to fail")
	}
	for _, want := range []string{"JWT_SECRET", "CLIENT_ID", "ACCESS_TOKEN_TTL", "BASE_URL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %s, got %v", want, err)
		}
	}
	if strings.Contains(err.Error(), "REFRESH_TOKEN_TTL") {
		t.Errorf("REFRESH_TOKEN_TTL is valid, got %v", err)
	}
}

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{
		"":                 "<not set>",
		"short":            "***",
		"0123456789abcdef": "0123...cdef",
	}
	for in, want := range cases {
		if got := MaskSecret(in); got != want {
			t.Errorf("MaskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func writeFile(name, content string) error {
	return os.WriteFile(name, []byte(content), 0o600)
}

// godotenv sets variables process-wide, outside t.Setenv's bookkeeping.
func unsetenv(key string) {
	os.Unsetenv(key)
}
