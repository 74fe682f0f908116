package aqsdk

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quatton/aquakeys/pkg/transport"
)

func TestLoadConfig_ProjectConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	projectConfig := `
baseUrl: http://example.com:3000
clientId: my-client
store: file
`
	os.WriteFile("aquakeys.yaml", []byte(projectConfig), 0644)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.BaseURL != "http://example.com:3000" {
		t.Errorf("Expected baseUrl http://example.com:3000, got %s", cfg.BaseURL)
	}
	if cfg.ClientID != "my-client" {
		t.Errorf("Expected clientId my-client, got %s", cfg.ClientID)
	}
	if cfg.Store != "file" {
		t.Errorf("Expected store file, got %s", cfg.Store)
	}
}

func TestLoadConfig_LocalOverride(t *testing.T) {
	t.Chdir(t.TempDir())

	os.WriteFile("aquakeys.yaml", []byte("baseUrl: http://example.com:3000\nstore: file\n"), 0644)

	os.MkdirAll(ConfigRoot, 0755)
	localConfig := `
baseUrl: http://localhost:8080
timeout: 5s
`
	os.WriteFile(filepath.Join(ConfigRoot, "config.yaml"), []byte(localConfig), 0644)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// Local override should win
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("Expected baseUrl http://localhost:8080 (from local override), got %s", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s (from local override), got %s", cfg.Timeout)
	}
	// untouched keys survive the merge
	if cfg.Store != "file" {
		t.Errorf("Expected store file (from project config), got %s", cfg.Store)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.BaseURL != "http://localhost:5000" {
		t.Errorf("Expected default baseUrl http://localhost:5000, got %s", cfg.BaseURL)
	}
	if cfg.ClientID != transport.DefaultClientID {
		t.Errorf("Expected default clientId %s, got %s", transport.DefaultClientID, cfg.ClientID)
	}
	if cfg.Store != "keyring" {
		t.Errorf("Expected default store keyring, got %s", cfg.Store)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %s", cfg.Timeout)
	}
	if cfg.Breaker.Enabled {
		t.Errorf("Expected breaker disabled by default")
	}
	if cfg.Breaker.MinRequests != 5 {
		t.Errorf("Expected breaker.minRequests 5, got %d", cfg.Breaker.MinRequests)
	}
	if cfg.Valkey.Addr != "localhost:6379" {
		t.Errorf("Expected valkey.addr localhost:6379, got %s", cfg.Valkey.Addr)
	}
	if filepath.Base(cfg.StorePath) != "state.yaml" {
		t.Errorf("Expected storePath ending in state.yaml, got %s", cfg.StorePath)
	}
}

func TestLoadConfig_TrailingSlash(t *testing.T) {
	t.Chdir(t.TempDir())

	os.WriteFile("aquakeys.yaml", []byte("baseUrl: http://example.com:3000///\n"), 0644)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BaseURL != "http://example.com:3000" {
		t.Errorf("Expected trailing slashes trimmed, got %s", cfg.BaseURL)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())

	os.WriteFile("aquakeys.yaml", []byte("baseUrl: http://example.com:3000\n"), 0644)
	t.Setenv("AQUAKEYS_BASEURL", "http://env.example.com")
	t.Setenv("AQUAKEYS_BREAKER_ENABLED", "true")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BaseURL != "http://env.example.com" {
		t.Errorf("Expected baseUrl from env, got %s", cfg.BaseURL)
	}
	if !cfg.Breaker.Enabled {
		t.Errorf("Expected breaker enabled from env")
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	// ignored when an explicit file is given
	os.WriteFile("aquakeys.yaml", []byte("baseUrl: http://project.example.com\n"), 0644)

	explicit := filepath.Join(dir, "other.yaml")
	os.WriteFile(explicit, []byte("baseUrl: http://explicit.example.com\n"), 0644)

	cfg, err := LoadConfig(explicit)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BaseURL != "http://explicit.example.com" {
		t.Errorf("Expected baseUrl from explicit file, got %s", cfg.BaseURL)
	}
	if cfg.ConfigFileUsed() != explicit {
		t.Errorf("Expected ConfigFileUsed %s, got %s", explicit, cfg.ConfigFileUsed())
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := LoadConfig("does-not-exist.yaml"); err == nil {
		t.Fatal("Expected an error for a missing config file")
	}
}

func TestLoadConfig_UnknownStore(t *testing.T) {
	t.Chdir(t.TempDir())

	os.WriteFile("aquakeys.yaml", []byte("store: floppy\n"), 0644)

	if _, err := LoadConfig(""); err == nil {
		t.Fatal("Expected an error for an unknown store backend")
	}
}

func TestConfig_Reload(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	cfg.Viper().Set(BaseUrlKey, "http://flag.example.com/")
	if err := cfg.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if cfg.BaseURL != "http://flag.example.com" {
		t.Errorf("Expected reloaded baseUrl http://flag.example.com, got %s", cfg.BaseURL)
	}
}
