package aqsdk

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quatton/aquakeys/pkg/kv"
	"github.com/quatton/aquakeys/pkg/transport"
	"github.com/spf13/viper"
)

type Config struct {
	BaseURL   string          `mapstructure:"baseUrl"`
	ClientID  string          `mapstructure:"clientId"`
	Store     string          `mapstructure:"store"`
	StorePath string          `mapstructure:"storePath"`
	Valkey    kv.ValkeyConfig `mapstructure:"valkey"`
	Timeout   time.Duration   `mapstructure:"timeout"`
	Breaker   BreakerConfig   `mapstructure:"breaker"`

	v *viper.Viper // instance-specific viper
}

// BreakerConfig turns the transport circuit breaker on and tunes it.
type BreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	FailureRatio float64       `mapstructure:"failureRatio"`
	MinRequests  uint32        `mapstructure:"minRequests"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

const (
	EnvPrefix  = "AQUAKEYS"
	ConfigName = "aquakeys"
	ConfigRoot = ".aquakeys"

	BaseUrlKey   = "baseUrl"
	ClientIDKey  = "clientId"
	StoreKey     = "store"
	StorePathKey = "storePath"
	TimeoutKey   = "timeout"
)

// LoadConfig creates a new Config instance with its own viper
// This is the only way to load config (no global state)
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	} else {
		// Project config (tracked) in the current directory
		for _, name := range []string{"aquakeys.yaml", "aquakeys.yml", ".aquakeys.yaml"} {
			if _, err := os.Stat(name); err == nil {
				v.SetConfigFile(name)
				if err := v.ReadInConfig(); err == nil {
					break
				}
			}
		}

		// Local overrides (untracked) - .aquakeys/config.yaml
		localConfigPath := filepath.Join(ConfigRoot, "config.yaml")
		if _, err := os.Stat(localConfigPath); err == nil {
			v.SetConfigFile(localConfigPath)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("merging local config: %w", err)
			}
		}
	}

	setDefaults(v)

	return fromViper(v)
}

// Reload re-reads the values after flags were bound to the viper instance.
func (c *Config) Reload() error {
	if c.v == nil {
		return nil
	}
	setDefaults(c.v)
	fresh, err := fromViper(c.v)
	if err != nil {
		return err
	}
	*c = *fresh
	return nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.Store != "" && !knownBackend(cfg.Store) {
		return nil, fmt.Errorf("unknown store %q (want keyring, file, valkey or memory)", cfg.Store)
	}

	cfg.v = v
	return &cfg, nil
}

func knownBackend(name string) bool {
	switch name {
	case kv.BackendKeyring, kv.BackendFile, kv.BackendValkey, kv.BackendMemory:
		return true
	}
	return false
}

// Viper returns the underlying viper instance
// Useful for flag binding
func (c *Config) Viper() *viper.Viper {
	return c.v
}

func setDefaults(v *viper.Viper) {
	if !v.IsSet(BaseUrlKey) || v.GetString(BaseUrlKey) == "" {
		v.SetDefault(BaseUrlKey, "http://localhost:5000")
	} else {
		normalized := strings.TrimRight(v.GetString(BaseUrlKey), "/")
		v.Set(BaseUrlKey, normalized)
	}

	v.SetDefault(ClientIDKey, transport.DefaultClientID)
	v.SetDefault(StoreKey, kv.BackendKeyring)
	v.SetDefault(StorePathKey, defaultStorePath())
	v.SetDefault(TimeoutKey, 30*time.Second)

	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.password", "")
	v.SetDefault("valkey.db", 0)

	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.failureRatio", 0.5)
	v.SetDefault("breaker.minRequests", 5)
	v.SetDefault("breaker.timeout", 30*time.Second)
}

func defaultStorePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ConfigRoot, "state.yaml")
	}
	return filepath.Join(ConfigRoot, "state.yaml")
}

// ConfigFileUsed returns the config file that was used (if any)
func (c *Config) ConfigFileUsed() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}
