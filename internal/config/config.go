package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Dictionary DictionaryConfig
	Bootstrap  BootstrapConfig
	WordOfDay  WordOfDayConfig
	Notify     NotifyConfig
	Netmon     NetmonConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port int
	// Token enables bearer auth on the HTTP API when set.
	Token string
}

type StorageConfig struct {
	DataDir string
}

type DictionaryConfig struct {
	BaseURL   string
	RandomURL string
	Timeout   string
}

type BootstrapConfig struct {
	// WordsFile replaces the embedded word list when set.
	WordsFile string
}

type WordOfDayConfig struct {
	Hour        int
	MaxAttempts int
}

type NotifyConfig struct {
	Enabled bool
}

type NetmonConfig struct {
	Interval string
	URL      string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Dictionary: DictionaryConfig{
			BaseURL:   "https://api.dictionaryapi.dev/api/v2/entries/en",
			RandomURL: "https://random-word-api.herokuapp.com",
			Timeout:   "10s",
		},
		WordOfDay: WordOfDayConfig{
			Hour:        8,
			MaxAttempts: 5,
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
		Netmon: NetmonConfig{
			Interval: "30s",
			URL:      "https://api.dictionaryapi.dev",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.kalambet.lexis) and the
// server token falls back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/lexis/config.json
// and the token falls back to $XDG_DATA_HOME/lexis/secrets.json.
//
// Environment variables (LEXIS_*) override backend values on all platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Server.Token == "" {
		if token, err := kc.Get("lexis", "server_token"); err == nil && token != "" {
			cfg.Server.Token = token
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.WordOfDay.Hour < 0 || c.WordOfDay.Hour > 23 {
		return fmt.Errorf("invalid wotd.hour %d: must be 0-23", c.WordOfDay.Hour)
	}
	if c.WordOfDay.MaxAttempts <= 0 {
		return fmt.Errorf("invalid wotd.max_attempts %d: must be positive", c.WordOfDay.MaxAttempts)
	}
	if _, err := c.DictionaryTimeout(); err != nil {
		return err
	}
	if _, err := c.NetmonInterval(); err != nil {
		return err
	}
	return nil
}

// DictionaryTimeout parses dictionary.timeout.
func (c Config) DictionaryTimeout() (time.Duration, error) {
	return parsePositiveDuration("dictionary.timeout", c.Dictionary.Timeout)
}

// NetmonInterval parses netmon.interval.
func (c Config) NetmonInterval() (time.Duration, error) {
	return parsePositiveDuration("netmon.interval", c.Netmon.Interval)
}

func parsePositiveDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}

// keychainReader reads the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
