package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "LEXIS_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.token", typ: kString, env: "LEXIS_SERVER_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Server.Token = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Token },
	},
	{
		key: "storage.data_dir", typ: kString, env: "LEXIS_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "dictionary.base_url", typ: kString, env: "LEXIS_DICTIONARY_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Dictionary.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Dictionary.BaseURL },
	},
	{
		key: "dictionary.random_url", typ: kString, env: "LEXIS_DICTIONARY_RANDOM_URL",
		apply:   func(cfg *Config, v any) { cfg.Dictionary.RandomURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Dictionary.RandomURL },
	},
	{
		key: "dictionary.timeout", typ: kString, env: "LEXIS_DICTIONARY_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Dictionary.Timeout = v.(string) },
		extract: func(cfg Config) any { return cfg.Dictionary.Timeout },
	},
	{
		key: "bootstrap.words_file", typ: kString, env: "LEXIS_BOOTSTRAP_WORDS_FILE",
		apply:   func(cfg *Config, v any) { cfg.Bootstrap.WordsFile = v.(string) },
		extract: func(cfg Config) any { return cfg.Bootstrap.WordsFile },
	},
	{
		key: "wotd.hour", typ: kInt, env: "LEXIS_WOTD_HOUR",
		apply:   func(cfg *Config, v any) { cfg.WordOfDay.Hour = v.(int) },
		extract: func(cfg Config) any { return cfg.WordOfDay.Hour },
	},
	{
		key: "wotd.max_attempts", typ: kInt, env: "LEXIS_WOTD_MAX_ATTEMPTS",
		apply:   func(cfg *Config, v any) { cfg.WordOfDay.MaxAttempts = v.(int) },
		extract: func(cfg Config) any { return cfg.WordOfDay.MaxAttempts },
	},
	{
		key: "notify.enabled", typ: kBool, env: "LEXIS_NOTIFY_ENABLED",
		apply:   func(cfg *Config, v any) { cfg.Notify.Enabled = v.(bool) },
		extract: func(cfg Config) any { return cfg.Notify.Enabled },
	},
	{
		key: "netmon.interval", typ: kString, env: "LEXIS_NETMON_INTERVAL",
		apply:   func(cfg *Config, v any) { cfg.Netmon.Interval = v.(string) },
		extract: func(cfg Config) any { return cfg.Netmon.Interval },
	},
	{
		key: "netmon.url", typ: kString, env: "LEXIS_NETMON_URL",
		apply:   func(cfg *Config, v any) { cfg.Netmon.URL = v.(string) },
		extract: func(cfg Config) any { return cfg.Netmon.URL },
	},
	{
		key: "log.level", typ: kString, env: "LEXIS_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool:
			v, ok, err := b.GetBool(s.key)
			if err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] %v. Using default value.\n", err)
				continue
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, b)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
