// Package config loads runtime settings from an optional config file and
// TRANSFER_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/insightdelivered/transfer-extractor/internal/parser"
)

// EnvPrefix is prepended to every environment override, e.g. TRANSFER_ADDR.
const EnvPrefix = "TRANSFER"

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds the settings for the CLI and the API server.
type Config struct {
	Addr        string
	LogLevel    string
	Store       string
	RedisAddr   string
	RedisDB     int
	ResultTTL   time.Duration
	MaxUploadMB int

	// Banks and Prefixes override the recognized bank set and the wallet
	// routing prefixes. Prefix entries are NAME=PREFIX.
	Banks    []string
	Prefixes []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("store", StoreMemory)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("result_ttl", 24*time.Hour)
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("banks", []string{})
	v.SetDefault("prefixes", []string{})
}

// Load reads configuration from path when it is non-empty, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := &Config{
		Addr:        v.GetString("addr"),
		LogLevel:    v.GetString("log_level"),
		Store:       strings.ToLower(v.GetString("store")),
		RedisAddr:   v.GetString("redis_addr"),
		RedisDB:     v.GetInt("redis_db"),
		ResultTTL:   v.GetDuration("result_ttl"),
		MaxUploadMB: v.GetInt("max_upload_mb"),
		Banks:       splitList(v.GetStringSlice("banks")),
		Prefixes:    splitList(v.GetStringSlice("prefixes")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList accepts both list values and a single comma separated string,
// which is how environment variables arrive.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreRedis:
	default:
		return errors.Errorf("unknown store %q. Supported: memory, redis", c.Store)
	}
	if c.MaxUploadMB <= 0 {
		return errors.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	if c.ResultTTL < 0 {
		return errors.Errorf("result_ttl must not be negative, got %s", c.ResultTTL)
	}
	_, err := c.Tables()
	return err
}

// Tables builds the parser tables. Unset lists fall back to the defaults.
func (c *Config) Tables() (*parser.Tables, error) {
	if len(c.Banks) == 0 && len(c.Prefixes) == 0 {
		return parser.DefaultTables(), nil
	}

	defaults := parser.DefaultTables()
	banks := c.Banks
	if len(banks) == 0 {
		banks = defaults.Banks()
	}

	prefixes := defaults.Prefixes()
	if len(c.Prefixes) > 0 {
		prefixes = make([]parser.RoutingPrefix, 0, len(c.Prefixes))
		for _, entry := range c.Prefixes {
			name, prefix, ok := strings.Cut(entry, "=")
			if !ok {
				return nil, errors.Errorf("invalid prefix entry %q, want NAME=PREFIX", entry)
			}
			prefixes = append(prefixes, parser.RoutingPrefix{
				Wallet: strings.TrimSpace(name),
				Prefix: strings.TrimSpace(prefix),
			})
		}
	}

	tables, err := parser.NewTables(banks, prefixes)
	if err != nil {
		return nil, errors.Wrap(err, "invalid bank tables")
	}
	return tables, nil
}
