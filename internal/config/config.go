// Package config loads the finalize service configuration.
//
// Values come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, when a path is given
//  3. CARDSTACK_* environment variables (and PORT, for platforms that set it)
//
// The result is validated once after all layers are applied.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/cardstack/pkg/cache"
	"github.com/matzehuels/cardstack/pkg/errors"
	"github.com/matzehuels/cardstack/pkg/finalize"
)

// Cache and history backends.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Cache    CacheConfig    `toml:"cache"`
	Redis    RedisConfig    `toml:"redis"`
	History  HistoryConfig  `toml:"history"`
	Mongo    MongoConfig    `toml:"mongo"`
	Finalize FinalizeConfig `toml:"finalize"`
}

type ServerConfig struct {
	Addr        string   `toml:"addr" validate:"required"`
	CORSOrigins []string `toml:"cors_origins"`
}

type CacheConfig struct {
	Backend string   `toml:"backend" validate:"oneof=none file redis"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
	Prefix  string   `toml:"prefix"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db" validate:"gte=0"`
}

type HistoryConfig struct {
	Backend string `toml:"backend" validate:"oneof=memory file mongo"`
	Dir     string `toml:"dir"`
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database" validate:"required"`
}

type FinalizeConfig struct {
	Endpoint string `toml:"endpoint" validate:"required,url"`
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	dir, err := cache.DefaultDir()
	if err != nil {
		dir = ".cardstack-cache"
	}
	return &Config{
		Server: ServerConfig{
			Addr:        ":5000",
			CORSOrigins: []string{"*"},
		},
		Cache: CacheConfig{
			Backend: BackendNone,
			Dir:     dir,
			TTL:     Duration{cache.DefaultTTL},
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		History: HistoryConfig{
			Backend: BackendMemory,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "cardstack",
		},
		Finalize: FinalizeConfig{
			Endpoint: finalize.DefaultEndpoint,
		},
	}
}

// Load reads path (if not empty) over the defaults and applies environment
// overrides from the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown config key %q in %s", undecoded[0].String(), path)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", key)
		}
		return nil
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		c.Server.Addr = ":" + port
	}
	str("CARDSTACK_ADDR", &c.Server.Addr)
	if v, ok := lookup("CARDSTACK_CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	str("CARDSTACK_CACHE_BACKEND", &c.Cache.Backend)
	str("CARDSTACK_CACHE_DIR", &c.Cache.Dir)
	str("CARDSTACK_CACHE_PREFIX", &c.Cache.Prefix)
	if err := dur("CARDSTACK_CACHE_TTL", &c.Cache.TTL); err != nil {
		return err
	}

	str("CARDSTACK_REDIS_ADDR", &c.Redis.Addr)
	str("CARDSTACK_REDIS_PASSWORD", &c.Redis.Password)
	if v, ok := lookup("CARDSTACK_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "CARDSTACK_REDIS_DB")
		}
		c.Redis.DB = db
	}

	str("CARDSTACK_HISTORY_BACKEND", &c.History.Backend)
	str("CARDSTACK_HISTORY_DIR", &c.History.Dir)
	str("CARDSTACK_MONGO_URI", &c.Mongo.URI)
	str("CARDSTACK_MONGO_DATABASE", &c.Mongo.Database)

	str("CARDSTACK_FINALIZE_ENDPOINT", &c.Finalize.Endpoint)
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field values and backend requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid config")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl cannot be negative")
	}
	switch {
	case c.Cache.Backend == BackendFile && c.Cache.Dir == "":
		return errors.New(errors.ErrCodeInvalidInput, "file cache needs cache.dir")
	case c.Cache.Backend == BackendRedis && c.Redis.Addr == "":
		return errors.New(errors.ErrCodeInvalidInput, "redis cache needs redis.addr")
	case c.History.Backend == BackendMongo && c.Mongo.URI == "":
		return errors.New(errors.ErrCodeInvalidInput, "mongo history needs mongo.uri")
	}
	return nil
}

// String renders the configuration as TOML with the redis password masked.
func (c *Config) String() string {
	masked := *c
	if masked.Redis.Password != "" {
		masked.Redis.Password = "****"
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(masked); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
