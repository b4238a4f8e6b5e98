package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cardstack/pkg/errors"
)

func env(kv map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := kv[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cardstack.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadWithEnv("", env(nil))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Server.Addr != ":5000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if diff := cmp.Diff([]string{"*"}, cfg.Server.CORSOrigins); diff != "" {
		t.Errorf("CORSOrigins (-want +got):\n%s", diff)
	}
	if cfg.Cache.Backend != BackendNone || cfg.History.Backend != BackendMemory {
		t.Errorf("backends = %s/%s", cfg.Cache.Backend, cfg.History.Backend)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("TTL = %v", cfg.Cache.TTL)
	}
	if cfg.Mongo.Database != "cardstack" {
		t.Errorf("Database = %q", cfg.Mongo.Database)
	}
	if !strings.HasSuffix(cfg.Finalize.Endpoint, "/api/generate_encryption") {
		t.Errorf("Endpoint = %q", cfg.Finalize.Endpoint)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":8080"
cors_origins = ["https://cards.example"]

[cache]
backend = "redis"
ttl = "1h30m"
prefix = "staging:"

[redis]
addr = "redis:6379"
db = 2

[history]
backend = "file"
dir = "/var/lib/cardstack/history"
`)
	cfg, err := LoadWithEnv(path, env(nil))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.CORSOrigins[0] != "https://cards.example" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.TTL.Duration != 90*time.Minute || cfg.Cache.Prefix != "staging:" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.History.Backend != BackendFile || cfg.History.Dir != "/var/lib/cardstack/history" {
		t.Errorf("history = %+v", cfg.History)
	}
	// untouched sections keep defaults
	if cfg.Mongo.Database != "cardstack" {
		t.Errorf("Database = %q", cfg.Mongo.Database)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[server]\naddr = \":8080\"\n")
	cfg, err := LoadWithEnv(path, env(map[string]string{
		"PORT":                       "9000",
		"CARDSTACK_CORS_ORIGINS":     "https://a.example, https://b.example,",
		"CARDSTACK_CACHE_BACKEND":    "file",
		"CARDSTACK_CACHE_TTL":        "5m",
		"CARDSTACK_REDIS_DB":         "3",
		"CARDSTACK_HISTORY_BACKEND":  "mongo",
		"CARDSTACK_MONGO_URI":        "mongodb://db:27017",
	}))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("PORT should override file: Addr = %q", cfg.Server.Addr)
	}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins); diff != "" {
		t.Errorf("CORSOrigins (-want +got):\n%s", diff)
	}
	if cfg.Cache.Backend != BackendFile || cfg.Cache.TTL.Duration != 5*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Redis.DB != 3 || cfg.History.Backend != BackendMongo || cfg.Mongo.URI != "mongodb://db:27017" {
		t.Errorf("cfg = %+v", cfg)
	}

	cfg, err = LoadWithEnv("", env(map[string]string{"PORT": "9000", "CARDSTACK_ADDR": "127.0.0.1:7000"}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("CARDSTACK_ADDR should win over PORT: %q", cfg.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
		code errors.Code
	}{
		{"bad toml", "[server\n", nil, errors.ErrCodeInvalidFormat},
		{"unknown key", "[server]\nport = 1\n", nil, errors.ErrCodeInvalidFormat},
		{"bad ttl in file", "[cache]\nttl = \"soon\"\n", nil, errors.ErrCodeInvalidFormat},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", nil, errors.ErrCodeInvalidInput},
		{"bad history backend", "", map[string]string{"CARDSTACK_HISTORY_BACKEND": "sqlite"}, errors.ErrCodeInvalidInput},
		{"bad ttl env", "", map[string]string{"CARDSTACK_CACHE_TTL": "soon"}, errors.ErrCodeInvalidInput},
		{"bad redis db", "", map[string]string{"CARDSTACK_REDIS_DB": "two"}, errors.ErrCodeInvalidInput},
		{"negative ttl", "[cache]\nttl = \"-1h\"\n", nil, errors.ErrCodeInvalidInput},
		{"bad endpoint", "", map[string]string{"CARDSTACK_FINALIZE_ENDPOINT": "not a url"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			_, err := LoadWithEnv(path, env(tt.env))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestStringMasksPassword(t *testing.T) {
	cfg := Default()
	cfg.Redis.Password = "hunter2"
	s := cfg.String()
	if strings.Contains(s, "hunter2") {
		t.Error("password leaked")
	}
	if !strings.Contains(s, `ttl = "24h0m0s"`) {
		t.Errorf("ttl not encoded as duration string:\n%s", s)
	}
	if cfg.Redis.Password != "hunter2" {
		t.Error("String modified the config")
	}
}
