package serve

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "irvaudit.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
listen = ":9090"
default_time_limit_seconds = 30.0

[cache]
backend = "redis"
redis_addr = "localhost:6379"

[store]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"
mongo_database = "elections"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.DefaultTimeLimitSeconds != 30.0 {
		t.Errorf("time limit = %v", cfg.DefaultTimeLimitSeconds)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Store.Backend != "mongo" || cfg.Store.MongoDatabase != "elections" {
		t.Errorf("store = %+v", cfg.Store)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Listen != ":8080" || cfg.Cache.Backend != "file" || cfg.Store.Backend != "file" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfigRejectsBadBackends(t *testing.T) {
	cases := []string{
		"[cache]\nbackend = \"memcached\"\n",
		"[cache]\nbackend = \"redis\"\n", // missing redis_addr
		"[store]\nbackend = \"postgres\"\n",
		"[store]\nbackend = \"mongo\"\n", // missing mongo_uri
		"unknown_key = true\n",
	}
	for _, content := range cases {
		if _, err := LoadConfig(writeConfig(t, content)); err == nil {
			t.Errorf("config %q should fail validation", content)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("missing config file should error")
	}
}
