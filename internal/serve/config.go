package serve

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the service configuration, read from a TOML file:
//
//	listen = ":8080"
//	default_time_limit_seconds = 30.0
//
//	[cache]
//	backend = "redis"          # "file", "redis" or "none"
//	dir = "/var/cache/irvaudit"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"          # "file" or "mongo"
//	dir = "/var/lib/irvaudit"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "irvaudit"
type Config struct {
	Listen                  string      `toml:"listen"`
	DefaultTimeLimitSeconds float64     `toml:"default_time_limit_seconds"`
	Cache                   CacheConfig `toml:"cache"`
	Store                   StoreConfig `toml:"store"`
}

// CacheConfig selects and parameterizes the solve cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig selects and parameterizes the record archive backend.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// DefaultConfig returns the configuration used when no file is given:
// local listener, file-backed cache and archive in their default locations.
func DefaultConfig() *Config {
	return &Config{
		Listen: ":8080",
		Cache:  CacheConfig{Backend: "file"},
		Store:  StoreConfig{Backend: "file"},
	}
}

// LoadConfig reads a TOML config file, filling unset fields with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "file", "none":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache backend redis requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "file":
	case "mongo":
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store backend mongo requires mongo_uri")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	return nil
}
