package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends understood by Storage.Backend.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Backend  string `yaml:"backend"`
		Dir      string `yaml:"dir"`
		Users    string `yaml:"users"`
		Contacts string `yaml:"contacts"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`
	Session struct {
		TTL           string `yaml:"ttl"`
		SweepInterval string `yaml:"sweep_interval"`
	} `yaml:"session"`
	Chat struct {
		MaxHistory int `yaml:"max_history"`
	} `yaml:"chat"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
}

// Load reads YAML config from path and fills defaults for unset fields.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default is the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data"
	}
	if c.Storage.Users == "" {
		c.Storage.Users = "users"
	}
	if c.Storage.Contacts == "" {
		c.Storage.Contacts = "contacts"
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = "data/restart50.db"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "30m"
	}
	if c.Session.SweepInterval == "" {
		c.Session.SweepInterval = "1m"
	}
	if c.Chat.MaxHistory <= 0 {
		c.Chat.MaxHistory = 200
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "dev"
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
