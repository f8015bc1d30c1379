package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL   = "http://localhost:8080"
	DefaultRetention = 2 * time.Hour
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Session struct {
		Retention string `yaml:"retention"`
		Dir       string `yaml:"dir"`
	} `yaml:"session"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Share struct {
		Origin string `yaml:"origin"`
	} `yaml:"share"`
}

// Load reads YAML config from path. A missing file yields the zero config.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// BaseURL returns the backend origin, defaulting to a local backend.
func (c Config) BaseURL() string {
	if c.API.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.API.BaseURL
}

// ShareOrigin is the origin embedded in challenge links.
func (c Config) ShareOrigin() string {
	if c.Share.Origin == "" {
		return c.BaseURL()
	}
	return c.Share.Origin
}

func (c Config) Retention() time.Duration {
	return TTLDuration(c.Session.Retention, DefaultRetention)
}

func (c Config) APITimeout() time.Duration {
	return TTLDuration(c.API.Timeout, 10*time.Second)
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
