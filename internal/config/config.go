// Package config provides configuration loading for the site server.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Admin     AdminConfig     `yaml:"admin"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Limits    LimitsConfig    `yaml:"limits"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Port the server listens on. The PORT environment variable
	// overrides it, matching how the site has always been deployed.
	Port string `yaml:"port"`
	// ReadTimeout / WriteTimeout for the HTTP server.
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DataConfig configures where the JSON documents live.
type DataConfig struct {
	// Dir is the data directory holding events.json, newsletter.json,
	// artist_submissions.json and the analytics/ visit logs.
	Dir string `yaml:"dir"`
}

// AdminConfig configures the password-gated admin surface.
type AdminConfig struct {
	// Password gates /admin. ADMIN_PASSWORD overrides it.
	Password string `yaml:"password"`
	// SessionTTL is how long an admin login stays valid.
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// AnalyticsConfig configures visit tracking.
type AnalyticsConfig struct {
	// Salt feeds the visitor-id hash. VISITOR_SALT overrides it.
	Salt string `yaml:"salt"`
	// DefaultWindowDays is the dashboard's default lookback.
	DefaultWindowDays int `yaml:"default_window_days"`
}

// LimitsConfig configures the public-form rate limits.
type LimitsConfig struct {
	// NewsletterPerMinute caps signups per client per minute.
	NewsletterPerMinute int `yaml:"newsletter_per_minute"`
	// ArtistPerHour caps artist submissions per client per hour.
	ArtistPerHour int `yaml:"artist_per_hour"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Data: DataConfig{
			Dir: "data",
		},
		Admin: AdminConfig{
			Password:   "",
			SessionTTL: 12 * time.Hour,
		},
		Analytics: AnalyticsConfig{
			Salt:              "ahoy-visitors",
			DefaultWindowDays: 30,
		},
		Limits: LimitsConfig{
			NewsletterPerMinute: 5,
			ArtistPerHour:       3,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Admin.Password == "" {
		return fmt.Errorf("admin.password is required (set it in the config file or ADMIN_PASSWORD)")
	}
	if c.Analytics.DefaultWindowDays <= 0 {
		return fmt.Errorf("analytics.default_window_days must be positive")
	}
	if c.Limits.NewsletterPerMinute <= 0 || c.Limits.ArtistPerHour <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}

// Load reads configuration from an optional YAML file, then applies
// environment overrides. path may be empty to run on defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		c.Admin.Password = v
	}
	if v := os.Getenv("VISITOR_SALT"); v != "" {
		c.Analytics.Salt = v
	}
}
