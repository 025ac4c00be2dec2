package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // profile cache TTL
}

type MemberAPIConfig struct {
	Port int `yaml:"port"`
}

type AdminConfig struct {
	Port       int           `yaml:"port"`
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// PricingConfig holds the per-plan prices in integer cents. Resolved once at
// boot; operations never consult a settings table at runtime.
type PricingConfig struct {
	MonthlyCents int64 `yaml:"monthly_cents"`
	YearlyCents  int64 `yaml:"yearly_cents"`
}

type CodesConfig struct {
	Length int `yaml:"length"` // generated token length
}

type SweeperConfig struct {
	Interval      time.Duration `yaml:"interval"`
	PendingMaxAge time.Duration `yaml:"pending_max_age"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	MemberAPI MemberAPIConfig `yaml:"member_api"`
	Admin     AdminConfig     `yaml:"admin"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Codes     CodesConfig     `yaml:"codes"`
	Sweeper   SweeperConfig   `yaml:"sweeper"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads and validates the yaml config at path.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Admin.APIKey == "" {
		return nil, errors.New("admin.api_key is required")
	}
	if cfg.Admin.JWTSecret == "" {
		return nil, errors.New("admin.jwt_secret is required")
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.PoolSize <= 0 {
		cfg.Database.PoolSize = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 15 * time.Minute
	}
	if cfg.MemberAPI.Port == 0 {
		cfg.MemberAPI.Port = 8080
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8081
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Pricing.MonthlyCents <= 0 {
		cfg.Pricing.MonthlyCents = 2900
	}
	if cfg.Pricing.YearlyCents <= 0 {
		cfg.Pricing.YearlyCents = 19900
	}
	if cfg.Codes.Length <= 0 {
		cfg.Codes.Length = 8
	}
	if cfg.Sweeper.Interval <= 0 {
		cfg.Sweeper.Interval = time.Hour
	}
	if cfg.Sweeper.PendingMaxAge <= 0 {
		cfg.Sweeper.PendingMaxAge = 72 * time.Hour
	}
}

// AmountCents returns the configured price for a plan tag.
func (p PricingConfig) AmountCents(yearly bool) int64 {
	if yearly {
		return p.YearlyCents
	}
	return p.MonthlyCents
}
