// File: internal/config/config.go
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

type ServerConfig struct {
	Port       int           `yaml:"port"`
	OpsKey     string        `yaml:"ops_key"`     // bearer key for /logs and /ops/login
	SessionTTL time.Duration `yaml:"session_ttl"` // minted ops session lifetime
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type PayOSConfig struct {
	APIBase        string        `yaml:"api_base"`        // https://api-merchant.payos.vn
	PlaceholderURL string        `yaml:"placeholder_url"` // literal agreed with the provider; part of the signature base
	LinkTTL        time.Duration `yaml:"link_ttl"`        // expiredAt horizon for created links
	DescPrefix     string        `yaml:"desc_prefix"`     // prepended to every bill description
}

type DispatchConfig struct {
	EndpointBase string        `yaml:"endpoint_base"` // https://iot.ioeasy.com/api
	MaxAttempts  int           `yaml:"max_attempts"`
	RetryDelay   time.Duration `yaml:"retry_delay"`
}

type IDGenConfig struct {
	Node int64 `yaml:"node"` // snowflake node id, unique per instance
}

type ExpiryConfig struct {
	Interval time.Duration `yaml:"interval"` // scan cadence
	Workers  int           `yaml:"workers"`  // pool size for cancellations
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	PayOS    PayOSConfig    `yaml:"payos"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	IDGen    IDGenConfig    `yaml:"idgen"`
	Expiry   ExpiryConfig   `yaml:"expiry"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.SessionTTL <= 0 {
		cfg.Server.SessionTTL = 30 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.PayOS.APIBase == "" {
		cfg.PayOS.APIBase = "https://api-merchant.payos.vn"
	}
	if cfg.PayOS.PlaceholderURL == "" {
		// The deployment does not use real redirect URLs; the provider signs
		// this exact literal, so changing it breaks signature verification.
		cfg.PayOS.PlaceholderURL = "abc"
	}
	if cfg.PayOS.LinkTTL <= 0 {
		cfg.PayOS.LinkTTL = 7 * 24 * time.Hour
	}
	if cfg.PayOS.DescPrefix == "" {
		cfg.PayOS.DescPrefix = "CFPAYOS"
	}
	if cfg.Dispatch.MaxAttempts <= 0 {
		cfg.Dispatch.MaxAttempts = 3
	}
	if cfg.Dispatch.RetryDelay <= 0 {
		cfg.Dispatch.RetryDelay = 20 * time.Second
	}
	if cfg.Expiry.Interval <= 0 {
		cfg.Expiry.Interval = time.Hour
	}
	if cfg.Expiry.Workers <= 0 {
		cfg.Expiry.Workers = 4
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Dispatch.EndpointBase == "" {
		return nil, errors.New("dispatch.endpoint_base is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
