// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
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

type APIConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimit      int           `yaml:"rate_limit"` // requests per window, per client
	RateWindow     time.Duration `yaml:"rate_window"`
}

type AdminConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type GatewayConfig struct {
	Provider  string `yaml:"provider"` // cashfree | razorpay
	ReturnURL string `yaml:"return_url"`

	Cashfree struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		Sandbox      bool   `yaml:"sandbox"`
	} `yaml:"cashfree"`

	Razorpay struct {
		KeyID     string `yaml:"key_id"`
		KeySecret string `yaml:"key_secret"`
	} `yaml:"razorpay"`
}

type NotifyConfig struct {
	Email struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		From    string `yaml:"from"`
	} `yaml:"email"`
	WhatsApp struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"whatsapp"`
}

type AudienceConfig struct {
	APIKey string `yaml:"api_key"`
	Server string `yaml:"server"` // mailchimp dc, e.g. "us21"
	ListID string `yaml:"list_id"`
}

type AccountingConfig struct {
	BaseURL        string `yaml:"base_url"`
	OrganizationID string `yaml:"organization_id"`
	RefreshToken   string `yaml:"refresh_token"`
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
}

type SchedulerConfig struct {
	ReconcileInterval time.Duration `yaml:"reconcile_interval"` // stale-order reconciler
	ReconcileAfter    time.Duration `yaml:"reconcile_after"`    // how old an unsettled order must be
	OutboxInterval    time.Duration `yaml:"outbox_interval"`
	OutboxBatch       int           `yaml:"outbox_batch"`
	AccountingCron    time.Duration `yaml:"accounting_interval"`
	AudienceCron      time.Duration `yaml:"audience_interval"`
	Workers           int           `yaml:"workers"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	API        APIConfig        `yaml:"api"`
	Admin      AdminConfig      `yaml:"admin"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Notify     NotifyConfig     `yaml:"notify"`
	Audience   AudienceConfig   `yaml:"audience"`
	Accounting AccountingConfig `yaml:"accounting"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string = ""
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.API.Port <= 0 {
		cfg.API.Port = 8080
	}
	if cfg.API.RequestTimeout <= 0 {
		cfg.API.RequestTimeout = 30 * time.Second
	}
	if cfg.API.RateLimit <= 0 {
		cfg.API.RateLimit = 60
	}
	if cfg.API.RateWindow <= 0 {
		cfg.API.RateWindow = time.Minute
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = 10 * time.Minute
	}
	if cfg.Gateway.Provider == "" {
		cfg.Gateway.Provider = "cashfree"
	}
	if cfg.Scheduler.ReconcileInterval <= 0 {
		cfg.Scheduler.ReconcileInterval = 5 * time.Minute
	}
	if cfg.Scheduler.ReconcileAfter <= 0 {
		cfg.Scheduler.ReconcileAfter = 30 * time.Minute
	}
	if cfg.Scheduler.OutboxInterval <= 0 {
		cfg.Scheduler.OutboxInterval = 15 * time.Second
	}
	if cfg.Scheduler.OutboxBatch <= 0 {
		cfg.Scheduler.OutboxBatch = 50
	}
	if cfg.Scheduler.AccountingCron <= 0 {
		cfg.Scheduler.AccountingCron = time.Hour
	}
	if cfg.Scheduler.AudienceCron <= 0 {
		cfg.Scheduler.AudienceCron = 6 * time.Hour
	}
	if cfg.Scheduler.Workers <= 0 {
		cfg.Scheduler.Workers = 4
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	switch cfg.Gateway.Provider {
	case "cashfree":
		if cfg.Gateway.Cashfree.ClientID == "" {
			return nil, errors.New("gateway.cashfree.client_id is required")
		}
	case "razorpay":
		if cfg.Gateway.Razorpay.KeyID == "" {
			return nil, errors.New("gateway.razorpay.key_id is required")
		}
	default:
		return nil, fmt.Errorf("unknown gateway provider %q", cfg.Gateway.Provider)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
