// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token         string  `yaml:"token"`
	Username      string  `yaml:"username"` // resolved from getMe when empty
	AdminIDs      []int64 `yaml:"admin_ids"`
	AdminUsername string  `yaml:"admin_username"` // e.g. "@admin", shown in support replies
	DryRun        bool    `yaml:"dry_run"`        // log outbound calls instead of hitting the Bot API
}

type WebhookConfig struct {
	Host       string `yaml:"host"`   // externally reachable base URL, e.g. https://bot.example.com
	Listen     string `yaml:"listen"` // bind address
	Port       int    `yaml:"port"`
	SetOnStart bool   `yaml:"set_on_start"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL           string        `yaml:"url"`
	Password      string        `yaml:"password"`
	DB            int           `yaml:"db"`
	StateTTL      time.Duration `yaml:"state_ttl"`
	GroupCacheTTL time.Duration `yaml:"group_cache_ttl"` // how long the cached group list is served
}

type PromotionConfig struct {
	SendDelay    time.Duration `yaml:"send_delay"` // pause between successive sends of one run
	Workers      int           `yaml:"workers"`
	QueueSize    int           `yaml:"queue_size"`
	MaxMaterials int           `yaml:"max_materials"` // materials offered individually on promotion start
}

type RateLimitConfig struct {
	Commands  int           `yaml:"commands"`
	Callbacks int           `yaml:"callbacks"`
	Window    time.Duration `yaml:"window"`
}

type SchedulerConfig struct {
	ExpiryReportCron string `yaml:"expiry_report_cron"`
	PoolStatsCron    string `yaml:"pool_stats_cron"`
}

type AdminAPIConfig struct {
	Enabled      bool          `yaml:"enabled"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`
	APIKey       string        `yaml:"api_key"` // exchanged for a session token at /api/v1/login
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Promotion PromotionConfig `yaml:"promotion"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	AdminAPI  AdminAPIConfig  `yaml:"admin_api"`

	Runtime RuntimeConfig `yaml:"-"`
}

// envOverrides lists the environment variables that win over the YAML file.
// Unset variables leave the file value untouched.
type envOverrides struct {
	BotToken      string        `envconfig:"BOT_TOKEN"`
	BotUsername   string        `envconfig:"BOT_USERNAME"`
	AdminID       int64         `envconfig:"ADMIN_ID"`
	AdminUsername string        `envconfig:"ADMIN_USERNAME"`
	WebhookHost   string        `envconfig:"WEBHOOK_HOST"`
	WebhookListen string        `envconfig:"WEBHOOK_LISTEN"`
	WebhookPort   int           `envconfig:"WEBHOOK_PORT"`
	DatabaseURL   string        `envconfig:"DATABASE_URL"`
	RedisURL      string        `envconfig:"REDIS_URL"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	LogLevel      string        `envconfig:"LOG_LEVEL"`
	SendDelay     time.Duration `envconfig:"PROMOTION_SEND_DELAY"`
	JWTSecret     string        `envconfig:"ADMIN_JWT_SECRET"`
	AdminAPIKey   string        `envconfig:"ADMIN_API_KEY"`
}

// LoadConfig reads the YAML file at path (skipped when path is empty), applies
// environment overrides and defaults, then validates the result. A .env file in
// the working directory is loaded first; variables already set are kept.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	cfg.applyEnv(env)
	cfg.applyDefaults()
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(e envOverrides) {
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setStr(&c.Bot.Token, e.BotToken)
	setStr(&c.Bot.Username, e.BotUsername)
	setStr(&c.Bot.AdminUsername, e.AdminUsername)
	setStr(&c.Webhook.Host, e.WebhookHost)
	setStr(&c.Webhook.Listen, e.WebhookListen)
	setStr(&c.Database.URL, e.DatabaseURL)
	setStr(&c.Redis.URL, e.RedisURL)
	setStr(&c.Redis.Password, e.RedisPassword)
	setStr(&c.Log.Level, e.LogLevel)
	setStr(&c.AdminAPI.JWTSecret, e.JWTSecret)
	setStr(&c.AdminAPI.APIKey, e.AdminAPIKey)
	if e.AdminID != 0 && !containsID(c.Bot.AdminIDs, e.AdminID) {
		c.Bot.AdminIDs = append(c.Bot.AdminIDs, e.AdminID)
	}
	if e.WebhookPort != 0 {
		c.Webhook.Port = e.WebhookPort
	}
	if e.SendDelay > 0 {
		c.Promotion.SendDelay = e.SendDelay
	}
}

func (c *Config) applyDefaults() {
	if c.Webhook.Listen == "" {
		c.Webhook.Listen = "0.0.0.0"
	}
	if c.Webhook.Port == 0 {
		c.Webhook.Port = 8443
	}
	c.Webhook.Host = strings.TrimRight(c.Webhook.Host, "/")
	if c.Bot.AdminUsername == "" {
		c.Bot.AdminUsername = "@admin"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	if c.Redis.StateTTL <= 0 {
		c.Redis.StateTTL = 15 * time.Minute
	}
	if c.Redis.GroupCacheTTL <= 0 {
		c.Redis.GroupCacheTTL = 5 * time.Minute
	}
	if c.Promotion.SendDelay <= 0 {
		c.Promotion.SendDelay = time.Second
	}
	if c.Promotion.Workers <= 0 {
		c.Promotion.Workers = 4
	}
	if c.Promotion.QueueSize <= 0 {
		c.Promotion.QueueSize = c.Promotion.Workers * 4
	}
	if c.Promotion.MaxMaterials <= 0 {
		c.Promotion.MaxMaterials = 10
	}
	if c.RateLimit.Commands <= 0 {
		c.RateLimit.Commands = 20
	}
	if c.RateLimit.Callbacks <= 0 {
		c.RateLimit.Callbacks = 30
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.Scheduler.ExpiryReportCron == "" {
		c.Scheduler.ExpiryReportCron = "0 9 * * *"
	}
	if c.Scheduler.PoolStatsCron == "" {
		c.Scheduler.PoolStatsCron = "@every 30s"
	}
	if c.AdminAPI.TokenTTL <= 0 {
		c.AdminAPI.TokenTTL = 30 * time.Minute
	}
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return errors.New("bot.token (BOT_TOKEN) is required")
	}
	if c.Database.URL == "" {
		return errors.New("database.url (DATABASE_URL) is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url (REDIS_URL) is required")
	}
	if c.Webhook.SetOnStart && c.Webhook.Host == "" {
		return errors.New("webhook.host (WEBHOOK_HOST) is required when webhook.set_on_start is true")
	}
	if c.AdminAPI.Enabled && len(c.AdminAPI.JWTSecret) < 16 {
		return errors.New("admin_api.jwt_secret must be at least 16 characters")
	}
	return nil
}

// WebhookPath is the path Telegram posts updates to. It embeds the token so
// only Telegram knows it.
func (c *Config) WebhookPath() string {
	return "/" + c.Bot.Token + "/"
}

// WebhookURL is the full URL registered with Telegram.
func (c *Config) WebhookURL() string {
	return c.Webhook.Host + c.WebhookPath()
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Webhook.Listen, c.Webhook.Port)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
