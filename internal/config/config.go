// Package config loads service configuration with viper and holds the
// addon settings passed explicitly into each workflow call.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-level configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Platform PlatformConfig `mapstructure:"platform"`
	Addon    AddonConfig    `mapstructure:"addon"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Events   EventsConfig   `mapstructure:"events"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// PlatformConfig describes the host helpdesk platform.
type PlatformConfig struct {
	// SystemURL is used for the license domain when the host database has
	// no SystemURL setting.
	SystemURL string `mapstructure:"system_url"`
	// SettingsModule is the tbladdonmodules module name holding overrides.
	SettingsModule string `mapstructure:"settings_module"`
}

// AddonConfig holds the defaults for the per-request addon settings.
type AddonConfig struct {
	LicenseKey      string `mapstructure:"license_key"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key"`
	GeminiModel     string `mapstructure:"gemini_model"`
	RetentionDays   int    `mapstructure:"retention_days"`
	AutoQueueClosed bool   `mapstructure:"auto_queue_closed"`
	MinReplies      int    `mapstructure:"min_replies"`
	APIURLOverride  string `mapstructure:"api_url_override"`
	RenderMarkdown  bool   `mapstructure:"render_markdown"`
}

type AdminConfig struct {
	// JWTSecret verifies HS256 admin tokens. Empty disables admin auth.
	JWTSecret string `mapstructure:"jwt_secret"`
	// RateLimit is the number of generations allowed per operator per hour.
	RateLimit int `mapstructure:"rate_limit"`
}

type EventsConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Env   string `mapstructure:"env"`
	Level string `mapstructure:"level"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("platform.system_url", "")
	v.SetDefault("platform.settings_module", DefaultSettingsModule)

	v.SetDefault("addon.license_key", "")
	v.SetDefault("addon.gemini_api_key", "")
	v.SetDefault("addon.gemini_model", DefaultModel)
	v.SetDefault("addon.retention_days", DefaultRetentionDays)
	v.SetDefault("addon.auto_queue_closed", true)
	v.SetDefault("addon.min_replies", DefaultMinReplies)
	v.SetDefault("addon.api_url_override", "")
	v.SetDefault("addon.render_markdown", false)

	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("admin.rate_limit", 30)

	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", "kb.queue")

	v.SetDefault("log.env", "production")
	v.SetDefault("log.level", "info")
}

// Load reads configuration from file (optional) and KBGEN_* environment
// variables. An empty path looks for kbgen.yaml in the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("KBGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("kbgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper decodes an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "mysql", "postgres", "sqlite3":
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	if c.Admin.RateLimit < 0 {
		return fmt.Errorf("config: admin.rate_limit must not be negative")
	}
	return nil
}

// AddonDefaults converts the addon section into settings.
func (c *Config) AddonDefaults() AddonSettings {
	s := AddonSettings{
		LicenseKey:      c.Addon.LicenseKey,
		GeminiAPIKey:    c.Addon.GeminiAPIKey,
		GeminiModel:     c.Addon.GeminiModel,
		RetentionDays:   c.Addon.RetentionDays,
		AutoQueueClosed: c.Addon.AutoQueueClosed,
		MinReplies:      c.Addon.MinReplies,
		APIURLOverride:  c.Addon.APIURLOverride,
		RenderMarkdown:  c.Addon.RenderMarkdown,
		SystemURL:       c.Platform.SystemURL,
	}
	return s.Normalize()
}
