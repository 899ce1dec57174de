// Package config loads broker settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	ListenAddr    string         `mapstructure:"listen_addr"`
	DBPath        string         `mapstructure:"db_path"`
	StartCredits  int64          `mapstructure:"start_credits"`
	StartLocation string         `mapstructure:"start_location"`
	UnlockedTiers int            `mapstructure:"unlocked_tiers"` // commodities at or below this tier start unlocked
	Intel         IntelConfig    `mapstructure:"intel"`
	Telegram      TelegramConfig `mapstructure:"telegram"`
}

// IntelConfig tunes packet generation and pricing.
type IntelConfig struct {
	RefreshDays      int     `mapstructure:"refresh_days"`
	GenerationChance float64 `mapstructure:"generation_chance"`
	MinPackets       int     `mapstructure:"min_packets"`
	MaxPackets       int     `mapstructure:"max_packets"`
	MinDiscount      float64 `mapstructure:"min_discount"`
	MaxDiscount      float64 `mapstructure:"max_discount"`
	MinDurationDays  int     `mapstructure:"min_duration_days"`
	MaxDurationDays  int     `mapstructure:"max_duration_days"`
	// PricingMode selects how intel quotes behave: "stable" derives the
	// price from the seed fixed at generation, "flicker" redraws on every
	// quote (the legacy look, where displayed prices change between renders).
	PricingMode string `mapstructure:"pricing_mode"`
	// PriceTolerance is the accepted relative deviation between a proposed
	// purchase price and the seed-derived price, in stable mode.
	PriceTolerance float64 `mapstructure:"price_tolerance"`
}

// TelegramConfig holds the optional Telegram notification sink settings.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// Load reads configuration from the file at path (optional; empty path uses
// defaults) and environment variables prefixed STARBROKER_.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STARBROKER")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", "127.0.0.1:13380")
	v.SetDefault("db_path", "broker.db")
	v.SetDefault("start_credits", 10_000)
	v.SetDefault("start_location", "ceres-station")
	v.SetDefault("unlocked_tiers", 3)

	v.SetDefault("intel.refresh_days", 120)
	v.SetDefault("intel.generation_chance", 0.70)
	v.SetDefault("intel.min_packets", 1)
	v.SetDefault("intel.max_packets", 3)
	v.SetDefault("intel.min_discount", 0.15)
	v.SetDefault("intel.max_discount", 0.50)
	v.SetDefault("intel.min_duration_days", 30)
	v.SetDefault("intel.max_duration_days", 90)
	v.SetDefault("intel.pricing_mode", "stable")
	v.SetDefault("intel.price_tolerance", 0.05)

	v.SetDefault("telegram.enabled", false)
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.Intel.RefreshDays < 1 {
		return fmt.Errorf("intel.refresh_days %d must be at least 1", c.Intel.RefreshDays)
	}
	switch c.Intel.PricingMode {
	case "stable", "flicker":
	default:
		return fmt.Errorf("intel.pricing_mode %q must be stable or flicker", c.Intel.PricingMode)
	}
	if c.Intel.PriceTolerance < 0 {
		return fmt.Errorf("intel.price_tolerance must not be negative")
	}
	if c.StartCredits < 0 {
		return fmt.Errorf("start_credits must not be negative")
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram enabled but bot_token/chat_id missing")
	}
	return nil
}
