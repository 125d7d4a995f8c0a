// Package config loads saldotui settings from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API   APIConfig
	Rates RatesConfig
	UI    UIConfig
	Log   LogConfig
}

// APIConfig holds ledger backend settings.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Timeout        time.Duration
	HealthInterval time.Duration `mapstructure:"health_interval"`
}

// RatesConfig holds exchange-rate refresh settings.
type RatesConfig struct {
	URL     string
	Refresh time.Duration
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Locale        string
	Currency      string
	MaxChartRows  int    `mapstructure:"max_chart_rows"`
	ExpensePrefix string `mapstructure:"expense_prefix"`
}

// LogConfig holds log file settings. The TUI owns the terminal, so logs go
// to a file.
type LogConfig struct {
	Path  string
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix
// SALDOTUI_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.health_interval", "30s")
	v.SetDefault("rates.url", "")
	v.SetDefault("rates.refresh", "5m")
	v.SetDefault("ui.locale", "pt-BR")
	v.SetDefault("ui.currency", "BRL")
	v.SetDefault("ui.max_chart_rows", 10)
	v.SetDefault("ui.expense_prefix", "")
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "state", "saldotui", "saldotui.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SALDOTUI_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "saldotui"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SALDOTUI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.UI.MaxChartRows < 2 {
		return Config{}, fmt.Errorf("ui.max_chart_rows must be at least 2, got %d", c.UI.MaxChartRows)
	}
	return c, nil
}
