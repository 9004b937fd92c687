// Package config provides configuration management for the Stock Compass application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "STOCK_COMPASS"

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields, tolerating a missing config file. Environment variables with the
// STOCK_COMPASS prefix override file values.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "stock-compass")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 5)
	v.SetDefault("providers.kis.timeout_seconds", 10)
	v.SetDefault("providers.kis.rate_per_second", 5)
	v.SetDefault("providers.naver.base_url", "https://finance.naver.com")
	v.SetDefault("providers.naver.timeout_seconds", 10)
	v.SetDefault("providers.naver.rate_per_second", 2)
	v.SetDefault("providers.naver.news_page_size", 20)
	v.SetDefault("analysis.cache_ttl_seconds", 600)
	v.SetDefault("analysis.worker_count", 4)
	v.SetDefault("analysis.news_lookback_days", 7)
	v.SetDefault("analysis.price_history_days", 200)
	v.SetDefault("backtest.initial_capital", 10_000_000)
	v.SetDefault("backtest.buy_threshold", 20)
	v.SetDefault("backtest.sell_threshold", 12)
	v.SetDefault("backtest.commission_rate", 0.00015)
	v.SetDefault("backtest.tax_rate", 0.0023)
	v.SetDefault("backtest.lookback_days", 200)
	v.SetDefault("backtest.risk_free_rate", 0.035)
	v.SetDefault("backtest.worker_count", 4)
	v.SetDefault("backtest.output_path", "reports")
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout_seconds", 15)
	v.SetDefault("api.write_timeout_seconds", 30)
	v.SetDefault("api.enable_websocket", true)
	v.SetDefault("scheduler.collection_cron", "0 30 16 * * MON-FRI")
	v.SetDefault("scheduler.analysis_cron", "0 0 17 * * MON-FRI")
	v.SetDefault("scheduler.health_port", 8081)
	v.SetDefault("scheduler.run_timeout_minutes", 30)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// ReloadFromEnv reloads the full configuration when an alternate config
// path is present in the environment
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}
