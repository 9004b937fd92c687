// Package config provides configuration management for the Stock Compass application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Providers ProvidersConfig `mapstructure:"providers" validate:"required"`
	Analysis  AnalysisConfig  `mapstructure:"analysis" validate:"required"`
	Backtest  BacktestConfig  `mapstructure:"backtest" validate:"required"`
	API       APIConfig       `mapstructure:"api" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ProvidersConfig represents upstream market data provider configuration
type ProvidersConfig struct {
	KIS   KISConfig   `mapstructure:"kis" validate:"required"`
	Naver NaverConfig `mapstructure:"naver" validate:"required"`
}

// KISConfig represents the Korea Investment & Securities open API settings
// used for daily price collection.
type KISConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	AppKey         string `mapstructure:"app_key" validate:"required"`
	AppSecret      string `mapstructure:"app_secret" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts  int    `mapstructure:"retry_attempts" validate:"gte=0"`
	RatePerSecond  int    `mapstructure:"rate_per_second" validate:"required,gt=0"`
}

// NaverConfig represents the Naver Finance source used for fundamentals
// and news collection.
type NaverConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts  int    `mapstructure:"retry_attempts" validate:"gte=0"`
	RatePerSecond  int    `mapstructure:"rate_per_second" validate:"required,gt=0"`
	NewsPageSize   int    `mapstructure:"news_page_size" validate:"required,gt=0"`
}

// AnalysisConfig represents scoring pipeline configuration
type AnalysisConfig struct {
	CacheTTLSeconds  int `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	WorkerCount      int `mapstructure:"worker_count" validate:"required,gt=0"`
	NewsLookbackDays int `mapstructure:"news_lookback_days" validate:"required,gt=0"`
	PriceHistoryDays int `mapstructure:"price_history_days" validate:"required,gt=0"`
}

// BacktestConfig represents backtest run defaults
type BacktestConfig struct {
	InitialCapital float64 `mapstructure:"initial_capital" validate:"required,gt=0"`
	BuyThreshold   float64 `mapstructure:"buy_threshold" validate:"gte=0,lte=30"`
	SellThreshold  float64 `mapstructure:"sell_threshold" validate:"gte=-1,lte=30"`
	CommissionRate float64 `mapstructure:"commission_rate" validate:"gte=0,lte=0.1"`
	TaxRate        float64 `mapstructure:"tax_rate" validate:"gte=0,lte=0.1"`
	LookbackDays   int     `mapstructure:"lookback_days" validate:"gte=0"`
	RiskFreeRate   float64 `mapstructure:"risk_free_rate" validate:"gte=0,lte=1"`
	WorkerCount    int     `mapstructure:"worker_count" validate:"required,gt=0"`
	OutputPath     string  `mapstructure:"output_path" validate:"required"`
}

// APIConfig represents the HTTP API server configuration
type APIConfig struct {
	Host                string `mapstructure:"host" validate:"required"`
	Port                int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	EnableWebSocket     bool   `mapstructure:"enable_websocket"`
}

// SchedulerConfig represents the daily collection and analysis schedule
type SchedulerConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectionCron    string `mapstructure:"collection_cron" validate:"required"`
	AnalysisCron      string `mapstructure:"analysis_cron" validate:"required"`
	HealthPort        int    `mapstructure:"health_port" validate:"required,min=1,max=65535"`
	RunTimeoutMinutes int    `mapstructure:"run_timeout_minutes" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// APIAddress returns the listen address for the HTTP API server
func (c *Config) APIAddress() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// KISTimeout returns the configured KIS request timeout
func (c *Config) KISTimeout() time.Duration {
	return time.Duration(c.Providers.KIS.TimeoutSeconds) * time.Second
}

// NaverTimeout returns the configured Naver request timeout
func (c *Config) NaverTimeout() time.Duration {
	return time.Duration(c.Providers.Naver.TimeoutSeconds) * time.Second
}

// AnalysisCacheTTL returns the analysis result cache lifetime
func (c *Config) AnalysisCacheTTL() time.Duration {
	return time.Duration(c.Analysis.CacheTTLSeconds) * time.Second
}
