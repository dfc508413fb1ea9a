package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Store    Store    `mapstructure:"store"`
	Exchange Exchange `mapstructure:"exchange"`
	Sync     Sync     `mapstructure:"sync"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
}

// Store holds the configuration for the remote annotation store API.
type Store struct {
	BaseURL        string  `mapstructure:"base_url"`
	Token          string  `mapstructure:"token"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Exchange holds the configuration for the exchange trade-history API.
type Exchange struct {
	BaseURL        string  `mapstructure:"base_url"`
	ApiKey         string  `mapstructure:"apiKey"`
	SecretKey      string  `mapstructure:"secretKey"`
	Name           string  `mapstructure:"name"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Sync holds the configuration for the trade-to-bubble sync jobs.
type Sync struct {
	Symbols          []string `mapstructure:"symbols"`
	Schedule         string   `mapstructure:"schedule"`
	BackfillSchedule string   `mapstructure:"backfill_schedule"`
	DefaultTimeframe string   `mapstructure:"default_timeframe"`
	CSVPath          string   `mapstructure:"csv_path"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the local import ledger.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("store.rate_limit", 10)      // requests per second
	viper.SetDefault("store.rate_limit_burst", 5) // burst size
	viper.SetDefault("exchange.rate_limit", 20)
	viper.SetDefault("exchange.rate_limit_burst", 5)
	viper.SetDefault("exchange.name", "binance")
	viper.SetDefault("sync.schedule", "@every 5m")
	viper.SetDefault("sync.default_timeframe", "1h")
	viper.SetDefault("database.dsn", "journal.db")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
