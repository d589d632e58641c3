package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Extraction ExtractionConfig
	Fetch      FetchConfig
	Cart       CartConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ExtractionConfig holds text acquisition and OCR fallback settings
type ExtractionConfig struct {
	CoverageThreshold int           `mapstructure:"coverage_threshold"` // min chars of embedded text per page
	PageTimeout       time.Duration `mapstructure:"page_timeout"`
	MaxOCRPages       int           `mapstructure:"max_ocr_pages"`
}

// FetchConfig holds flyer download settings
type FetchConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RatePerSecond  float64       `mapstructure:"rate_per_second"`
	Burst          int           `mapstructure:"burst"`
}

// CartConfig holds cart optimization settings
type CartConfig struct {
	BudgetStopFraction float64 `mapstructure:"budget_stop_fraction"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/kainolt/")

	v.SetEnvPrefix("KAINOLT")
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("extraction.coverage_threshold", 200)
	v.SetDefault("extraction.page_timeout", "30s")
	v.SetDefault("extraction.max_ocr_pages", 10)

	v.SetDefault("fetch.request_timeout", "30s")
	v.SetDefault("fetch.rate_per_second", 0.5)
	v.SetDefault("fetch.burst", 2)

	v.SetDefault("cart.budget_stop_fraction", 0.95)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Extraction.CoverageThreshold <= 0 {
		return fmt.Errorf("extraction coverage threshold must be positive, got: %d", config.Extraction.CoverageThreshold)
	}
	if config.Extraction.PageTimeout <= 0 {
		return fmt.Errorf("extraction page timeout must be positive, got: %s", config.Extraction.PageTimeout)
	}
	if config.Fetch.RatePerSecond <= 0 {
		return fmt.Errorf("fetch rate must be positive, got: %f", config.Fetch.RatePerSecond)
	}
	if f := config.Cart.BudgetStopFraction; f <= 0 || f > 1 {
		return fmt.Errorf("cart budget stop fraction must be in (0, 1], got: %f", f)
	}
	return nil
}
