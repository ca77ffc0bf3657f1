package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Dispatch DispatchConfig
	Pricing  PricingConfig
	Secrets  Secrets `mapstructure:"-"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

// DispatchConfig tunes the notification sweep.
type DispatchConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// PricingConfig points at the external rate and distance providers.
type PricingConfig struct {
	RateProviderURL     string        `mapstructure:"rate_provider_url"`
	DistanceProviderURL string        `mapstructure:"distance_provider_url"`
	ProviderTimeout     time.Duration `mapstructure:"provider_timeout"`
	RateCacheTTL        time.Duration `mapstructure:"rate_cache_ttl"`
}

// Secrets are credentials pulled from the environment, never from the
// config file.
type Secrets struct {
	SMTPHost        string `envconfig:"SMTP_HOST"`
	SMTPPort        int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser        string `envconfig:"SMTP_USER"`
	SMTPPassword    string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom        string `envconfig:"SMTP_FROM" default:"noreply@ecopick.example"`
	RateProviderKey string `envconfig:"RATE_PROVIDER_KEY"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("dispatch.sweep_interval", "30s")
	viper.SetDefault("dispatch.batch_size", 100)
	viper.SetDefault("dispatch.max_retries", 3)
	viper.SetDefault("pricing.provider_timeout", "5s")
	viper.SetDefault("pricing.rate_cache_ttl", "15m")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("recycle", &config.Secrets); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}

	return &config, nil
}
