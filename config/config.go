package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Agent     AgentConfig
	Amazon    AmazonConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Timeouts  TimeoutConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AgentConfig holds browsing-agent configuration
type AgentConfig struct {
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	Model        string `mapstructure:"model"`
	UserDataDir  string `mapstructure:"user_data_dir"`
	Headless     bool   `mapstructure:"headless"`
	MaxSteps     int    `mapstructure:"max_steps"`
}

// AmazonConfig holds retailer-specific configuration
type AmazonConfig struct {
	AssociateTag string `mapstructure:"associate_tag"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds per-route per-IP request limits (requests per minute)
type RateLimitConfig struct {
	Grocery   int `mapstructure:"grocery"`
	Nutrition int `mapstructure:"nutrition"`
}

// TimeoutConfig holds whole-batch wall-clock timeouts
type TimeoutConfig struct {
	Grocery   time.Duration `mapstructure:"grocery"`
	Nutrition time.Duration `mapstructure:"nutrition"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/recomp-act/")

	v.SetEnvPrefix("RECOMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional - env vars and defaults cover everything
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
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("agent.model", "gpt-4o-mini")
	v.SetDefault("agent.user_data_dir", "")
	v.SetDefault("agent.headless", true)
	v.SetDefault("agent.max_steps", 12)

	v.SetDefault("cache.ttl", "720h") // 30 days

	v.SetDefault("ratelimit.grocery", 8)
	v.SetDefault("ratelimit.nutrition", 10)

	v.SetDefault("timeouts.grocery", "360s")
	v.SetDefault("timeouts.nutrition", "240s")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Agent.MaxSteps <= 0 {
		return fmt.Errorf("agent.max_steps must be positive, got: %d", config.Agent.MaxSteps)
	}

	if config.RateLimit.Grocery <= 0 || config.RateLimit.Nutrition <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}

	if config.Timeouts.Grocery <= 0 || config.Timeouts.Nutrition <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}

	return nil
}
