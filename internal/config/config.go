package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Discord DiscordConfig `mapstructure:"discord"`
	Session SessionConfig `mapstructure:"session"`
	Event   EventConfig   `mapstructure:"event"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type DiscordConfig struct {
	Token   string `mapstructure:"token" validate:"required"`
	GuildID string `mapstructure:"guild_id"` // empty means every joined guild
}

type SessionConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes" validate:"gt=0"`
}

func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

type EventConfig struct {
	Timezone               string `mapstructure:"timezone" validate:"required"`
	DefaultDurationMinutes int    `mapstructure:"default_duration_minutes" validate:"gt=0"`
}

func (c EventConfig) DefaultDuration() time.Duration {
	return time.Duration(c.DefaultDurationMinutes) * time.Minute
}

// Location resolves the configured timezone identifier
func (c EventConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

type LLMConfig struct {
	DefaultProvider string          `mapstructure:"default_provider" validate:"oneof=openai gemini"`
	OpenAI          OpenAIConfig    `mapstructure:"openai"`
	Gemini          GeminiConfig    `mapstructure:"gemini"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type RateLimitConfig struct {
	TurnsPerMinute int `mapstructure:"turns_per_minute"`
	Burst          int `mapstructure:"burst"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"` // empty disables rate limiting
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port" validate:"gt=0"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the structural constraints plus anything the tags cannot
// express (the timezone identifier must resolve).
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Event.Location(); err != nil {
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Session
	v.SetDefault("session.ttl_minutes", 30)

	// Event
	v.SetDefault("event.timezone", "UTC")
	v.SetDefault("event.default_duration_minutes", 60)

	// LLM
	v.SetDefault("llm.default_provider", "openai")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.rate_limit.turns_per_minute", 10)
	v.SetDefault("llm.rate_limit.burst", 3)

	// Redis
	v.SetDefault("redis.db", 0)

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("discord.token", "DISCORD_TOKEN")
	v.BindEnv("discord.guild_id", "DISCORD_GUILD_ID")

	v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")

	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
}
