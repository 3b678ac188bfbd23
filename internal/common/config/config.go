package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	ActivationBackendFile  = "file"
	ActivationBackendRedis = "redis"
)

type Config struct {
	Debug     bool   `env:"DEBUG" envDefault:"false"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	Discord struct {
		Token         string `env:"DISCORD_TOKEN,required"`
		CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"$"`
	}

	Giveaway struct {
		SetupStepTimeout time.Duration `env:"SETUP_STEP_TIMEOUT" envDefault:"120s"`
		CountdownTick    time.Duration `env:"COUNTDOWN_TICK" envDefault:"1s"`
		DisplayTimezone  string        `env:"DISPLAY_TIMEZONE" envDefault:"Asia/Kolkata"`

		// Custom emoji used as the entry reaction. An empty ID means a unicode emoji.
		EntryEmojiName     string `env:"ENTRY_EMOJI_NAME" envDefault:"🎉"`
		EntryEmojiID       string `env:"ENTRY_EMOJI_ID" envDefault:""`
		EntryEmojiAnimated bool   `env:"ENTRY_EMOJI_ANIMATED" envDefault:"false"`

		PrizeEmoji string `env:"PRIZE_EMOJI" envDefault:"🎁"`
		ArrowEmoji string `env:"ARROW_EMOJI" envDefault:"➜"`
	}

	Activation struct {
		Backend string `env:"ACTIVATION_BACKEND" envDefault:"file"`
		File    string `env:"ACTIVATION_FILE" envDefault:"activated_servers.json"`
	}

	Server struct {
		Port   int    `env:"HTTP_PORT" envDefault:"8080"`
		Origin string `env:"CORS_ORIGIN" envDefault:"*"`
	}

	Redis struct {
		Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`

		EventsStream string `env:"EVENTS_STREAM" envDefault:"giveaway:events"`
	}
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate performs checks that struct tags cannot express.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	if strings.TrimSpace(c.Discord.CommandPrefix) == "" {
		return fmt.Errorf("COMMAND_PREFIX must not be empty")
	}
	if c.Giveaway.SetupStepTimeout <= 0 {
		return fmt.Errorf("SETUP_STEP_TIMEOUT must be positive")
	}
	if c.Giveaway.CountdownTick <= 0 {
		return fmt.Errorf("COUNTDOWN_TICK must be positive")
	}
	if _, err := time.LoadLocation(c.Giveaway.DisplayTimezone); err != nil {
		return fmt.Errorf("DISPLAY_TIMEZONE: %w", err)
	}
	switch c.Activation.Backend {
	case ActivationBackendFile:
		if c.Activation.File == "" {
			return fmt.Errorf("ACTIVATION_FILE must be set for the file backend")
		}
	case ActivationBackendRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("ACTIVATION_BACKEND=redis requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("unknown ACTIVATION_BACKEND %q", c.Activation.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.Server.Port)
	}
	return nil
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
