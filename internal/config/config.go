package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string
	Timezone         string
	EventLogBackend  string
	EventLogPath     string
	DatabaseURL      string
	RedisURL         string
	RedisEventLogKey string
	HTTPAddr         string
	DiscordToken     string
	DiscordGuildID   string
	DiscordTrackBots bool
	ReportWebhookURL string
}

func (c *Config) Validate() error {
	if c.Timezone == "" {
		return fmt.Errorf("TIMEZONE is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	switch c.EventLogBackend {
	case "csv":
		if c.EventLogPath == "" {
			return fmt.Errorf("EVENT_LOG_PATH is required when EVENT_LOG_BACKEND=csv")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when EVENT_LOG_BACKEND=postgres")
		}
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when EVENT_LOG_BACKEND=redis")
		}
		if c.RedisEventLogKey == "" {
			return fmt.Errorf("REDIS_EVENT_LOG_KEY is required when EVENT_LOG_BACKEND=redis")
		}
	default:
		return fmt.Errorf("EVENT_LOG_BACKEND must be one of csv, postgres, redis, got %q", c.EventLogBackend)
	}
	return nil
}

// ValidateBot checks the settings only the Discord bot needs.
func (c *Config) ValidateBot() error {
	for _, req := range c.requiredBotFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredBotFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
