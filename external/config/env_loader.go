package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/vclog/internal/config"
)

type envConfig struct {
	Env              string `env:"ENV" envDefault:"production"`
	Timezone         string `env:"TIMEZONE" envDefault:"Asia/Tokyo"`
	EventLogBackend  string `env:"EVENT_LOG_BACKEND" envDefault:"csv"`
	EventLogPath     string `env:"EVENT_LOG_PATH" envDefault:"data/vc_logs.csv"`
	DatabaseURL      string `env:"DATABASE_URL"`
	RedisURL         string `env:"REDIS_URL"`
	RedisEventLogKey string `env:"REDIS_EVENT_LOG_KEY" envDefault:"vclog:events"`
	HTTPAddr         string `env:"HTTP_ADDR" envDefault:":8000"`
	DiscordToken     string `env:"DISCORD_TOKEN"`
	DiscordGuildID   string `env:"DISCORD_GUILD_ID"`
	DiscordTrackBots bool   `env:"DISCORD_TRACK_BOTS" envDefault:"false"`
	ReportWebhookURL string `env:"REPORT_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:              raw.Env,
		Timezone:         raw.Timezone,
		EventLogBackend:  raw.EventLogBackend,
		EventLogPath:     raw.EventLogPath,
		DatabaseURL:      raw.DatabaseURL,
		RedisURL:         raw.RedisURL,
		RedisEventLogKey: raw.RedisEventLogKey,
		HTTPAddr:         raw.HTTPAddr,
		DiscordToken:     raw.DiscordToken,
		DiscordGuildID:   raw.DiscordGuildID,
		DiscordTrackBots: raw.DiscordTrackBots,
		ReportWebhookURL: raw.ReportWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
