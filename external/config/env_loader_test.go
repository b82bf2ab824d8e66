package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timezone != "Asia/Tokyo" || cfg.EventLogBackend != "csv" || cfg.EventLogPath != "data/vc_logs.csv" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.HTTPAddr != ":8000" || cfg.RedisEventLogKey != "vclog:events" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_RedisBackendRequiresURL(t *testing.T) {
	t.Setenv("EVENT_LOG_BACKEND", "redis")
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error")
	}

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected redis url: %q", cfg.RedisURL)
	}
}

func TestLoad_InvalidBool(t *testing.T) {
	t.Setenv("DISCORD_TRACK_BOTS", "maybe")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error for invalid bool")
	}
}
