package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port == "" {
		t.Error("Server.Port is empty")
	}
	if cfg.Schedule.MinOffsetDays <= 0 {
		t.Errorf("Schedule.MinOffsetDays = %d, want positive", cfg.Schedule.MinOffsetDays)
	}
	if cfg.Schedule.MaxOffsetDays <= cfg.Schedule.MinOffsetDays {
		t.Errorf("Schedule.MaxOffsetDays = %d, want greater than MinOffsetDays %d",
			cfg.Schedule.MaxOffsetDays, cfg.Schedule.MinOffsetDays)
	}
}

func TestGetEnvOverrides(t *testing.T) {
	t.Setenv("SCHEDULE_MIN_OFFSET_DAYS", "3")
	t.Setenv("SCHEDULE_TIMEZONE_OFFSET", "2h")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Schedule.MinOffsetDays != 3 {
		t.Errorf("Schedule.MinOffsetDays = %d, want 3", cfg.Schedule.MinOffsetDays)
	}
	if cfg.Schedule.TimezoneOffset != 2*time.Hour {
		t.Errorf("Schedule.TimezoneOffset = %v, want 2h", cfg.Schedule.TimezoneOffset)
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("SCHEDULE_MAX_OFFSET_DAYS", "ninety")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Schedule.MaxOffsetDays != 90 {
		t.Errorf("Schedule.MaxOffsetDays = %d, want default 90 on unparsable value", cfg.Schedule.MaxOffsetDays)
	}
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     "5433",
		User:     "app",
		Password: "secret",
		Name:     "warehouses",
		SSLMode:  "require",
	}

	want := "host=db.internal port=5433 user=app password=secret dbname=warehouses sslmode=require"
	if got := db.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}

func TestScheduleLocation(t *testing.T) {
	sched := ScheduleConfig{TimezoneOffset: 5 * time.Hour}

	utc := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	local := utc.In(sched.Location())
	if local.Hour() != 5 {
		t.Errorf("midnight UTC in schedule zone = %02d:00, want 05:00", local.Hour())
	}
}
