package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newTestViper(t *testing.T, overrides map[string]any) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newTestViper(t, nil))
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.DB.Driver != DriverPostgres || cfg.DB.Port != 5432 {
		t.Fatalf("unexpected db defaults: %+v", cfg.DB)
	}
	if cfg.App.InitialStatus != "pending" || !cfg.App.SweepOnRead {
		t.Fatalf("unexpected app defaults: %+v", cfg.App)
	}
	if cfg.App.SweepInterval != 5*time.Minute || cfg.App.CancelStepTimeout != 10*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg.App)
	}
	if cfg.Stripe.Enabled() || cfg.Zoom.Enabled() || cfg.Brevo.Enabled() || cfg.Redis.Enabled() {
		t.Fatalf("integrations must be disabled without credentials")
	}
}

func TestFromViper_SQLite(t *testing.T) {
	cfg, err := FromViper(newTestViper(t, map[string]any{
		"DB_DRIVER":              DriverSQLite,
		"DB_SQLITE_PATH":         "/tmp/x.db",
		"BOOKING_INITIAL_STATUS": "confirmed",
	}))
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.DB.SQLitePath != "/tmp/x.db" || cfg.App.InitialStatus != "confirmed" {
		t.Fatalf("overrides not applied: %+v %+v", cfg.DB, cfg.App)
	}
}

func TestFromViper_Invalid(t *testing.T) {
	cases := map[string]map[string]any{
		"initial status": {"BOOKING_INITIAL_STATUS": "completed"},
		"driver":         {"DB_DRIVER": "mysql"},
		"horizon":        {"SLOT_HORIZON_DAYS": 0},
		"timezone":       {"OPERATING_TIMEZONE": "Mars/Olympus"},
		"postgres host":  {"DB_HOST": ""},
	}
	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := FromViper(newTestViper(t, overrides)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
