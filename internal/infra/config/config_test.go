package config

import (
	"testing"

	"github.com/kelseyhightower/envconfig"
)

func TestDefaults(t *testing.T) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		t.Fatalf("neočekávaná chyba: %v", err)
	}

	if cfg.MetricsAddr != ":9090" {
		t.Fatalf("výchozí adresa metrik má být :9090, je %q", cfg.MetricsAddr)
	}
	if cfg.Timezone != "Europe/Prague" {
		t.Fatalf("výchozí zóna má být Europe/Prague, je %q", cfg.Timezone)
	}
	if cfg.Reminders.MiddayHour != 11 {
		t.Fatalf("výchozí polední hodina má být 11, je %d", cfg.Reminders.MiddayHour)
	}
}
