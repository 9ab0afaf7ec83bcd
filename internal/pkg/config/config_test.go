package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.AppName != "Portal" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.DBPath != "data/app.db" || cfg.Store.BcryptCost != 10 {
		t.Fatalf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.SessionTimeout() != 60*time.Minute {
		t.Fatalf("expected 60m timeout, got %v", cfg.SessionTimeout())
	}
	if cfg.Admin.Username != "admin" || cfg.Admin.Password != "changeme123" {
		t.Fatalf("unexpected admin defaults: %+v", cfg.Admin)
	}
	if !cfg.GeneratedSecret || len(cfg.Session.Secret) < minSecretLen {
		t.Fatalf("expected a generated development secret, got %q", cfg.Session.Secret)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_TIMEOUT_MINUTES": "15",
		"STORE_DRIVER":            "mongo",
		"MONGO_DB":                "portal_test",
		"SESSION_SECRET":          "dev-secret",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.SessionTimeout() != 15*time.Minute || cfg.Store.Driver != DriverMongo || cfg.Mongo.Database != "portal_test" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.GeneratedSecret || cfg.Session.Secret != "dev-secret" {
		t.Fatalf("explicit secret must be kept, got %q", cfg.Session.Secret)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"zero timeout", map[string]string{"SESSION_TIMEOUT_MINUTES": "0"}, "SESSION_TIMEOUT_MINUTES"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "postgres"}, "STORE_DRIVER"},
		{"bcrypt cost too high", map[string]string{"BCRYPT_COST": "99"}, "BCRYPT_COST"},
		{"production without secret", map[string]string{"ENV": "production"}, "SESSION_SECRET"},
		{"production short secret", map[string]string{"ENV": "production", "SESSION_SECRET": "short"}, "SESSION_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFrom_ProductionWithSecret(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":            "production",
		"SESSION_SECRET": strings.Repeat("s", minSecretLen),
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !cfg.IsProduction() || cfg.GeneratedSecret {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
