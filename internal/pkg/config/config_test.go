package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StoreKind != StoreMongo {
		t.Errorf("StoreKind = %q, want %q", cfg.StoreKind, StoreMongo)
	}
	if got := cfg.TokenTTL(); got != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", got)
	}
	if cfg.Auth.LoginMaxAttempts != 5 || cfg.Auth.LoginWindow != 15*time.Minute {
		t.Errorf("login throttling = %d/%v, want 5/15m", cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("Redis.Addr = %q, want empty (throttling disabled)", cfg.Redis.Addr)
	}
	if cfg.Rabbit.URL != "" || cfg.Rabbit.Queue != "account-events" {
		t.Errorf("Rabbit = %+v", cfg.Rabbit)
	}
	if !cfg.Auth.SeedDefaults {
		t.Error("SeedDefaults should default to true")
	}
	if cfg.Auth.PhoneRegion != "BR" {
		t.Errorf("PhoneRegion = %q, want BR", cfg.Auth.PhoneRegion)
	}
	if !cfg.IsDevelopment() {
		t.Error("default ENV should be development")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":        "s3cret",
		"ENV":               "production",
		"STORE_DRIVER":      "Memory",
		"JWT_EXPIRATION_MS": "60000",
		"LOGIN_WINDOW":      "1m30s",
		"REDIS_ADDR":        "localhost:6379",
		"EVENT_WORKERS":     "8",
	}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.StoreKind != StoreMemory {
		t.Errorf("StoreKind = %q, want %q", cfg.StoreKind, StoreMemory)
	}
	if got := cfg.TokenTTL(); got != time.Minute {
		t.Errorf("TokenTTL = %v, want 1m", got)
	}
	if cfg.Auth.LoginWindow != 90*time.Second {
		t.Errorf("LoginWindow = %v, want 1m30s", cfg.Auth.LoginWindow)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Events.Workers != 8 {
		t.Errorf("Events.Workers = %d, want 8", cfg.Events.Workers)
	}
	if cfg.IsDevelopment() {
		t.Error("production must not be reported as development")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"unknown store", map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "postgres"}},
		{"non-positive expiry", map[string]string{"JWT_SECRET": "x", "JWT_EXPIRATION_MS": "0"}},
		{"bad duration", map[string]string{"JWT_SECRET": "x", "LOGIN_WINDOW": "soon"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := load(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil {
				t.Fatalf("expected error, got config %+v", cfg)
			}
		})
	}
}

func TestLoad_MissingSecretIsReported(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if !errors.Is(err, envconfig.ErrMissingRequired) {
		t.Errorf("expected ErrMissingRequired, got %v", err)
	}
}
