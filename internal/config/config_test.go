package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.AuthAPI.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("expected default auth API origin, got %s", cfg.AuthAPI.BaseURL)
	}
	if cfg.AuthAPI.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.AuthAPI.Timeout)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode")
	}
}

func TestLoad_AuthAPIOverride(t *testing.T) {
	t.Setenv("AUTH_API_URL", "https://auth.example.com/")
	t.Setenv("AUTH_API_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AuthAPI.BaseURL != "https://auth.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.AuthAPI.BaseURL)
	}
	if cfg.AuthAPI.Timeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.AuthAPI.Timeout)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoad_ProductionRequirements(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		secret  string
		wantErr bool
	}{
		{"memory driver rejected", "memory", strings.Repeat("s", 32), true},
		{"short secret rejected", "redis", "too-short", true},
		{"redis with secret", "redis", strings.Repeat("s", 32), false},
		{"mysql with secret", "mysql", strings.Repeat("s", 40), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "Production")
			t.Setenv("STORAGE_DRIVER", tt.driver)
			t.Setenv("STORAGE_SECRET", tt.secret)

			_, err := Load()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", User: "shop", Password: "p@ss:word", Name: "storefront"}
	dsn := d.DSN()
	if !strings.Contains(dsn, "tcp(db:3306)") {
		t.Errorf("expected default port appended, got %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("expected parseTime, got %s", dsn)
	}

	d.dsnOverride = "user:pw@tcp(other:3307)/x"
	if d.DSN() != "user:pw@tcp(other:3307)/x" {
		t.Errorf("expected DATABASE_URL override, got %s", d.DSN())
	}
}
