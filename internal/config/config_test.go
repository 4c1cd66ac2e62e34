package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv() {
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!!")
	os.Setenv("ADMIN_PASSWORD", "test-admin-password")
	os.Setenv("DB_PASSWORD", "test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv()
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.SessionDuration != 15*time.Minute {
		t.Errorf("SessionDuration: got %v, want %v", cfg.Auth.SessionDuration, 15*time.Minute)
	}
	if cfg.Auth.SweepInterval != 5*time.Minute {
		t.Errorf("SweepInterval: got %v, want %v", cfg.Auth.SweepInterval, 5*time.Minute)
	}
	if cfg.Database.Name != "tickerdesk" {
		t.Errorf("Database.Name: got %q, want %q", cfg.Database.Name, "tickerdesk")
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("LLM.Provider: got %q, want %q", cfg.LLM.Provider, "openai")
	}
	if cfg.Market.CacheTTL != 1*time.Minute {
		t.Errorf("Market.CacheTTL: got %v, want %v", cfg.Market.CacheTTL, 1*time.Minute)
	}
}

func TestLoad_MissingSessionSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("ADMIN_PASSWORD", "test-admin-password")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without SESSION_SECRET")
	}
}

func TestLoad_MissingAdminPassword(t *testing.T) {
	os.Clearenv()
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without ADMIN_PASSWORD")
	}
}

func TestLoad_WeakSessionSecretRejected(t *testing.T) {
	os.Clearenv()
	os.Setenv("SESSION_SECRET", "short")
	os.Setenv("ADMIN_PASSWORD", "test-admin-password")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted a short SESSION_SECRET")
	}
}

func TestLoad_ProductionSecretLength(t *testing.T) {
	os.Clearenv()
	os.Setenv("SESSION_SECRET", "only-twenty-chars!!!") // fine in dev, too short for prod
	os.Setenv("ADMIN_PASSWORD", "test-admin-password")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("ENV", "production")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted a sub-32-character secret in production")
	}
}

func TestLoad_CustomSessionDuration(t *testing.T) {
	setRequiredEnv()
	os.Setenv("SESSION_DURATION", "30m")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.SessionDuration != 30*time.Minute {
		t.Errorf("SessionDuration: got %v, want %v", cfg.Auth.SessionDuration, 30*time.Minute)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setRequiredEnv()
	os.Setenv("SESSION_DURATION", "not-a-duration")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.SessionDuration != 15*time.Minute {
		t.Errorf("SessionDuration with invalid value: got %v, want %v", cfg.Auth.SessionDuration, 15*time.Minute)
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	setRequiredEnv()
	os.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1/32")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if len(cfg.Server.TrustedProxies) != 2 || cfg.Server.TrustedProxies[1] != "127.0.0.1/32" {
		t.Errorf("TrustedProxies: got %v", cfg.Server.TrustedProxies)
	}
}
