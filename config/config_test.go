package config

import "testing"

func TestDSNFromComponents(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5433", User: "app", Password: "pw",
		DBName: "fotofolio", SSLMode: "require",
	}
	want := "postgres://app:pw@db:5433/fotofolio?sslmode=require"
	if got := c.DSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}

func TestDSNPrefersURL(t *testing.T) {
	c := DatabaseConfig{
		URL:  "postgres://u:p@host/db",
		Host: "ignored",
	}
	if got := c.DSN(); got != "postgres://u:p@host/db" {
		t.Fatalf("DSN = %q", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port == "" {
		t.Fatal("port default missing")
	}
	if cfg.JWT.AccessExpireMin <= 0 || cfg.JWT.RefreshExpireHours <= 0 {
		t.Fatalf("token lifetimes must default positive: %d/%d",
			cfg.JWT.AccessExpireMin, cfg.JWT.RefreshExpireHours)
	}
	if cfg.AWS.PresignExpireMinutes <= 0 {
		t.Fatal("presign expiry must default positive")
	}
	if cfg.App.FrontendURL == "" {
		t.Fatal("frontend url default missing")
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT_VAL", "42")
	if got := getEnvInt("TEST_INT_VAL", 7); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	t.Setenv("TEST_INT_VAL", "not-a-number")
	if got := getEnvInt("TEST_INT_VAL", 7); got != 7 {
		t.Fatalf("got %d, want fallback 7", got)
	}
	if got := getEnvInt("TEST_INT_UNSET", 7); got != 7 {
		t.Fatalf("got %d, want fallback 7", got)
	}
}
