package config

import "testing"

func TestLoadDefaultsToSQLite(t *testing.T) {
	t.Setenv("SUBTRACKR_JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if !cfg.DB.IsSQLite() {
		t.Fatalf("expected sqlite default driver, got %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		t.Fatal("expected default sqlite DSN")
	}
	if !cfg.App.IsDev() {
		t.Fatalf("expected dev default env, got %q", cfg.App.Env)
	}
	if cfg.Redis.Enabled() {
		t.Fatal("redis should be disabled without a URL")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("SUBTRACKR_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when jwt secret missing")
	}

	t.Setenv("SUBTRACKR_JWT_SECRET", "   ")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for whitespace-only jwt secret")
	}
}

func TestPostgresDriverRequiresDSN(t *testing.T) {
	t.Setenv("SUBTRACKR_JWT_SECRET", "test-secret")
	t.Setenv("SUBTRACKR_DB_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for postgres without DSN")
	}

	t.Setenv("SUBTRACKR_DB_DSN", "postgres://localhost:5432/subtrackr?sslmode=disable")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error with DSN set: %v", err)
	}
	if cfg.DB.IsSQLite() {
		t.Fatal("expected postgres driver")
	}
}

func TestUnsupportedDriverRejected(t *testing.T) {
	t.Setenv("SUBTRACKR_JWT_SECRET", "test-secret")
	t.Setenv("SUBTRACKR_DB_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
