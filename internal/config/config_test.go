package config

import (
	"testing"
	"time"
)

func TestAddress(t *testing.T) {
	if got := (Config{Port: "8080"}).Address(); got != ":8080" {
		t.Fatalf("expected :8080, got %q", got)
	}
	if got := (Config{Port: ":9090"}).Address(); got != ":9090" {
		t.Fatalf("expected :9090, got %q", got)
	}
}

func TestDurationEnvAcceptsSecondsAndDurations(t *testing.T) {
	t.Setenv("TEST_TTL", "90")
	d, err := durationEnv("TEST_TTL", time.Minute)
	if err != nil {
		t.Fatalf("seconds form: %v", err)
	}
	if d != 90*time.Second {
		t.Fatalf("expected 90s, got %s", d)
	}

	t.Setenv("TEST_TTL", "2h")
	d, err = durationEnv("TEST_TTL", time.Minute)
	if err != nil {
		t.Fatalf("duration form: %v", err)
	}
	if d != 2*time.Hour {
		t.Fatalf("expected 2h, got %s", d)
	}

	t.Setenv("TEST_TTL", "soon")
	if _, err := durationEnv("TEST_TTL", time.Minute); err == nil {
		t.Fatal("expected an error for a malformed value")
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error when required variables are missing")
	}
}
