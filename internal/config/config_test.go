package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("HOTEL_NAME", "")
	t.Setenv("PMS_MOCK_MODE", "")
	t.Setenv("SESSION_TTL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.HotelName != "The Grand Hotel" {
		t.Fatalf("expected default hotel name, got %s", cfg.HotelName)
	}
	if !cfg.PMSMockMode {
		t.Fatal("expected mock PMS by default")
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("expected default session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected default llm provider, got %s", cfg.LLMProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("HOTEL_NAME", "Seaside Resort")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("PMS_MOCK_MODE", "false")
	t.Setenv("PMS_BASE_URL", "https://pms.example.com/api")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("LLM_PROVIDER", "Bedrock")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production env")
	}
	if cfg.HotelName != "Seaside Resort" {
		t.Fatalf("expected hotel name override, got %s", cfg.HotelName)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.PMSMockMode {
		t.Fatal("expected live PMS mode")
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected session TTL override, got %s", cfg.SessionTTL)
	}
	if cfg.LLMProvider != "bedrock" {
		t.Fatalf("expected normalized llm provider, got %s", cfg.LLMProvider)
	}
	if cfg.LLMTemperature != 0.2 {
		t.Fatalf("expected temperature override, got %f", cfg.LLMTemperature)
	}
}
