package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BACKEND_TIMEOUT", "")
	t.Setenv("DIALOGUE_TIMEOUT", "")
	t.Setenv("DEDUP_TTL", "")
	t.Setenv("GRAPH_API_BASE", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.BackendTimeout != 10*time.Second {
		t.Fatalf("expected 10s backend timeout, got %s", cfg.BackendTimeout)
	}
	if cfg.DialogueTimeout != 5*time.Second {
		t.Fatalf("expected 5s dialogue timeout, got %s", cfg.DialogueTimeout)
	}
	if cfg.DedupTTL != 24*time.Hour {
		t.Fatalf("expected 24h dedup ttl, got %s", cfg.DedupTTL)
	}
	if cfg.GraphAPIBase != "https://graph.facebook.com/v16.0" {
		t.Fatalf("unexpected graph base %s", cfg.GraphAPIBase)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("BACKEND_URL", "http://backend:3000/")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("CHATBOT_USER_ID", "7")
	t.Setenv("WHATSAPP_VERIFY_TOKEN", "verify")
	t.Setenv("REDIS_TLS", "true")
	cfg := Load()
	if cfg.Port != "5000" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.BackendURL != "http://backend:3000/" {
		t.Fatalf("expected backend override, got %s", cfg.BackendURL)
	}
	if cfg.BackendTimeout != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.BackendTimeout)
	}
	if cfg.ChatbotUserID != 7 {
		t.Fatalf("expected user id 7, got %d", cfg.ChatbotUserID)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CHATBOT_USER_ID", "abc")
	t.Setenv("BACKEND_TIMEOUT", "soon")
	cfg := Load()
	if cfg.ChatbotUserID != 0 {
		t.Fatalf("expected default user id, got %d", cfg.ChatbotUserID)
	}
	if cfg.BackendTimeout != 10*time.Second {
		t.Fatalf("expected default timeout, got %s", cfg.BackendTimeout)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for empty config")
	}
	for _, want := range []string{"BACKEND_URL", "CHATBOT_USER_ID", "WHATSAPP_VERIFY_TOKEN", "BACKEND_TIMEOUT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %s in %q", want, err.Error())
		}
	}

	cfg = &Config{
		BackendURL:            "http://backend/",
		BackendTimeout:        10 * time.Second,
		ChatbotUserID:         1,
		WhatsAppVerifyToken:   "v",
		WhatsAppAccessToken:   "t",
		WhatsAppPhoneNumberID: "123",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
