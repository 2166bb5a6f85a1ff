package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %q", cfg.Server.Addr)
	}
	if cfg.AI.Provider != ProviderGemini {
		t.Fatalf("unexpected provider: %q", cfg.AI.Provider)
	}
	if cfg.AI.Timeout != 60*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.AI.Timeout)
	}
}

func TestLoadServerAddrForms(t *testing.T) {
	cases := []struct {
		port string
		want string
	}{
		{"9090", ":9090"},
		{":9090", ":9090"},
		{"127.0.0.1:9090", "127.0.0.1:9090"},
	}

	for _, tc := range cases {
		t.Setenv("PORT", tc.port)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load(%q) err: %v", tc.port, err)
		}
		if cfg.Server.Addr != tc.want {
			t.Fatalf("PORT=%q: got %q want %q", tc.port, cfg.Server.Addr, tc.want)
		}
	}
}

func TestLoadRejectsBadProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("AI_TIMEOUT_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}
}

func TestAIConfigEnabled(t *testing.T) {
	gemini := AIConfig{Provider: ProviderGemini, GeminiAPIKey: "k"}
	if !gemini.Enabled() {
		t.Fatal("gemini with key should be enabled")
	}
	if (AIConfig{Provider: ProviderGemini}).Enabled() {
		t.Fatal("gemini without key should be disabled")
	}

	ark := AIConfig{Provider: ProviderArk, ArkModel: "m", ArkAPIKey: "k"}
	if !ark.Enabled() {
		t.Fatal("ark with key+model should be enabled")
	}
	if (AIConfig{Provider: ProviderArk, ArkAPIKey: "k"}).Enabled() {
		t.Fatal("ark without model should be disabled")
	}
}

func TestLoadRejectsBadSpeechEnabled(t *testing.T) {
	t.Setenv("SPEECH_ENABLED", "yes please")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable SPEECH_ENABLED")
	}
}

func TestSpeechFallsBackToGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "shared")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.Speech.Enabled {
		t.Fatal("speech should ride the completion key")
	}
	if cfg.Speech.APIKey != "shared" {
		t.Fatalf("unexpected speech key: %q", cfg.Speech.APIKey)
	}
}
