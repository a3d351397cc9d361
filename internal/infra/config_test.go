package infra

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "")
	t.Setenv("PROXY_BASE_URL", "")
	t.Setenv("MAX_AUDIT_IMAGES", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "8080")
	}
	if cfg.MaxAuditImages != 5 {
		t.Fatalf("MaxAuditImages mismatch: got %d want 5", cfg.MaxAuditImages)
	}
	if cfg.ProxyBaseURL == "" {
		t.Fatal("expected a default proxy base URL")
	}
	if cfg.GeminiModel == "" {
		t.Fatal("expected a default gemini model")
	}
}

func TestLoadConfigRequiresGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when GEMINI_API_KEY is missing")
	}
}

func TestLoadConfigRejectsImageCapOutOfRange(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("MAX_AUDIT_IMAGES", "20")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for out-of-range MAX_AUDIT_IMAGES")
	}
}

func TestLoadConfigParsesCORSOrigins(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("CORSAllowedOrigins mismatch: %#v", cfg.CORSAllowedOrigins)
	}
}
