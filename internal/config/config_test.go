package config

import (
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("BACKEND_API_URL", "http://localhost:5454/api")
	t.Setenv("GOOGLE_CLIENT_ID", "test-client-id")
	t.Setenv("SESSION_SECRET", "test-session-secret-32bytes-long!")
	t.Setenv("BASE_URL", "http://localhost:8080")
}

func TestLoad_AllRequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.BackendAPIURL != "http://localhost:5454/api" {
		t.Errorf("BackendAPIURL = %q, want %q", cfg.BackendAPIURL, "http://localhost:5454/api")
	}
	if cfg.GoogleClientID != "test-client-id" {
		t.Errorf("GoogleClientID = %q, want %q", cfg.GoogleClientID, "test-client-id")
	}
	if cfg.SessionSecret != "test-session-secret-32bytes-long!" {
		t.Errorf("SessionSecret = %q, want %q", cfg.SessionSecret, "test-session-secret-32bytes-long!")
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "http://localhost:8080")
	}
}

func TestLoad_TrailingSlashTrimmed(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("BACKEND_API_URL", "http://localhost:5454/api/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.BackendAPIURL != "http://localhost:5454/api" {
		t.Errorf("BackendAPIURL = %q, want trailing slash removed", cfg.BackendAPIURL)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Upstream defaults
	if cfg.UpstreamTimeout != 15*time.Second {
		t.Errorf("UpstreamTimeout = %v, want %v", cfg.UpstreamTimeout, 15*time.Second)
	}

	// Session defaults
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want %d", cfg.SessionMaxAge, 86400)
	}

	// Avatar defaults
	if cfg.AvatarTimeout != 10*time.Second {
		t.Errorf("AvatarTimeout = %v, want %v", cfg.AvatarTimeout, 10*time.Second)
	}
	if cfg.AvatarMaxSize != 2097152 {
		t.Errorf("AvatarMaxSize = %d, want %d", cfg.AvatarMaxSize, 2097152)
	}

	// Rate limit defaults
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 120)
	}
	if cfg.RateLimitLogin != 10 {
		t.Errorf("RateLimitLogin = %d, want %d", cfg.RateLimitLogin, 10)
	}

	// View controller defaults
	if cfg.ViewTTL != 30*time.Minute {
		t.Errorf("ViewTTL = %v, want %v", cfg.ViewTTL, 30*time.Minute)
	}

	// Server defaults
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.MetricsPort != "9090" {
		t.Errorf("MetricsPort = %q, want %q", cfg.MetricsPort, "9090")
	}
	if cfg.TemplateDir != "web/templates" {
		t.Errorf("TemplateDir = %q, want %q", cfg.TemplateDir, "web/templates")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnvVars(t)

	t.Setenv("UPSTREAM_TIMEOUT", "30s")
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("AVATAR_TIMEOUT", "5s")
	t.Setenv("AVATAR_MAX_SIZE", "10485760")
	t.Setenv("RATE_LIMIT_GENERAL", "60")
	t.Setenv("RATE_LIMIT_LOGIN", "5")
	t.Setenv("VIEW_TTL", "10m")
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("METRICS_PORT", "9100")
	t.Setenv("TEMPLATE_DIR", "/srv/templates")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.UpstreamTimeout != 30*time.Second {
		t.Errorf("UpstreamTimeout = %v, want %v", cfg.UpstreamTimeout, 30*time.Second)
	}
	if cfg.SessionMaxAge != 3600 {
		t.Errorf("SessionMaxAge = %d, want %d", cfg.SessionMaxAge, 3600)
	}
	if cfg.AvatarTimeout != 5*time.Second {
		t.Errorf("AvatarTimeout = %v, want %v", cfg.AvatarTimeout, 5*time.Second)
	}
	if cfg.AvatarMaxSize != 10485760 {
		t.Errorf("AvatarMaxSize = %d, want %d", cfg.AvatarMaxSize, 10485760)
	}
	if cfg.RateLimitGeneral != 60 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 60)
	}
	if cfg.RateLimitLogin != 5 {
		t.Errorf("RateLimitLogin = %d, want %d", cfg.RateLimitLogin, 5)
	}
	if cfg.ViewTTL != 10*time.Minute {
		t.Errorf("ViewTTL = %v, want %v", cfg.ViewTTL, 10*time.Minute)
	}
	if cfg.ServerPort != "3000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "3000")
	}
	if cfg.MetricsPort != "9100" {
		t.Errorf("MetricsPort = %q, want %q", cfg.MetricsPort, "9100")
	}
	if cfg.TemplateDir != "/srv/templates" {
		t.Errorf("TemplateDir = %q, want %q", cfg.TemplateDir, "/srv/templates")
	}
}

func TestLoad_CookieSecureFollowsBaseURL(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("BASE_URL", "https://connectfood.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !cfg.CookieSecure {
		t.Error("CookieSecure = false, want true for https BASE_URL")
	}
}

func TestLoad_MissingBackendAPIURL_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("BACKEND_API_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing BACKEND_API_URL, got nil")
	}
}

func TestLoad_MissingGoogleClientID_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("GOOGLE_CLIENT_ID", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_CLIENT_ID, got nil")
	}
}

func TestLoad_MissingSessionSecret_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing SESSION_SECRET, got nil")
	}
}

func TestLoad_MissingBaseURL_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("BASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing BASE_URL, got nil")
	}
}
