package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/bwservices06-art/bwservicesweb/pkg/config"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Admin.Email = "admin@example.com"
	cfg.Admin.PasswordHash = "$2a$10$abcdefghijklmnopqrstuuJ8m8W4pJ2b6s9yq0oVx3r6N8kQ6wW2a"
	cfg.Admin.SessionSecret = strings.Repeat("s", 32)
	return cfg
}

func TestAPIConfig_DisabledMode(t *testing.T) {
	cfg := APIConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAPIConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := APIConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAPIConfig_TokenMode(t *testing.T) {
	cfg := APIConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}

	cfg = APIConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}

	cfg = APIConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestAdminConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing email", func(c *Config) { c.Admin.Email = "" }},
		{"bad email", func(c *Config) { c.Admin.Email = "admin" }},
		{"missing hash", func(c *Config) { c.Admin.PasswordHash = "" }},
		{"short secret", func(c *Config) { c.Admin.SessionSecret = "short" }},
		{"tiny ttl", func(c *Config) { c.Admin.SessionTTL = time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.HasPrefix(err.Error(), "admin:") {
				t.Errorf("error %q not attributed to the admin section", err)
			}
		})
	}
}

func TestFullConfig_SectionsValidated(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.App.HTTP.Port = 0 }},
		{"base url", func(c *Config) { c.App.BaseURL = "not a url" }},
		{"store path", func(c *Config) { c.Store.Path = "" }},
		{"api token", func(c *Config) { c.API.Mode = AuthModeToken }},
		{"rate", func(c *Config) { c.Intake.RatePerMinute = -1 }},
		{"confirm", func(c *Config) { c.Intake.OrderConfirm = -time.Second }},
		{"uploads", func(c *Config) { c.Uploads.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoad_YAMLWithEnv(t *testing.T) {
	t.Setenv("TEST_SESSION_SECRET", strings.Repeat("x", 40))
	file := filepath.Join(t.TempDir(), "config.yaml")
	data := `
app:
  log_level: debug
  http:
    port: 9090
store:
  path: /tmp/site.db
  watch: false
admin:
  email: owner@example.com
  password_hash: "$2a$10$abcdefghijklmnopqrstuuJ8m8W4pJ2b6s9yq0oVx3r6N8kQ6wW2a"
  session_secret: ${TEST_SESSION_SECRET}
  session_ttl: 2h
intake:
  rate_per_minute: 0
  inquiry_confirm: 5s
`
	if err := os.WriteFile(file, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(file, cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Store.Watch {
		t.Error("watch should be off")
	}
	if cfg.Admin.SessionSecret != strings.Repeat("x", 40) {
		t.Errorf("secret not expanded: %q", cfg.Admin.SessionSecret)
	}
	if cfg.Admin.SessionTTL != 2*time.Hour {
		t.Errorf("ttl = %v", cfg.Admin.SessionTTL)
	}
	if cfg.Intake.RatePerMinute != 0 || cfg.Intake.InquiryConfirm != 5*time.Second {
		t.Errorf("intake = %+v", cfg.Intake)
	}
	if cfg.Intake.OrderConfirm != 2*time.Second {
		t.Errorf("order confirm default lost: %v", cfg.Intake.OrderConfirm)
	}
	if cfg.Uploads.Path != "./uploads" {
		t.Errorf("uploads default lost: %q", cfg.Uploads.Path)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte("storage:\n  path: ./data\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := pkgconfig.Load(file, NewDefaultConfig()); err == nil {
		t.Fatal("unknown section should be rejected")
	}
}
