package config_test

import (
	"errors"
	"testing"

	"github.com/jobboard/backend/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	cfg := config.Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DatabaseURL != "memory://" {
		t.Errorf("DatabaseURL = %q, want memory://", cfg.DatabaseURL)
	}
	if cfg.JWTExpiryHours != 24 {
		t.Errorf("JWTExpiryHours = %d, want 24", cfg.JWTExpiryHours)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WARM_QUERIES", "golang, react ,,python")
	t.Setenv("EXTERNAL_CACHE_TTL_MINUTES", "5")

	cfg := config.Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	want := []string{"golang", "react", "python"}
	if len(cfg.WarmQueries) != len(want) {
		t.Fatalf("WarmQueries = %v, want %v", cfg.WarmQueries, want)
	}
	for i := range want {
		if cfg.WarmQueries[i] != want[i] {
			t.Errorf("WarmQueries[%d] = %q, want %q", i, cfg.WarmQueries[i], want[i])
		}
	}
	if cfg.ExternalCacheTTL().Minutes() != 5 {
		t.Errorf("ExternalCacheTTL = %v, want 5m", cfg.ExternalCacheTTL())
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*config.Config)
		field string
	}{
		{"ok", func(c *config.Config) {}, ""},
		{"bad database url", func(c *config.Config) { c.DatabaseURL = "mysql://x" }, "DATABASE_URL"},
		{"default secret outside debug", func(c *config.Config) {
			c.Debug = false
			c.JWTSecret = "your-secret-key-change-in-production"
		}, "JWT_SECRET"},
		{"ai without project", func(c *config.Config) {
			c.EnableAIClassification = true
			c.ProjectID = ""
		}, "PROJECT_ID"},
		{"adzuna half configured", func(c *config.Config) { c.AdzunaAppID = "id" }, "ADZUNA_APP_KEY"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				DatabaseURL:    "memory://",
				JWTSecret:      "s3cret",
				JWTExpiryHours: 24,
			}
			tc.mut(cfg)
			err := cfg.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var cerr *config.ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cerr.Field != tc.field {
				t.Errorf("Field = %q, want %q", cerr.Field, tc.field)
			}
		})
	}
}
