package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "secret")
	for _, key := range []string{
		"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "PASSWORD_MIN_LENGTH",
		"PASSWORD_REQUIRED_CLASSES", "PASSWORD_REQUIRE_ALL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AccessTokenTTL != 15*time.Minute || cfg.RefreshTokenTTL != 168*time.Hour {
		t.Errorf("token TTLs = %v/%v", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	policy := cfg.Password.Policy()
	if policy.MinLength != 8 || len(policy.RequiredClasses) != 4 || policy.RequireAll {
		t.Errorf("password policy = %+v", policy)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REFRESH_TOKEN_TTL", "not-a-duration")
	t.Setenv("PASSWORD_MIN_LENGTH", "12")
	t.Setenv("PASSWORD_REQUIRED_CLASSES", "digit, special ,")
	t.Setenv("PASSWORD_REQUIRE_ALL", "true")
	t.Setenv("RATE_LIMIT_AUTH", "x")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("driver = %q", cfg.DBDriver)
	}
	if cfg.AccessTokenTTL != 5*time.Minute || cfg.RefreshTokenTTL != 168*time.Hour {
		t.Errorf("token TTLs = %v/%v", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	if got := strings.Join(cfg.Password.RequiredClasses, "|"); got != "digit|special" {
		t.Errorf("required classes = %q", got)
	}
	if cfg.Password.MinLength != 12 || !cfg.Password.RequireAll {
		t.Errorf("password = %+v", cfg.Password)
	}
	if cfg.RateLimitAuth != 20 {
		t.Errorf("rate limit = %d, want fallback", cfg.RateLimitAuth)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("origins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBDriver:        "postgres",
			DBPassword:      "pw",
			JWTSecret:       "secret",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
			Password:        PasswordConfig{MinLength: 8},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no db password", func(c *Config) { c.DBPassword = "" }, "DB_PASSWORD"},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, "DB_DRIVER"},
		{"no secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"short production secret", func(c *Config) { c.Environment = "production" }, "32 characters"},
		{"refresh not longer", func(c *Config) { c.RefreshTokenTTL = time.Minute }, "REFRESH_TOKEN_TTL"},
		{"zero min length", func(c *Config) { c.Password.MinLength = 0 }, "PASSWORD_MIN_LENGTH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMaskPassword(t *testing.T) {
	tests := map[string]string{
		"host=db user=u password=hunter2 dbname=wink": "host=db user=u password=***** dbname=wink",
		"u:hunter2@tcp(db:3306)/wink":                  "u:*****@tcp(db:3306)/wink",
		"wink.db?_foreign_keys=on":                     "wink.db?_foreign_keys=on",
	}
	for dsn, want := range tests {
		if got := maskPassword(dsn); got != want {
			t.Errorf("maskPassword(%q) = %q, want %q", dsn, got, want)
		}
	}
}
