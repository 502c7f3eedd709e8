package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := Load()

	if cfg.Server.Port != ":8080" {
		t.Errorf("Port = %q, want :8080", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenExpiry != time.Hour {
		t.Errorf("AccessTokenExpiry = %v, want 1h", cfg.Auth.AccessTokenExpiry)
	}
	if cfg.Auth.RefreshTokenExpiry != 7*24*time.Hour {
		t.Errorf("RefreshTokenExpiry = %v, want 168h", cfg.Auth.RefreshTokenExpiry)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 0 {
		t.Errorf("unexpected redis defaults %+v", cfg.Redis)
	}
	if cfg.Auth.SecureCookie {
		t.Error("SecureCookie must default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", ":9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SECURE_COOKIE", "true")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "30m")

	cfg := Load()

	if cfg.Server.Port != ":9090" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("Redis.DB = %d", cfg.Redis.DB)
	}
	if !cfg.Auth.SecureCookie {
		t.Error("SecureCookie override ignored")
	}
	if cfg.Auth.AccessTokenExpiry != 30*time.Minute {
		t.Errorf("AccessTokenExpiry = %v", cfg.Auth.AccessTokenExpiry)
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("DUR_PLAIN", "45")
	t.Setenv("DUR_UNIT", "2h")
	t.Setenv("DUR_BAD", "soon")

	// 숫자만 있으면 초 단위
	if got := getDuration("DUR_PLAIN", time.Second); got != 45*time.Second {
		t.Errorf("plain number = %v, want 45s", got)
	}
	if got := getDuration("DUR_UNIT", time.Second); got != 2*time.Hour {
		t.Errorf("unit string = %v, want 2h", got)
	}
	if got := getDuration("DUR_BAD", 7*time.Second); got != 7*time.Second {
		t.Errorf("garbage must fall back to default, got %v", got)
	}
	if got := getDuration("DUR_UNSET", 9*time.Second); got != 9*time.Second {
		t.Errorf("unset must fall back to default, got %v", got)
	}
}

func TestGetBool(t *testing.T) {
	cases := map[string]bool{"true": true, "1": true, "yes": true, "false": false, "0": false, "no": false}
	for raw, want := range cases {
		t.Setenv("BOOL_VAL", raw)
		if got := getBool("BOOL_VAL", !want); got != want {
			t.Errorf("getBool(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("INT_VAL", "12")
	if got := getInt("INT_VAL", 1); got != 12 {
		t.Errorf("getInt = %d", got)
	}
	t.Setenv("INT_VAL", "not-a-number")
	if got := getInt("INT_VAL", 5); got != 5 {
		t.Errorf("bad int must fall back, got %d", got)
	}
}
