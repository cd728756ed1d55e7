package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServerConfig(t *testing.T) {
	t.Run("creates defaults and generates secrets", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := LoadServerConfig(dir)
		if err != nil {
			t.Fatalf("LoadServerConfig: %v", err)
		}
		if len(cfg.JWTSecret) != 32 {
			t.Errorf("JWTSecret length = %d", len(cfg.JWTSecret))
		}
		if cfg.WebPush.VAPIDPublicKey == "" || cfg.WebPush.VAPIDPrivateKey == "" {
			t.Error("VAPID keys not generated")
		}
		if cfg.Quotas.MaxSessionsPerUser != 10 {
			t.Errorf("MaxSessionsPerUser = %d", cfg.Quotas.MaxSessionsPerUser)
		}
		if _, err := os.Stat(filepath.Join(dir, "server_config.json")); err != nil {
			t.Errorf("config file not written: %v", err)
		}
	})

	t.Run("secrets survive reload", func(t *testing.T) {
		dir := t.TempDir()
		first, err := LoadServerConfig(dir)
		if err != nil {
			t.Fatalf("LoadServerConfig: %v", err)
		}
		second, err := LoadServerConfig(dir)
		if err != nil {
			t.Fatalf("LoadServerConfig reload: %v", err)
		}
		if string(first.JWTSecret) != string(second.JWTSecret) {
			t.Error("JWT secret changed on reload")
		}
		if first.WebPush.VAPIDPrivateKey != second.WebPush.VAPIDPrivateKey {
			t.Error("VAPID key changed on reload")
		}
	})

	t.Run("rejects malformed file", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "server_config.json"), []byte("{"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadServerConfig(dir); err == nil {
			t.Error("malformed config should fail")
		}
	})
}

func TestServerConfigValidate(t *testing.T) {
	cfg := &ServerConfig{Quotas: DefaultServerQuotas(), RateLimits: DefaultRateLimits()}
	if err := cfg.Validate(); err == nil {
		t.Error("missing JWT secret should fail")
	}
	cfg.JWTSecret = make([]byte, 16)
	if err := cfg.Validate(); err == nil {
		t.Error("short JWT secret should fail")
	}
	cfg.JWTSecret = make([]byte, 32)
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	cfg.RateLimits.SubmitRatePerMin = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative rate limit should fail")
	}
}
