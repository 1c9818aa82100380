package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"SERVER_PORT",
	"SHUTDOWN_TIMEOUT",
	"CORS_ALLOWED_ORIGIN",
	"RATE_LIMIT_GENERAL",
	"RATE_LIMIT_AUTH",
	"PASSWORD_HASH_COST",
	"LOG_LEVEL",
}

// clearConfigEnv は設定用の環境変数を未設定状態にする。テスト終了時に元の値へ戻る。
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.ServerPort != "4567" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "4567")
	}
	if cfg.Addr() != ":4567" {
		t.Errorf("Addr() = %q, want %q", cfg.Addr(), ":4567")
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, 30*time.Second)
	}
	if cfg.CORSAllowedOrigin != "*" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "*")
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 120)
	}
	if cfg.RateLimitAuth != 10 {
		t.Errorf("RateLimitAuth = %d, want %d", cfg.RateLimitAuth, 10)
	}
	if cfg.PasswordHashCost != 10 {
		t.Errorf("PasswordHashCost = %d, want %d", cfg.PasswordHashCost, 10)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://app.example.com")
	t.Setenv("RATE_LIMIT_GENERAL", "60")
	t.Setenv("RATE_LIMIT_AUTH", "3")
	t.Setenv("PASSWORD_HASH_COST", "12")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "9090")
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, 5*time.Second)
	}
	if cfg.CORSAllowedOrigin != "https://app.example.com" {
		t.Errorf("CORSAllowedOrigin = %q", cfg.CORSAllowedOrigin)
	}
	if cfg.RateLimitGeneral != 60 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 60)
	}
	if cfg.RateLimitAuth != 3 {
		t.Errorf("RateLimitAuth = %d, want %d", cfg.RateLimitAuth, 3)
	}
	if cfg.PasswordHashCost != 12 {
		t.Errorf("PasswordHashCost = %d, want %d", cfg.PasswordHashCost, 12)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoad_InvalidOptionalValues_FallBackToDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_GENERAL", "many")
	t.Setenv("RATE_LIMIT_AUTH", "-1")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want default", cfg.ShutdownTimeout)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want default", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitAuth != 10 {
		t.Errorf("RateLimitAuth = %d, want default", cfg.RateLimitAuth)
	}
}

func TestLoad_InvalidServerPort_ReturnsError(t *testing.T) {
	for _, port := range []string{"abc", "0", "70000"} {
		t.Run(port, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("SERVER_PORT", port)

			if _, err := LoadFile(""); err == nil {
				t.Errorf("expected error for SERVER_PORT=%q", port)
			}
		})
	}
}

func TestLoad_InvalidPasswordHashCost_ReturnsError(t *testing.T) {
	for _, cost := range []string{"x", "3", "32"} {
		t.Run(cost, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("PASSWORD_HASH_COST", cost)

			if _, err := LoadFile(""); err == nil {
				t.Errorf("expected error for PASSWORD_HASH_COST=%q", cost)
			}
		})
	}
}

func TestLoad_PasswordHashCostBounds_AreAccepted(t *testing.T) {
	for _, tt := range []struct {
		value string
		want  int
	}{
		{"4", 4},
		{"31", 31},
	} {
		t.Run(tt.value, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("PASSWORD_HASH_COST", tt.value)

			cfg, err := LoadFile("")
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if cfg.PasswordHashCost != tt.want {
				t.Errorf("PasswordHashCost = %d, want %d", cfg.PasswordHashCost, tt.want)
			}
		})
	}
}

func TestLoadFile_ReadsEnvFile(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "SERVER_PORT=8181\nLOG_LEVEL=warn\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.ServerPort != "8181" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8181")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
}

func TestLoadFile_ExistingEnvWinsOverFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SERVER_PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SERVER_PORT=8181\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.ServerPort != "7000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "7000")
	}
}

func TestLoadFile_MissingFileIsIgnored(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.ServerPort != "4567" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "4567")
	}
}
