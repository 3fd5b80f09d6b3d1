package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("HTTP_HOST", "127.0.0.1")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_READ_TIMEOUT", "3s")

	cfg, err := NewHTTPConfig()
	if err != nil {
		t.Fatalf("new http config: %v", err)
	}
	if cfg.Address() != "127.0.0.1:9090" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
	if cfg.ReadTimeout() != 3*time.Second {
		t.Fatalf("unexpected read timeout %v", cfg.ReadTimeout())
	}
	if cfg.WriteTimeout() != 10*time.Second {
		t.Fatalf("expected default write timeout, got %v", cfg.WriteTimeout())
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "soon")
	if _, err := NewHTTPConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewPGConfig(t *testing.T) {
	t.Setenv("PG_DSN", "")
	if _, err := NewPGConfig(); err == nil {
		t.Fatalf("expected error for empty dsn")
	}

	t.Setenv("PG_DSN", "postgres://localhost/crash")
	cfg, err := NewPGConfig()
	if err != nil {
		t.Fatalf("new pg config: %v", err)
	}
	if cfg.DSN() != "postgres://localhost/crash" {
		t.Fatalf("unexpected dsn %q", cfg.DSN())
	}
}

func TestNewJWTConfig(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		duration string
		wantErr  bool
	}{
		{name: "ok", secret: "s3cret", duration: "1h"},
		{name: "missing secret", secret: "", duration: "1h", wantErr: true},
		{name: "bad duration", secret: "s3cret", duration: "-1h", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ACCESS_TOKEN", tt.secret)
			t.Setenv("ACCESS_TOKEN_DURATION", tt.duration)

			cfg, err := NewJWTConfig()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(cfg.AccessTokenSecretKey()) != tt.secret {
				t.Fatalf("unexpected secret")
			}
			if cfg.AccessTokenDuration() != time.Hour {
				t.Fatalf("unexpected duration %v", cfg.AccessTokenDuration())
			}
		})
	}
}

func TestNewTransportConfigDefaults(t *testing.T) {
	cfg, err := NewTransportConfig()
	if err != nil {
		t.Fatalf("new transport config: %v", err)
	}
	if cfg.MaxReconnectAttempts() != 5 {
		t.Fatalf("expected 5 attempts, got %d", cfg.MaxReconnectAttempts())
	}
	if cfg.ReconnectInterval() != 3*time.Second || cfg.HeartbeatInterval() != 30*time.Second {
		t.Fatalf("unexpected intervals %v %v", cfg.ReconnectInterval(), cfg.HeartbeatInterval())
	}
	if cfg.RequestTimeout() != 10*time.Second {
		t.Fatalf("unexpected request timeout %v", cfg.RequestTimeout())
	}
}

func TestGameConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewGameConfigFromYAML(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MinBet() != 10 || cfg.MaxBet() != 100000 || cfg.MaxBetCount() != 5 {
		t.Fatalf("unexpected bet limits %d %d %d", cfg.MinBet(), cfg.MaxBet(), cfg.MaxBetCount())
	}
	if cfg.ServiceFeeRate() != 0.05 || cfg.GrowthRate() != 0.06 {
		t.Fatalf("unexpected economics %f %f", cfg.ServiceFeeRate(), cfg.GrowthRate())
	}
	if len(cfg.CrashTiers()) != 3 {
		t.Fatalf("expected 3 crash tiers, got %d", len(cfg.CrashTiers()))
	}
}

func TestGameConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
game:
  min_bet: 20
  wager_duration: 3s
  crash_tiers:
    - {weight: 0.5, min: 1.0, max: 2.0}
    - {weight: 0.5, min: 2.0, max: 4.0}
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := NewGameConfigFromYAML(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MinBet() != 20 {
		t.Fatalf("expected min bet 20, got %d", cfg.MinBet())
	}
	if cfg.MaxBet() != 100000 {
		t.Fatalf("expected default max bet, got %d", cfg.MaxBet())
	}
	if cfg.WagerDuration() != 3*time.Second {
		t.Fatalf("expected 3s wager, got %v", cfg.WagerDuration())
	}
	if tiers := cfg.CrashTiers(); len(tiers) != 2 || tiers[1].Max != 4.0 {
		t.Fatalf("unexpected tiers %+v", tiers)
	}
}

func TestGameConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "negative min bet", body: "game:\n  min_bet: -1\n"},
		{name: "fee too high", body: "game:\n  service_fee_rate: 1.5\n"},
		{name: "weights do not sum", body: "game:\n  crash_tiers:\n    - {weight: 0.4, min: 1.0, max: 2.0}\n"},
		{name: "broken yaml", body: "game: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := NewGameConfigFromYAML(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
