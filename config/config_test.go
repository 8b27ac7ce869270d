package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nstehr/relic/relic-core/rules"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	s := cfg.RuleStrategy()
	if s != rules.DefaultStrategy() {
		t.Errorf("RuleStrategy() = %+v, want %+v", s, rules.DefaultStrategy())
	}
	if cfg.Seed != 0 {
		t.Errorf("Seed = %d, want 0", cfg.Seed)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relic.yaml")
	body := `
transport: unix
socket_path: /tmp/test.sock
seed: 42
strategy:
  name: balanced
  threshold: 3
  target_selection: nearest
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport != TransportUnix || cfg.SocketPath != "/tmp/test.sock" {
		t.Errorf("transport = %q %q", cfg.Transport, cfg.SocketPath)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Strategy.Name != rules.StrategyBalanced || cfg.Strategy.Threshold != 3 {
		t.Errorf("strategy = %+v", cfg.Strategy)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Strategy.ExploreCadence != 20 || cfg.Strategy.EnemyTracking != rules.TrackFirstSighting {
		t.Errorf("defaults lost: %+v", cfg.Strategy)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relic.yaml")
	if err := os.WriteFile(path, []byte("strategy:\n  name: balanced\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RELIC_STRATEGY", "enemy")
	t.Setenv("RELIC_ENEMY_TRACKING", "live")
	t.Setenv("RELIC_SEED", "7")
	t.Setenv("RELIC_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Strategy.Name != rules.StrategyEnemy {
		t.Errorf("Strategy.Name = %q, want enemy", cfg.Strategy.Name)
	}
	if cfg.Strategy.EnemyTracking != rules.TrackLive {
		t.Errorf("EnemyTracking = %q, want live", cfg.Strategy.EnemyTracking)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("seed: [not, a, number]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"transport", func(c *Config) { c.Transport = "carrier-pigeon" }, "unknown transport"},
		{"ws needs url", func(c *Config) { c.Transport = TransportWebSocket }, "ws_url"},
		{"unix needs path", func(c *Config) { c.Transport = TransportUnix; c.SocketPath = "" }, "socket_path"},
		{"strategy", func(c *Config) { c.Strategy.Name = "turtle" }, "unknown strategy"},
		{"threshold", func(c *Config) { c.Strategy.Threshold = -1 }, "negative threshold"},
		{"threshold too large", func(c *Config) { c.Strategy.Threshold = 65 }, "threshold 65 above 64"},
		{"negative cadence", func(c *Config) { c.Strategy.ExploreCadence = -3 }, "negative explore_cadence"},
		{"cadence too large", func(c *Config) { c.Strategy.ExploreCadence = 1001 }, "explore_cadence 1001 above 1000"},
		{"selection", func(c *Config) { c.Strategy.TargetSelection = "random" }, "target_selection"},
		{"tracking", func(c *Config) { c.Strategy.EnemyTracking = "psychic" }, "enemy_tracking"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidateAcceptsLimits(t *testing.T) {
	cfg := Default()
	cfg.Strategy.Threshold = rules.MaxThreshold
	cfg.Strategy.ExploreCadence = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for threshold %d and default cadence", err, rules.MaxThreshold)
	}
	cfg.Strategy.ExploreCadence = 16
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for cadence 16", err)
	}
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	logger, closer, err := NewLogger(LogConfig{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("hello", "step", 3)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"step":3`) {
		t.Errorf("log file = %q", raw)
	}

	if _, _, err := NewLogger(LogConfig{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
	if lvl, _ := ParseLevel("WARNING"); lvl != slog.LevelWarn {
		t.Errorf("ParseLevel(WARNING) = %v", lvl)
	}
}
