// Package config loads agent settings from a YAML file and the environment.
// Precedence, lowest to highest: defaults, file, environment; main applies
// command-line flags on top.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/nstehr/relic/relic-core/rules"
)

// Transports.
const (
	TransportStdio     = "stdio"
	TransportUnix      = "unix"
	TransportWebSocket = "ws"
)

type Config struct {
	Transport  string `yaml:"transport" env:"RELIC_TRANSPORT"`
	SocketPath string `yaml:"socket_path" env:"RELIC_SOCKET_PATH"`
	WSURL      string `yaml:"ws_url" env:"RELIC_WS_URL"`

	Seed     int64          `yaml:"seed" env:"RELIC_SEED"`
	Strategy StrategyConfig `yaml:"strategy" envPrefix:"RELIC_"`

	ReplayDir string `yaml:"replay_dir" env:"RELIC_REPLAY_DIR"`

	Log LogConfig `yaml:"log" envPrefix:"RELIC_LOG_"`
}

// StrategyConfig mirrors rules.Strategy with file and env bindings.
type StrategyConfig struct {
	Name            string `yaml:"name" env:"STRATEGY"`
	Threshold       int    `yaml:"threshold" env:"THRESHOLD"`
	ExploreCadence  int    `yaml:"explore_cadence" env:"EXPLORE_CADENCE"`
	TargetSelection string `yaml:"target_selection" env:"TARGET_SELECTION"`
	EnemyTracking   string `yaml:"enemy_tracking" env:"ENEMY_TRACKING"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	File   string `yaml:"file" env:"FILE"`
}

// Default returns the configuration the agent ships with: the kit's stdio
// protocol, relic-seeking strategy, seed 0.
func Default() Config {
	s := rules.DefaultStrategy()
	return Config{
		Transport:  TransportStdio,
		SocketPath: "/tmp/relic.sock",
		Seed:       0,
		Strategy: StrategyConfig{
			Name:            s.Name,
			Threshold:       s.Threshold,
			ExploreCadence:  s.ExploreCadence,
			TargetSelection: s.TargetSelection,
			EnemyTracking:   s.EnemyTracking,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), and RELIC_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings that would otherwise be silently replaced.
func (c Config) Validate() error {
	var errs []error
	switch c.Transport {
	case TransportStdio, TransportUnix, TransportWebSocket:
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Transport))
	}
	if c.Transport == TransportUnix && c.SocketPath == "" {
		errs = append(errs, errors.New("unix transport needs socket_path"))
	}
	if c.Transport == TransportWebSocket && c.WSURL == "" {
		errs = append(errs, errors.New("ws transport needs ws_url"))
	}
	if !rules.KnownStrategy(c.Strategy.Name) {
		errs = append(errs, fmt.Errorf("unknown strategy %q", c.Strategy.Name))
	}
	if c.Strategy.Threshold < 0 {
		errs = append(errs, fmt.Errorf("negative threshold %d", c.Strategy.Threshold))
	} else if c.Strategy.Threshold > rules.MaxThreshold {
		errs = append(errs, fmt.Errorf("threshold %d above %d", c.Strategy.Threshold, rules.MaxThreshold))
	}
	// Zero selects the default cadence.
	if c.Strategy.ExploreCadence < 0 {
		errs = append(errs, fmt.Errorf("negative explore_cadence %d", c.Strategy.ExploreCadence))
	} else if c.Strategy.ExploreCadence > rules.MaxExploreCadence {
		errs = append(errs, fmt.Errorf("explore_cadence %d above %d", c.Strategy.ExploreCadence, rules.MaxExploreCadence))
	}
	switch c.Strategy.TargetSelection {
	case rules.TargetFirst, rules.TargetNearest:
	default:
		errs = append(errs, fmt.Errorf("unknown target_selection %q", c.Strategy.TargetSelection))
	}
	switch c.Strategy.EnemyTracking {
	case rules.TrackFirstSighting, rules.TrackLive:
	default:
		errs = append(errs, fmt.Errorf("unknown enemy_tracking %q", c.Strategy.EnemyTracking))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RuleStrategy converts the config section into the policy's Strategy.
func (c Config) RuleStrategy() rules.Strategy {
	return rules.Strategy{
		Name:            c.Strategy.Name,
		Threshold:       c.Strategy.Threshold,
		ExploreCadence:  c.Strategy.ExploreCadence,
		TargetSelection: c.Strategy.TargetSelection,
		EnemyTracking:   c.Strategy.EnemyTracking,
	}
}

// ParseLevel maps a level name to slog's level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
