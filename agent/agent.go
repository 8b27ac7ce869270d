package agent

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nstehr/relic/relic-core/memory"
	"github.com/nstehr/relic/relic-core/model"
	"github.com/nstehr/relic/relic-core/replay"
	"github.com/nstehr/relic/relic-core/rules"
)

// ErrNotConfigured is returned for a step that arrives before the agent
// knows its player and env config.
var ErrNotConfigured = errors.New("agent not configured")

// Options carries everything an Agent needs besides what the host tells it.
type Options struct {
	Strategy rules.Strategy
	Seed     int64
	// ReplayDir enables replay recording when non-empty.
	ReplayDir string
}

// Agent owns the decision-making for one team over one episode.
type Agent struct {
	Player string
	Team   int
	Opp    int
	Config model.EnvConfig
	Engine *rules.Engine

	recorder *replay.Recorder
	prev     *stepSnapshot
}

// New builds an agent for player with fresh memory. "player_0" plays team 0;
// any other name plays team 1.
func New(player string, cfg model.EnvConfig, opts Options) (*Agent, error) {
	if cfg.MaxUnits < 0 {
		return nil, fmt.Errorf("invalid max_units %d", cfg.MaxUnits)
	}
	team := 1
	if player == "player_0" {
		team = 0
	}

	engine, err := rules.NewEngine(opts.Strategy, memory.New(opts.Seed, opts.Strategy.ExploreCadence))
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	a := &Agent{
		Player: player,
		Team:   team,
		Opp:    1 - team,
		Config: cfg,
		Engine: engine,
	}
	if opts.ReplayDir != "" {
		rec, err := replay.NewRecorder(opts.ReplayDir, player)
		if err != nil {
			return nil, err
		}
		a.recorder = rec
		slog.Info("recording replay", "player", player, "path", rec.Path())
	}

	s := engine.Strategy()
	slog.Info("agent configured",
		"player", player,
		"team", team,
		"maxUnits", cfg.MaxUnits,
		"map", fmt.Sprintf("%dx%d", cfg.MapWidth, cfg.MapHeight),
		"strategy", s.Name,
		"seed", opts.Seed,
		"rules", engine.RuleNames(),
	)
	return a, nil
}

// Act returns exactly Config.MaxUnits actions for this step. A malformed
// observation is rejected before memory is touched.
func (a *Agent) Act(step int, obs model.Observation, remainingOverageTime float64) ([]model.Action, error) {
	res, err := a.Engine.Evaluate(step, obs, a.Team, a.Config)
	if err != nil {
		return nil, fmt.Errorf("step %d: %w", step, err)
	}

	cur := takeSnapshot(obs, a.Team, a.Opp, a.Engine.Memory.RelicCount(), a.prev)
	events := detectEvents(step, cur, a.prev)
	a.prev = &cur
	for _, e := range events {
		slog.Info("game event", "kind", e.Kind, "step", e.Step, "player", a.Player, "detail", e.Detail)
	}

	slog.Debug("step decided",
		"step", step,
		"player", a.Player,
		"overage", remainingOverageTime,
		"points", obs.Points(a.Team),
		"newRelics", res.NewRelics,
		"enemiesVisible", res.Enemies,
	)

	if a.recorder != nil {
		entry := replay.Entry{
			Player:   a.Player,
			Step:     step,
			Strategy: a.Engine.Strategy().Name,
			Actions:  res.Actions,
			Fired:    res.Fired,
			Relics:   a.Engine.Memory.Relics(),
			Enemies:  a.Engine.Memory.Enemies(),
			Events:   eventKinds(events),
		}
		if err := a.recorder.Write(entry); err != nil {
			slog.Warn("replay write failed", "step", step, "error", err)
		}
	}
	return res.Actions, nil
}

// Close flushes the replay, if any.
func (a *Agent) Close() error {
	if a.recorder == nil {
		return nil
	}
	return a.recorder.Close()
}

// ReplayPath is empty when recording is off.
func (a *Agent) ReplayPath() string {
	if a.recorder == nil {
		return ""
	}
	return a.recorder.Path()
}
