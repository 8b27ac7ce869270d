package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/relic/relic-core/memory"
	"github.com/nstehr/relic/relic-core/model"
)

// diagnosticsInterval is how many steps pass between rule-firing summaries.
const diagnosticsInterval = 100

// Engine runs compiled rules against each unit every step.
// Rules are tried in priority order and the first one that matches decides
// the unit's action.
type Engine struct {
	mu       sync.RWMutex
	rules    []*Rule
	strategy Strategy
	Memory   *memory.World

	// fired counts rule firings since the last diagnostics line.
	fired        map[string]int
	lastDiagStep int
}

// Result is one step's output plus what the engine learned while producing it.
type Result struct {
	Actions    []model.Action
	Fired      []string // rule name per slot, "" for inactive slots
	NewRelics  int
	NewEnemies int
	Enemies    int // enemy slots visible this step
}

// NewEngine compiles the strategy's rule conditions into expr bytecode and
// sorts them by priority. mem is owned by the caller's agent.
func NewEngine(s Strategy, mem *memory.World) (*Engine, error) {
	s.Validate()
	compiled, err := compileRules(CompileStrategy(s))
	if err != nil {
		return nil, err
	}
	mem.SetCadence(s.ExploreCadence)
	return &Engine{
		rules:    compiled,
		strategy: s,
		Memory:   mem,
		fired:    make(map[string]int),
	}, nil
}

// Evaluate produces one action per unit slot for the given team. The
// observation must match cfg.MaxUnits; a mismatch is an error rather than
// a short action array.
func (e *Engine) Evaluate(step int, obs model.Observation, team int, cfg model.EnvConfig) (Result, error) {
	if team != 0 && team != 1 {
		return Result{}, fmt.Errorf("invalid team id %d", team)
	}
	if err := obs.Validate(cfg.MaxUnits); err != nil {
		return Result{}, err
	}

	e.mu.RLock()
	rules := e.rules
	s := e.strategy
	e.mu.RUnlock()

	res := Result{
		Actions: model.NoOps(cfg.MaxUnits),
		Fired:   make([]string, cfg.MaxUnits),
	}

	res.NewRelics = e.Memory.RecordRelics(obs.VisibleRelics(), obs.RelicNodes)

	opp := 1 - team
	visibleEnemies := obs.ActiveSlots(opp)
	res.Enemies = len(visibleEnemies)
	if s.EngagesEnemies() {
		res.NewEnemies = e.ingestEnemies(s, visibleEnemies, obs.Units.Position[opp])
	}

	bounds := cfg.Bounds()
	for slot := 0; slot < cfg.MaxUnits; slot++ {
		unit := obs.Unit(team, slot)
		if !unit.Active {
			continue
		}
		env := RuleEnv{
			Step:         step,
			Unit:         unit,
			Bounds:       bounds,
			Memory:       e.Memory,
			Strategy:     s,
			VisibleEnemy: res.Enemies,
		}
		for _, r := range rules {
			result, err := vm.Run(r.program, env)
			if err != nil {
				slog.Warn("rule condition error", "rule", r.Name, "slot", slot, "error", err)
				continue
			}
			match, ok := result.(bool)
			if !ok || !match {
				continue
			}
			res.Actions[slot] = r.Action(env)
			res.Fired[slot] = r.Name
			e.fired[r.Name]++
			slog.Debug("rule fired", "rule", r.Name, "slot", slot, "step", step, "action", res.Actions[slot])
			break
		}
	}

	e.logDiagnostics(step)
	return res, nil
}

func (e *Engine) ingestEnemies(s Strategy, visible []int, positions []model.Position) int {
	if s.EnemyTracking == TrackLive {
		before := e.Memory.Enemies()
		e.Memory.RefreshEnemies(visible, positions)
		return countNewIDs(before, e.Memory.Enemies())
	}
	if len(visible) == 0 {
		return 0
	}
	return e.Memory.RecordEnemies(visible, positions)
}

func countNewIDs(before, after []memory.Enemy) int {
	seen := make(map[int]bool, len(before))
	for _, en := range before {
		seen[en.ID] = true
	}
	n := 0
	for _, en := range after {
		if !seen[en.ID] {
			n++
		}
	}
	return n
}

// Swap atomically replaces the rule set with one compiled from s. Compiles
// first; if compilation fails the old rules remain active. Memory is kept:
// relics found under one strategy are still known under the next.
func (e *Engine) Swap(s Strategy) error {
	s.Validate()
	compiled, err := compileRules(CompileStrategy(s))
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	e.mu.Lock()
	e.rules = compiled
	e.strategy = s
	e.mu.Unlock()

	e.Memory.SetCadence(s.ExploreCadence)
	slog.Info("rule set swapped", "strategy", s.Name, "count", len(compiled), "rules", names)
	return nil
}

// Strategy returns the strategy the current rule set was compiled from.
func (e *Engine) Strategy() Strategy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.strategy
}

// RuleNames lists the active rules in evaluation order.
func (e *Engine) RuleNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// logDiagnostics helps debug "why are my units wandering?": every
// diagnosticsInterval steps it reports what fired and what is known.
func (e *Engine) logDiagnostics(step int) {
	if step-e.lastDiagStep < diagnosticsInterval {
		return
	}
	e.lastDiagStep = step

	slog.Info("policy diagnostics",
		"step", step,
		"relicsKnown", e.Memory.RelicCount(),
		"enemiesKnown", e.Memory.EnemyCount(),
		"fired", e.fired,
	)
	e.fired = make(map[string]int)
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
