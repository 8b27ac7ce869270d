package rules

import (
	"testing"

	"github.com/nstehr/relic/relic-core/memory"
	"github.com/nstehr/relic/relic-core/model"
)

func TestRuleEnvWithoutTargets(t *testing.T) {
	env := RuleEnv{
		Unit:   model.Unit{Slot: 1, Pos: pos(3, 3), Energy: 42, Active: true},
		Memory: memory.New(0, memory.DefaultCadence),
	}
	if env.RelicKnown() || env.EnemyKnown() || env.EnemyVisible() {
		t.Error("empty memory reported known targets")
	}
	if env.RelicDistance() != Unreachable || env.EnemyDistance() != Unreachable {
		t.Error("distance without a target should be Unreachable")
	}
	if env.Energy() != 42 || env.Slot() != 1 {
		t.Errorf("Energy()/Slot() = %d/%d", env.Energy(), env.Slot())
	}

	// Actions without targets hold position instead of failing.
	for name, act := range map[string]ActionFunc{
		"approach-relic": ActionApproachRelic,
		"sap-enemy":      ActionSapEnemy,
		"approach-enemy": ActionApproachEnemy,
	} {
		if got := act(env); got != model.Move(model.Center) {
			t.Errorf("%s without target = %v, want center", name, got)
		}
	}

	var nilMem RuleEnv
	if nilMem.RelicKnown() || nilMem.EnemyKnown() {
		t.Error("nil memory reported known targets")
	}
}

func TestRuleEnvDistances(t *testing.T) {
	mem := memory.New(0, memory.DefaultCadence)
	mem.RecordRelics([]int{0}, []model.Position{pos(6, 1)})
	mem.RecordEnemies([]int{2}, []model.Position{{}, {}, pos(0, 7)})

	env := RuleEnv{Unit: model.Unit{Pos: pos(1, 1)}, Memory: mem, VisibleEnemy: 1}
	if d := env.RelicDistance(); d != 5 {
		t.Errorf("RelicDistance() = %d, want 5", d)
	}
	if d := env.EnemyDistance(); d != 7 {
		t.Errorf("EnemyDistance() = %d, want 7", d)
	}
	if !env.EnemyVisible() {
		t.Error("EnemyVisible() = false")
	}
	if got := ActionSapEnemy(env); got != model.Sap(-1, 6) {
		t.Errorf("ActionSapEnemy = %v, want (5,-1,6)", got)
	}
}
