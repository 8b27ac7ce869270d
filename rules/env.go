package rules

import (
	"math"

	"github.com/nstehr/relic/relic-core/memory"
	"github.com/nstehr/relic/relic-core/model"
)

// Unreachable is the distance reported when there is no target to measure to.
const Unreachable = math.MaxInt32

// RuleEnv is the per-unit view handed to rule conditions and actions. Its
// methods are callable from expr expressions.
type RuleEnv struct {
	Step         int
	Unit         model.Unit
	Bounds       model.Bounds
	Memory       *memory.World
	Strategy     Strategy
	VisibleEnemy int // enemy slots visible this step
}

func (e RuleEnv) RelicKnown() bool {
	return e.Memory != nil && e.Memory.RelicCount() > 0
}

// TargetRelic is the relic this unit steers by: the first discovered, or the
// nearest one when the strategy asks for it.
func (e RuleEnv) TargetRelic() (memory.Relic, bool) {
	if e.Memory == nil {
		return memory.Relic{}, false
	}
	if e.Strategy.TargetSelection == TargetNearest {
		return e.Memory.NearestRelic(e.Unit.Pos)
	}
	return e.Memory.FirstRelic()
}

// RelicDistance is the Manhattan distance to TargetRelic, or Unreachable.
func (e RuleEnv) RelicDistance() int {
	r, ok := e.TargetRelic()
	if !ok {
		return Unreachable
	}
	return model.Manhattan(e.Unit.Pos, r.Pos)
}

func (e RuleEnv) EnemyKnown() bool {
	return e.Memory != nil && e.Memory.EnemyCount() > 0
}

func (e RuleEnv) EnemyVisible() bool { return e.VisibleEnemy > 0 }

// TargetEnemy mirrors TargetRelic for recorded enemies.
func (e RuleEnv) TargetEnemy() (memory.Enemy, bool) {
	if e.Memory == nil {
		return memory.Enemy{}, false
	}
	if e.Strategy.TargetSelection == TargetNearest {
		return e.Memory.NearestEnemy(e.Unit.Pos)
	}
	return e.Memory.FirstEnemy()
}

// EnemyDistance is the Manhattan distance to TargetEnemy, or Unreachable.
func (e RuleEnv) EnemyDistance() int {
	en, ok := e.TargetEnemy()
	if !ok {
		return Unreachable
	}
	return model.Manhattan(e.Unit.Pos, en.Pos)
}

func (e RuleEnv) Energy() int { return e.Unit.Energy }
func (e RuleEnv) Slot() int   { return e.Unit.Slot }
