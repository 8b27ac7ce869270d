package rules

import (
	"log/slog"

	"github.com/nstehr/relic/relic-core/model"
)

// orbitChoices covers center plus the four cardinal moves.
const orbitChoices = 5

// ActionOrbitRelic loiters near a relic with a random move so the unit keeps
// sitting in scoring range while covering the tiles around it.
func ActionOrbitRelic(env RuleEnv) model.Action {
	return model.Move(model.Direction(env.Memory.Roll(orbitChoices)))
}

func ActionApproachRelic(env RuleEnv) model.Action {
	r, ok := env.TargetRelic()
	if !ok {
		return model.Move(model.Center)
	}
	return model.Move(model.DirectionTo(env.Unit.Pos, r.Pos))
}

// ActionSapEnemy attacks the target enemy at its raw offset from the unit.
func ActionSapEnemy(env RuleEnv) model.Action {
	en, ok := env.TargetEnemy()
	if !ok {
		return model.Move(model.Center)
	}
	dx, dy := en.Pos.Sub(env.Unit.Pos)
	slog.Debug("sapping enemy", "slot", env.Unit.Slot, "enemy", en.ID, "dx", dx, "dy", dy)
	return model.Sap(dx, dy)
}

func ActionApproachEnemy(env RuleEnv) model.Action {
	en, ok := env.TargetEnemy()
	if !ok {
		return model.Move(model.Center)
	}
	return model.Move(model.DirectionTo(env.Unit.Pos, en.Pos))
}

// ActionExplore walks toward the unit's cached random destination, drawing a
// new one on the cadence.
func ActionExplore(env RuleEnv) model.Action {
	target := env.Memory.ExploreTarget(env.Unit.Slot, env.Step, env.Bounds)
	return model.Move(model.DirectionTo(env.Unit.Pos, target))
}
