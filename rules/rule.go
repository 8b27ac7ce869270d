package rules

import (
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/relic/relic-core/model"
)

// ActionFunc decides a unit's action once its rule's condition holds.
type ActionFunc func(env RuleEnv) model.Action

// Rule is the atomic unit of policy: a condition → action pair evaluated per
// unit. The engine walks rules by priority and the first rule whose
// condition holds decides the unit's action for the step.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	Category     string      // "relic", "enemy", "explore"; used for diagnostics
	ConditionSrc string      // expr source (preserved for logging)
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}
