package rules

import "fmt"

// Rule priorities. Relics outrank enemies, and exploring is the floor every
// strategy ends on.
const (
	priorityOrbitRelic    = 900
	priorityApproachRelic = 800
	prioritySapEnemy      = 700
	priorityApproachEnemy = 600
	priorityExplore       = 100
)

// CompileStrategy generates the rule set for a strategy. All conditions are
// built via fmt.Sprintf with interpolated values, so the compiler never
// generates invalid expr.
func CompileStrategy(s Strategy) []*Rule {
	s.Validate()
	var rules []*Rule

	switch s.Name {
	case StrategyRelic:
		rules = append(rules, relicRules(s)...)
	case StrategyBalanced:
		rules = append(rules, relicRules(s)...)
		rules = append(rules, enemyRules(s, `EnemyKnown()`)...)
	case StrategyEnemy:
		// Enemy pursuit only applies while someone is in sight; otherwise the
		// whole team falls back to wandering.
		rules = append(rules, enemyRules(s, `EnemyVisible() && EnemyKnown()`)...)
	}

	rules = append(rules, &Rule{
		Name:         "explore",
		Priority:     priorityExplore,
		Category:     "explore",
		ConditionSrc: `true`,
		Action:       ActionExplore,
	})
	return rules
}

func relicRules(s Strategy) []*Rule {
	return []*Rule{
		{
			Name:         "orbit-relic",
			Priority:     priorityOrbitRelic,
			Category:     "relic",
			ConditionSrc: fmt.Sprintf(`RelicKnown() && RelicDistance() <= %d`, s.Threshold),
			Action:       ActionOrbitRelic,
		},
		{
			Name:         "approach-relic",
			Priority:     priorityApproachRelic,
			Category:     "relic",
			ConditionSrc: `RelicKnown()`,
			Action:       ActionApproachRelic,
		},
	}
}

func enemyRules(s Strategy, guard string) []*Rule {
	return []*Rule{
		{
			Name:         "sap-enemy",
			Priority:     prioritySapEnemy,
			Category:     "enemy",
			ConditionSrc: fmt.Sprintf(`%s && EnemyDistance() <= %d`, guard, s.Threshold),
			Action:       ActionSapEnemy,
		},
		{
			Name:         "approach-enemy",
			Priority:     priorityApproachEnemy,
			Category:     "enemy",
			ConditionSrc: guard,
			Action:       ActionApproachEnemy,
		},
	}
}
