package rules

import "github.com/nstehr/relic/relic-core/memory"

// Strategy names. Each one compiles to a different rule set.
const (
	StrategyRelic    = "relic"    // orbit/approach relics, otherwise explore
	StrategyBalanced = "balanced" // relics first, then known enemies, then explore
	StrategyEnemy    = "enemy"    // chase and sap visible enemies, otherwise explore
	StrategyExplore  = "explore"  // random walk only
)

// Target selection modes.
const (
	// TargetFirst always steers toward the earliest discovered target, even if
	// a later discovery is closer.
	TargetFirst = "first"
	// TargetNearest picks the closest known target by Manhattan distance.
	TargetNearest = "nearest"
)

// Enemy tracking modes.
const (
	// TrackFirstSighting records an enemy slot once and never moves it.
	TrackFirstSighting = "first-sighting"
	// TrackLive replaces the enemy list with whatever is visible each step.
	TrackLive = "live"
)

// DefaultThreshold is the Manhattan distance at or under which a unit orbits
// a relic or saps an enemy instead of closing in.
const DefaultThreshold = 4

// Upper bounds Validate clamps to.
const (
	MaxThreshold      = 64
	MaxExploreCadence = 1000
)

// Strategy is the tunable posture of the policy. The compiler maps it to a
// concrete rule set.
type Strategy struct {
	Name            string `json:"name" yaml:"name"`
	Threshold       int    `json:"threshold" yaml:"threshold"`
	ExploreCadence  int    `json:"explore_cadence" yaml:"explore_cadence"`
	TargetSelection string `json:"target_selection" yaml:"target_selection"`
	EnemyTracking   string `json:"enemy_tracking" yaml:"enemy_tracking"`
}

// DefaultStrategy returns the shipped relic-seeking posture.
func DefaultStrategy() Strategy {
	return Strategy{
		Name:            StrategyRelic,
		Threshold:       DefaultThreshold,
		ExploreCadence:  memory.DefaultCadence,
		TargetSelection: TargetFirst,
		EnemyTracking:   TrackFirstSighting,
	}
}

// KnownStrategy reports whether name is one of the compiled strategies.
func KnownStrategy(name string) bool {
	switch name {
	case StrategyRelic, StrategyBalanced, StrategyEnemy, StrategyExplore:
		return true
	}
	return false
}

// Validate clamps numbers into range and replaces unknown modes with defaults.
func (s *Strategy) Validate() {
	if !KnownStrategy(s.Name) {
		s.Name = StrategyRelic
	}
	s.Threshold = clampInt(s.Threshold, 0, MaxThreshold)
	if s.ExploreCadence == 0 {
		s.ExploreCadence = memory.DefaultCadence
	}
	s.ExploreCadence = clampInt(s.ExploreCadence, 1, MaxExploreCadence)
	if s.TargetSelection != TargetNearest {
		s.TargetSelection = TargetFirst
	}
	if s.EnemyTracking != TrackLive {
		s.EnemyTracking = TrackFirstSighting
	}
}

// EngagesEnemies reports whether the strategy needs enemy sightings recorded.
func (s Strategy) EngagesEnemies() bool {
	return s.Name == StrategyBalanced || s.Name == StrategyEnemy
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
