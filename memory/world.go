// Package memory holds what one agent has learned about the map over an
// episode: relic nodes it has seen, enemy slots it has spotted, and where
// each of its own units is currently wandering to.
//
// A World is owned by a single agent and is not safe for concurrent use.
package memory

import (
	"math/rand"

	"github.com/nstehr/relic/relic-core/model"
)

// DefaultCadence is how many steps an explore target lives before every
// unit draws a fresh one.
const DefaultCadence = 20

// Relic is a discovered relic node. Relics never move and are never forgotten.
type Relic struct {
	ID  int            `json:"id"`
	Pos model.Position `json:"pos"`
}

// Enemy is an enemy slot and the position it was recorded at.
type Enemy struct {
	ID  int            `json:"id"`
	Pos model.Position `json:"pos"`
}

type World struct {
	relicIDs map[int]bool
	relics   []Relic // discovery order

	enemyIDs map[int]bool
	enemies  []Enemy // discovery order

	exploreTargets map[int]model.Position
	cadence        int

	rng *rand.Rand
}

// New creates an empty World with its own generator seeded from seed.
// A cadence below 1 falls back to DefaultCadence.
func New(seed int64, cadence int) *World {
	if cadence < 1 {
		cadence = DefaultCadence
	}
	return &World{
		relicIDs:       make(map[int]bool),
		enemyIDs:       make(map[int]bool),
		exploreTargets: make(map[int]model.Position),
		cadence:        cadence,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// RecordRelics stores every id not seen before, in the order given, and
// returns how many were new. ids index into positions.
func (w *World) RecordRelics(ids []int, positions []model.Position) int {
	added := 0
	for _, id := range ids {
		if w.relicIDs[id] || id < 0 || id >= len(positions) {
			continue
		}
		w.relicIDs[id] = true
		w.relics = append(w.relics, Relic{ID: id, Pos: positions[id]})
		added++
	}
	return added
}

// RecordEnemies stores enemy slots on first sighting only. A slot seen again
// keeps its first recorded position even if the unit has moved.
func (w *World) RecordEnemies(ids []int, positions []model.Position) int {
	added := 0
	for _, id := range ids {
		if w.enemyIDs[id] || id < 0 || id >= len(positions) {
			continue
		}
		w.enemyIDs[id] = true
		w.enemies = append(w.enemies, Enemy{ID: id, Pos: positions[id]})
		added++
	}
	return added
}

// RefreshEnemies replaces the enemy list with exactly the slots visible now,
// at their current positions.
func (w *World) RefreshEnemies(ids []int, positions []model.Position) {
	clear(w.enemyIDs)
	w.enemies = w.enemies[:0]
	w.RecordEnemies(ids, positions)
}

// ExploreTarget returns the cached destination for a unit slot. A new one is
// drawn uniformly inside bounds when the slot has none yet or when step lands
// on the cadence. Empty bounds yield the origin and draw nothing.
func (w *World) ExploreTarget(slot, step int, bounds model.Bounds) model.Position {
	target, ok := w.exploreTargets[slot]
	if ok && step%w.cadence != 0 {
		return target
	}
	if bounds.Empty() {
		target = model.Position{}
	} else {
		// x before y; replay determinism depends on draw order.
		x := w.rng.Intn(bounds.Width)
		y := w.rng.Intn(bounds.Height)
		target = model.Position{X: x, Y: y}
	}
	w.exploreTargets[slot] = target
	return target
}

// HasExploreTarget reports whether the slot has a cached destination.
func (w *World) HasExploreTarget(slot int) bool {
	_, ok := w.exploreTargets[slot]
	return ok
}

// Roll draws uniformly from [0, n).
func (w *World) Roll(n int) int {
	if n <= 0 {
		return 0
	}
	return w.rng.Intn(n)
}

func (w *World) Cadence() int { return w.cadence }

// SetCadence changes how often explore targets are redrawn. Cached targets
// are kept.
func (w *World) SetCadence(cadence int) {
	if cadence < 1 {
		cadence = DefaultCadence
	}
	w.cadence = cadence
}

func (w *World) RelicCount() int { return len(w.relics) }
func (w *World) EnemyCount() int { return len(w.enemies) }

// Relics returns a copy of the discovered relics in discovery order.
func (w *World) Relics() []Relic {
	out := make([]Relic, len(w.relics))
	copy(out, w.relics)
	return out
}

// Enemies returns a copy of the recorded enemies in discovery order.
func (w *World) Enemies() []Enemy {
	out := make([]Enemy, len(w.enemies))
	copy(out, w.enemies)
	return out
}

// FirstRelic returns the earliest discovered relic.
func (w *World) FirstRelic() (Relic, bool) {
	if len(w.relics) == 0 {
		return Relic{}, false
	}
	return w.relics[0], true
}

// NearestRelic returns the relic closest to from by Manhattan distance.
// Ties keep the earlier discovery.
func (w *World) NearestRelic(from model.Position) (Relic, bool) {
	return nearest(w.relics, from, func(r Relic) model.Position { return r.Pos })
}

// FirstEnemy returns the earliest recorded enemy.
func (w *World) FirstEnemy() (Enemy, bool) {
	if len(w.enemies) == 0 {
		return Enemy{}, false
	}
	return w.enemies[0], true
}

// NearestEnemy returns the recorded enemy closest to from. Ties keep the
// earlier record.
func (w *World) NearestEnemy(from model.Position) (Enemy, bool) {
	return nearest(w.enemies, from, func(e Enemy) model.Position { return e.Pos })
}

func nearest[T any](items []T, from model.Position, pos func(T) model.Position) (T, bool) {
	var best T
	if len(items) == 0 {
		return best, false
	}
	bestDist := -1
	for _, it := range items {
		d := model.Manhattan(from, pos(it))
		if bestDist < 0 || d < bestDist {
			best, bestDist = it, d
		}
	}
	return best, true
}
