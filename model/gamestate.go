package model

import (
	"errors"
	"fmt"
)

// ErrShape is returned when an observation does not match the env config.
// The host depends on exact output arity, so a bad shape is never papered over.
var ErrShape = errors.New("observation shape mismatch")

// EnvConfig is the static per-episode configuration sent by the host.
// Only MaxUnits, MapWidth and MapHeight drive the policy; the rest is kept
// so it can be logged and recorded.
type EnvConfig struct {
	MaxUnits             int `json:"max_units"`
	MapWidth             int `json:"map_width"`
	MapHeight            int `json:"map_height"`
	MaxRelicNodes        int `json:"max_relic_nodes,omitempty"`
	MatchCountPerEpisode int `json:"match_count_per_episode,omitempty"`
	MaxStepsInMatch      int `json:"max_steps_in_match,omitempty"`
	UnitMoveCost         int `json:"unit_move_cost,omitempty"`
	UnitSapCost          int `json:"unit_sap_cost,omitempty"`
	UnitSapRange         int `json:"unit_sap_range,omitempty"`
	UnitSensorRange      int `json:"unit_sensor_range,omitempty"`
}

// Bounds returns the exploration bounds of the map.
func (c EnvConfig) Bounds() Bounds {
	return Bounds{Width: c.MapWidth, Height: c.MapHeight}
}

// Observation is one team's partial view of the map for a single timestep.
// Arrays are indexed [team][slot] for units and [id] for relic nodes.
type Observation struct {
	Units          Units      `json:"units"`
	UnitsMask      [][]bool   `json:"units_mask"`
	RelicNodes     []Position `json:"relic_nodes"`
	RelicNodesMask []bool     `json:"relic_nodes_mask"`
	TeamPoints     []int      `json:"team_points"`
	TeamWins       []int      `json:"team_wins,omitempty"`
	Steps          int        `json:"steps,omitempty"`
	MatchSteps     int        `json:"match_steps,omitempty"`
}

type Units struct {
	Position [][]Position `json:"position"`
	Energy   [][]int      `json:"energy"`
}

// Unit is a single slot of one team, flattened out of the observation arrays.
type Unit struct {
	Slot   int
	Team   int
	Pos    Position
	Energy int
	Active bool
}

// Validate checks that every per-team array has maxUnits slots and that the
// relic arrays agree in length.
func (o Observation) Validate(maxUnits int) error {
	if len(o.UnitsMask) != 2 {
		return fmt.Errorf("%w: units_mask has %d teams, want 2", ErrShape, len(o.UnitsMask))
	}
	if len(o.Units.Position) != 2 {
		return fmt.Errorf("%w: units.position has %d teams, want 2", ErrShape, len(o.Units.Position))
	}
	if len(o.Units.Energy) != 2 {
		return fmt.Errorf("%w: units.energy has %d teams, want 2", ErrShape, len(o.Units.Energy))
	}
	for team := 0; team < 2; team++ {
		if n := len(o.UnitsMask[team]); n != maxUnits {
			return fmt.Errorf("%w: units_mask[%d] has %d slots, want %d", ErrShape, team, n, maxUnits)
		}
		if n := len(o.Units.Position[team]); n != maxUnits {
			return fmt.Errorf("%w: units.position[%d] has %d slots, want %d", ErrShape, team, n, maxUnits)
		}
		if n := len(o.Units.Energy[team]); n != maxUnits {
			return fmt.Errorf("%w: units.energy[%d] has %d slots, want %d", ErrShape, team, n, maxUnits)
		}
	}
	if len(o.RelicNodes) != len(o.RelicNodesMask) {
		return fmt.Errorf("%w: %d relic nodes but %d mask entries", ErrShape, len(o.RelicNodes), len(o.RelicNodesMask))
	}
	return nil
}

// Unit returns the slot of the given team. Callers must Validate first.
func (o Observation) Unit(team, slot int) Unit {
	return Unit{
		Slot:   slot,
		Team:   team,
		Pos:    o.Units.Position[team][slot],
		Energy: o.Units.Energy[team][slot],
		Active: o.UnitsMask[team][slot],
	}
}

// ActiveSlots returns the ids of the team's visible units in ascending order.
func (o Observation) ActiveSlots(team int) []int {
	var out []int
	for slot, ok := range o.UnitsMask[team] {
		if ok {
			out = append(out, slot)
		}
	}
	return out
}

// VisibleRelics returns the ids of the relic nodes visible this step, ascending.
func (o Observation) VisibleRelics() []int {
	var out []int
	for id, ok := range o.RelicNodesMask {
		if ok {
			out = append(out, id)
		}
	}
	return out
}

// Points returns the team's score, or 0 when the host omitted it.
func (o Observation) Points(team int) int {
	if team < 0 || team >= len(o.TeamPoints) {
		return 0
	}
	return o.TeamPoints[team]
}
