package agent

import (
	"fmt"

	"github.com/nstehr/relic/relic-core/model"
)

// EventKind identifies a notable change between two consecutive steps.
type EventKind string

const (
	EventRelicDiscovered EventKind = "relic_discovered"
	EventFirstContact    EventKind = "first_contact"
	EventUnitLost        EventKind = "unit_lost"
	EventMatchReset      EventKind = "match_reset"
)

// Event is detected by diffing consecutive step snapshots. Events are
// logged and written to the replay; they do not change the policy.
type Event struct {
	Kind   EventKind
	Step   int
	Detail string
}

// stepSnapshot captures the diffable fields of one step.
type stepSnapshot struct {
	active    []bool
	anyActive bool
	relics    int

	// contacted is carried forward: once an enemy has been seen it stays set.
	contacted bool
	enemies   int
}

func takeSnapshot(obs model.Observation, team, opp, relicsKnown int, prev *stepSnapshot) stepSnapshot {
	snap := stepSnapshot{
		active:  append([]bool(nil), obs.UnitsMask[team]...),
		relics:  relicsKnown,
		enemies: len(obs.ActiveSlots(opp)),
	}
	for _, a := range snap.active {
		if a {
			snap.anyActive = true
			break
		}
	}
	snap.contacted = snap.enemies > 0 || (prev != nil && prev.contacted)
	return snap
}

// detectEvents compares cur against prev. On the first step (prev nil) only
// discovery and contact can fire.
func detectEvents(step int, cur stepSnapshot, prev *stepSnapshot) []Event {
	var events []Event

	prevRelics := 0
	prevContacted := false
	if prev != nil {
		prevRelics = prev.relics
		prevContacted = prev.contacted
	}

	if cur.relics > prevRelics {
		events = append(events, Event{
			Kind:   EventRelicDiscovered,
			Step:   step,
			Detail: fmt.Sprintf("%d new relic node(s), %d known", cur.relics-prevRelics, cur.relics),
		})
	}

	if cur.contacted && !prevContacted {
		events = append(events, Event{
			Kind:   EventFirstContact,
			Step:   step,
			Detail: fmt.Sprintf("%d enemy unit(s) visible", cur.enemies),
		})
	}

	if prev == nil {
		return events
	}

	// Everything vanishing at once is a new match, not a massacre.
	if prev.anyActive && !cur.anyActive {
		return append(events, Event{
			Kind:   EventMatchReset,
			Step:   step,
			Detail: "all units inactive",
		})
	}

	for slot, was := range prev.active {
		if was && slot < len(cur.active) && !cur.active[slot] {
			events = append(events, Event{
				Kind:   EventUnitLost,
				Step:   step,
				Detail: fmt.Sprintf("slot %d", slot),
			})
		}
	}
	return events
}

func eventKinds(events []Event) []string {
	if len(events) == 0 {
		return nil
	}
	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = string(e.Kind)
	}
	return kinds
}
