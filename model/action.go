package model

// Direction is the host's movement id. The numbering follows the game kit:
// y grows downward, so "up" is -y.
type Direction int

const (
	Center Direction = 0
	Up     Direction = 1
	Right  Direction = 2
	Down   Direction = 3
	Left   Direction = 4
)

// ActionSap is the action type for an energy attack at a relative offset.
const ActionSap = 5

func (d Direction) String() string {
	switch d {
	case Center:
		return "center"
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return "unknown"
}

// DirectionTo maps the displacement from src to target onto a single move.
// The axis with the larger absolute delta wins; equal deltas go vertical,
// which is what the host kit's direction_to does.
func DirectionTo(src, target Position) Direction {
	dx, dy := target.Sub(src)
	if dx == 0 && dy == 0 {
		return Center
	}
	if abs(dx) > abs(dy) {
		if dx > 0 {
			return Right
		}
		return Left
	}
	if dy > 0 {
		return Down
	}
	return Up
}

// Action is the (action_type, dx, dy) triple the host expects per unit slot.
// dx and dy are only meaningful for ActionSap.
type Action [3]int

// Move builds a movement action.
func Move(d Direction) Action {
	return Action{int(d), 0, 0}
}

// Sap builds an attack on the cell at the raw offset (dx, dy). The offset
// is passed through unclamped; range checks belong to the host.
func Sap(dx, dy int) Action {
	return Action{ActionSap, dx, dy}
}

// IsSap reports whether the action is an attack.
func (a Action) IsSap() bool { return a[0] == ActionSap }

// NoOps returns n zero actions, the reply for slots the agent does not control.
func NoOps(n int) []Action {
	if n < 0 {
		n = 0
	}
	return make([]Action, n)
}
