package model

import (
	"encoding/json"
	"fmt"
)

// Position is a cell on the map grid. It travels as a two-element JSON
// array, matching the host's [x, y] encoding. Invisible units are
// reported at (-1, -1).
type Position struct {
	X int
	Y int
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

func (p *Position) UnmarshalJSON(b []byte) error {
	var xy [2]int
	if err := json.Unmarshal(b, &xy); err != nil {
		return fmt.Errorf("unmarshal position: %w", err)
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Sub returns the signed displacement p - q.
func (p Position) Sub(q Position) (dx, dy int) {
	return p.X - q.X, p.Y - q.Y
}

// Manhattan returns |dx| + |dy| between two cells.
func Manhattan(a, b Position) int {
	dx, dy := a.Sub(b)
	return abs(dx) + abs(dy)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Bounds is the playable area, [0,Width) x [0,Height).
type Bounds struct {
	Width  int
	Height int
}

// Empty reports whether no cell fits inside the bounds.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Contains reports whether p lies on the map.
func (b Bounds) Contains(p Position) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}
