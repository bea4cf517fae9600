package dungeon

import (
	"fmt"
	"strings"
)

// RoomShape classifies a room. Corridor ends are modelled as rooms with
// [ShapeCorridorEnd] so that passages can keep branching from them.
type RoomShape int

const (
	ShapeStarter RoomShape = iota
	ShapeCorridorEnd
	ShapeSquare
	ShapeRectangular
	ShapeCircular
	ShapeUnusual
)

var shapeNames = [...]string{"STARTER", "CORRIDOR_END", "SQUARE", "RECTANGULAR", "CIRCULAR", "UNUSUAL"}

var shapeDescriptions = [...]string{"Starter", "Corridor End", "Square", "Rectangular", "Circular", "Unusual"}

// String returns the upper-case name used in JSON documents.
func (s RoomShape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("RoomShape(%d)", int(s))
	}
	return shapeNames[s]
}

// Description returns the human-readable label.
func (s RoomShape) Description() string {
	if s < 0 || int(s) >= len(shapeDescriptions) {
		return "Unknown"
	}
	return shapeDescriptions[s]
}

// ParseRoomShape maps a shape name back to a RoomShape. Unknown or empty
// names map to [ShapeUnusual] and ok is false.
func ParseRoomShape(name string) (shape RoomShape, ok bool) {
	for i, n := range shapeNames {
		if strings.EqualFold(n, name) {
			return RoomShape(i), true
		}
	}
	return ShapeUnusual, false
}

// MarshalText implements encoding.TextMarshaler.
func (s RoomShape) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(shapeNames) {
		return nil, fmt.Errorf("invalid room shape %d", int(s))
	}
	return []byte(shapeNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode
// as [ShapeUnusual] rather than failing.
func (s *RoomShape) UnmarshalText(text []byte) error {
	*s, _ = ParseRoomShape(string(text))
	return nil
}

// TurnType is a passage turn from Table IV.
type TurnType int

const (
	TurnLeft90 TurnType = iota
	TurnLeft45Ahead
	TurnLeft135
	TurnRight90
	TurnRight45Ahead
	TurnRight135
)

var turnDescriptions = [...]string{
	"Left 90°", "Left 45° ahead", "Left 135°",
	"Right 90°", "Right 45° ahead", "Right 135°",
}

// Description returns the table wording for the turn.
func (t TurnType) Description() string {
	if t < 0 || int(t) >= len(turnDescriptions) {
		return "Unknown turn"
	}
	return turnDescriptions[t]
}

func (t TurnType) String() string { return t.Description() }

// StairsType is a stairs outcome from Table VIII.
type StairsType int

const (
	StairsDown1 StairsType = iota
	StairsDown2
	StairsDown3
	StairsUp1
	StairsUpToDeadEnd
	StairsDownToDeadEnd
	StairsChimneyUp1
	StairsChimneyUp2
	StairsChimneyDown2
	StairsTrapDoorDown1
	StairsTrapDoorDown2
	StairsUp1Down2Chamber
)

var stairsDescriptions = [...]string{
	"Down 1 level",
	"Down 2 levels",
	"Down 3 levels",
	"Up 1 level",
	"Up to dead end (possible chute trap)",
	"Down to dead end (possible chute trap)",
	"Chimney up 1 level, passage continues",
	"Chimney up 2 levels, passage continues",
	"Chimney down 2 levels, passage continues",
	"Trap door down 1 level, passage continues",
	"Trap door down 2 levels, passage continues",
	"Up 1 level, then down 2 levels, ends in chamber",
}

// Description returns the table wording for the stairs.
func (s StairsType) Description() string {
	if s < 0 || int(s) >= len(stairsDescriptions) {
		return "Unknown stairs"
	}
	return stairsDescriptions[s]
}

func (s StairsType) String() string { return s.Description() }

// EndsInChamber reports whether the stairs lead into a chamber instead of a
// continuing passage.
func (s StairsType) EndsInChamber() bool { return s == StairsUp1Down2Chamber }
