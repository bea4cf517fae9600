package generator

import (
	"fmt"

	"github.com/n8l/dungeonmap/pkg/dungeon"
)

// Each table function maps a d20 roll (1-20) to its outcome. Rolls outside
// the range fall into the last row, as a table read top-down would.

// =============================================================================
// Table I - Periodic check
// =============================================================================

// Passage is a Table I outcome.
type Passage int

const (
	PassageStraight Passage = iota
	PassageDoor
	PassageSide
	PassageTurns
	PassageChamber
	PassageStairs
	PassageDeadEnd
	PassageTrap
	PassageWanderingMonster
)

var passageNames = [...]string{
	"continue straight", "door", "side passage", "passage turns", "chamber",
	"stairs", "dead end", "trick/trap", "wandering monster",
}

func (p Passage) String() string {
	if p < 0 || int(p) >= len(passageNames) {
		return fmt.Sprintf("Passage(%d)", int(p))
	}
	return passageNames[p]
}

// TableI returns the periodic check result for a roll.
func TableI(roll int) Passage {
	switch {
	case roll <= 2:
		return PassageStraight
	case roll <= 5:
		return PassageDoor
	case roll <= 10:
		return PassageSide
	case roll <= 13:
		return PassageTurns
	case roll <= 16:
		return PassageChamber
	case roll == 17:
		return PassageStairs
	case roll == 18:
		return PassageDeadEnd
	case roll == 19:
		return PassageTrap
	default:
		return PassageWanderingMonster
	}
}

// =============================================================================
// Table II - Doors
// =============================================================================

// DoorLocation is where a door sits relative to the passage.
type DoorLocation int

const (
	DoorLeft DoorLocation = iota
	DoorRight
	DoorAhead
)

func (l DoorLocation) String() string {
	switch l {
	case DoorLeft:
		return "LEFT"
	case DoorRight:
		return "RIGHT"
	default:
		return "AHEAD"
	}
}

// DoorBeyond is the space found behind a door.
type DoorBeyond int

const (
	BeyondParallelOrSmallRoom DoorBeyond = iota
	BeyondPassageStraight
	BeyondAngledPassage
	BeyondRoom
	BeyondChamber
)

// Door is a Table II outcome.
type Door struct {
	Location DoorLocation
	Beyond   DoorBeyond
}

// Description returns the corridor description prefix, e.g. "Door at LEFT".
func (d Door) Description() string { return "Door at " + d.Location.String() }

// DoorLocationFor maps the location roll.
func DoorLocationFor(roll int) DoorLocation {
	switch {
	case roll <= 6:
		return DoorLeft
	case roll <= 12:
		return DoorRight
	default:
		return DoorAhead
	}
}

// DoorBeyondFor maps the space-beyond roll.
func DoorBeyondFor(roll int) DoorBeyond {
	switch {
	case roll <= 4:
		return BeyondParallelOrSmallRoom
	case roll <= 8:
		return BeyondPassageStraight
	case roll <= 10:
		return BeyondAngledPassage
	case roll <= 18:
		return BeyondRoom
	default:
		return BeyondChamber
	}
}

// TableII combines the location and space rolls.
func TableII(locationRoll, spaceRoll int) Door {
	return Door{Location: DoorLocationFor(locationRoll), Beyond: DoorBeyondFor(spaceRoll)}
}

// =============================================================================
// Table III - Side passages
// =============================================================================

// SideDirection is a Table III direction.
type SideDirection int

const (
	SideLeft90 SideDirection = iota
	SideRight90
	SideLeft45
	SideRight45
	SideLeft135
	SideRight135
	SideLeftCurve45
	SideRightCurve45
	SideTIntersection
	SideYIntersection
	SideFourWay
	SideXIntersection
)

var sideNames = [...]string{
	"LEFT_90", "RIGHT_90", "LEFT_45", "RIGHT_45", "LEFT_135", "RIGHT_135",
	"LEFT_CURVE_45", "RIGHT_CURVE_45", "T_INTERSECTION", "Y_INTERSECTION",
	"FOUR_WAY", "X_INTERSECTION",
}

func (s SideDirection) String() string {
	if s < 0 || int(s) >= len(sideNames) {
		return fmt.Sprintf("SideDirection(%d)", int(s))
	}
	return sideNames[s]
}

// SidePassage is a Table III outcome.
type SidePassage struct {
	Direction SideDirection
	WidthFeet int
}

// Description returns the corridor description, e.g.
// "Side passage LEFT_90, 10 ft wide".
func (s SidePassage) Description() string {
	return fmt.Sprintf("Side passage %s, %d ft wide", s.Direction, s.WidthFeet)
}

// SideDirectionFor maps the direction roll.
func SideDirectionFor(roll int) SideDirection {
	switch {
	case roll <= 2:
		return SideLeft90
	case roll <= 4:
		return SideRight90
	case roll == 5:
		return SideLeft45
	case roll == 6:
		return SideRight45
	case roll == 7:
		return SideLeft135
	case roll == 8:
		return SideRight135
	case roll == 9:
		return SideLeftCurve45
	case roll == 10:
		return SideRightCurve45
	case roll <= 13:
		return SideTIntersection
	case roll <= 15:
		return SideYIntersection
	case roll <= 19:
		return SideFourWay
	default:
		return SideXIntersection
	}
}

// TableIII combines the direction and width rolls.
func TableIII(directionRoll, widthRoll int) SidePassage {
	return SidePassage{Direction: SideDirectionFor(directionRoll), WidthFeet: PassageWidth(widthRoll)}
}

// PassageWidth maps a width roll to feet. The "special" rows 19-20 are
// simplified to 40 ft.
func PassageWidth(roll int) int {
	switch {
	case roll <= 4:
		return 5
	case roll <= 13:
		return 10
	case roll <= 17:
		return 20
	case roll == 18:
		return 30
	default:
		return 40
	}
}

// =============================================================================
// Table IV - Turns
// =============================================================================

// TableIV returns the turn for a roll.
func TableIV(roll int) dungeon.TurnType {
	switch {
	case roll <= 8:
		return dungeon.TurnLeft90
	case roll == 9:
		return dungeon.TurnLeft45Ahead
	case roll == 10:
		return dungeon.TurnLeft135
	case roll <= 18:
		return dungeon.TurnRight90
	case roll == 19:
		return dungeon.TurnRight45Ahead
	default:
		return dungeon.TurnRight135
	}
}

// =============================================================================
// Table V - Chambers and rooms
// =============================================================================

// Chamber is a Table V outcome: the shape and dimensions of a new room.
type Chamber struct {
	Shape      dungeon.RoomShape
	Dimensions string
}

// TableV returns the chamber for a roll.
func TableV(roll int) Chamber {
	switch {
	case roll <= 4:
		return Chamber{dungeon.ShapeSquare, "20' x 20'"}
	case roll <= 6:
		return Chamber{dungeon.ShapeSquare, "30' x 30'"}
	case roll <= 8:
		return Chamber{dungeon.ShapeSquare, "40' x 40'"}
	case roll <= 10:
		return Chamber{dungeon.ShapeRectangular, "20' x 30'"}
	case roll <= 13:
		return Chamber{dungeon.ShapeRectangular, "30' x 50'"}
	case roll <= 15:
		return Chamber{dungeon.ShapeRectangular, "40' x 60'"}
	case roll <= 17:
		return Chamber{dungeon.ShapeCircular, "30' diameter"}
	default:
		return Chamber{dungeon.ShapeUnusual, "about 500+ sq. ft"}
	}
}

// =============================================================================
// Table VIII - Stairs
// =============================================================================

// TableVIII returns the stairs for a roll.
func TableVIII(roll int) dungeon.StairsType {
	switch {
	case roll <= 5:
		return dungeon.StairsDown1
	case roll == 6:
		return dungeon.StairsDown2
	case roll == 7:
		return dungeon.StairsDown3
	case roll == 8:
		return dungeon.StairsUp1
	case roll == 9:
		return dungeon.StairsUpToDeadEnd
	case roll == 10:
		return dungeon.StairsDownToDeadEnd
	case roll == 11:
		return dungeon.StairsChimneyUp1
	case roll == 12:
		return dungeon.StairsChimneyUp2
	case roll == 13:
		return dungeon.StairsChimneyDown2
	case roll <= 16:
		return dungeon.StairsTrapDoorDown1
	case roll == 17:
		return dungeon.StairsTrapDoorDown2
	default:
		return dungeon.StairsUp1Down2Chamber
	}
}
