package generator

import (
	"context"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/n8l/dungeonmap/pkg/dungeon"
)

// DefaultMaxRooms is the room count at which expansion stops.
const DefaultMaxRooms = 10

// Starter room dimensions.
const StarterDimensions = "20' x 20'"

// Corridor lengths in feet.
const (
	straightFeet      = 60
	turnFeet          = 60
	chamberFeet       = 30
	stairsFeet        = 20
	deadEndFeet       = 10
	trapFeet          = 30
	trapExitFeet      = 0
	monsterFeet       = 10
	doorPassageFeet   = 30
	doorSmallRoomFeet = 5
	doorRoomFeet      = 10
	stairsChamberFeet = 10
	sidePassageFeet   = 30
)

const (
	corridorEndDims = "N/A"
	trapEndDims     = "End after trap"
	smallRoomDims   = "10' x 10'"
)

// Options configures a Generator.
type Options struct {
	// MaxRooms caps the number of rooms, corridor ends included.
	// Zero means DefaultMaxRooms.
	MaxRooms int `json:"max_rooms,omitempty"`

	// Seed seeds the dice. Zero picks a random seed, which is recorded on
	// the generated dungeon.
	Seed uint64 `json:"seed,omitempty"`

	// ID names the generated dungeon. Empty means a new UUID per dungeon.
	ID string `json:"id,omitempty"`

	Logger *log.Logger `json:"-"`
}

func (o *Options) setDefaults() {
	if o.MaxRooms <= 0 {
		o.MaxRooms = DefaultMaxRooms
	}
	if o.Seed == 0 {
		o.Seed = rand.Uint64() | 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Dice supplies the random rolls.
type Dice interface {
	// D20 returns a value in [1, 20].
	D20() int
	// Coin returns true or false with equal probability.
	Coin() bool
}

type pcgDice struct{ rng *rand.Rand }

// NewDice returns PCG-backed dice seeded with seed.
func NewDice(seed uint64) Dice {
	return pcgDice{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p pcgDice) D20() int   { return p.rng.IntN(20) + 1 }
func (p pcgDice) Coin() bool { return p.rng.IntN(2) == 0 }

// Generator produces dungeons. A Generator is not safe for concurrent use;
// successive calls to Generate continue the same roll sequence.
type Generator struct {
	opts Options
	dice Dice
}

// New creates a generator whose dice are seeded from opts.Seed.
func New(opts Options) *Generator {
	opts.setDefaults()
	return &Generator{opts: opts, dice: NewDice(opts.Seed)}
}

// NewWithDice creates a generator that rolls with the given dice.
func NewWithDice(opts Options, dice Dice) *Generator {
	opts.setDefaults()
	return &Generator{opts: opts, dice: dice}
}

// Options returns the options after defaults were applied.
func (g *Generator) Options() Options { return g.opts }

// Generate builds a new dungeon. It returns ctx.Err() if the context is
// cancelled mid-expansion.
func (g *Generator) Generate(ctx context.Context) (*dungeon.Dungeon, error) {
	id := g.opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	d := dungeon.New(id, g.opts.Seed)
	start := d.NewRoom(dungeon.ShapeStarter, StarterDimensions)

	e := &expansion{ctx: ctx, g: g, d: d}
	e.expand(start, 0)
	if e.err != nil {
		return nil, e.err
	}

	g.opts.Logger.Debug("generated dungeon",
		"id", d.ID,
		"rooms", d.RoomCount(),
		"corridors", d.CorridorCount())
	return d, nil
}

// expansion carries the state of a single Generate call.
type expansion struct {
	ctx context.Context
	g   *Generator
	d   *dungeon.Dungeon
	err error
}

func (e *expansion) done(depth int) bool {
	if e.err != nil {
		return true
	}
	if err := e.ctx.Err(); err != nil {
		e.err = err
		return true
	}
	limit := e.g.opts.MaxRooms
	return e.d.RoomCount() >= limit || depth > 2*limit
}

func (e *expansion) roll() int { return e.g.dice.D20() }

func (e *expansion) expand(from dungeon.Room, depth int) {
	if e.done(depth) {
		return
	}
	p := TableI(e.roll())
	e.g.opts.Logger.Debug("periodic check", "room", from.ID, "depth", depth, "result", p)

	switch p {
	case PassageStraight:
		end := e.linear(from, straightFeet, "Continue straight")
		e.expand(end, depth+1)

	case PassageDoor:
		door := TableII(e.roll(), e.roll())
		e.door(from, door, depth)

	case PassageSide:
		side := TableIII(e.roll(), e.roll())
		end := e.linear(from, sidePassageFeet, side.Description())
		e.expand(end, depth+1)

	case PassageTurns:
		turn := TableIV(e.roll())
		width := PassageWidth(e.roll())
		end := e.linear(from, turnFeet, turnDescription(width, turn))
		e.expand(end, depth+1)

	case PassageChamber:
		room := e.chamber()
		e.corridor(from.ID, room.ID, chamberFeet, "To Chamber")
		e.expand(room, depth+1)

	case PassageStairs:
		e.stairs(from, TableVIII(e.roll()), depth)

	case PassageDeadEnd:
		e.corridor(from.ID, dungeon.NoRoom, deadEndFeet, "Dead end here")

	case PassageTrap:
		e.corridor(from.ID, dungeon.NoRoom, trapFeet, "Trap in passage - continues")
		e.trapContinuation(depth + 1)

	case PassageWanderingMonster:
		e.corridor(from.ID, dungeon.NoRoom, monsterFeet, "Wandering monster encountered")
		e.expand(from, depth+1)
	}
}

func (e *expansion) door(from dungeon.Room, door Door, depth int) {
	prefix := door.Description()
	switch door.Beyond {
	case BeyondParallelOrSmallRoom:
		if e.g.dice.Coin() {
			end := e.linear(from, doorPassageFeet, prefix+" -> parallel passage")
			e.expand(end, depth+1)
			return
		}
		room := e.d.NewRoom(dungeon.ShapeSquare, smallRoomDims)
		e.corridor(from.ID, room.ID, doorSmallRoomFeet, prefix+" -> small 10x10 room")
		e.expand(room, depth+1)

	case BeyondPassageStraight:
		end := e.linear(from, doorPassageFeet, prefix+" -> passage straight")
		e.expand(end, depth+1)

	case BeyondAngledPassage:
		angle := "135°"
		if e.g.dice.Coin() {
			angle = "45°"
		}
		end := e.linear(from, doorPassageFeet, prefix+" -> angled "+angle+" passage")
		e.expand(end, depth+1)

	case BeyondRoom:
		room := e.chamber()
		e.corridor(from.ID, room.ID, doorRoomFeet, prefix+" -> Room (Table V)")
		e.expand(room, depth+1)

	case BeyondChamber:
		room := e.chamber()
		e.corridor(from.ID, room.ID, doorRoomFeet, prefix+" -> Chamber (Table V)")
		e.expand(room, depth+1)
	}
}

func (e *expansion) stairs(from dungeon.Room, s dungeon.StairsType, depth int) {
	end := e.linear(from, stairsFeet, "Stairs: "+s.Description())
	if !s.EndsInChamber() {
		e.expand(end, depth+1)
		return
	}
	room := e.chamber()
	e.corridor(end.ID, room.ID, stairsChamberFeet, "End of stairs -> Chamber")
	e.expand(room, depth+1)
}

// trapContinuation places the node beyond a trap. The corridor reaching it
// has no source room, so the rest of the passage is only linked to the main
// dungeon through the trap description.
func (e *expansion) trapContinuation(depth int) {
	if e.d.RoomCount() >= e.g.opts.MaxRooms {
		return
	}
	end := e.d.NewRoom(dungeon.ShapeCorridorEnd, trapEndDims)
	e.corridor(dungeon.NoRoom, end.ID, trapExitFeet, "Trap corridor ends here")
	e.expand(end, depth)
}

// linear adds a corridor from a room to a fresh corridor-end node and
// returns the node.
func (e *expansion) linear(from dungeon.Room, feet int, desc string) dungeon.Room {
	end := e.d.NewRoom(dungeon.ShapeCorridorEnd, corridorEndDims)
	e.corridor(from.ID, end.ID, feet, desc)
	return end
}

func (e *expansion) chamber() dungeon.Room {
	c := TableV(e.roll())
	return e.d.NewRoom(c.Shape, c.Dimensions)
}

func (e *expansion) corridor(from, to, feet int, desc string) {
	// Endpoints are rooms this expansion just created, so AddCorridor
	// cannot fail.
	_ = e.d.AddCorridor(dungeon.Corridor{From: from, To: to, LengthFeet: feet, Description: desc})
}

func turnDescription(width int, turn dungeon.TurnType) string {
	return strconv.Itoa(width) + " ft wide, " + turn.Description()
}
