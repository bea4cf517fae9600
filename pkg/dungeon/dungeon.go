package dungeon

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// NoRoom is the room ID used for a missing corridor endpoint.
const NoRoom = 0

var (
	// ErrInvalidRoomID is returned by [Dungeon.AddRoom] when the room ID is
	// not positive.
	ErrInvalidRoomID = errors.New("room ID must be positive")

	// ErrDuplicateRoomID is returned by [Dungeon.AddRoom] when a room with the
	// same ID already exists.
	ErrDuplicateRoomID = errors.New("duplicate room ID")

	// ErrUnknownRoom is returned by [Dungeon.AddCorridor] and [Dungeon.Validate]
	// when a corridor endpoint references a room that does not exist.
	ErrUnknownRoom = errors.New("unknown room")

	// ErrNoStarterRoom is returned by [Dungeon.Stats] when the dungeon has no
	// rooms to start from.
	ErrNoStarterRoom = errors.New("dungeon has no starter room")
)

// Room is a vertex of the dungeon graph.
type Room struct {
	ID         int       `json:"id"`
	Shape      RoomShape `json:"shape"`
	Dimensions string    `json:"dimensions"` // e.g. "20' x 30'"
}

// Size parses the room dimensions into grid cells (one cell per foot).
func (r Room) Size() (width, height int) { return ParseDimensions(r.Dimensions) }

func (r Room) String() string {
	return fmt.Sprintf("Room #%d [%s | %s]", r.ID, r.Shape.Description(), r.Dimensions)
}

// Corridor is an edge of the dungeon graph. Either endpoint may be
// [NoRoom].
type Corridor struct {
	From        int    `json:"from"`
	To          int    `json:"to"`
	LengthFeet  int    `json:"lengthFeet"`
	Description string `json:"description"`
}

// Connects reports whether both endpoints are real rooms.
func (c Corridor) Connects() bool { return c.From != NoRoom && c.To != NoRoom }

func (c Corridor) String() string {
	return fmt.Sprintf("Corridor [%s -> %s, length=%d ft, %s]",
		endpoint(c.From), endpoint(c.To), c.LengthFeet, c.Description)
}

func endpoint(id int) string {
	if id == NoRoom {
		return "None"
	}
	return "Room#" + strconv.Itoa(id)
}

// Dungeon is the abstract room/corridor graph.
// The zero value is usable; [New] sets the ID and seed.
type Dungeon struct {
	ID        string     `json:"id,omitempty"`
	Seed      uint64     `json:"seed,omitempty"`
	Rooms     []Room     `json:"rooms"`
	Corridors []Corridor `json:"corridors"`

	nextID int
	index  map[int]int // room ID -> position in Rooms
}

// New creates an empty dungeon.
func New(id string, seed uint64) *Dungeon {
	return &Dungeon{ID: id, Seed: seed}
}

// NewRoom allocates the next room ID, appends the room and returns it.
func (d *Dungeon) NewRoom(shape RoomShape, dimensions string) Room {
	d.ensureIndex()
	d.nextID++
	for _, taken := d.index[d.nextID]; taken; _, taken = d.index[d.nextID] {
		d.nextID++
	}
	r := Room{ID: d.nextID, Shape: shape, Dimensions: dimensions}
	d.index[r.ID] = len(d.Rooms)
	d.Rooms = append(d.Rooms, r)
	return r
}

// AddRoom appends a room that already has an ID, as when loading a saved
// dungeon. Later calls to NewRoom continue after the highest ID seen.
func (d *Dungeon) AddRoom(r Room) error {
	if r.ID <= 0 {
		return ErrInvalidRoomID
	}
	d.ensureIndex()
	if _, ok := d.index[r.ID]; ok {
		return fmt.Errorf("room %d: %w", r.ID, ErrDuplicateRoomID)
	}
	d.index[r.ID] = len(d.Rooms)
	d.Rooms = append(d.Rooms, r)
	if r.ID > d.nextID {
		d.nextID = r.ID
	}
	return nil
}

// AddCorridor appends a corridor. Endpoints must be existing rooms or
// [NoRoom].
func (d *Dungeon) AddCorridor(c Corridor) error {
	if err := d.checkEndpoint(c.From); err != nil {
		return err
	}
	if err := d.checkEndpoint(c.To); err != nil {
		return err
	}
	d.Corridors = append(d.Corridors, c)
	return nil
}

func (d *Dungeon) checkEndpoint(id int) error {
	if id == NoRoom {
		return nil
	}
	if _, ok := d.Room(id); !ok {
		return fmt.Errorf("room %d: %w", id, ErrUnknownRoom)
	}
	return nil
}

// Room returns the room with the given ID.
func (d *Dungeon) Room(id int) (Room, bool) {
	d.ensureIndex()
	i, ok := d.index[id]
	if !ok {
		return Room{}, false
	}
	return d.Rooms[i], true
}

// LastRoom returns the most recently added room.
func (d *Dungeon) LastRoom() (Room, bool) {
	if len(d.Rooms) == 0 {
		return Room{}, false
	}
	return d.Rooms[len(d.Rooms)-1], true
}

// RoomCount returns the number of rooms, including corridor ends.
func (d *Dungeon) RoomCount() int { return len(d.Rooms) }

// CorridorCount returns the number of corridors.
func (d *Dungeon) CorridorCount() int { return len(d.Corridors) }

// Validate checks that room IDs are positive and unique and that every
// corridor endpoint is a known room or [NoRoom].
func (d *Dungeon) Validate() error {
	seen := make(map[int]bool, len(d.Rooms))
	for _, r := range d.Rooms {
		if r.ID <= 0 {
			return ErrInvalidRoomID
		}
		if seen[r.ID] {
			return fmt.Errorf("room %d: %w", r.ID, ErrDuplicateRoomID)
		}
		seen[r.ID] = true
	}
	for i, c := range d.Corridors {
		for _, id := range []int{c.From, c.To} {
			if id != NoRoom && !seen[id] {
				return fmt.Errorf("corridor %d: room %d: %w", i, id, ErrUnknownRoom)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the dungeon.
func (d *Dungeon) Clone() *Dungeon {
	out := &Dungeon{
		ID:        d.ID,
		Seed:      d.Seed,
		Rooms:     slices.Clone(d.Rooms),
		Corridors: slices.Clone(d.Corridors),
		nextID:    d.nextID,
	}
	return out
}

// ensureIndex rebuilds the ID index after JSON decoding or on first use.
func (d *Dungeon) ensureIndex() {
	if d.index != nil && len(d.index) == len(d.Rooms) {
		return
	}
	d.index = make(map[int]int, len(d.Rooms))
	for i, r := range d.Rooms {
		d.index[r.ID] = i
		if r.ID > d.nextID {
			d.nextID = r.ID
		}
	}
}

// Default size used when a dimension string cannot be parsed.
const (
	DefaultWidth  = 5
	DefaultHeight = 5
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// ParseDimensions converts "20' x 30'" into (20, 30). Strings that are not
// two numbers separated by "x" (such as "30' diameter" or "N/A") fall back to
// [DefaultWidth] by [DefaultHeight].
func ParseDimensions(dims string) (width, height int) {
	parts := strings.Split(dims, "x")
	if len(parts) != 2 {
		return DefaultWidth, DefaultHeight
	}
	w, errW := strconv.Atoi(nonDigits.ReplaceAllString(parts[0], ""))
	h, errH := strconv.Atoi(nonDigits.ReplaceAllString(parts[1], ""))
	if errW != nil || errH != nil {
		return DefaultWidth, DefaultHeight
	}
	return w, h
}
