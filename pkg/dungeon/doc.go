// Package dungeon provides the abstract dungeon graph produced by the
// generator and consumed by the grid fitters.
//
// # Overview
//
// A [Dungeon] is a set of [Room] vertices joined by [Corridor] edges. Rooms
// carry a [RoomShape] and a free-form dimension string such as "20' x 30'".
// Corridors carry a length in feet and a description of the passage feature
// that produced them ("Door at LEFT -> passage straight", "Stairs: Down 1
// level", ...).
//
// Room IDs are allocated per dungeon, starting at 1. The ID 0 is reserved for
// "no room": dead ends and wandering monster encounters have no target, and
// the corridor leading out of a trap has no source.
//
//	d := dungeon.New("example", 42)
//	start := d.NewRoom(dungeon.ShapeStarter, "20' x 20'")
//	hall := d.NewRoom(dungeon.ShapeSquare, "30' x 30'")
//	d.AddCorridor(dungeon.Corridor{From: start.ID, To: hall.ID, LengthFeet: 30, Description: "To Chamber"})
//
// # Analysis
//
// [Dungeon.Stats] runs graph algorithms from gonum over the room graph:
// connected components, reachability from the starter room, and the farthest
// room measured in corridor feet.
//
// # Concurrency
//
// Dungeon values are not safe for concurrent mutation. Read-only use from
// several goroutines is fine.
package dungeon
