// Package generator builds random dungeons from the d20 tables of the
// classic random dungeon generation appendix.
//
// Generation starts with a 20' x 20' starter room and repeatedly rolls on
// Table I (periodic check) from the newest room. Doors (Table II), side
// passages (Table III), turns (Table IV), chambers (Table V) and stairs
// (Table VIII) add rooms and corridors to the [dungeon.Dungeon]. Straight
// runs, turns and stairs end in a corridor-end node so the passage can keep
// branching.
//
// Expansion stops when the dungeon holds [Options.MaxRooms] rooms or the
// recursion depth exceeds twice that number.
//
// # Reproducibility
//
// All randomness comes from a [Dice] value. [New] seeds a PCG source from
// [Options.Seed], so the same seed always yields the same dungeon:
//
//	g := generator.New(generator.Options{Seed: 7})
//	d, err := g.Generate(ctx)
//
// Tests can script the rolls with [NewWithDice].
package generator
