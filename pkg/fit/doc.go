// Package fit places an abstract [dungeon.Dungeon] onto a [grid.Grid].
//
// Two fitters are provided:
//
//   - [BFS] lays rooms out in rows and routes every corridor with a
//     breadth-first search between the first boundary cells of its rooms.
//   - [AStar] clamps large rooms, jitters their positions, grows short
//     corridor stubs out of each room and joins the stubs with an A* search
//     that prefers to keep away from room walls.
//
// Corridors with a missing endpoint (dead ends, wandering monsters, trap
// exits) carry no geometry and are skipped by both fitters.
//
// Use [New] to look a fitter up by name:
//
//	f, err := fit.New("astar", fit.Options{Seed: 42, Logger: logger})
//	res, err := f.Fit(ctx, d)
//	fmt.Println(res.Bounds)
//
// Both fitters check the context between corridors and stop with ctx.Err()
// when it is cancelled.
package fit
