// Package grid provides the sparse 2D cell map that fitters draw onto.
//
// Cells are keyed by integer coordinates and created on demand. A coordinate
// with no cell is treated as open floor by the fitters. Each cell is EMPTY,
// ROOM (with the owning room ID) or CORRIDOR.
//
// The grid caches room boundaries. Filling a room invalidates the cache;
// marking corridors does not, because corridor cells never change which
// room a cell belongs to.
package grid
