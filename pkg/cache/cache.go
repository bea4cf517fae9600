// Package cache provides the byte cache used by the pipeline and the server.
//
// Three backends are available:
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for multiple server instances
//   - [NewNullCache]: never stores anything
//
// Keys are built by a [Keyer] so that the same dungeon options always map to
// the same entry:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.DungeonKey(cache.DungeonKeyOpts{MaxRooms: 10, Seed: 42})
package cache

import (
	"context"
	"time"
)

// Pipeline stages that own cache entries. Every key starts with one of these.
const (
	KindDungeon  = "dungeon"
	KindLayout   = "layout"
	KindArtifact = "artifact"
)

// Default TTLs per cached stage.
const (
	DungeonTTL  = 7 * 24 * time.Hour
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
)

// Cache is a key/value byte store with optional expiration.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NewNullCache returns a cache that misses on every Get. It backs --no-cache
// and the "none" backend.
func NewNullCache() Cache { return nullCache{} }

type nullCache struct{}

func (nullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                     { return nil }
func (nullCache) Close() error                                             { return nil }
