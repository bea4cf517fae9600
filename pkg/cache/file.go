package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// headerSize is the length of the expiry stamp that prefixes every entry
// file: a big-endian Unix time in nanoseconds, zero for no expiry.
const headerSize = 8

// FileCache keeps one file per entry below dir. Entries are grouped by the
// key's stage (dungeon/, layout/, artifact/) and sharded by the first two hex
// digits of the key hash. Payloads are stored raw so PNG artifacts do not
// grow on disk.
//
// Writes go through a temporary file and a rename, which keeps concurrent
// batch workers from observing partial entries.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache creates dir if needed and returns a cache rooted there.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the root directory.
func (c *FileCache) Dir() string { return c.dir }

// Get returns the payload for key. Expired and truncated entries are removed
// and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !c.live(raw) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return raw[headerSize:], true, nil
}

// Set writes data under key. A non-positive ttl never expires.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = c.now().Add(ttl).UnixNano()
	}
	raw := make([]byte, headerSize+len(data))
	binary.BigEndian.PutUint64(raw, uint64(expires))
	copy(raw[headerSize:], data)

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. Deleting a missing key is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close implements Cache.
func (c *FileCache) Close() error { return nil }

// Purge walks the cache and removes expired or unreadable entries. It
// returns the number of files removed.
func (c *FileCache) Purge(ctx context.Context) (int, error) {
	removed := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if !c.live(raw) && os.Remove(path) == nil {
			removed++
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return removed, nil
	}
	return removed, err
}

// live reports whether raw holds a complete, unexpired entry.
func (c *FileCache) live(raw []byte) bool {
	if len(raw) < headerSize {
		return false
	}
	expires := int64(binary.BigEndian.Uint64(raw))
	return expires == 0 || c.now().UnixNano() < expires
}

// path maps "staging:layout:ab12..." to <dir>/staging_layout/ab/12...
func (c *FileCache) path(key string) string {
	stage, sum := "misc", Hash([]byte(key))
	if i := strings.LastIndexByte(key, ':'); i > 0 {
		stage = strings.Map(func(r rune) rune {
			if r == ':' || r == '/' || r == '\\' || r == '.' {
				return '_'
			}
			return r
		}, key[:i])
	}
	return filepath.Join(c.dir, stage, sum[:2], sum[2:])
}

var _ Cache = (*FileCache)(nil)
