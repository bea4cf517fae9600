// Package config loads dungeonmap settings from a TOML file.
//
// The default location is $XDG_CONFIG_HOME/dungeonmap/config.toml, falling
// back to ~/.config/dungeonmap/config.toml. A missing file is not an error:
// every field has a default, and command-line flags override file values.
//
//	[generator]
//	max_rooms = 15
//
//	[fit]
//	algorithm = "astar"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	derrors "github.com/n8l/dungeonmap/pkg/errors"
	"github.com/n8l/dungeonmap/pkg/fit"
	"github.com/n8l/dungeonmap/pkg/generator"
	"github.com/n8l/dungeonmap/pkg/render"
)

const appName = "dungeonmap"

// Backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Duration is a time.Duration written as text ("30s", "24h") in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Config is the full settings file.
type Config struct {
	Generator Generator `toml:"generator"`
	Fit       Fit       `toml:"fit"`
	Render    Render    `toml:"render"`
	Cache     Cache     `toml:"cache"`
	Storage   Storage   `toml:"storage"`
	Server    Server    `toml:"server"`
}

type Generator struct {
	MaxRooms int    `toml:"max_rooms"`
	Seed     uint64 `toml:"seed"`
}

type Fit struct {
	Algorithm         string `toml:"algorithm"`
	BFSRowWidth       int    `toml:"bfs_row_width"`
	AStarRowWidth     int    `toml:"astar_row_width"`
	AStarMaxDimension int    `toml:"astar_max_dimension"`
	AStarOffsetRange  int    `toml:"astar_offset_range"`
	SearchMargin      int    `toml:"search_margin"`
}

type Render struct {
	CellSize int      `toml:"cell_size"`
	Formats  []string `toml:"formats"`
}

type Cache struct {
	Backend   string   `toml:"backend"` // file, redis or none
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	Prefix    string   `toml:"prefix"`
	TTL       Duration `toml:"ttl"`
}

type Storage struct {
	Backend  string `toml:"backend"` // file or mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Generator: Generator{MaxRooms: generator.DefaultMaxRooms},
		Fit: Fit{
			Algorithm:         fit.DefaultAlgorithm,
			BFSRowWidth:       fit.DefaultBFSRowWidth,
			AStarRowWidth:     fit.DefaultAStarRowWidth,
			AStarMaxDimension: fit.DefaultAStarMaxDimension,
			AStarOffsetRange:  fit.DefaultAStarOffsetRange,
			SearchMargin:      fit.DefaultSearchMargin,
		},
		Render: Render{
			CellSize: render.DefaultCellSize,
			Formats:  []string{render.FormatPNG},
		},
		Cache: Cache{Backend: BackendFile},
		Storage: Storage{
			Backend:  BackendFile,
			Database: "dungeonmap",
		},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path on top of the defaults. An empty path means DefaultPath.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if c.Fit.Algorithm != "" && !fit.Valid(c.Fit.Algorithm) {
		return fmt.Errorf("fit.algorithm: unknown fitter %q (must be one of: %v)", c.Fit.Algorithm, fit.Names())
	}
	if c.Render.CellSize != 0 {
		if err := derrors.ValidateCellSize(c.Render.CellSize); err != nil {
			return fmt.Errorf("render.cell_size: %w", err)
		}
	}
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone, ""}, c.Cache.Backend) {
		return fmt.Errorf("cache.backend: %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New("cache.redis_addr is required for the redis backend")
	}
	if !slices.Contains([]string{BackendFile, BackendMongo, ""}, c.Storage.Backend) {
		return fmt.Errorf("storage.backend: %q (must be file or mongo)", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendMongo && c.Storage.MongoURI == "" {
		return errors.New("storage.mongo_uri is required for the mongo backend")
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
