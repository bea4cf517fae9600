package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys for each pipeline stage.
type Keyer interface {
	// DungeonKey identifies a generated dungeon.
	DungeonKey(opts DungeonKeyOpts) string
	// LayoutKey identifies a fitted layout of a dungeon.
	LayoutKey(dungeonHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DungeonKeyOpts are the generator inputs that affect a dungeon.
type DungeonKeyOpts struct {
	MaxRooms int    `json:"max_rooms"`
	Seed     uint64 `json:"seed"`
}

// LayoutKeyOpts are the fitter inputs that affect a layout.
type LayoutKeyOpts struct {
	Fitter       string `json:"fitter"`
	RowWidth     int    `json:"row_width,omitempty"`
	MaxDimension int    `json:"max_dimension,omitempty"`
	OffsetRange  int    `json:"offset_range,omitempty"`
	SearchMargin int    `json:"search_margin,omitempty"`
	Seed         uint64 `json:"seed,omitempty"`
}

// ArtifactKeyOpts are the renderer inputs that affect an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	CellSize int    `json:"cell_size,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer produces "<kind>:<sha256>" keys over the JSON encoding of
// the stage inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) DungeonKey(opts DungeonKeyOpts) string {
	return stageKey(KindDungeon, opts)
}

func (DefaultKeyer) LayoutKey(dungeonHash string, opts LayoutKeyOpts) string {
	return stageKey(KindLayout, dungeonHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return stageKey(KindArtifact, layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}

// Hash returns the hex SHA-256 of data. The pipeline uses it to identify
// serialized dungeons and layouts inside keys.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// stageKey encodes the inputs as a JSON array so that field order is stable.
// The key structs hold only plain values and always encode.
func stageKey(kind string, inputs ...any) string {
	data, _ := json.Marshal(inputs)
	return kind + ":" + Hash(data)
}
