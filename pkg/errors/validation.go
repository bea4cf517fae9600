package errors

import (
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateDungeonID checks that id is a UUID as assigned by the stores.
func ValidateDungeonID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "dungeon id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return New(ErrCodeInvalidID, "invalid dungeon id: %q", id)
	}
	return nil
}

// ValidateMaxRooms checks the room limit of a generation request.
func ValidateMaxRooms(n int) error {
	const limit = 1000
	if n < 1 || n > limit {
		return Invalid("max_rooms", "must be between 1 and %d, got %d", limit, n)
	}
	return nil
}

// MaxCellSize is the largest cell edge, in pixels, a render may ask for.
// It keeps a raster of a few hundred cells per side under a few hundred MB.
const MaxCellSize = 256

// ValidateCellSize checks the pixel size of one grid cell.
func ValidateCellSize(n int) error {
	if n < 1 || n > MaxCellSize {
		return Invalid("cell_size", "must be between 1 and %d, got %d", MaxCellSize, n)
	}
	return nil
}

// ValidateFitter checks that name is one of allowed.
func ValidateFitter(name string, allowed []string) error {
	if !slices.Contains(allowed, name) {
		return New(ErrCodeInvalidFitter, "invalid fitter: %q (must be one of: %s)", name, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed []string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (valid: %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateOutputPath validates a path the CLI is about to write to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must not name a directory (no trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	return nil
}
