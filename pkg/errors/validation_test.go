package errors

import (
	"strings"
	"testing"
)

func TestValidateDungeonID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "0b9c7a52-3d8e-4a8f-9c61-3f1a2b4c5d6e", false},
		{"empty", "", true},
		{"not a uuid", "dungeon-1", true},
		{"path traversal", "../etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDungeonID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDungeonID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("ValidateDungeonID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidID)
			}
		})
	}
}

func TestValidateMaxRooms(t *testing.T) {
	tests := []struct {
		input   int
		wantErr bool
	}{
		{1, false},
		{10, false},
		{1000, false},
		{0, true},
		{-3, true},
		{1001, true},
	}

	for _, tt := range tests {
		err := ValidateMaxRooms(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateMaxRooms(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if e, ok := As(err); err != nil && (!ok || e.Field != "max_rooms") {
			t.Errorf("ValidateMaxRooms(%d) field = %+v", tt.input, e)
		}
	}
}

func TestValidateCellSize(t *testing.T) {
	tests := []struct {
		input   int
		wantErr bool
	}{
		{1, false},
		{16, false},
		{MaxCellSize, false},
		{0, true},
		{-2, true},
		{MaxCellSize + 1, true},
		{1_000_000_000, true},
	}

	for _, tt := range tests {
		err := ValidateCellSize(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCellSize(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if e, ok := As(err); err != nil && (!ok || e.Field != "cell_size" || e.Code != ErrCodeInvalidInput) {
			t.Errorf("ValidateCellSize(%d) = %+v", tt.input, e)
		}
	}
}

func TestValidateFitter(t *testing.T) {
	allowed := []string{"bfs", "astar"}
	if err := ValidateFitter("astar", allowed); err != nil {
		t.Errorf("ValidateFitter(astar) = %v", err)
	}
	for _, name := range []string{"", "dfs", "BFS"} {
		err := ValidateFitter(name, allowed)
		if !Is(err, ErrCodeInvalidFitter) {
			t.Errorf("ValidateFitter(%q) = %v, want INVALID_FITTER", name, err)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	allowed := []string{"json", "png", "svg"}
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"json", "json", false},
		{"png", "png", false},
		{"empty", "", true},
		{"unknown", "gif", true},
		{"case sensitive", "PNG", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormat(tt.input, allowed)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFormat) {
				t.Errorf("ValidateFormat(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "dungeon.png", false},
		{"relative dir", "out/dungeon.json", false},
		{"absolute", "/tmp/dungeon.svg", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"null byte", "foo\x00.png", true},
		{"newline", "foo\n.png", true},
		{"directory", "out/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
