package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/n8l/dungeonmap/pkg/dungeon"
	dio "github.com/n8l/dungeonmap/pkg/io"
)

func sampleDoc(id string) *dio.Document {
	return &dio.Document{
		ID:   id,
		Seed: 7,
		Rooms: []dio.Room{
			{ID: 1, Shape: "STARTER", Dimensions: "10x10"},
			{ID: 2, Shape: "SQUARE", Dimensions: "20x20"},
		},
		Corridors: []dungeon.Corridor{
			{From: 1, To: 2, LengthFeet: 30, Description: "To Chamber"},
		},
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	id, err := s.Put(ctx, sampleDoc(""))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("Put assigned %q, want a UUID", id)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != id || len(got.Rooms) != 2 || len(got.Corridors) != 1 {
		t.Errorf("Get = %+v", got)
	}
	if got.Corridors[0].Description != "To Chamber" {
		t.Errorf("corridor description = %q", got.Corridors[0].Description)
	}

	// Replace keeps one entry per ID.
	doc := sampleDoc(id)
	doc.Rooms = doc.Rooms[:1]
	doc.Corridors = nil
	if _, err := s.Put(ctx, doc); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	got, err = s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after replace: %v", err)
	}
	if len(got.Rooms) != 1 {
		t.Errorf("rooms after replace = %d, want 1", len(got.Rooms))
	}

	ids, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !slices.Contains(ids, id) {
		t.Errorf("List = %v, missing %s", ids, id)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestFileStoreListSorted(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, id := range []string{"c", "a", "b"} {
		if _, err := s.Put(ctx, sampleDoc(id)); err != nil {
			t.Fatalf("Put(%s): %v", id, err)
		}
	}
	// Stray files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	ids, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if want := []string{"a", "b", "c"}; !slices.Equal(ids, want) {
		t.Errorf("List = %v, want %v", ids, want)
	}
}

func TestFileStoreInvalidID(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, id := range []string{"../escape", "a/b", ".hidden"} {
		if _, err := s.Get(ctx, id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Get(%q) err = %v, want ErrInvalidID", id, err)
		}
		if _, err := s.Put(ctx, sampleDoc(id)); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Put(%q) err = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestFileStoreCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = s.Get(context.Background(), "broken")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Get(broken) err = %v, want parse error", err)
	}
}

func TestDefaultDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "dungeonmap", "dungeons"); dir != want {
		t.Errorf("DefaultDir() = %s, want %s", dir, want)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("DUNGEONMAP_MONGO_URI")
	if uri == "" {
		t.Skip("DUNGEONMAP_MONGO_URI not set")
	}
	s, err := NewMongoStore(context.Background(), MongoConfig{
		URI:        uri,
		Collection: "test_" + uuid.NewString()[:8],
	})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer func() {
		_ = s.coll.Drop(context.Background())
		s.Close()
	}()
	exerciseStore(t, s)
}
