package telemetry

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	h := simulate(t, 10)
	names := []string{"gap", "moss", "grass"}

	snap := NewSnapshot(h, 9, names)
	snap.Bookmark = &Bookmark{Type: BookmarkDominance, Generation: 9, Species: 1}

	path, err := SaveSnapshot(snap, t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if filepath.Base(path) != "snapshot_9_dominance.json" {
		t.Errorf("saved as %s", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if loaded.Generation != 9 || loaded.Seed != h.Seed() {
		t.Errorf("loaded generation %d seed %d", loaded.Generation, loaded.Seed)
	}
	if !slices.Equal(loaded.Rows, snap.Rows) || !slices.Equal(loaded.Counts, snap.Counts) {
		t.Error("loaded snapshot differs from saved")
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkDominance {
		t.Errorf("bookmark = %+v", loaded.Bookmark)
	}
}

func TestSnapshotRows(t *testing.T) {
	h := simulate(t, 5)
	snap := NewSnapshot(h, 4, nil)

	if len(snap.Rows) != h.Height() {
		t.Fatalf("%d rows, want %d", len(snap.Rows), h.Height())
	}
	if snap.Rows[0][0] != 'N' {
		t.Errorf("flooded corner encoded as %q, want N", snap.Rows[0][0])
	}
	for y, row := range snap.Rows {
		for x := range row {
			if row[x] != h.Status(4, x, y).Code() {
				t.Fatalf("cell (%d,%d) = %q, want %q", x, y, row[x], h.Status(4, x, y).Code())
			}
		}
	}

	matrix, err := snap.StartingMatrix(h.Width(), h.Height())
	if err != nil {
		t.Fatalf("StartingMatrix() error = %v", err)
	}
	if matrix != strings.Join(snap.Rows, "") {
		t.Errorf("StartingMatrix() = %q", matrix)
	}

	if _, err := snap.StartingMatrix(h.Width()+1, h.Height()); !errors.Is(err, ErrSnapshotShape) {
		t.Errorf("StartingMatrix() on wrong grid error = %v, want ErrSnapshotShape", err)
	}
}
