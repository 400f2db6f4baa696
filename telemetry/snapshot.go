package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/meadow/succession"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// ErrSnapshotShape is returned when a snapshot does not match the grid it is applied to.
var ErrSnapshotShape = errors.New("snapshot shape mismatch")

// Snapshot holds one generation of a run. Rows use starting matrix codes
// (N for permanent, digits for gap and species), so a snapshot can seed a new run.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Generation int      `json:"generation"`
	Species    []string `json:"species"`
	Counts     []int    `json:"counts"`
	Rows       []string `json:"rows"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// NewSnapshot captures generation g of h. names is indexed 0..S and may be nil.
func NewSnapshot(h *succession.History, g int, names []string) *Snapshot {
	s := &Snapshot{
		Version:    SnapshotVersion,
		Seed:       h.Seed(),
		Width:      h.Width(),
		Height:     h.Height(),
		Generation: g,
		Species:    append([]string(nil), names...),
		Counts:     append([]int(nil), h.Counts(g)...),
		Rows:       make([]string, h.Height()),
	}
	row := make([]byte, h.Width())
	for y := range s.Rows {
		for x := range row {
			row[x] = h.Status(g, x, y).Code()
		}
		s.Rows[y] = string(row)
	}
	return s
}

// StartingMatrix flattens the rows into a starting matrix for a grid of the given size.
func (s *Snapshot) StartingMatrix(width, height int) (string, error) {
	if s.Width != width || s.Height != height || len(s.Rows) != height {
		return "", fmt.Errorf("%w: snapshot %dx%d, grid %dx%d", ErrSnapshotShape, s.Width, s.Height, width, height)
	}
	var b strings.Builder
	b.Grow(width * height)
	for y, r := range s.Rows {
		if len(r) != width {
			return "", fmt.Errorf("%w: row %d has %d cells", ErrSnapshotShape, y, len(r))
		}
		b.WriteString(r)
	}
	return b.String(), nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Generation)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Generation, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
