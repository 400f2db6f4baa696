package succession

import (
	"slices"
	"testing"
)

func TestNeighborCounts(t *testing.T) {
	// 3x3 grid, row-major:
	//   1 2 0
	//   N 1 2
	//   0 0 1
	grid := []Species{
		1, 2, Gap,
		Permanent, 1, 2,
		Gap, Gap, 1,
	}

	tests := []struct {
		name string
		x, y int
		want []int
	}{
		{"center", 1, 1, []int{3, 2, 2}},
		{"corner clipped", 0, 0, []int{0, 1, 1}},
		{"opposite corner", 2, 2, []int{1, 1, 1}},
		{"edge skips permanent", 0, 2, []int{1, 1, 0}},
		{"top edge", 1, 0, []int{1, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NeighborCounts(grid, 3, 3, tt.x, tt.y, make([]int, 3))
			if !slices.Equal(got, tt.want) {
				t.Errorf("NeighborCounts(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestNeighborCountsResetsDst(t *testing.T) {
	grid := []Species{Gap, Gap, Gap, Gap}
	dst := []int{9, 9}
	NeighborCounts(grid, 2, 2, 0, 0, dst)
	if !slices.Equal(dst, []int{3, 0}) {
		t.Errorf("dst = %v, want [3 0]", dst)
	}
}

func TestNeighborCountsNoWraparound(t *testing.T) {
	// A species on the far edge must not be seen from the opposite edge.
	grid := []Species{
		Gap, Gap, Gap, 1,
		Gap, Gap, Gap, 1,
		Gap, Gap, Gap, 1,
	}
	got := NeighborCounts(grid, 4, 3, 0, 1, make([]int, 2))
	if got[1] != 0 {
		t.Errorf("species 1 count at west edge = %d, want 0", got[1])
	}
	if got[0] != 5 {
		t.Errorf("gap count at west edge = %d, want 5", got[0])
	}
}
