package succession

// NeighborhoodSize is the number of cells in a full Moore neighborhood.
const NeighborhoodSize = 8

// NeighborCounts tallies the species of the up to eight cells around (x, y).
// Edges are clipped, not wrapped. Permanent neighbors contribute nothing; index 0 counts gaps.
// dst must have room for every species index present in grid.
func NeighborCounts(grid []Species, w, h, x, y int, dst []int) []int {
	clear(dst)
	for dy := -1; dy <= 1; dy++ {
		ny := y + dy
		if ny < 0 || ny >= h {
			continue
		}
		row := ny * w
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := x + dx
			if nx < 0 || nx >= w {
				continue
			}
			s := grid[row+nx]
			if s.IsPermanent() {
				continue
			}
			dst[s]++
		}
	}
	return dst
}
