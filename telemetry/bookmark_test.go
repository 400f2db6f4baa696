package telemetry

import "testing"

func genStats(g int, counts ...int) GenerationStats {
	total := 0
	for _, c := range counts {
		total += c
	}
	s := GenerationStats{
		Generation:  g,
		TotalActive: total,
		Counts:      counts,
		Percent:     make([]float64, len(counts)),
	}
	occupied := 0
	for k, c := range counts {
		s.Percent[k] = float64(c) / float64(total) * 100
		if k > 0 {
			occupied += c
		}
	}
	s.Occupancy = float64(occupied) / float64(total)
	return s
}

func hasBookmark(bms []Bookmark, typ BookmarkType, species int) bool {
	for _, b := range bms {
		if b.Type == typ && b.Species == species {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(genStats(0, 10, 5, 5))
	bd.Check(genStats(1, 12, 3, 5))

	bms := bd.Check(genStats(2, 15, 0, 5))
	if !hasBookmark(bms, BookmarkExtinction, 1) {
		t.Errorf("expected extinction bookmark for species 1, got %+v", bms)
	}

	bms = bd.Check(genStats(3, 14, 1, 5))
	if !hasBookmark(bms, BookmarkRecolonisation, 1) {
		t.Errorf("expected recolonisation bookmark for species 1, got %+v", bms)
	}
}

func TestBookmarkDetector_Dominance(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(genStats(0, 10, 5, 5))

	bms := bd.Check(genStats(1, 4, 12, 4))
	if !hasBookmark(bms, BookmarkDominance, 1) {
		t.Errorf("expected dominance bookmark for species 1, got %+v", bms)
	}

	// Staying dominant does not re-trigger.
	bms = bd.Check(genStats(2, 4, 13, 3))
	if hasBookmark(bms, BookmarkDominance, 1) {
		t.Error("dominance bookmark repeated while species stayed dominant")
	}
}

func TestBookmarkDetector_IgnoresJumps(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(genStats(0, 10, 5, 5))

	// Jumping ahead restarts tracking instead of comparing unrelated generations.
	if bms := bd.Check(genStats(40, 20, 0, 0)); len(bms) != 0 {
		t.Errorf("bookmarks after jump: %+v", bms)
	}
	// Stepping backward too.
	if bms := bd.Check(genStats(39, 10, 5, 5)); len(bms) != 0 {
		t.Errorf("bookmarks after backward step: %+v", bms)
	}
}

func TestBookmarkDetector_StableCommunity(t *testing.T) {
	bd := NewBookmarkDetector(5)

	var found int
	for g := 0; g < 12; g++ {
		s := genStats(g, 10, 5, 5)
		s.Diversity = 0.69
		for _, b := range bd.Check(s) {
			if b.Type == BookmarkStableCommunity {
				found++
			}
		}
	}
	if found != 1 {
		t.Errorf("stable community reported %d times, want 1", found)
	}
}
