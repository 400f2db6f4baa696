package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkExtinction      BookmarkType = "extinction"
	BookmarkRecolonisation  BookmarkType = "recolonisation"
	BookmarkDominance       BookmarkType = "dominance"
	BookmarkStableCommunity BookmarkType = "stable_community"
)

// Bookmark represents an automatically detected moment in a run.
type Bookmark struct {
	Type        BookmarkType
	Generation  int
	Species     int // 0 when the bookmark concerns the whole community
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"species", b.Species,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable succession events in forward playback.
type BookmarkDetector struct {
	// Rolling diversity history (circular buffer)
	history     []float64
	historySize int
	historyIdx  int
	historyFull bool

	lastGeneration int
	lastCounts     []int
	dominant       []bool // species currently above the dominance threshold
	stableReported bool

	// DominanceShare is the share of plantable cells (percent) that makes a species dominant.
	DominanceShare float64
	// StableTolerance bounds diversity variation (nats) over the whole history window.
	StableTolerance float64
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
	}
	return &BookmarkDetector{
		history:         make([]float64, historySize),
		historySize:     historySize,
		lastGeneration:  -1,
		DominanceShare:  50,
		StableTolerance: 0.02,
	}
}

// Reset forgets all history; call it when the display is cleared.
func (bd *BookmarkDetector) Reset() {
	bd.historyIdx = 0
	bd.historyFull = false
	bd.lastGeneration = -1
	bd.lastCounts = nil
	bd.dominant = nil
	bd.stableReported = false
}

// Check analyzes the latest stats and returns any triggered bookmarks.
// Only consecutive forward steps are compared; jumps and backward steps restart tracking.
func (bd *BookmarkDetector) Check(stats GenerationStats) []Bookmark {
	if stats.Generation != bd.lastGeneration+1 || len(stats.Counts) != len(bd.lastCounts) {
		bd.Reset()
		bd.remember(stats)
		return nil
	}

	var bookmarks []Bookmark
	for k := 1; k < len(stats.Counts); k++ {
		before, now := bd.lastCounts[k], stats.Counts[k]
		switch {
		case before > 0 && now == 0:
			bookmarks = append(bookmarks, Bookmark{
				Type:        BookmarkExtinction,
				Generation:  stats.Generation,
				Species:     k,
				Description: fmt.Sprintf("Species %d disappeared from the meadow", k),
			})
		case before == 0 && now > 0:
			bookmarks = append(bookmarks, Bookmark{
				Type:        BookmarkRecolonisation,
				Generation:  stats.Generation,
				Species:     k,
				Description: fmt.Sprintf("Species %d returned with %d plants", k, now),
			})
		}

		above := stats.Percent[k] >= bd.DominanceShare
		if above && !bd.dominant[k] {
			bookmarks = append(bookmarks, Bookmark{
				Type:        BookmarkDominance,
				Generation:  stats.Generation,
				Species:     k,
				Description: fmt.Sprintf("Species %d covers %.0f%% of the meadow", k, stats.Percent[k]),
			})
		}
		bd.dominant[k] = above
	}

	bd.remember(stats)
	if b := bd.checkStable(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	return bookmarks
}

func (bd *BookmarkDetector) remember(stats GenerationStats) {
	bd.lastGeneration = stats.Generation
	bd.lastCounts = append(bd.lastCounts[:0], stats.Counts...)
	if len(bd.dominant) != len(stats.Counts) {
		bd.dominant = make([]bool, len(stats.Counts))
		for k := 1; k < len(stats.Counts); k++ {
			bd.dominant[k] = stats.Percent[k] >= bd.DominanceShare
		}
	}

	bd.history[bd.historyIdx] = stats.Diversity
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) checkStable(stats GenerationStats) *Bookmark {
	if !bd.historyFull || stats.Occupancy == 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, d := range bd.history {
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	if hi-lo > bd.StableTolerance {
		bd.stableReported = false
		return nil
	}
	if bd.stableReported {
		return nil
	}
	bd.stableReported = true
	return &Bookmark{
		Type:        BookmarkStableCommunity,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("Community diversity held at %.2f for %d generations", stats.Diversity, bd.historySize),
	}
}
