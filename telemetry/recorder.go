package telemetry

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pthm-cable/meadow/succession"
)

// LogSink receives human-readable text and the persisted per-generation log lines.
type LogSink interface {
	Log(text string)
	AppendLogLine(row []string) error
	ClearLog() error
}

// AlertSink shows short messages to the user.
type AlertSink interface {
	Alert(text string)
}

// Publisher receives every visualized generation's stats.
type Publisher interface {
	Publish(stats GenerationStats)
}

// MultiLog fans out to several log sinks. AppendLogLine and ClearLog report the first error
// but always reach every sink.
type MultiLog []LogSink

func (m MultiLog) Log(text string) {
	for _, s := range m {
		s.Log(text)
	}
}

func (m MultiLog) AppendLogLine(row []string) error {
	var first error
	for _, s := range m {
		if err := s.AppendLogLine(row); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiLog) ClearLog() error {
	var first error
	for _, s := range m {
		if err := s.ClearLog(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Recorder computes the stats of each visualized generation and forwards them to the log,
// the stats file, bookmark alerts, and any publishers. It is driven by the playback
// controller and shares its goroutine.
type Recorder struct {
	names     []string
	log       LogSink
	out       *OutputManager
	alerts    AlertSink
	publish   []Publisher
	detector  *BookmarkDetector
	last      *GenerationStats
	snapshots bool
}

// NewRecorder creates a recorder. names is indexed 0..S; log and alerts may be nil.
func NewRecorder(names []string, log LogSink, alerts AlertSink) *Recorder {
	return &Recorder{
		names:    names,
		log:      log,
		alerts:   alerts,
		detector: NewBookmarkDetector(50),
	}
}

// SetOutput attaches the run output directory. When snapshots is set, every bookmark
// also saves a snapshot of its generation under <dir>/snapshots.
func (r *Recorder) SetOutput(om *OutputManager, snapshots bool) {
	r.out = om
	r.snapshots = snapshots
}

// AddPublisher registers a stats subscriber.
func (r *Recorder) AddPublisher(p Publisher) {
	r.publish = append(r.publish, p)
}

// SetNames replaces the species names after a reconfiguration.
func (r *Recorder) SetNames(names []string) {
	r.names = names
}

// Last returns the most recently recorded stats, or nil.
func (r *Recorder) Last() *GenerationStats {
	return r.last
}

// Visualized records generation g of h.
func (r *Recorder) Visualized(h *succession.History, g int) {
	stats := Compute(h, g, r.last)
	r.last = &stats
	slog.Debug("generation", "stats", stats)

	if r.log != nil {
		if err := r.log.AppendLogLine(stats.Row()); err != nil {
			slog.Warn("appending log line failed", "generation", g, "error", err)
		}
		r.log.Log(stats.Text(r.names))
	}
	if err := r.out.WriteStats(stats.Summary()); err != nil {
		slog.Warn("writing stats failed", "generation", g, "error", err)
	}

	for _, b := range r.detector.Check(stats) {
		b.LogBookmark()
		r.alert(fmt.Sprintf("Generation %d: %s", b.Generation, r.describe(b)))
		if r.snapshots && r.out != nil {
			snap := NewSnapshot(h, g, r.names)
			snap.Bookmark = &b
			if _, err := SaveSnapshot(snap, filepath.Join(r.out.Dir(), "snapshots")); err != nil {
				slog.Warn("saving snapshot failed", "generation", g, "error", err)
			}
		}
	}

	for _, p := range r.publish {
		p.Publish(stats)
	}
}

// Cleared forgets the previous generation and clears the log.
func (r *Recorder) Cleared() {
	r.last = nil
	r.detector.Reset()
	if r.log != nil {
		if err := r.log.ClearLog(); err != nil {
			slog.Warn("clearing log failed", "error", err)
		}
	}
	if err := r.out.ClearLog(); err != nil {
		slog.Warn("clearing output failed", "error", err)
	}
}

func (r *Recorder) alert(text string) {
	if r.alerts != nil {
		r.alerts.Alert(text)
	}
}

// describe names the species in a bookmark description when names are known.
func (r *Recorder) describe(b Bookmark) string {
	if b.Species <= 0 || b.Species >= len(r.names) {
		return b.Description
	}
	name := r.names[b.Species]
	switch b.Type {
	case BookmarkExtinction:
		return name + " disappeared from the meadow"
	case BookmarkRecolonisation:
		return name + " returned"
	case BookmarkDominance:
		return fmt.Sprintf("%s dominates the meadow", name)
	}
	return b.Description
}
