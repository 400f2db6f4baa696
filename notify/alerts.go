package notify

import (
	"log/slog"
	"sync"
)

// Alerter receives short user-facing messages.
type Alerter interface {
	Alert(text string)
}

// SlogAlerts writes alerts to the structured log.
type SlogAlerts struct{}

func (SlogAlerts) Alert(text string) {
	slog.Info("alert", "text", text)
}

// Multi fans an alert out to several alerters.
type Multi []Alerter

func (m Multi) Alert(text string) {
	for _, a := range m {
		a.Alert(text)
	}
}

// Feed keeps the most recent alerts for display. Safe for concurrent use.
type Feed struct {
	mu    sync.Mutex
	items []string
	limit int
}

// NewFeed creates a feed holding up to limit alerts.
func NewFeed(limit int) *Feed {
	if limit < 1 {
		limit = 8
	}
	return &Feed{limit: limit}
}

func (f *Feed) Alert(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == f.limit {
		copy(f.items, f.items[1:])
		f.items = f.items[:f.limit-1]
	}
	f.items = append(f.items, text)
}

// Recent returns the alerts oldest first.
func (f *Feed) Recent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.items...)
}
