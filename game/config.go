package game

import (
	"time"

	"github.com/pthm-cable/meadow/config"
)

// Fallback screen dimensions when the config leaves them unset.
const (
	ScreenWidth  = 1280
	ScreenHeight = 800
)

// Side panel layout.
const (
	panelWidth  = 260
	panelMargin = 10
)

// Options configure a Game.
type Options struct {
	Config *config.Config

	// Headless drives playback from a Runner goroutine instead of the frame loop.
	Headless bool
	// StepInterval overrides the configured cycle time in headless mode when positive.
	StepInterval time.Duration

	// RecordsDir holds community records for configuration tokens. Empty disables them.
	RecordsDir string

	// StartFrom is a snapshot whose rows replace the starting matrix.
	StartFrom string
}

// cycleTime returns the playback interval of cfg.
func cycleTime(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Playback.CycleTime * float64(time.Second))
}
