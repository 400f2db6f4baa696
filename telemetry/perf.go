package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase is one timed part of a playback step.
type Phase int

const (
	PhaseVisualize Phase = iota // Diffing and render sink calls, stats included
	PhaseNotify                 // Step callbacks: alerts, websocket, chart buffers
	numPhases
)

func (p Phase) String() string {
	switch p {
	case PhaseVisualize:
		return "visualize"
	case PhaseNotify:
		return "notify"
	}
	return "unknown"
}

// StepTimer keeps step durations over a rolling window, in microseconds.
type StepTimer struct {
	window int
	steps  []float64
	phases [numPhases][]float64
	next   int
	count  int

	start      time.Time
	phaseStart time.Time
	phase      Phase
	current    [numPhases]float64

	lastFrame time.Time
	frame     time.Duration
}

// NewStepTimer creates a timer averaging over the last window steps.
func NewStepTimer(window int) *StepTimer {
	if window < 1 {
		window = 60
	}
	t := &StepTimer{window: window, steps: make([]float64, window), phase: -1}
	for p := range t.phases {
		t.phases[p] = make([]float64, window)
	}
	return t
}

// Begin starts timing a step.
func (t *StepTimer) Begin() {
	t.start = time.Now()
	t.phase = -1
	t.current = [numPhases]float64{}
}

// Enter closes the running phase, if any, and starts p.
func (t *StepTimer) Enter(p Phase) {
	now := time.Now()
	t.closePhase(now)
	t.phaseStart = now
	t.phase = p
}

// End finishes the step and records it.
func (t *StepTimer) End() {
	now := time.Now()
	t.closePhase(now)
	t.steps[t.next] = micros(now.Sub(t.start))
	for p := range t.phases {
		t.phases[p][t.next] = t.current[p]
	}
	t.next = (t.next + 1) % t.window
	if t.count < t.window {
		t.count++
	}
}

func (t *StepTimer) closePhase(now time.Time) {
	if t.phase >= 0 {
		t.current[t.phase] += micros(now.Sub(t.phaseStart))
		t.phase = -1
	}
}

// Frame records a rendered frame in graphical mode.
func (t *StepTimer) Frame() {
	now := time.Now()
	if !t.lastFrame.IsZero() {
		t.frame = now.Sub(t.lastFrame)
	}
	t.lastFrame = now
}

func micros(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

// StepStats aggregates the timer window.
type StepStats struct {
	Steps       int
	MeanUS      float64
	StdUS       float64
	MinUS       float64
	MaxUS       float64
	PhasePct    [numPhases]float64
	StepsPerSec float64
	FPS         float64
}

// Stats computes statistics over the recorded window.
func (t *StepTimer) Stats() StepStats {
	s := StepStats{Steps: t.count}
	if t.frame > 0 {
		s.FPS = float64(time.Second) / float64(t.frame)
	}
	if t.count == 0 {
		return s
	}

	steps := t.steps[:t.count]
	s.MeanUS, s.StdUS = stat.MeanStdDev(steps, nil)
	if t.count == 1 {
		s.StdUS = 0
	}
	s.MinUS = floats.Min(steps)
	s.MaxUS = floats.Max(steps)
	if s.MeanUS > 0 {
		s.StepsPerSec = 1e6 / s.MeanUS
		for p := range t.phases {
			s.PhasePct[p] = stat.Mean(t.phases[p][:t.count], nil) / s.MeanUS * 100
		}
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s StepStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("steps", s.Steps),
		slog.Float64("mean_us", s.MeanUS),
		slog.Float64("std_us", s.StdUS),
		slog.Float64("max_us", s.MaxUS),
		slog.Float64("steps_per_sec", s.StepsPerSec),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for p := Phase(0); p < numPhases; p++ {
		attrs = append(attrs, slog.Float64(p.String()+"_pct", s.PhasePct[p]))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the step statistics.
func (s StepStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// StepStatsCSV is a flat struct for perf.csv.
type StepStatsCSV struct {
	Generation   int     `csv:"generation"`
	MeanUS       float64 `csv:"mean_us"`
	StdUS        float64 `csv:"std_us"`
	MinUS        float64 `csv:"min_us"`
	MaxUS        float64 `csv:"max_us"`
	StepsPerSec  float64 `csv:"steps_per_sec"`
	FPS          float64 `csv:"fps"`
	VisualizePct float64 `csv:"visualize_pct"`
	NotifyPct    float64 `csv:"notify_pct"`
}

// ToCSV flattens the stats for the given generation.
func (s StepStats) ToCSV(generation int) StepStatsCSV {
	return StepStatsCSV{
		Generation:   generation,
		MeanUS:       s.MeanUS,
		StdUS:        s.StdUS,
		MinUS:        s.MinUS,
		MaxUS:        s.MaxUS,
		StepsPerSec:  s.StepsPerSec,
		FPS:          s.FPS,
		VisualizePct: s.PhasePct[PhaseVisualize],
		NotifyPct:    s.PhasePct[PhaseNotify],
	}
}
