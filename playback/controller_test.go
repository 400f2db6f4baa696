package playback

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/pthm-cable/meadow/environment"
	"github.com/pthm-cable/meadow/succession"
)

var errGone = errors.New("plant already removed")

type plant struct {
	x, y int
	s    succession.Species
}

type fakeSink struct {
	next       Handle
	plants     map[Handle]plant
	touched    []int // cell indexes passed to create/destroy
	width      int
	failCreate bool
}

func newFakeSink(width int) *fakeSink {
	return &fakeSink{plants: make(map[Handle]plant), width: width}
}

func (f *fakeSink) CreatePlant(x, y int, s succession.Species) (Handle, error) {
	f.touched = append(f.touched, y*f.width+x)
	if f.failCreate {
		return 0, errors.New("create failed")
	}
	f.next++
	f.plants[f.next] = plant{x, y, s}
	return f.next, nil
}

func (f *fakeSink) DestroyPlant(h Handle) error {
	p, ok := f.plants[h]
	if !ok {
		return errGone
	}
	f.touched = append(f.touched, p.y*f.width+p.x)
	delete(f.plants, h)
	return nil
}

// grid returns what the sink currently shows, gaps where nothing is rendered.
func (f *fakeSink) grid(n int) []succession.Species {
	out := make([]succession.Species, n)
	for _, p := range f.plants {
		out[p.y*f.width+p.x] = p.s
	}
	return out
}

type fakeSim struct {
	hist  *succession.History
	err   error
	calls int
}

func (f *fakeSim) Run(ctx context.Context, generations int, seed int64) (*succession.History, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.hist, nil
}

type countingStats struct {
	visualized []int
	cleared    int
}

func (s *countingStats) Visualized(h *succession.History, g int) { s.visualized = append(s.visualized, g) }
func (s *countingStats) Cleared() { s.cleared++ }

const testW, testH, testGens = 3, 2, 8

// buildHistory fills a small history with a shifting pattern; cell 2 is permanent.
func buildHistory(t *testing.T) *succession.History {
	t.Helper()
	h, err := succession.NewHistory(testW, testH, 2, testGens, 0)
	if err != nil {
		t.Fatal(err)
	}
	for g := 0; g < testGens; g++ {
		grid := h.Generation(g)
		for i := range grid {
			if i == 2 {
				grid[i] = succession.Permanent
				continue
			}
			grid[i] = succession.Species((g*i + i) % 3)
		}
	}
	return h
}

func plantable(h *succession.History, g int, got []succession.Species) bool {
	for i, s := range h.Generation(g) {
		if s.IsPermanent() {
			continue
		}
		if got[i] != s {
			return false
		}
	}
	return true
}

func newTestController(t *testing.T) (*Controller, *fakeSink, *countingStats) {
	t.Helper()
	sink := newFakeSink(testW)
	stats := &countingStats{}
	c := NewController(&fakeSim{hist: buildHistory(t)}, sink, stats, Options{Generations: testGens, Seed: 1})
	if err := c.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	return c, sink, stats
}

func TestCommandsBeforeReset(t *testing.T) {
	c := NewController(&fakeSim{}, newFakeSink(testW), nil, Options{Generations: testGens})

	checks := map[string]error{}
	checks["forward"] = c.Forward()
	checks["reverse"] = c.Reverse()
	checks["stop"] = c.Stop()
	_, checks["step"] = c.Step(1)
	_, checks["step to"] = c.StepTo(3)
	_, _, checks["now"] = c.Now()

	for name, err := range checks {
		if !errors.Is(err, ErrNotSimulated) {
			t.Errorf("%s before reset: error = %v, want ErrNotSimulated", name, err)
		}
	}
	if c.State() != Stopped || c.Current() != 0 {
		t.Errorf("state changed: %v at %d", c.State(), c.Current())
	}
	if act, err := c.Tick(); err != nil || act.Stepped {
		t.Errorf("Tick() while stopped = %+v, %v", act, err)
	}
}

func TestResetShowsFirstGeneration(t *testing.T) {
	c, sink, stats := newTestController(t)
	hist := c.History()
	if !plantable(hist, 0, sink.grid(testW*testH)) {
		t.Errorf("sink shows %v, want generation 0 %v", sink.grid(testW*testH), hist.Generation(0))
	}
	if c.Current() != 0 || c.State() != Stopped {
		t.Errorf("after reset: generation %d state %v", c.Current(), c.State())
	}
	if !slices.Equal(stats.visualized, []int{0}) {
		t.Errorf("visualized = %v, want [0]", stats.visualized)
	}
}

func TestStepIsDiffMinimal(t *testing.T) {
	c, sink, _ := newTestController(t)
	hist := c.History()

	for g := 1; g < testGens; g++ {
		prev := slices.Clone(hist.Generation(g - 1))
		sink.touched = nil
		if _, err := c.Step(1); err != nil {
			t.Fatal(err)
		}
		for _, i := range sink.touched {
			if prev[i] == hist.Generation(g)[i] {
				t.Fatalf("generation %d: sink touched unchanged cell %d (%v)", g, i, prev[i])
			}
		}
		for i := range prev {
			if c.Displayed(i) != hist.Generation(g)[i] {
				t.Fatalf("generation %d: displayed[%d] = %v, want %v", g, i, c.Displayed(i), hist.Generation(g)[i])
			}
		}
		if !plantable(hist, g, sink.grid(testW*testH)) {
			t.Fatalf("generation %d: sink shows %v", g, sink.grid(testW*testH))
		}
	}
}

func TestForwardBackwardReproducesDisplay(t *testing.T) {
	c, sink, _ := newTestController(t)
	if _, err := c.StepTo(5); err != nil {
		t.Fatal(err)
	}
	first := sink.grid(testW * testH)

	if _, err := c.Step(1); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Step(-1); err != nil {
		t.Fatal(err)
	}
	if got := sink.grid(testW * testH); !slices.Equal(got, first) {
		t.Errorf("display after 5->6->5 = %v, want %v", got, first)
	}
	if c.Current() != 5 {
		t.Errorf("Current() = %d, want 5", c.Current())
	}
}

func TestTickStopsAtBoundary(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.Forward(); err != nil {
		t.Fatal(err)
	}
	if err := c.Forward(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Forward() = %v, want ErrAlreadyRunning", err)
	}

	steps := 0
	for {
		act, err := c.Tick()
		if err != nil {
			t.Fatal(err)
		}
		if act.Boundary {
			break
		}
		steps++
		if steps > testGens {
			t.Fatal("playback never reached the last generation")
		}
	}
	if steps != testGens-1 {
		t.Errorf("stepped %d times, want %d", steps, testGens-1)
	}
	if c.State() != Stopped || c.Current() != testGens-1 {
		t.Errorf("at boundary: state %v generation %d", c.State(), c.Current())
	}
	if err := c.Stop(); !errors.Is(err, ErrAlreadyStopped) {
		t.Errorf("Stop() at boundary = %v, want ErrAlreadyStopped", err)
	}

	if err := c.Reverse(); err != nil {
		t.Fatal(err)
	}
	act, _ := c.Tick()
	if !act.Stepped || act.Generation != testGens-2 || c.State() != SteppingBackward {
		t.Errorf("reverse tick = %+v state %v", act, c.State())
	}
}

func TestStepToClamps(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.Forward(); err != nil {
		t.Fatal(err)
	}
	act, err := c.StepTo(100)
	if err != nil {
		t.Fatal(err)
	}
	if act.Generation != testGens-1 || !act.Boundary {
		t.Errorf("StepTo(100) = %+v", act)
	}
	if c.State() != Stopped {
		t.Errorf("state after StepTo(100) = %v, want stopped", c.State())
	}

	if err := c.Reverse(); err != nil {
		t.Fatal(err)
	}
	act, _ = c.StepTo(-3)
	if act.Generation != 0 || !act.Boundary {
		t.Errorf("StepTo(-3) = %+v", act)
	}
	if c.State() != Stopped {
		t.Errorf("state after StepTo(-3) = %v, want stopped", c.State())
	}

	if err := c.Forward(); err != nil {
		t.Fatal(err)
	}
	act, _ = c.StepTo(2)
	if act.Boundary || c.State() != SteppingForward {
		t.Errorf("in-range StepTo(2) = %+v state %v", act, c.State())
	}
}

func TestSinkFailuresAreIgnored(t *testing.T) {
	c, sink, _ := newTestController(t)
	// Remove every plant behind the controller's back.
	clear(sink.plants)
	sink.failCreate = true

	if _, err := c.Step(1); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	hist := c.History()
	for i, s := range hist.Generation(1) {
		if c.Displayed(i) != s {
			t.Errorf("displayed[%d] = %v, want %v", i, c.Displayed(i), s)
		}
	}
}

func TestClearKeepsHistory(t *testing.T) {
	c, sink, stats := newTestController(t)
	if _, err := c.StepTo(3); err != nil {
		t.Fatal(err)
	}
	c.Clear()
	if len(sink.plants) != 0 {
		t.Errorf("%d plants left after Clear", len(sink.plants))
	}
	if stats.cleared == 0 {
		t.Error("stats recorder not cleared")
	}
	if _, err := c.Step(1); err != nil {
		t.Fatal(err)
	}
	if !plantable(c.History(), 4, sink.grid(testW*testH)) {
		t.Errorf("display after clear and step = %v", sink.grid(testW*testH))
	}
}

func TestResetFailureKeepsPrevious(t *testing.T) {
	c, sink, _ := newTestController(t)
	before := sink.grid(testW * testH)
	hist := c.History()

	c.sim = &fakeSim{err: succession.ErrHistoryTooLarge}
	if err := c.Reset(context.Background()); !errors.Is(err, succession.ErrHistoryTooLarge) {
		t.Fatalf("Reset() error = %v, want ErrHistoryTooLarge", err)
	}
	if c.History() != hist || !slices.Equal(sink.grid(testW*testH), before) {
		t.Error("failed reset changed the display")
	}
}

func TestReconfigureDropsHistory(t *testing.T) {
	c, sink, _ := newTestController(t)
	c.Reconfigure(&fakeSim{}, Options{Generations: 3})
	if len(sink.plants) != 0 {
		t.Errorf("%d plants left after Reconfigure", len(sink.plants))
	}
	if err := c.Forward(); !errors.Is(err, ErrNotSimulated) {
		t.Errorf("Forward() after Reconfigure = %v, want ErrNotSimulated", err)
	}
}

func TestPlaybackOfSimulatedHistory(t *testing.T) {
	params := succession.Params{
		Width:   6,
		Height:  5,
		Species: []succession.SpeciesParams{{Lifespan: 5}, {Lifespan: 8}},
		Replacement: [][]float64{
			{0, 0, 0},
			{0.6, 0, 0.3},
			{0.4, 0.5, 0},
		},
		Weights:     succession.DefaultWeights(),
		Disturbance: 0.05,
	}
	env := &environment.Uniform{Width: 6, Height: 5, Ground: 25, Flooded: map[[2]int]bool{{2, 2}: true}}
	d, err := succession.NewDriver(params, env)
	if err != nil {
		t.Fatal(err)
	}

	sink := newFakeSink(6)
	c := NewController(d, sink, nil, Options{Generations: 25, Seed: 8})
	if err := c.Reset(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.Forward(); err != nil {
		t.Fatal(err)
	}
	for c.State() == SteppingForward {
		act, err := c.Tick()
		if err != nil {
			t.Fatal(err)
		}
		if act.Stepped && !plantable(c.History(), act.Generation, sink.grid(30)) {
			t.Fatalf("generation %d: display diverged from history", act.Generation)
		}
	}
	if c.Current() != 24 {
		t.Errorf("stopped at %d, want 24", c.Current())
	}
}
