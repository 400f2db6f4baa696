package playback

import (
	"context"
	"testing"
	"time"

	"github.com/pthm-cable/meadow/telemetry"
)

func TestRunnerPlaysToEnd(t *testing.T) {
	sink := newFakeSink(testW)
	c := NewController(&fakeSim{hist: buildHistory(t)}, sink, nil, Options{Generations: testGens, Seed: 1})
	r := NewRunner(c, time.Millisecond)

	boundary := make(chan Action, 1)
	var stepped []int
	r.OnStep(func(a Action) {
		if a.Boundary {
			boundary <- a
			return
		}
		stepped = append(stepped, a.Generation)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	if err := r.Do(ctx, func(c *Controller) error { return c.Reset(ctx) }); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := r.Do(ctx, func(c *Controller) error { return c.Forward() }); err != nil {
		t.Fatalf("forward: %v", err)
	}

	select {
	case a := <-boundary:
		if a.Generation != testGens-1 {
			t.Errorf("boundary at %d, want %d", a.Generation, testGens-1)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for playback to finish")
	}

	var state State
	if err := r.Do(ctx, func(c *Controller) error { state = c.State(); return nil }); err != nil {
		t.Fatal(err)
	}
	if state != Stopped {
		t.Errorf("state after boundary = %v, want stopped", state)
	}
	for i, g := range stepped {
		if g != i+1 {
			t.Fatalf("stepped generations = %v, want 1..%d in order", stepped, testGens-1)
		}
	}

	cancel()
	if err := <-done; err != context.Canceled && err != context.DeadlineExceeded {
		t.Errorf("Run() returned %v", err)
	}
}

func TestRunnerDoAfterCancel(t *testing.T) {
	c := NewController(&fakeSim{}, newFakeSink(testW), nil, Options{Generations: testGens})
	r := NewRunner(c, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Do(ctx, func(*Controller) error { return nil }); err != context.Canceled {
		t.Errorf("Do() on cancelled context = %v, want context.Canceled", err)
	}
}

func TestFrameTicker(t *testing.T) {
	f := NewFrameTicker(100 * time.Millisecond)

	if f.Advance(60 * time.Millisecond) {
		t.Error("ticked before one interval elapsed")
	}
	if !f.Advance(60 * time.Millisecond) {
		t.Error("did not tick after one interval elapsed")
	}
	// 20ms carried over.
	if !f.Advance(80 * time.Millisecond) {
		t.Error("carry-over not applied")
	}
	// A long stall fires once and drops the backlog.
	if !f.Advance(time.Second) {
		t.Error("did not tick after stall")
	}
	if f.Advance(10 * time.Millisecond) {
		t.Error("backlog ticks queued after stall")
	}
}

func TestRunnerTimesSteps(t *testing.T) {
	c := NewController(&fakeSim{hist: buildHistory(t)}, newFakeSink(testW), nil, Options{Generations: testGens, Seed: 1})
	r := NewRunner(c, time.Millisecond)
	st := telemetry.NewStepTimer(100)
	r.SetTimer(st)

	done := make(chan struct{})
	r.OnStep(func(a Action) {
		if a.Boundary {
			close(done)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go r.Run(ctx)

	if err := r.Do(ctx, func(c *Controller) error {
		if err := c.Reset(ctx); err != nil {
			return err
		}
		return c.Forward()
	}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timed out")
	}

	var steps int
	r.Do(ctx, func(*Controller) error { steps = st.Stats().Steps; return nil })
	// testGens-1 forward steps plus the boundary tick.
	if steps != testGens {
		t.Errorf("timed %d steps, want %d", steps, testGens)
	}
}
