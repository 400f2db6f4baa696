package scene

import (
	"context"
	"errors"
	"testing"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/playback"
	"github.com/pthm-cable/meadow/succession"
)

var _ playback.RenderSink = (*Scene)(nil)

func TestCreateDestroy(t *testing.T) {
	s := New(Options{})

	h1, err := s.CreatePlant(1, 2, succession.Occupied(1))
	if err != nil {
		t.Fatalf("CreatePlant() error = %v", err)
	}
	h2, err := s.CreatePlant(3, 0, succession.Occupied(2))
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Fatal("handles not unique")
	}
	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2", s.Count())
	}

	plot, plant, ok := s.Plant(h1)
	if !ok || plot != (components.Plot{X: 1, Y: 2}) || plant.Species != succession.Occupied(1) {
		t.Errorf("Plant(h1) = %+v %+v %v", plot, plant, ok)
	}
	if plant.OffsetX != 0 || plant.OffsetY != 0 {
		t.Error("row placement must not jitter")
	}

	if err := s.DestroyPlant(h1); err != nil {
		t.Fatalf("DestroyPlant() error = %v", err)
	}
	if err := s.DestroyPlant(h1); !errors.Is(err, ErrPlantGone) {
		t.Errorf("second DestroyPlant() = %v, want ErrPlantGone", err)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestCreateRejectsNonPlants(t *testing.T) {
	s := New(Options{})
	for _, sp := range []succession.Species{succession.Gap, succession.Permanent} {
		if _, err := s.CreatePlant(0, 0, sp); !errors.Is(err, ErrNotPlant) {
			t.Errorf("CreatePlant(%v) = %v, want ErrNotPlant", sp, err)
		}
	}
}

func TestRemoveExternally(t *testing.T) {
	s := New(Options{})
	h, _ := s.CreatePlant(0, 0, succession.Occupied(1))

	if !s.RemoveExternally(h) {
		t.Fatal("RemoveExternally() = false")
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d after external removal", s.Count())
	}
	if err := s.DestroyPlant(h); !errors.Is(err, ErrPlantGone) {
		t.Errorf("DestroyPlant() after external removal = %v, want ErrPlantGone", err)
	}
}

func TestNaturalPlacement(t *testing.T) {
	s := New(Options{Natural: true, Seed: 3})
	for i := 0; i < 50; i++ {
		if _, err := s.CreatePlant(i%5, i/5, succession.Occupied(1)); err != nil {
			t.Fatal(err)
		}
	}

	jittered := false
	s.Each(func(_ components.Plot, p components.Plant) {
		if p.OffsetX < -0.5 || p.OffsetX >= 0.5 || p.OffsetY < -0.5 || p.OffsetY >= 0.5 {
			t.Errorf("offset (%v, %v) outside the cell", p.OffsetX, p.OffsetY)
		}
		if p.OffsetX != 0 || p.OffsetY != 0 {
			jittered = true
		}
	})
	if !jittered {
		t.Error("natural placement produced no jitter")
	}
}

func TestClear(t *testing.T) {
	s := New(Options{})
	var handles []playback.Handle
	for i := 0; i < 4; i++ {
		h, _ := s.CreatePlant(i, 0, succession.Occupied(1))
		handles = append(handles, h)
	}
	s.Clear()
	if s.Count() != 0 {
		t.Errorf("Count() = %d after Clear", s.Count())
	}
	if err := s.DestroyPlant(handles[0]); !errors.Is(err, ErrPlantGone) {
		t.Errorf("DestroyPlant() after Clear = %v, want ErrPlantGone", err)
	}
}

// The controller keeps the display consistent through a real scene.
func TestControllerDrivesScene(t *testing.T) {
	h, err := succession.NewHistory(3, 1, 2, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	copy(h.Generation(0), []succession.Species{1, 2, 0})
	copy(h.Generation(1), []succession.Species{1, 0, 2})
	copy(h.Generation(2), []succession.Species{0, 0, 0})

	s := New(Options{})
	c := playback.NewController(staticSim{h}, s, nil, playback.Options{Generations: 3})
	if err := c.Reset(t.Context()); err != nil {
		t.Fatal(err)
	}
	if s.Count() != 2 {
		t.Errorf("gen 0 plants = %d, want 2", s.Count())
	}
	if _, err := c.Step(1); err != nil {
		t.Fatal(err)
	}
	if s.Count() != 2 {
		t.Errorf("gen 1 plants = %d, want 2", s.Count())
	}
	if _, err := c.Step(1); err != nil {
		t.Fatal(err)
	}
	if s.Count() != 0 {
		t.Errorf("gen 2 plants = %d, want 0", s.Count())
	}
}

type staticSim struct{ h *succession.History }

func (s staticSim) Run(ctx context.Context, generations int, seed int64) (*succession.History, error) {
	return s.h, nil
}
