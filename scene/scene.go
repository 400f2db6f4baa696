// Package scene stores the plants on display as ECS entities. It is the render sink
// the playback controller creates and destroys plants through.
package scene

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/playback"
	"github.com/pthm-cable/meadow/succession"
)

var (
	// ErrPlantGone is returned when destroying a plant that no longer exists.
	ErrPlantGone = errors.New("plant no longer exists")
	// ErrNotPlant is returned when asked to render a gap or permanent cell.
	ErrNotPlant = errors.New("not a plant species")
)

// Options control plant placement.
type Options struct {
	Natural bool  // Jitter plants inside their cell instead of planting in rows
	Seed    int64 // Seed for the placement jitter
}

// Scene holds rendered plants. Not safe for concurrent use.
type Scene struct {
	world   *ecs.World
	mapper  *ecs.Map2[components.Plot, components.Plant]
	filter  *ecs.Filter2[components.Plot, components.Plant]
	plants  map[playback.Handle]ecs.Entity
	next    playback.Handle
	natural bool
	rng     *rand.Rand
}

// New creates an empty scene.
func New(opts Options) *Scene {
	world := ecs.NewWorld()
	return &Scene{
		world:   world,
		mapper:  ecs.NewMap2[components.Plot, components.Plant](world),
		filter:  ecs.NewFilter2[components.Plot, components.Plant](world),
		plants:  make(map[playback.Handle]ecs.Entity),
		natural: opts.Natural,
		rng:     rand.New(rand.NewSource(opts.Seed)),
	}
}

// CreatePlant renders a plant of species s at cell (x, y).
func (s *Scene) CreatePlant(x, y int, sp succession.Species) (playback.Handle, error) {
	if !sp.IsOccupied() {
		return 0, fmt.Errorf("%w: %v at (%d, %d)", ErrNotPlant, sp, x, y)
	}

	plot := components.Plot{X: x, Y: y}
	plant := components.Plant{Species: sp}
	if s.natural {
		plant.OffsetX = s.rng.Float32() - 0.5
		plant.OffsetY = s.rng.Float32() - 0.5
	}

	s.next++
	s.plants[s.next] = s.mapper.NewEntity(&plot, &plant)
	return s.next, nil
}

// DestroyPlant removes a rendered plant.
func (s *Scene) DestroyPlant(h playback.Handle) error {
	e, ok := s.plants[h]
	if !ok {
		return fmt.Errorf("%w: handle %d", ErrPlantGone, h)
	}
	delete(s.plants, h)
	if !s.world.Alive(e) {
		return fmt.Errorf("%w: handle %d", ErrPlantGone, h)
	}
	s.world.RemoveEntity(e)
	return nil
}

// RemoveExternally deletes a plant behind the controller's back, the way a host
// might. The handle stays registered so a later DestroyPlant reports ErrPlantGone.
func (s *Scene) RemoveExternally(h playback.Handle) bool {
	e, ok := s.plants[h]
	if !ok || !s.world.Alive(e) {
		return false
	}
	s.world.RemoveEntity(e)
	return true
}

// Plant returns the plant behind a handle.
func (s *Scene) Plant(h playback.Handle) (components.Plot, components.Plant, bool) {
	e, ok := s.plants[h]
	if !ok || !s.world.Alive(e) {
		return components.Plot{}, components.Plant{}, false
	}
	plot, plant := s.mapper.Get(e)
	return *plot, *plant, true
}

// Each calls fn for every rendered plant. fn must not create or destroy plants.
func (s *Scene) Each(fn func(components.Plot, components.Plant)) {
	query := s.filter.Query()
	for query.Next() {
		plot, plant := query.Get()
		fn(*plot, *plant)
	}
}

// Count returns the number of rendered plants.
func (s *Scene) Count() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Clear removes every plant and forgets all handles.
func (s *Scene) Clear() {
	for h, e := range s.plants {
		if s.world.Alive(e) {
			s.world.RemoveEntity(e)
		}
		delete(s.plants, h)
	}
}
