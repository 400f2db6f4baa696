// Package config provides configuration loading and access for the meadow simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/meadow/environment"
	"github.com/pthm-cable/meadow/succession"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen         ScreenConfig     `yaml:"screen"`
	Grid           GridConfig       `yaml:"grid"`
	Simulation     SimulationConfig `yaml:"simulation"`
	Species        []SpeciesConfig  `yaml:"species"`
	StartingMatrix string           `yaml:"starting_matrix"`
	Terrain        TerrainConfig    `yaml:"terrain"`
	Playback       PlaybackConfig   `yaml:"playback"`
	Telemetry      TelemetryConfig  `yaml:"telemetry"`
	LogStore       LogStoreConfig   `yaml:"logstore"`
	Notify         NotifyConfig     `yaml:"notify"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for graphical mode.
type ScreenConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	TargetFPS  int `yaml:"target_fps"`
	CellPixels int `yaml:"cell_pixels"` // Size of one grid cell on screen
}

// GridConfig holds the community matrix layout.
type GridConfig struct {
	Width   int     `yaml:"width"`    // Cells along x
	Height  int     `yaml:"height"`   // Cells along y
	XOrigin float64 `yaml:"x_origin"` // Region x coordinate of cell (0,0)
	YOrigin float64 `yaml:"y_origin"` // Region y coordinate of cell (0,0)
	Spacing float64 `yaml:"spacing"`  // Distance between cells in region units
	Natural bool    `yaml:"natural"`  // Jitter plants around cell centers (appearance only)
}

// SimulationConfig holds the succession model parameters.
type SimulationConfig struct {
	Generations      int     `yaml:"generations"`
	Seed             int64   `yaml:"seed"`              // 0 = time-based
	ProgressInterval int     `yaml:"progress_interval"` // Generations between progress notifications
	LocalWeight      float64 `yaml:"local_weight"`      // Neighborhood crowding pressure
	GlobalWeight     float64 `yaml:"global_weight"`     // Region-wide prevalence
	Baseline         float64 `yaml:"baseline"`          // Out-of-area seed arrival
	Disturbance      float64 `yaml:"disturbance"`       // Ongoing per-generation disturbance probability
	MaxHistoryCells  int64   `yaml:"max_history_cells"` // Upper bound on generations*width*height
}

// ToleranceConfig is an environmental optimum and how strongly deviation from it hurts.
type ToleranceConfig struct {
	Optimum     float64 `yaml:"optimum"`
	Sensitivity float64 `yaml:"sensitivity"`
}

// SpeciesConfig describes one member of the plant community.
type SpeciesConfig struct {
	Name       string          `yaml:"name"`
	Appearance string          `yaml:"appearance"` // Host plant model name
	Color      string          `yaml:"color"`      // #rrggbb used by the renderer
	Lifespan   int             `yaml:"lifespan"`
	Altitude   ToleranceConfig `yaml:"altitude"`
	Salinity   ToleranceConfig `yaml:"salinity"`
	Drainage   ToleranceConfig `yaml:"drainage"`
	Fertility  ToleranceConfig `yaml:"fertility"`

	// Probability that this species replaces each defender, indexed 0 (gap) .. S.
	Replacement []float64 `yaml:"replacement"`
}

// TerrainConfig holds the synthetic environment parameters.
type TerrainConfig struct {
	Seed         int64   `yaml:"seed"`
	RegionSize   float64 `yaml:"region_size"` // Playable region edge length
	WaterLevel   float64 `yaml:"water_level"`
	ElevationMin float64 `yaml:"elevation_min"`
	ElevationMax float64 `yaml:"elevation_max"`
	Scale        float64 `yaml:"scale"`   // Base noise frequency across the region
	Octaves      int     `yaml:"octaves"` // FBM octaves for elevation
	SalinityMap  int     `yaml:"salinity_map"`
	DrainageMap  int     `yaml:"drainage_map"`
	FertilityMap int     `yaml:"fertility_map"`
}

// PlaybackConfig holds playback pacing.
type PlaybackConfig struct {
	CycleTime float64 `yaml:"cycle_time"` // Seconds between automatic steps
}

// TelemetryConfig holds output settings.
type TelemetryConfig struct {
	OutputDir string `yaml:"output_dir"`
	Chart     bool   `yaml:"chart"`     // Write counts.png when the output dir is set
	Snapshots bool   `yaml:"snapshots"` // Save a snapshot at every bookmark
}

// LogStoreConfig holds the persisted log record settings.
type LogStoreConfig struct {
	Path      string `yaml:"path"` // Empty disables the store
	SimID     string `yaml:"sim_id"`
	RegionTag string `yaml:"region_tag"`
}

// NotifyConfig holds the alert broadcast settings.
type NotifyConfig struct {
	Listen string `yaml:"listen"` // Empty disables the websocket endpoint
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SpeciesNames []string // Index 0 is the gap label
	Cells        int      // Grid.Width * Grid.Height
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Cells = c.Grid.Width * c.Grid.Height
	c.Derived.SpeciesNames = make([]string, len(c.Species)+1)
	c.Derived.SpeciesNames[0] = "gap"
	for i, sp := range c.Species {
		name := sp.Name
		if name == "" {
			name = fmt.Sprintf("species_%d", i+1)
		}
		c.Derived.SpeciesNames[i+1] = name
	}
}

// Validate checks the configuration as a whole. The returned error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Simulation.Generations < 1 {
		return fmt.Errorf("%w: simulation.generations must be at least 1, got %d", ErrInvalidConfig, c.Simulation.Generations)
	}
	if c.Playback.CycleTime < 0 {
		return fmt.Errorf("%w: playback.cycle_time must not be negative", ErrInvalidConfig)
	}
	if c.Grid.Spacing <= 0 {
		return fmt.Errorf("%w: grid.spacing must be positive, got %g", ErrInvalidConfig, c.Grid.Spacing)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Params converts the configuration into succession model parameters.
func (c *Config) Params() succession.Params {
	s := len(c.Species)
	species := make([]succession.SpeciesParams, s)
	matrix := make([][]float64, s+1)
	matrix[0] = make([]float64, s+1)
	for i, sp := range c.Species {
		species[i] = succession.SpeciesParams{
			Name:      sp.Name,
			Lifespan:  sp.Lifespan,
			Altitude:  succession.Tolerance(sp.Altitude),
			Salinity:  succession.Tolerance(sp.Salinity),
			Drainage:  succession.Tolerance(sp.Drainage),
			Fertility: succession.Tolerance(sp.Fertility),
		}
		matrix[i+1] = append([]float64(nil), sp.Replacement...)
	}

	return succession.Params{
		Width:       c.Grid.Width,
		Height:      c.Grid.Height,
		Species:     species,
		Replacement: matrix,
		Weights: succession.Weights{
			Local:    c.Simulation.LocalWeight,
			Global:   c.Simulation.GlobalWeight,
			Baseline: c.Simulation.Baseline,
		},
		Disturbance:      c.Simulation.Disturbance,
		StartingMatrix:   c.StartingMatrix,
		ProgressInterval: c.Simulation.ProgressInterval,
		MaxHistoryCells:  c.Simulation.MaxHistoryCells,
	}
}

// Environment builds the procedural environment described by the terrain and grid sections.
func (c *Config) Environment() *environment.Terrain {
	layout := environment.Layout{
		XOrigin: c.Grid.XOrigin,
		YOrigin: c.Grid.YOrigin,
		Spacing: c.Grid.Spacing,
	}
	return environment.NewTerrain(layout, environment.TerrainParams(c.Terrain))
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Species = make([]SpeciesConfig, len(c.Species))
	for i, sp := range c.Species {
		sp.Replacement = append([]float64(nil), sp.Replacement...)
		out.Species[i] = sp
	}
	out.Derived.SpeciesNames = append([]string(nil), c.Derived.SpeciesNames...)
	return &out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
