package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownRecord is returned when a record token does not resolve to a stored record.
var ErrUnknownRecord = errors.New("unknown record")

// Record is a letter-coded community description, one value per species in each list.
//
// Codes:
//
//	lifespans            S/M/L
//	*_optimums           L/M/H
//	*_effects            N/L/M/H
//	replacement rows     N/L/M/H, one row per replacer, one column per defender (gap first)
//	ongoing_disturbance  N/L/M/H
//	starting_matrix      R (random), N (permanent gap), 0 (gap), 1-9 (species)
type Record struct {
	ID                 string   `yaml:"id"`
	PlantTypes         string   `yaml:"plant_types"`
	Replacement        []string `yaml:"replacement"`
	Lifespans          string   `yaml:"lifespans"`
	AltitudeOptimums   string   `yaml:"altitude_optimums"`
	AltitudeEffects    string   `yaml:"altitude_effects"`
	SalinityOptimums   string   `yaml:"salinity_optimums"`
	SalinityEffects    string   `yaml:"salinity_effects"`
	DrainageOptimums   string   `yaml:"drainage_optimums"`
	DrainageEffects    string   `yaml:"drainage_effects"`
	FertilityOptimums  string   `yaml:"fertility_optimums"`
	FertilityEffects   string   `yaml:"fertility_effects"`
	DisturbanceOnly    int      `yaml:"disturbance_only"`
	Natural            int      `yaml:"natural"`
	Terrain            int      `yaml:"terrain"`
	Salinity           int      `yaml:"salinity"`
	Drainage           int      `yaml:"drainage"`
	Fertility          int      `yaml:"fertility"`
	StartingMatrix     string   `yaml:"starting_matrix"`
	OngoingDisturbance string   `yaml:"ongoing_disturbance"`
	XSize              int      `yaml:"x_size"`
	YSize              int      `yaml:"y_size"`
	XLocation          float64  `yaml:"x_location"`
	YLocation          float64  `yaml:"y_location"`
	Spacing            float64  `yaml:"spacing"`
}

// Letter code tables.
var (
	lifespanCodes    = map[string]int{"S": 10, "M": 25, "L": 50}
	optimumCodes     = map[string]float64{"L": 0, "M": 0.5, "H": 1}
	effectCodes      = map[string]float64{"N": 0, "L": 0.5, "M": 1, "H": 2}
	replacementCodes = map[string]float64{"N": 0, "L": 0.05, "M": 0.2, "H": 0.5}
	disturbanceCodes = map[string]float64{"N": 0, "L": 0.01, "M": 0.05, "H": 0.1}
)

// DecodeRecord parses a YAML-encoded record.
func DecodeRecord(data []byte) (*Record, error) {
	rec := &Record{}
	if err := yaml.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	return rec, nil
}

// ApplyRecord returns a new configuration with the record applied on top of c.
// c is never modified; on error the caller keeps using c.
func (c *Config) ApplyRecord(rec *Record) (*Config, error) {
	out := c.Clone()

	disturbance, err := lookup(disturbanceCodes, rec.OngoingDisturbance, "ongoing_disturbance")
	if err != nil {
		return nil, err
	}
	out.Simulation.Disturbance = disturbance
	out.StartingMatrix = strings.TrimSpace(rec.StartingMatrix)
	if rec.DisturbanceOnly == 1 {
		return out.finish()
	}

	names := splitCSV(rec.PlantTypes)
	s := len(names)
	if s == 0 {
		return nil, fmt.Errorf("%w: plant_types is empty", ErrInvalidConfig)
	}
	if len(rec.Replacement) != s {
		return nil, fmt.Errorf("%w: %d replacement rows for %d species", ErrInvalidConfig, len(rec.Replacement), s)
	}

	lists := map[string]string{
		"lifespans":          rec.Lifespans,
		"altitude_optimums":  rec.AltitudeOptimums,
		"altitude_effects":   rec.AltitudeEffects,
		"salinity_optimums":  rec.SalinityOptimums,
		"salinity_effects":   rec.SalinityEffects,
		"drainage_optimums":  rec.DrainageOptimums,
		"drainage_effects":   rec.DrainageEffects,
		"fertility_optimums": rec.FertilityOptimums,
		"fertility_effects":  rec.FertilityEffects,
	}
	fields := make(map[string][]string, len(lists))
	for field, raw := range lists {
		vals := splitCSV(raw)
		if len(vals) != s {
			return nil, fmt.Errorf("%w: %s has %d values for %d species", ErrInvalidConfig, field, len(vals), s)
		}
		fields[field] = vals
	}

	species := make([]SpeciesConfig, s)
	for i := range species {
		sp := SpeciesConfig{Appearance: names[i]}
		if i < len(c.Species) {
			sp.Name = c.Species[i].Name
			sp.Color = c.Species[i].Color
		}
		if sp.Lifespan, err = lookup(lifespanCodes, fields["lifespans"][i], "lifespans"); err != nil {
			return nil, err
		}
		if sp.Altitude, err = tolerance(fields, "altitude", i); err != nil {
			return nil, err
		}
		if sp.Salinity, err = tolerance(fields, "salinity", i); err != nil {
			return nil, err
		}
		if sp.Drainage, err = tolerance(fields, "drainage", i); err != nil {
			return nil, err
		}
		if sp.Fertility, err = tolerance(fields, "fertility", i); err != nil {
			return nil, err
		}

		row := splitCSV(rec.Replacement[i])
		if len(row) != s+1 {
			return nil, fmt.Errorf("%w: replacement row %d has %d values, want %d", ErrInvalidConfig, i+1, len(row), s+1)
		}
		sp.Replacement = make([]float64, s+1)
		for j, code := range row {
			if sp.Replacement[j], err = lookup(replacementCodes, code, "replacement"); err != nil {
				return nil, err
			}
		}
		species[i] = sp
	}
	out.Species = species

	out.Grid.Natural = rec.Natural == 1
	if rec.XSize > 0 {
		out.Grid.Width = rec.XSize
	}
	if rec.YSize > 0 {
		out.Grid.Height = rec.YSize
	}
	if rec.Spacing > 0 {
		out.Grid.Spacing = rec.Spacing
	}
	if rec.XLocation != 0 || rec.YLocation != 0 {
		out.Grid.XOrigin = rec.XLocation
		out.Grid.YOrigin = rec.YLocation
	}
	out.Terrain.Seed = c.Terrain.Seed + int64(rec.Terrain)
	out.Terrain.SalinityMap = rec.Salinity
	out.Terrain.DrainageMap = rec.Drainage
	out.Terrain.FertilityMap = rec.Fertility

	return out.finish()
}

func (c *Config) finish() (*Config, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.computeDerived()
	return c, nil
}

func tolerance(fields map[string][]string, layer string, i int) (ToleranceConfig, error) {
	opt, err := lookup(optimumCodes, fields[layer+"_optimums"][i], layer+"_optimums")
	if err != nil {
		return ToleranceConfig{}, err
	}
	eff, err := lookup(effectCodes, fields[layer+"_effects"][i], layer+"_effects")
	if err != nil {
		return ToleranceConfig{}, err
	}
	return ToleranceConfig{Optimum: opt, Sensitivity: eff}, nil
}

func lookup[T any](codes map[string]T, code, field string) (T, error) {
	v, ok := codes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s: unknown code %q", ErrInvalidConfig, field, code)
	}
	return v, nil
}

func splitCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// RecordSource resolves a configuration token to a community record.
type RecordSource interface {
	Record(token string) (*Record, error)
}

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DirRecordSource reads records from <Dir>/<token>.yaml.
type DirRecordSource struct {
	Dir string
}

// Record loads the record named by token.
func (d DirRecordSource) Record(token string) (*Record, error) {
	if !tokenPattern.MatchString(token) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecord, token)
	}
	data, err := os.ReadFile(filepath.Join(d.Dir, token+".yaml"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRecord, token)
		}
		return nil, fmt.Errorf("reading record %q: %w", token, err)
	}
	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, err
	}
	if rec.ID == "" {
		rec.ID = token
	}
	return rec, nil
}

